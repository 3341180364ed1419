package service

import (
	"context"
	"testing"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/money"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCashSession_FullDayScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	op := env.db.addUser("ana", model.RoleOperator, true)
	coke := env.db.addProduct("Refrigerante", 1000, model.SaleTypeUnit, money.Units(10))

	session, err := env.cash.Open(ctx, op.ID, dto.OpenSessionRequest{InitialAmount: 5000})
	require.NoError(t, err)
	sessionID := uuid.MustParse(session.ID)

	_, err = env.cash.RecordMovement(ctx, op.ID, sessionID, dto.CashMovementRequest{Type: model.MovementSupply, Amount: 2000})
	require.NoError(t, err)

	_, err = env.sales.CreateSale(ctx, op.ID, dto.CreateSaleRequest{
		CashSessionID: session.ID,
		Items:         []dto.SaleItemRequest{{ProductID: coke.ID.String(), Quantity: money.Units(3)}},
		Tender:        []dto.TenderRequest{{Method: model.TenderCash, Amount: 3000}},
	})
	require.NoError(t, err)

	closed, err := env.cash.Close(ctx, op.ID, sessionID, dto.CloseSessionRequest{CountedAmount: 10000})
	require.NoError(t, err)

	assert.Equal(t, model.SessionClosed, closed.Status)
	assert.Equal(t, money.Money(10000), *closed.ExpectedAmount)
	assert.Equal(t, money.Money(10000), *closed.FinalAmount)
	assert.Equal(t, money.Money(0), *closed.Difference)
	assert.Equal(t, DeviationNormal, *closed.DeviationLevel)
	assert.NotNil(t, closed.CloseTime)
	assert.Equal(t,
		[]string{ActionOpenSession, ActionCashMovement, ActionCreateSale, ActionCloseSession},
		env.db.auditActions())
	assert.Contains(t, env.events.types, "cash_session.closed")
}

func TestCashSession_ExpectedAmountFormula(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	op := env.db.addUser("ana", model.RoleOperator, true)
	s := env.db.addOpenSession(op.ID, 1234)

	moves := []dto.CashMovementRequest{
		{Type: model.MovementSupply, Amount: 999},
		{Type: model.MovementWithdrawal, Amount: 333},
		{Type: model.MovementSupply, Amount: 1},
		{Type: model.MovementWithdrawal, Amount: 1500},
	}
	for _, m := range moves {
		_, err := env.cash.RecordMovement(ctx, op.ID, s.ID, m)
		require.NoError(t, err)
	}

	closed, err := env.cash.Close(ctx, op.ID, s.ID, dto.CloseSessionRequest{CountedAmount: 400})
	require.NoError(t, err)
	assert.Equal(t, money.Money(1234+999-333+1-1500), *closed.ExpectedAmount)
	assert.Equal(t, money.Money(400-401), *closed.Difference)
}

func TestCashSession_CloseTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	op := env.db.addUser("ana", model.RoleOperator, true)
	s := env.db.addOpenSession(op.ID, 0)

	_, err := env.cash.Close(ctx, op.ID, s.ID, dto.CloseSessionRequest{CountedAmount: 0})
	require.NoError(t, err)

	_, err = env.cash.Close(ctx, op.ID, s.ID, dto.CloseSessionRequest{CountedAmount: 0})
	assert.True(t, apierror.Is(err, apierror.KindState))

	_, err = env.cash.RecordMovement(ctx, op.ID, s.ID, dto.CashMovementRequest{Type: model.MovementSupply, Amount: 100})
	assert.True(t, apierror.Is(err, apierror.KindState))
	assert.Empty(t, env.db.cashMoves)
}

func TestCashSession_OpenRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	op := env.db.addUser("ana", model.RoleOperator, true)
	inactive := env.db.addUser("bob", model.RoleOperator, false)

	_, err := env.cash.Open(ctx, op.ID, dto.OpenSessionRequest{InitialAmount: -1})
	assert.True(t, apierror.Is(err, apierror.KindValidation))

	_, err = env.cash.Open(ctx, uuid.New(), dto.OpenSessionRequest{})
	assert.True(t, apierror.Is(err, apierror.KindNotFound))

	_, err = env.cash.Open(ctx, inactive.ID, dto.OpenSessionRequest{})
	assert.True(t, apierror.Is(err, apierror.KindState))

	_, err = env.cash.Open(ctx, op.ID, dto.OpenSessionRequest{InitialAmount: 100})
	require.NoError(t, err)
	_, err = env.cash.Open(ctx, op.ID, dto.OpenSessionRequest{InitialAmount: 100})
	assert.True(t, apierror.Is(err, apierror.KindConflict))
	assert.Len(t, env.db.sessions, 1)
}

func TestCashSession_MovementValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	op := env.db.addUser("ana", model.RoleOperator, true)
	s := env.db.addOpenSession(op.ID, 0)

	cases := []dto.CashMovementRequest{
		{Type: model.MovementSaleCashIn, Amount: 100},
		{Type: "refund", Amount: 100},
		{Type: model.MovementSupply, Amount: 0},
		{Type: model.MovementWithdrawal, Amount: -5},
	}
	for _, c := range cases {
		_, err := env.cash.RecordMovement(ctx, op.ID, s.ID, c)
		assert.True(t, apierror.Is(err, apierror.KindValidation), "type=%s amount=%d", c.Type, c.Amount)
	}

	_, err := env.cash.RecordMovement(ctx, op.ID, uuid.New(), dto.CashMovementRequest{Type: model.MovementSupply, Amount: 1})
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
	assert.Empty(t, env.db.cashMoves)
}

func TestCashSession_AuditFailureRollsBackClose(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	op := env.db.addUser("ana", model.RoleOperator, true)
	s := env.db.addOpenSession(op.ID, 0)
	env.db.failAuditFor = ActionCloseSession

	_, err := env.cash.RecordMovement(ctx, op.ID, s.ID, dto.CashMovementRequest{Type: model.MovementSupply, Amount: 500})
	require.NoError(t, err)
	auditBefore := len(env.db.audit)

	_, err = env.cash.Close(ctx, op.ID, s.ID, dto.CloseSessionRequest{CountedAmount: 500})
	assert.True(t, apierror.Is(err, apierror.KindStorage))

	// The session row was already updated when the audit write failed.
	after := env.db.sessions[s.ID]
	assert.Equal(t, model.SessionOpen, after.Status)
	assert.Nil(t, after.FinalAmount)
	assert.Nil(t, after.CloseTime)
	assert.Len(t, env.db.audit, auditBefore)

	// Once storage recovers the same session closes normally.
	env.db.failAuditFor = ""
	closed, err := env.cash.Close(ctx, op.ID, s.ID, dto.CloseSessionRequest{CountedAmount: 500})
	require.NoError(t, err)
	assert.Equal(t, money.Money(500), *closed.ExpectedAmount)
}

func TestCashSession_Report(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	op := env.db.addUser("ana", model.RoleOperator, true)
	s := env.db.addOpenSession(op.ID, 5000)

	_, err := env.cash.RecordMovement(ctx, op.ID, s.ID, dto.CashMovementRequest{Type: model.MovementSupply, Amount: 2000})
	require.NoError(t, err)
	_, err = env.cash.RecordMovement(ctx, op.ID, s.ID, dto.CashMovementRequest{Type: model.MovementWithdrawal, Amount: 500})
	require.NoError(t, err)

	report, err := env.cash.GetReport(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Money(2000), report.Totals.Supply)
	assert.Equal(t, money.Money(500), report.Totals.Withdrawal)
	assert.Equal(t, money.Money(6500), report.RunningExpected)
	assert.Len(t, report.Movements, 2)

	active, err := env.cash.GetActive(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID.String(), active.ID)
}

func TestClassifyDeviation(t *testing.T) {
	cases := []struct {
		diff, expected money.Money
		want           string
	}{
		{0, 0, DeviationNormal},
		{100, 10000, DeviationNormal},
		{-100, 10000, DeviationNormal},
		{101, 10000, DeviationWarning},
		{500, 10000, DeviationWarning},
		{501, 10000, DeviationCritical},
		{1, 0, DeviationCritical},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, classifyDeviation(c.diff, c.expected), "diff=%d expected=%d", c.diff, c.expected)
	}
}
