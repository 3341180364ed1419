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

func payment(customerID uuid.UUID, amount money.Money) dto.ApplyCreditPaymentRequest {
	return dto.ApplyCreditPaymentRequest{CustomerID: customerID.String(), Amount: amount, PaymentMethod: model.TenderCash}
}

func TestCredit_SaleThenPaymentsScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	op := env.db.addUser("caixa1", model.RoleOperator, true)
	s := env.db.addOpenSession(op.ID, 0)
	goods := env.db.addProduct("Cesta básica", 6000, model.SaleTypeUnit, money.Units(5))
	customer := env.db.addCustomer("Dona Maria", 10000)

	bal, err := env.credit.CurrentBalance(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Money(0), bal.Balance)

	_, err = env.sales.CreateSale(ctx, op.ID, dto.CreateSaleRequest{
		CashSessionID: s.ID.String(),
		CustomerID:    ptr(customer.ID.String()),
		Items:         []dto.SaleItemRequest{{ProductID: goods.ID.String(), Quantity: money.Units(1)}},
		Tender:        []dto.TenderRequest{{Method: model.TenderCredit, Amount: 6000}},
	})
	require.NoError(t, err)

	bal, err = env.credit.CurrentBalance(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Money(6000), bal.Balance)
	assert.Equal(t, money.Money(4000), bal.Available)

	paid, err := env.credit.ApplyPayment(ctx, &op.ID, payment(customer.ID, 4000))
	require.NoError(t, err)
	assert.Equal(t, money.Money(2000), paid.BalanceAfter)

	bal, err = env.credit.CurrentBalance(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Money(2000), bal.Balance)

	_, err = env.credit.ApplyPayment(ctx, &op.ID, payment(customer.ID, 2001))
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindValidation))
	assert.Contains(t, apierror.ReasonOf(err), "overpayment")

	bal, err = env.credit.CurrentBalance(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Money(2000), bal.Balance)
	assert.Len(t, env.db.payments, 1)
}

func TestCredit_AllocatesOldestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.db.addCustomer("Seu João", 100000)
	oldest := env.db.addCreditSale(c.ID, 1000)
	middle := env.db.addCreditSale(c.ID, 2000)
	newest := env.db.addCreditSale(c.ID, 3000)

	resp, err := env.credit.ApplyPayment(ctx, nil, payment(c.ID, 2500))
	require.NoError(t, err)

	require.Len(t, resp.Allocations, 2)
	assert.Equal(t, dto.CreditAllocationResponse{SaleID: oldest.ID.String(), Amount: 1000}, resp.Allocations[0])
	assert.Equal(t, dto.CreditAllocationResponse{SaleID: middle.ID.String(), Amount: 1500}, resp.Allocations[1])

	assert.Equal(t, money.Money(1000), env.db.sale(oldest.ID).CreditPaid)
	assert.Equal(t, money.Money(1500), env.db.sale(middle.ID).CreditPaid)
	assert.Equal(t, money.Money(0), env.db.sale(newest.ID).CreditPaid)
	assert.Equal(t, money.Money(3500), resp.BalanceAfter)
	assert.Contains(t, env.events.types, "credit_payment.applied")
	assert.Equal(t, []string{ActionCreditPayment}, env.db.auditActions())
}

func TestCredit_AllocatesNewestFirstWhenConfigured(t *testing.T) {
	env := newTestEnvWith(t, SalePolicy{}, AllocateNewestFirst)
	c := env.db.addCustomer("Seu João", 100000)
	oldest := env.db.addCreditSale(c.ID, 1000)
	newest := env.db.addCreditSale(c.ID, 3000)

	resp, err := env.credit.ApplyPayment(context.Background(), nil, payment(c.ID, 3500))
	require.NoError(t, err)
	require.Len(t, resp.Allocations, 2)
	assert.Equal(t, newest.ID.String(), resp.Allocations[0].SaleID)
	assert.Equal(t, money.Money(3000), resp.Allocations[0].Amount)
	assert.Equal(t, money.Money(500), env.db.sale(oldest.ID).CreditPaid)
}

func TestCredit_BalanceNeverNegative(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.db.addCustomer("Cliente", 5000)
	env.db.addCreditSale(c.ID, 700)
	env.db.addCreditSale(c.ID, 300)

	for _, amount := range []money.Money{400, 1, 599, 1} {
		_, err := env.credit.ApplyPayment(ctx, nil, payment(c.ID, amount))
		bal, balErr := env.credit.CurrentBalance(ctx, c.ID)
		require.NoError(t, balErr)
		assert.False(t, bal.Balance.IsNegative())
		if bal.Balance == 0 {
			continue
		}
		require.NoError(t, err)
	}
	bal, err := env.credit.CurrentBalance(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Money(0), bal.Balance)

	_, err = env.credit.ApplyPayment(ctx, nil, payment(c.ID, 1))
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestCredit_PaymentValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.db.addCustomer("Cliente", 5000)
	env.db.addCreditSale(c.ID, 1000)
	env.db.addPaymentMethod("pix", true)

	bad := []dto.ApplyCreditPaymentRequest{
		{CustomerID: c.ID.String(), Amount: 0, PaymentMethod: model.TenderCash},
		{CustomerID: c.ID.String(), Amount: 100, PaymentMethod: ""},
		{CustomerID: c.ID.String(), Amount: 100, PaymentMethod: "cheque"},
		{CustomerID: c.ID.String(), Amount: 100, PaymentMethod: model.TenderCredit},
		{CustomerID: "not-an-id", Amount: 100, PaymentMethod: model.TenderCash},
	}
	for _, req := range bad {
		_, err := env.credit.ApplyPayment(ctx, nil, req)
		assert.True(t, apierror.Is(err, apierror.KindValidation), "%+v", req)
	}

	_, err := env.credit.ApplyPayment(ctx, nil, payment(uuid.New(), 100))
	assert.True(t, apierror.Is(err, apierror.KindNotFound))

	_, err = env.credit.ApplyPayment(ctx, nil, dto.ApplyCreditPaymentRequest{CustomerID: c.ID.String(), Amount: 100, PaymentMethod: "pix"})
	require.NoError(t, err)

	_, err = env.credit.CurrentBalance(ctx, uuid.New())
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
}

func TestCredit_DebtorsAndPayments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	maria := env.db.addCustomer("Maria", 5000)
	joao := env.db.addCustomer("João", 5000)
	env.db.addCustomer("Sem dívida", 5000)
	env.db.addCreditSale(maria.ID, 1000)
	env.db.addCreditSale(joao.ID, 3000)

	_, err := env.credit.ApplyPayment(ctx, nil, payment(maria.ID, 400))
	require.NoError(t, err)

	debtors, err := env.credit.ListDebtors(ctx)
	require.NoError(t, err)
	require.Len(t, debtors, 2)
	assert.Equal(t, "João", debtors[0].Name)
	assert.Equal(t, money.Money(600), debtors[1].Balance)

	payments, err := env.credit.ListPayments(ctx, maria.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Len(t, payments[0].Allocations, 1)
}

func TestCredit_AuditFailureLeavesSalesUnpaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	op := env.db.addUser("caixa1", model.RoleOperator, true)
	customer := env.db.addCustomer("Seu João", 10000)
	older := env.db.addCreditSale(customer.ID, 3000)
	env.db.addCreditSale(customer.ID, 2000)
	env.db.failAuditFor = ActionCreditPayment

	_, err := env.credit.ApplyPayment(ctx, &op.ID, payment(customer.ID, 4000))
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindStorage))

	assert.Empty(t, env.db.payments)
	for _, s := range env.db.sales {
		assert.Equal(t, money.Money(0), s.CreditPaid, "sale %d", s.Number)
	}
	bal, err := env.credit.CurrentBalance(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Money(5000), bal.Balance)

	env.db.failAuditFor = ""
	_, err = env.credit.ApplyPayment(ctx, &op.ID, payment(customer.ID, 4000))
	require.NoError(t, err)
	for _, s := range env.db.sales {
		if s.ID == older.ID {
			assert.Equal(t, money.Money(3000), s.CreditPaid)
		}
	}
}
