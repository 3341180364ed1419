package service

import (
	"context"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/infra"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/money"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"
	"github.com/Jottaaa12/pdv-web-admin/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// Deviation levels of a closed session.
const (
	DeviationNormal   = "normal"
	DeviationWarning  = "warning"
	DeviationCritical = "critical"
)

type CashService interface {
	Open(ctx context.Context, userID uuid.UUID, req dto.OpenSessionRequest) (*dto.CashSessionResponse, error)
	RecordMovement(ctx context.Context, userID, sessionID uuid.UUID, req dto.CashMovementRequest) (*dto.CashMovementResponse, error)
	Close(ctx context.Context, userID, sessionID uuid.UUID, req dto.CloseSessionRequest) (*dto.CashSessionResponse, error)
	GetActive(ctx context.Context, userID uuid.UUID) (*dto.CashSessionResponse, error)
	GetReport(ctx context.Context, sessionID uuid.UUID) (*dto.CashSessionReport, error)
	ListSessions(ctx context.Context, filter repository.CashSessionFilter) (*dto.Page[dto.CashSessionResponse], error)
}

type cashService struct {
	repo       repository.CashRepository
	users      repository.UserRepository
	audit      AuditService
	dispatcher *worker.Dispatcher
	events     EventPublisher
	policy     TxPolicy
}

func NewCashService(
	repo repository.CashRepository,
	users repository.UserRepository,
	audit AuditService,
	dispatcher *worker.Dispatcher,
	events EventPublisher,
	policy TxPolicy,
) CashService {
	return &cashService{repo: repo, users: users, audit: audit, dispatcher: dispatcher, events: events, policy: policy}
}

// ── Open ──────────────────────────────────────────────────────────────────────
// The user row lock serializes concurrent opens by the same user; the partial
// unique index uq_cash_sessions_open_user backs it up.

func (s *cashService) Open(ctx context.Context, userID uuid.UUID, req dto.OpenSessionRequest) (*dto.CashSessionResponse, error) {
	if req.InitialAmount.IsNegative() {
		return nil, apierror.Validation("initial_amount must not be negative")
	}

	var session model.CashSession
	err := runTx(ctx, s.repo.DB(), s.policy, func(tx *gorm.DB) error {
		user, err := s.users.FindForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !user.Active {
			return apierror.State("user %s is inactive", user.Username)
		}
		if _, err := s.repo.FindOpenSessionByUser(ctx, tx, userID); err == nil {
			return apierror.Conflict("user already has an open session")
		} else if !apierror.Is(err, apierror.KindNotFound) {
			return err
		}

		session = model.CashSession{
			UserID:        userID,
			InitialAmount: req.InitialAmount,
			Status:        model.SessionOpen,
			Notes:         req.Notes,
			OpenTime:      time.Now().UTC(),
		}
		if err := s.repo.CreateSession(ctx, tx, &session); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, &userID, ActionOpenSession, "cash_sessions", session.ID.String())
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("session_id", session.ID.String()).Str("user_id", userID.String()).Msg("cash session opened")
	return sessionResponse(&session), nil
}

// ── RecordMovement ────────────────────────────────────────────────────────────
// Manual supply / withdrawal. Movements are immutable.

func (s *cashService) RecordMovement(ctx context.Context, userID, sessionID uuid.UUID, req dto.CashMovementRequest) (*dto.CashMovementResponse, error) {
	switch req.Type {
	case model.MovementSupply, model.MovementWithdrawal:
	case model.MovementSaleCashIn:
		return nil, apierror.Validation("sale_cash_in movements are posted by sales only")
	default:
		return nil, apierror.Validation("movement type must be supply or withdrawal")
	}
	if !req.Amount.IsPositive() {
		return nil, apierror.Validation("amount must be greater than zero")
	}

	var mov model.CashMovement
	err := runTx(ctx, s.repo.DB(), s.policy, func(tx *gorm.DB) error {
		session, err := s.repo.FindSessionForUpdate(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if !session.IsOpen() {
			return apierror.State("cash session is closed")
		}
		mov = model.CashMovement{
			CashSessionID: sessionID,
			Type:          req.Type,
			Amount:        req.Amount,
			Reason:        req.Reason,
			UserID:        userID,
		}
		if err := s.repo.CreateMovement(ctx, tx, &mov); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, &userID, ActionCashMovement, "cash_movements", mov.ID.String())
	})
	if err != nil {
		return nil, err
	}
	resp := movementResponse(mov)
	return &resp, nil
}

// ── Close ─────────────────────────────────────────────────────────────────────
// expected = initial + Σsupply − Σwithdrawal + Σsale_cash_in, summed inside
// the transaction while the session row is locked, so no movement can slip
// in between the sum and the status change.

func (s *cashService) Close(ctx context.Context, userID, sessionID uuid.UUID, req dto.CloseSessionRequest) (*dto.CashSessionResponse, error) {
	if req.CountedAmount.IsNegative() {
		return nil, apierror.Validation("counted_amount must not be negative")
	}
	ctx, span := infra.StartSpan(ctx, "cash.close")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", sessionID.String()))

	var session *model.CashSession
	err := runTx(ctx, s.repo.DB(), s.policy, func(tx *gorm.DB) error {
		var err error
		session, err = s.repo.FindSessionForUpdate(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if !session.IsOpen() {
			return apierror.State("cash session already closed")
		}
		sums, err := s.repo.SumMovementsByType(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		expected := ExpectedAmount(session.InitialAmount, sums)
		final := req.CountedAmount
		diff := final.Sub(expected)
		level := classifyDeviation(diff, expected)
		now := time.Now().UTC()

		session.ExpectedAmount = &expected
		session.FinalAmount = &final
		session.Difference = &diff
		session.DeviationLevel = &level
		session.Status = model.SessionClosed
		session.CloseTime = &now
		if req.Notes != nil {
			session.Notes = req.Notes
		}
		if err := s.repo.UpdateSession(ctx, tx, session); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, &userID, ActionCloseSession, "cash_sessions", session.ID.String())
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	infra.CashSessionsClosedTotal.WithLabelValues(*session.DeviationLevel).Inc()
	resp := sessionResponse(session)
	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueSessionReport(ctx, worker.SessionReportPayload{SessionID: sessionID.String()}); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("session report enqueue failed")
		}
	}
	publish(ctx, s.events, infra.EventCashSessionClosed, sessionID.String(), resp)
	return resp, nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *cashService) GetActive(ctx context.Context, userID uuid.UUID) (*dto.CashSessionResponse, error) {
	session, err := s.repo.FindOpenSessionByUser(ctx, nil, userID)
	if err != nil {
		if apierror.Is(err, apierror.KindNotFound) {
			return nil, apierror.NotFound("no open cash session")
		}
		return nil, err
	}
	return sessionResponse(session), nil
}

func (s *cashService) GetReport(ctx context.Context, sessionID uuid.UUID) (*dto.CashSessionReport, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	report := &dto.CashSessionReport{
		Session:         *sessionResponse(session),
		RunningExpected: session.InitialAmount,
		Movements:       make([]dto.CashMovementResponse, 0, len(session.Movements)),
	}
	for _, m := range session.Movements {
		switch m.Type {
		case model.MovementSupply:
			report.Totals.Supply = report.Totals.Supply.Add(m.Amount)
		case model.MovementWithdrawal:
			report.Totals.Withdrawal = report.Totals.Withdrawal.Add(m.Amount)
		case model.MovementSaleCashIn:
			report.Totals.SaleCashIn = report.Totals.SaleCashIn.Add(m.Amount)
		}
		report.RunningExpected = report.RunningExpected.Add(m.Signed())
		report.Movements = append(report.Movements, movementResponse(m))
	}
	return report, nil
}

func (s *cashService) ListSessions(ctx context.Context, filter repository.CashSessionFilter) (*dto.Page[dto.CashSessionResponse], error) {
	sessions, total, err := s.repo.ListSessions(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CashSessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, *sessionResponse(&sessions[i]))
	}
	return &dto.Page[dto.CashSessionResponse]{Data: out, Total: total, Page: pageOf(filter.Page), Limit: limitOf(filter.Page)}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// ExpectedAmount is initial + supply − withdrawal + sale cash, in centavos.
func ExpectedAmount(initial money.Money, sums map[string]money.Money) money.Money {
	return initial.
		Add(sums[model.MovementSupply]).
		Sub(sums[model.MovementWithdrawal]).
		Add(sums[model.MovementSaleCashIn])
}

// classifyDeviation grades |diff| relative to |expected|:
// normal <= 1%, warning <= 5%, critical above. With nothing expected any
// difference is critical.
func classifyDeviation(diff, expected money.Money) string {
	d, e := diff.Abs().Int64(), expected.Abs().Int64()
	switch {
	case d == 0:
		return DeviationNormal
	case e == 0:
		return DeviationCritical
	case d*100 <= e:
		return DeviationNormal
	case d*100 <= e*5:
		return DeviationWarning
	default:
		return DeviationCritical
	}
}

func sessionResponse(s *model.CashSession) *dto.CashSessionResponse {
	return &dto.CashSessionResponse{
		ID:             s.ID.String(),
		UserID:         s.UserID.String(),
		Status:         s.Status,
		InitialAmount:  s.InitialAmount,
		ExpectedAmount: s.ExpectedAmount,
		FinalAmount:    s.FinalAmount,
		Difference:     s.Difference,
		DeviationLevel: s.DeviationLevel,
		Notes:          s.Notes,
		OpenTime:       s.OpenTime,
		CloseTime:      s.CloseTime,
	}
}

func movementResponse(m model.CashMovement) dto.CashMovementResponse {
	return dto.CashMovementResponse{
		ID:        m.ID.String(),
		Type:      m.Type,
		Amount:    m.Amount,
		Reason:    m.Reason,
		SaleID:    uuidString(m.SaleID),
		UserID:    m.UserID.String(),
		CreatedAt: m.CreatedAt,
	}
}
