package service

import (
	"context"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/infra"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/money"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// Allocation orders for credit payments.
const (
	AllocateOldestFirst = "oldest_first"
	AllocateNewestFirst = "newest_first"
)

// CreditService is the customer tab. A balance is derived from the credit
// portion of the customer's sales minus what payments have settled.
type CreditService interface {
	CurrentBalance(ctx context.Context, customerID uuid.UUID) (*dto.BalanceResponse, error)
	ApplyPayment(ctx context.Context, userID *uuid.UUID, req dto.ApplyCreditPaymentRequest) (*dto.CreditPaymentResponse, error)
	ListPayments(ctx context.Context, customerID uuid.UUID) ([]dto.CreditPaymentResponse, error)
	ListDebtors(ctx context.Context) ([]dto.DebtorResponse, error)
}

type creditService struct {
	repo      repository.CreditRepository
	customers repository.CustomerRepository
	catalog   repository.CatalogRepository
	reporting repository.ReportingRepository
	audit     AuditService
	events    EventPublisher
	db        *gorm.DB
	policy    TxPolicy
	order     string
}

func NewCreditService(
	repo repository.CreditRepository,
	customers repository.CustomerRepository,
	catalog repository.CatalogRepository,
	reporting repository.ReportingRepository,
	audit AuditService,
	events EventPublisher,
	db *gorm.DB,
	policy TxPolicy,
	allocationOrder string,
) CreditService {
	return &creditService{
		repo:      repo,
		customers: customers,
		catalog:   catalog,
		reporting: reporting,
		audit:     audit,
		events:    events,
		db:        db,
		policy:    policy,
		order:     allocationOrder,
	}
}

func (s *creditService) CurrentBalance(ctx context.Context, customerID uuid.UUID) (*dto.BalanceResponse, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	balance, err := s.repo.OutstandingBalance(ctx, nil, customerID)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{
		CustomerID:  customerID.String(),
		Balance:     balance,
		CreditLimit: customer.CreditLimit,
		Available:   customer.CreditLimit.Sub(balance),
	}, nil
}

// ── ApplyPayment ──────────────────────────────────────────────────────────────
// Under the customer lock the outstanding sales are settled in allocation
// order. A payment larger than the outstanding balance writes nothing.

func (s *creditService) ApplyPayment(ctx context.Context, userID *uuid.UUID, req dto.ApplyCreditPaymentRequest) (*dto.CreditPaymentResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, apierror.Validation("customer_id is not a valid id")
	}
	if !req.Amount.IsPositive() {
		return nil, apierror.Validation("amount must be greater than zero")
	}
	if err := s.checkMethod(ctx, req.PaymentMethod); err != nil {
		return nil, err
	}

	ctx, span := infra.StartSpan(ctx, "credit.apply_payment")
	defer span.End()
	span.SetAttributes(attribute.String("customer_id", customerID.String()), attribute.Int64("amount", req.Amount.Int64()))

	var (
		payment      model.CreditPayment
		balanceAfter money.Money
	)
	err = runTx(ctx, s.db, s.policy, func(tx *gorm.DB) error {
		if _, err := s.customers.FindForUpdate(ctx, tx, customerID); err != nil {
			return err
		}
		sales, err := s.repo.ListOutstandingForUpdate(ctx, tx, customerID, s.order == AllocateNewestFirst)
		if err != nil {
			return err
		}

		var outstanding money.Money
		for i := range sales {
			outstanding = outstanding.Add(sales[i].CreditOutstanding())
		}
		if req.Amount > outstanding {
			return apierror.Validation("overpayment: amount %s exceeds outstanding balance %s", req.Amount, outstanding)
		}

		payment = model.CreditPayment{
			CustomerID:    customerID,
			Amount:        req.Amount,
			PaymentMethod: req.PaymentMethod,
			UserID:        userID,
			Allocations:   allocate(sales, req.Amount),
		}
		for _, a := range payment.Allocations {
			if err := s.repo.AddCreditPaidTx(ctx, tx, a.SaleID, a.Amount); err != nil {
				return err
			}
		}
		if err := s.repo.CreatePaymentTx(ctx, tx, &payment); err != nil {
			return err
		}
		balanceAfter = outstanding.Sub(req.Amount)
		return s.audit.Record(ctx, tx, userID, ActionCreditPayment, "credit_payments", payment.ID.String())
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	infra.CreditPaymentsTotal.Inc()
	log.Info().
		Str("payment_id", payment.ID.String()).
		Str("customer_id", customerID.String()).
		Str("amount", req.Amount.String()).
		Int("allocations", len(payment.Allocations)).
		Msg("credit payment applied")

	resp := creditPaymentResponse(payment)
	resp.BalanceAfter = balanceAfter
	publish(ctx, s.events, infra.EventCreditPaymentApplied, customerID.String(), resp)
	return &resp, nil
}

// allocate spreads amount over sales in the given order, filling each one
// before moving to the next.
func allocate(sales []model.Sale, amount money.Money) []model.CreditAllocation {
	var out []model.CreditAllocation
	remaining := amount
	for i := range sales {
		if !remaining.IsPositive() {
			break
		}
		part := sales[i].CreditOutstanding()
		if part > remaining {
			part = remaining
		}
		if !part.IsPositive() {
			continue
		}
		out = append(out, model.CreditAllocation{SaleID: sales[i].ID, Amount: part})
		remaining = remaining.Sub(part)
	}
	return out
}

// checkMethod accepts cash or any active payment method. A tab cannot be
// paid with more credit.
func (s *creditService) checkMethod(ctx context.Context, method string) error {
	switch method {
	case "":
		return apierror.Validation("payment_method is required")
	case model.TenderCash:
		return nil
	case model.TenderCredit:
		return apierror.Validation("credit cannot be used to pay a credit balance")
	}
	active, err := s.catalog.FindActivePaymentMethods(ctx, nil, []string{method})
	if err != nil {
		return err
	}
	if len(active) == 0 {
		return apierror.Validation("unknown or inactive payment method %q", method)
	}
	return nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *creditService) ListPayments(ctx context.Context, customerID uuid.UUID) ([]dto.CreditPaymentResponse, error) {
	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CreditPaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, creditPaymentResponse(p))
	}
	return out, nil
}

func (s *creditService) ListDebtors(ctx context.Context) ([]dto.DebtorResponse, error) {
	rows, err := s.reporting.Debtors(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DebtorResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.DebtorResponse{ID: r.ID.String(), Name: r.Name, Phone: r.Phone, Balance: r.Balance})
	}
	return out, nil
}

func creditPaymentResponse(p model.CreditPayment) dto.CreditPaymentResponse {
	resp := dto.CreditPaymentResponse{
		ID:            p.ID.String(),
		CustomerID:    p.CustomerID.String(),
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		Allocations:   make([]dto.CreditAllocationResponse, 0, len(p.Allocations)),
		CreatedAt:     p.CreatedAt,
	}
	for _, a := range p.Allocations {
		resp.Allocations = append(resp.Allocations, dto.CreditAllocationResponse{SaleID: a.SaleID.String(), Amount: a.Amount})
	}
	return resp
}
