package dto

import (
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/money"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	InitialAmount money.Money `json:"initial_amount" validate:"min=0,lte=10000000000000"`
	Notes         *string     `json:"notes"          validate:"omitempty,max=500"`
}

type CashMovementRequest struct {
	Type   string      `json:"type"   validate:"required,oneof=supply withdrawal"`
	Amount money.Money `json:"amount" validate:"gt=0,lte=10000000000000"`
	Reason *string     `json:"reason" validate:"omitempty,max=255"`
}

type CloseSessionRequest struct {
	CountedAmount money.Money `json:"counted_amount" validate:"min=0,lte=10000000000000"`
	Notes         *string     `json:"notes"          validate:"omitempty,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CashSessionResponse struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	Status         string       `json:"status"`
	InitialAmount  money.Money  `json:"initial_amount"`
	ExpectedAmount *money.Money `json:"expected_amount"`
	FinalAmount    *money.Money `json:"final_amount"`
	Difference     *money.Money `json:"difference"`
	DeviationLevel *string      `json:"deviation_level"` // normal | warning | critical
	Notes          *string      `json:"notes"`
	OpenTime       time.Time    `json:"open_time"`
	CloseTime      *time.Time   `json:"close_time"`
}

type CashMovementResponse struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Amount    money.Money `json:"amount"`
	Reason    *string     `json:"reason"`
	SaleID    *string     `json:"sale_id"`
	UserID    string      `json:"user_id"`
	CreatedAt time.Time   `json:"created_at"`
}

type MovementTotals struct {
	Supply     money.Money `json:"supply"`
	Withdrawal money.Money `json:"withdrawal"`
	SaleCashIn money.Money `json:"sale_cash_in"`
}

// CashSessionReport is the session plus its movements. RunningExpected is
// what the drawer should hold right now (equal to ExpectedAmount once closed).
type CashSessionReport struct {
	Session         CashSessionResponse    `json:"session"`
	Totals          MovementTotals         `json:"totals"`
	RunningExpected money.Money            `json:"running_expected"`
	Movements       []CashMovementResponse `json:"movements"`
}
