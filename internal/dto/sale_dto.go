package dto

import (
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/money"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID string         `json:"product_id" validate:"required,uuid"`
	Quantity  money.Quantity `json:"quantity"   validate:"gt=0"`
}

// TenderRequest is one payment line. Received is the cash handed over by the
// customer; change is Received - Amount.
type TenderRequest struct {
	Method   string       `json:"method"   validate:"required,max=40"`
	Amount   money.Money  `json:"amount"   validate:"gt=0,lte=10000000000000"`
	Received *money.Money `json:"received" validate:"omitempty,gt=0,lte=10000000000000"`
}

type CreateSaleRequest struct {
	CashSessionID string            `json:"cash_session_id" validate:"required,uuid"`
	CustomerID    *string           `json:"customer_id"     validate:"omitempty,uuid"`
	Items         []SaleItemRequest `json:"items"           validate:"required,min=1,dive"`
	Tender        []TenderRequest   `json:"tender"          validate:"dive"`
	TrainingMode  bool              `json:"training_mode"`
	ClientRef     *string           `json:"client_ref"      validate:"omitempty,max=64"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ID          string         `json:"id"`
	ProductID   string         `json:"product_id"`
	Description string         `json:"description,omitempty"`
	Quantity    money.Quantity `json:"quantity"`
	UnitPrice   money.Money    `json:"unit_price"`
	TotalPrice  money.Money    `json:"total_price"`
}

type SalePaymentResponse struct {
	Method   string       `json:"method"`
	Amount   money.Money  `json:"amount"`
	Received *money.Money `json:"received,omitempty"`
}

type SaleResponse struct {
	ID            string                `json:"id"`
	Number        int64                 `json:"number"`
	CashSessionID string                `json:"cash_session_id"`
	UserID        string                `json:"user_id"`
	CustomerID    *string               `json:"customer_id"`
	SaleDate      time.Time             `json:"sale_date"`
	TotalAmount   money.Money           `json:"total_amount"`
	ChangeAmount  money.Money           `json:"change_amount"`
	CreditAmount  money.Money           `json:"credit_amount"`
	CreditPaid    money.Money           `json:"credit_paid"`
	TrainingMode  bool                  `json:"training_mode"`
	Items         []SaleItemResponse    `json:"items"`
	Payments      []SalePaymentResponse `json:"payments"`
}
