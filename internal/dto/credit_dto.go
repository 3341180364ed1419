package dto

import (
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/money"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ApplyCreditPaymentRequest struct {
	CustomerID    string      `json:"customer_id"    validate:"required,uuid"`
	Amount        money.Money `json:"amount"         validate:"gt=0,lte=10000000000000"`
	PaymentMethod string      `json:"payment_method" validate:"required,max=40"`
}

type CustomerRequest struct {
	Name        string      `json:"name"         validate:"required,min=1,max=150"`
	Phone       *string     `json:"phone"        validate:"omitempty,max=30"`
	CPF         *string     `json:"cpf"          validate:"omitempty,len=11,numeric"`
	CreditLimit money.Money `json:"credit_limit" validate:"min=0,lte=10000000000000"`
}

type BlockCustomerRequest struct {
	Blocked bool `json:"blocked"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CustomerResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Phone       *string     `json:"phone"`
	CPF         *string     `json:"cpf"`
	CreditLimit money.Money `json:"credit_limit"`
	IsBlocked   bool        `json:"is_blocked"`
}

type BalanceResponse struct {
	CustomerID  string      `json:"customer_id"`
	Balance     money.Money `json:"balance"`
	CreditLimit money.Money `json:"credit_limit"`
	Available   money.Money `json:"available"`
}

type CreditAllocationResponse struct {
	SaleID string      `json:"sale_id"`
	Amount money.Money `json:"amount"`
}

type CreditPaymentResponse struct {
	ID            string                     `json:"id"`
	CustomerID    string                     `json:"customer_id"`
	Amount        money.Money                `json:"amount"`
	PaymentMethod string                     `json:"payment_method"`
	Allocations   []CreditAllocationResponse `json:"allocations"`
	BalanceAfter  money.Money                `json:"balance_after"`
	CreatedAt     time.Time                  `json:"created_at"`
}

type DebtorResponse struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Phone   *string     `json:"phone"`
	Balance money.Money `json:"balance"`
}
