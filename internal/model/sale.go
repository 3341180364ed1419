package model

import (
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/money"

	"github.com/google/uuid"
)

// Built-in tender methods; any other method must exist in payment_methods.
const (
	TenderCash   = "cash"
	TenderCredit = "credit"
)

// Sale is created atomically with its items and payments. After creation only
// CreditPaid changes, as credit payments are allocated against it.
type Sale struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number        int64       `gorm:"not null;index"`
	CashSessionID uuid.UUID   `gorm:"type:uuid;not null;index"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null"`
	CustomerID    *uuid.UUID  `gorm:"type:uuid;index"`
	SaleDate      time.Time   `gorm:"not null;index"`
	TotalAmount   money.Money `gorm:"not null"`
	ChangeAmount  money.Money `gorm:"not null;default:0"`
	// CreditAmount is the credit-tendered portion; CreditPaid <= CreditAmount.
	CreditAmount money.Money `gorm:"not null;default:0"`
	CreditPaid   money.Money `gorm:"not null;default:0"`
	TrainingMode bool        `gorm:"not null;default:false"`
	// ClientRef is the caller's idempotency key for retried submissions.
	ClientRef *string `gorm:"uniqueIndex:uq_sales_client_ref"`
	CreatedAt time.Time

	Items    []SaleItem    `gorm:"foreignKey:SaleID"`
	Payments []SalePayment `gorm:"foreignKey:SaleID"`
	Customer *Customer     `gorm:"foreignKey:CustomerID"`
}

// CreditOutstanding is the unpaid part of the credit portion.
func (s *Sale) CreditOutstanding() money.Money { return s.CreditAmount - s.CreditPaid }

// SaleItem snapshots the unit price at sale time.
type SaleItem struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID      `gorm:"type:uuid;not null"`
	Quantity   money.Quantity `gorm:"not null"`
	UnitPrice  money.Money    `gorm:"not null"`
	TotalPrice money.Money    `gorm:"not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// SalePayment is one tender line. Received is the cash handed over, if any.
type SalePayment struct {
	ID       uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	Method   string      `gorm:"type:varchar(40);not null"`
	Amount   money.Money `gorm:"not null"`
	Received *money.Money
}
