package model

import (
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/money"

	"github.com/google/uuid"
)

const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// Cash movement types. SaleCashIn is posted only by sales.
const (
	MovementSupply     = "supply"
	MovementWithdrawal = "withdrawal"
	MovementSaleCashIn = "sale_cash_in"
)

// CashSession represents the lifecycle of a till session.
// Status: "open" | "closed". Closing freezes the amounts below.
type CashSession struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;index"`
	InitialAmount money.Money `gorm:"not null"`
	// ExpectedAmount is computed on close: initial + supply - withdrawal + sale cash
	ExpectedAmount *money.Money
	FinalAmount    *money.Money
	Difference     *money.Money
	// DeviationLevel: "normal" | "warning" | "critical"
	DeviationLevel *string `gorm:"type:varchar(20)"`
	Status         string  `gorm:"type:varchar(20);not null;default:'open'"`
	Notes          *string
	OpenTime       time.Time `gorm:"not null"`
	CloseTime      *time.Time

	Movements []CashMovement `gorm:"foreignKey:CashSessionID"`
}

func (s *CashSession) IsOpen() bool { return s.Status == SessionOpen }

// CashMovement is an immutable event in the till ledger.
// Amount is always positive; Type carries the sign.
type CashMovement struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashSessionID uuid.UUID   `gorm:"type:uuid;index;not null"`
	Type          string      `gorm:"type:varchar(20);not null"`
	Amount        money.Money `gorm:"not null"`
	Reason        *string
	SaleID        *uuid.UUID `gorm:"type:uuid"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
}

// Signed returns the movement's effect on the expected drawer amount.
func (m CashMovement) Signed() money.Money {
	if m.Type == MovementWithdrawal {
		return m.Amount.Neg()
	}
	return m.Amount
}
