package model

import (
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/money"

	"github.com/google/uuid"
)

// Customer may buy on credit up to CreditLimit unless blocked. The debt balance
// is derived from sales and never stored here.
type Customer struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string      `gorm:"not null;index"`
	Phone       *string
	CPF         *string     `gorm:"column:cpf;uniqueIndex:uq_customers_cpf"`
	CreditLimit money.Money `gorm:"not null;default:0"`
	IsBlocked   bool        `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreditPayment is a payment against a customer's tab, with the sales it settled.
type CreditPayment struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID    uuid.UUID   `gorm:"type:uuid;not null;index"`
	Amount        money.Money `gorm:"not null"`
	PaymentMethod string      `gorm:"type:varchar(40);not null"`
	UserID        *uuid.UUID  `gorm:"type:uuid"`
	CreatedAt     time.Time

	Allocations []CreditAllocation `gorm:"foreignKey:PaymentID"`
}

// CreditAllocation is the part of a payment applied to one sale.
type CreditAllocation struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PaymentID uuid.UUID   `gorm:"type:uuid;not null;index"`
	SaleID    uuid.UUID   `gorm:"type:uuid;not null;index"`
	Amount    money.Money `gorm:"not null"`
}
