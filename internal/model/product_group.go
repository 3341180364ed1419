package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductGroup classifies catalog products.
type ProductGroup struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex:uq_product_groups_name;not null"`
	Active    bool      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentMethod is a tender accepted besides the built-in cash and credit.
type PaymentMethod struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex:uq_payment_methods_name;not null"`
	Active    bool      `gorm:"not null"`
	CreatedAt time.Time
}
