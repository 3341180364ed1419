package model

import (
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/money"

	"github.com/google/uuid"
)

const (
	SaleTypeUnit   = "unit"
	SaleTypeWeight = "weight"
)

// Product is a sellable catalog entry. Stock is decremented directly by sales;
// it is not part of the InventoryItem ledger.
type Product struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Description string      `gorm:"index;not null"`
	Barcode     *string     `gorm:"uniqueIndex:uq_products_barcode"`
	Price       money.Money `gorm:"not null"`
	// SaleType: "unit" | "weight"
	SaleType           string         `gorm:"type:varchar(10);not null;default:'unit'"`
	Stock              money.Quantity `gorm:"not null;default:0"`
	AllowNegativeStock bool           `gorm:"not null;default:false"`
	GroupID            *uuid.UUID     `gorm:"type:uuid;index"`
	Active             bool           `gorm:"not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Group *ProductGroup `gorm:"foreignKey:GroupID"`
}
