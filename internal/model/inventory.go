package model

import (
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/money"

	"github.com/google/uuid"
)

const (
	InventoryIn  = "in"
	InventoryOut = "out"
)

// InventoryGroup classifies stock-room items.
type InventoryGroup struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex:uq_inventory_groups_name;not null"`
	CreatedAt time.Time
}

// InventoryItem is a stock-room item. CurrentQuantity always equals the signed
// sum of its movements.
type InventoryItem struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string         `gorm:"not null"`
	Code            string         `gorm:"uniqueIndex:uq_inventory_items_code;not null"`
	GroupID         *uuid.UUID     `gorm:"type:uuid;index"`
	CurrentQuantity money.Quantity `gorm:"not null;default:0"`
	MinimumQuantity money.Quantity `gorm:"not null;default:0"`
	UnitOfMeasure   string         `gorm:"not null;default:'un'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Group *InventoryGroup `gorm:"foreignKey:GroupID"`
}

func (i *InventoryItem) BelowMinimum() bool { return i.CurrentQuantity < i.MinimumQuantity }

// InventoryMovement records every change to an item's quantity.
// Quantity is always positive; Type ("in" | "out") carries the sign.
type InventoryMovement struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ItemID         uuid.UUID      `gorm:"type:uuid;not null;index"`
	Type           string         `gorm:"type:varchar(3);not null"`
	Quantity       money.Quantity `gorm:"not null"`
	QuantityBefore money.Quantity `gorm:"not null"`
	QuantityAfter  money.Quantity `gorm:"not null"`
	Reason         *string
	PerformedBy    uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt      time.Time `gorm:"index"`

	Item *InventoryItem `gorm:"foreignKey:ItemID"`
}

// Signed returns the movement's effect on CurrentQuantity.
func (m InventoryMovement) Signed() money.Quantity {
	if m.Type == InventoryOut {
		return -m.Quantity
	}
	return m.Quantity
}
