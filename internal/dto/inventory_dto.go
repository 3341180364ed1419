package dto

import (
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/money"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AdjustInventoryRequest mirrors adjust_inventory_item. UserID defaults to the
// authenticated user.
type AdjustInventoryRequest struct {
	ItemID       string         `json:"item_id"       validate:"required,uuid"`
	UserID       *string        `json:"user_id"       validate:"omitempty,uuid"`
	MovementType string         `json:"movement_type" validate:"required,oneof=in out"`
	Quantity     money.Quantity `json:"quantity"      validate:"gt=0"`
	Reason       *string        `json:"reason"        validate:"omitempty,max=255"`
}

type InventoryItemRequest struct {
	Name            string         `json:"name"             validate:"required,min=1,max=150"`
	Code            string         `json:"code"             validate:"required,min=1,max=60"`
	GroupID         *string        `json:"group_id"         validate:"omitempty,uuid"`
	InitialQuantity money.Quantity `json:"initial_quantity" validate:"min=0"`
	MinimumQuantity money.Quantity `json:"minimum_quantity" validate:"min=0"`
	UnitOfMeasure   string         `json:"unit_of_measure"  validate:"omitempty,max=10"`
}

type InventoryGroupRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InventoryItemResponse struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Code            string         `json:"code"`
	GroupID         *string        `json:"group_id"`
	GroupName       *string        `json:"group_name"`
	CurrentQuantity money.Quantity `json:"current_quantity"`
	MinimumQuantity money.Quantity `json:"minimum_quantity"`
	UnitOfMeasure   string         `json:"unit_of_measure"`
	BelowMinimum    bool           `json:"below_minimum"`
}

type InventoryMovementResponse struct {
	ID             string         `json:"id"`
	ItemID         string         `json:"item_id"`
	ItemName       string         `json:"item_name,omitempty"`
	Type           string         `json:"type"`
	Quantity       money.Quantity `json:"quantity"`
	QuantityBefore money.Quantity `json:"quantity_before"`
	QuantityAfter  money.Quantity `json:"quantity_after"`
	Reason         *string        `json:"reason"`
	PerformedBy    string         `json:"performed_by"`
	CreatedAt      time.Time      `json:"created_at"`
}

type InventoryGroupResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
