package dto

import "github.com/Jottaaa12/pdv-web-admin/internal/money"

type ProductRequest struct {
	Description        string         `json:"description"          validate:"required,min=1,max=200"`
	Barcode            *string        `json:"barcode"              validate:"omitempty,max=50"`
	Price              money.Money    `json:"price"                validate:"min=0,lte=10000000000000"`
	SaleType           string         `json:"sale_type"            validate:"required,oneof=unit weight"`
	Stock              money.Quantity `json:"stock"`
	AllowNegativeStock bool           `json:"allow_negative_stock"`
	GroupID            *string        `json:"group_id"             validate:"omitempty,uuid"`
	Active             *bool          `json:"active"`
}

type ProductResponse struct {
	ID                 string         `json:"id"`
	Description        string         `json:"description"`
	Barcode            *string        `json:"barcode"`
	Price              money.Money    `json:"price"`
	SaleType           string         `json:"sale_type"`
	Stock              money.Quantity `json:"stock"`
	AllowNegativeStock bool           `json:"allow_negative_stock"`
	GroupID            *string        `json:"group_id"`
	GroupName          *string        `json:"group_name"`
	Active             bool           `json:"active"`
}

type ProductGroupRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=100"`
	Active *bool  `json:"active"`
}

type ProductGroupResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type PaymentMethodRequest struct {
	Name string `json:"name" validate:"required,min=1,max=40"`
}

type PaymentMethodResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}
