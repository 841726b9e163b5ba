package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	CategoryID  string            `json:"category_id" validate:"omitempty,uuid"`
	Title       string            `json:"title" validate:"required,max=255"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	Discount    int               `json:"discount" validate:"gte=0,lte=99"`
	Stock       int               `json:"stock" validate:"gte=0"`
	Attributes  map[string]string `json:"attributes"`
}

type UpdateProductInput struct {
	ID          string          `json:"-"`
	CategoryID  string          `json:"category_id" validate:"omitempty,uuid"`
	Title       string          `json:"title" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Discount    int             `json:"discount" validate:"gte=0,lte=99"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

// ApplyDiscountInput is the bulk "add discount" admin action.
type ApplyDiscountInput struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=1,dive,uuid"`
	Discount   int      `json:"discount" validate:"gte=0,lte=99"`
}
