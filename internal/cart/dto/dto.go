package dto

import (
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/shopspring/decimal"
)

type ProductInput struct {
	ID string `json:"id_" validate:"required,uuid"`
}

type QuantityInput struct {
	ID       string `json:"id_" validate:"required,uuid"`
	Quantity *int   `json:"quantity" validate:"required,min=0"`
}

type PriceChangedInput struct {
	Confirm bool `json:"confirm" validate:"required"`
}

type CartDetail struct {
	ID           string          `json:"id"`
	Lines        []model.Line    `json:"lines"`
	Total        decimal.Decimal `json:"total"`
	PriceChanged bool            `json:"price_changed"`
}
