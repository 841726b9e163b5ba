package dto

import (
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/shopspring/decimal"
)

// Review is what the buyer confirms on the second checkout step.
type Review struct {
	Order *model.Order    `json:"order"`
	Lines []model.Line    `json:"lines"`
	Total decimal.Decimal `json:"total"`
}
