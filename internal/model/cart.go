package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	BaseModel
	UserID *string `db:"user_id" json:"user_id"`
}

// Line belongs to a cart while shopping and to an order once placed.
// FinalPrice stays nil until the order snapshot is taken.
type Line struct {
	ID           string              `db:"id" json:"id"`
	CartID       *string             `db:"cart_id" json:"cart_id"`
	OrderID      *string             `db:"order_id" json:"order_id"`
	ProductID    string              `db:"product_id" json:"product_id"`
	Quantity     int                 `db:"quantity" json:"quantity"`
	FinalPrice   decimal.NullDecimal `db:"final_price" json:"final_price"`
	PriceChanged bool                `db:"price_changed" json:"price_changed"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`

	Product *Product `db:"-" json:"product,omitempty"`
}

// Total is quantity times the live final price of the product.
func (l *Line) Total() decimal.Decimal {
	if l.Product == nil {
		return decimal.Zero
	}
	return l.Product.FinalPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}
