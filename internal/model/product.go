package model

import "github.com/shopspring/decimal"

// Purchasable is what the cart and order engines need from a catalog item.
type Purchasable interface {
	GetID() string
	GetPrice() decimal.Decimal
	FinalPrice() decimal.Decimal
	GetStock() int
	InStock() bool
}

type Product struct {
	BaseModel
	CategoryID  string          `db:"category_id" json:"category_id"`
	Title       string          `db:"title" json:"title"`
	Slug        string          `db:"slug" json:"slug"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Discount    int             `db:"discount" json:"discount"`
	Stock       int             `db:"stock" json:"stock"`
	Image       *string         `db:"image" json:"image"`

	Attributes []AttributeValue `db:"-" json:"attributes,omitempty"`
	Category   *Category        `db:"-" json:"category,omitempty"`
}

type Attribute struct {
	ID    string `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
}

type AttributeValue struct {
	ID          string `db:"id" json:"id"`
	ProductID   string `db:"product_id" json:"-"`
	AttributeID string `db:"attribute_id" json:"attribute_id"`
	Attribute   string `db:"attribute" json:"attribute"`
	Value       string `db:"value" json:"value"`
}

var hundred = decimal.NewFromInt(100)

func (p *Product) GetID() string             { return p.ID }
func (p *Product) GetPrice() decimal.Decimal { return p.Price }
func (p *Product) GetStock() int             { return p.Stock }
func (p *Product) InStock() bool             { return p.Stock > 0 }

// FinalPrice applies the percentage discount, price - price*discount/100,
// rounded to cents so line totals and order totals add up exactly.
func (p *Product) FinalPrice() decimal.Decimal {
	return p.Price.Sub(p.Price.Mul(decimal.NewFromInt(int64(p.Discount))).Div(hundred)).Round(2)
}

// PriceDiffers reports whether an edit touched price or discount.
func (p *Product) PriceDiffers(other *Product) bool {
	return !p.Price.Equal(other.Price) || p.Discount != other.Discount
}
