package dto

type AdjustStockInput struct {
	ProductID      string `json:"-"`
	QuantityChange int    `json:"quantity_change" validate:"required"`
	Reason         string `json:"reason" validate:"max=255"`
	ReferenceType  string `json:"reference_type" validate:"max=32"`
	ReferenceID    string `json:"reference_id" validate:"max=64"`
}
