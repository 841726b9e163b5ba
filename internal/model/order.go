package model

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderInProcess OrderStatus = "P"
	OrderAccepted  OrderStatus = "A"
	OrderSent      OrderStatus = "S"
	OrderClosed    OrderStatus = "C"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderInProcess, OrderAccepted, OrderSent, OrderClosed:
		return true
	}
	return false
}

func (s OrderStatus) Label() string {
	switch s {
	case OrderInProcess:
		return "In process"
	case OrderAccepted:
		return "Accepted"
	case OrderSent:
		return "Sent"
	case OrderClosed:
		return "Closed"
	}
	return string(s)
}

// Order keeps its own copy of customer data so later profile edits
// do not rewrite history.
type Order struct {
	BaseModel
	UserID   *string         `db:"user_id" json:"user_id"`
	Email    string          `db:"email" json:"email"`
	FullName string          `db:"full_name" json:"full_name"`
	Address  string          `db:"address" json:"address"`
	Total    decimal.Decimal `db:"total" json:"total"`
	Status   OrderStatus     `db:"status" json:"status"`

	Lines []Line `db:"-" json:"lines,omitempty"`
}
