package order

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/order/dto"
)

const EventOrderPlaced = "OrderPlaced"

var (
	ErrEmptyCart         = errors.New("you can't place orders with empty cart")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidStatus     = errors.New("invalid order status")
)

// CartReader loads cart lines with their products.
type CartReader interface {
	Lines(ctx context.Context, cart *model.Cart) ([]model.Line, error)
}

type ProductFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
}

// StockKeeper debits stock for a sold line inside the caller's transaction.
type StockKeeper interface {
	RecordSale(ctx context.Context, productID string, quantity int, orderID string) error
}

type UseCase interface {
	// CreateDraft builds an unsaved order from checkout data.
	CreateDraft(data *dto.CustomerData) *model.Order
	// Materialize persists the draft, moves the cart lines onto it,
	// snapshots line prices and debits stock in one transaction.
	Materialize(ctx context.Context, draft *model.Order, cart *model.Cart) (*model.Order, error)
	History(ctx context.Context, userID string, page int) ([]model.Order, int, error)
	HistoryPageSize() int
	Get(ctx context.Context, id string) (*model.Order, error)
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error)
}
