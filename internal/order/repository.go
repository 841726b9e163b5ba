package order

import (
	"context"

	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindByUser(ctx context.Context, userID string, page, pageSize int) ([]model.Order, int, error)
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error

	// AttachCartLines moves every line of the cart onto the order and
	// returns the moved lines.
	AttachCartLines(ctx context.Context, cartID, orderID string) ([]model.Line, error)
	SetLineFinalPrice(ctx context.Context, lineID string, price decimal.Decimal) error
	FindLines(ctx context.Context, orderIDs []string) ([]model.Line, error)
}
