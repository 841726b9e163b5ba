package cart

import (
	"context"

	"github.com/fekuna/omnipos-storefront/internal/model"
)

type Repository interface {
	CreateCart(ctx context.Context, cart *model.Cart) error
	FindCartByID(ctx context.Context, id string) (*model.Cart, error)
	FindCartByUser(ctx context.Context, userID string) (*model.Cart, error)
	DeleteCart(ctx context.Context, id string) error

	FindLines(ctx context.Context, cartID string) ([]model.Line, error)
	FindLine(ctx context.Context, cartID, productID string) (*model.Line, error)
	CreateLine(ctx context.Context, line *model.Line) error
	DeleteLine(ctx context.Context, id string) error
	UpdateLineQuantity(ctx context.Context, id string, quantity int) error

	// MoveLines reattaches every line of one cart to another.
	MoveLines(ctx context.Context, fromCartID, toCartID string) error
	DeleteLinesByProducts(ctx context.Context, cartID string, productIDs []string) error

	ClearPriceChanged(ctx context.Context, cartID string) error
	// MarkPriceChanged flags every cart line of a product in one statement.
	MarkPriceChanged(ctx context.Context, productID string) (int64, error)
}
