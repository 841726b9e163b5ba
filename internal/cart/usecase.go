package cart

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-storefront/internal/cart/dto"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/session"
	"github.com/shopspring/decimal"
)

var (
	ErrAlreadyInCart      = errors.New("product already in cart")
	ErrNotInCart          = errors.New("product not in cart")
	ErrProductUnavailable = errors.New("product not in stock")
	ErrInsufficientStock  = errors.New("not enough products in stock")
	ErrProductNotFound    = errors.New("product not found")
)

// ProductFinder is the part of the catalog the cart reads from.
type ProductFinder interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
}

type UseCase interface {
	// ResolveCart returns the cart of the authenticated user in ctx, or the
	// session cart for anonymous visitors. Missing carts are created.
	ResolveCart(ctx context.Context, sess *session.Session) (*model.Cart, error)
	AddProduct(ctx context.Context, cart *model.Cart, productID string) error
	RemoveProduct(ctx context.Context, cart *model.Cart, productID string) error
	ChangeQuantity(ctx context.Context, cart *model.Cart, productID string, quantity int) error
	AcknowledgePriceChange(ctx context.Context, cart *model.Cart) error

	// Lines returns the cart lines with their products loaded.
	Lines(ctx context.Context, cart *model.Cart) ([]model.Line, error)
	TotalPrice(ctx context.Context, cart *model.Cart) (decimal.Decimal, error)
	AnyPriceChanged(ctx context.Context, cart *model.Cart) (bool, error)
	Detail(ctx context.Context, cart *model.Cart) (*dto.CartDetail, error)

	// MergeOnLogin folds the anonymous session cart into the user's cart and
	// drops cart_id from the session.
	MergeOnLogin(ctx context.Context, userID string, sess *session.Session) (*model.Cart, error)
	FlagPriceChange(ctx context.Context, productID string) (int64, error)
}

// TotalOf sums quantity times live final price over lines with products loaded.
func TotalOf(lines []model.Line) decimal.Decimal {
	total := decimal.Zero
	for i := range lines {
		total = total.Add(lines[i].Total())
	}
	return total
}

func AnyChanged(lines []model.Line) bool {
	for _, l := range lines {
		if l.PriceChanged {
			return true
		}
	}
	return false
}
