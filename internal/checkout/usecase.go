package checkout

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-storefront/internal/checkout/dto"
	"github.com/fekuna/omnipos-storefront/internal/model"
	orderdto "github.com/fekuna/omnipos-storefront/internal/order/dto"
	"github.com/fekuna/omnipos-storefront/internal/session"
)

var (
	ErrInvalidFormData      = errors.New("invalid form data")
	ErrMissingCheckoutDraft = errors.New("checkout draft missing from session")
)

// FormError carries the per-field messages of a rejected checkout form.
type FormError struct {
	Fields map[string][]string
}

func (e *FormError) Error() string { return ErrInvalidFormData.Error() }

func (e *FormError) Unwrap() error { return ErrInvalidFormData }

type CartReader interface {
	Lines(ctx context.Context, cart *model.Cart) ([]model.Line, error)
}

type OrderPlacer interface {
	CreateDraft(data *orderdto.CustomerData) *model.Order
	Materialize(ctx context.Context, draft *model.Order, cart *model.Cart) (*model.Order, error)
}

type ProfileReader interface {
	Detail(ctx context.Context, userID string) (*model.User, *model.Address, error)
}

type UseCase interface {
	// EnsureLines loads the cart lines and fails with order.ErrEmptyCart
	// when there are none.
	EnsureLines(ctx context.Context, cart *model.Cart) ([]model.Line, error)
	// Initial returns the form pre-filled from the logged-in user's profile.
	Initial(ctx context.Context) (*orderdto.CustomerData, error)
	SaveDraft(ctx context.Context, sess *session.Session, data *orderdto.CustomerData) error
	Draft(ctx context.Context, sess *session.Session) (*orderdto.CustomerData, error)
	Review(ctx context.Context, sess *session.Session, cart *model.Cart) (*dto.Review, error)
	// Confirm materializes the draft, schedules the order-placed mail and
	// clears the draft from the session.
	Confirm(ctx context.Context, sess *session.Session, cart *model.Cart) (*model.Order, error)
}
