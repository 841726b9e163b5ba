package reminder

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-storefront/internal/model"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInStock    = errors.New("product is in stock")
	ErrAlreadySubscribed = errors.New("reminder already exists")
)

type ProductFinder interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
}

type UseCase interface {
	// AddReminder subscribes email to a product that is out of stock.
	AddReminder(ctx context.Context, productID, email string) (*model.Reminder, error)
	Pending(ctx context.Context, productID string) ([]model.Reminder, error)
	Consume(ctx context.Context, reminders []model.Reminder) error
}
