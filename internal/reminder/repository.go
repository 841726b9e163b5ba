package reminder

import (
	"context"

	"github.com/fekuna/omnipos-storefront/internal/model"
)

type Repository interface {
	Create(ctx context.Context, r *model.Reminder) error
	Exists(ctx context.Context, productID, email string) (bool, error)
	FindByProduct(ctx context.Context, productID string) ([]model.Reminder, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}
