package category

import (
	"context"

	"github.com/fekuna/omnipos-storefront/internal/category/dto"
	"github.com/fekuna/omnipos-storefront/internal/model"
)

type Repository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	FindByTitle(ctx context.Context, title string) (*model.Category, error)
	FindAll(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	SlugExists(ctx context.Context, slug string) (bool, error)

	// DescendantIDs returns id and the ids of every category below it.
	DescendantIDs(ctx context.Context, id string) ([]string, error)
	ReassignProducts(ctx context.Context, fromIDs []string, toID string) (int64, error)
	Delete(ctx context.Context, id string) error
}
