package category

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-storefront/internal/category/dto"
	"github.com/fekuna/omnipos-storefront/internal/model"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrTitleTaken       = errors.New("category title already exists")
	ErrDefaultCategory  = errors.New("the default category cannot be deleted")
)

type UseCase interface {
	CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	DefaultCategory(ctx context.Context) (*model.Category, error)
	DescendantIDs(ctx context.Context, id string) ([]string, error)
	DeleteCategory(ctx context.Context, id string) error
}
