package product

import (
	"context"
	"errors"
	"io"

	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/product/dto"
)

// ListCacheKeyPrefix prefixes every cached catalog page.
const ListCacheKeyPrefix = "products:list:"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("price must be at least 0.01")
	ErrInvalidDiscount = errors.New("discount must be between 0 and 99")
	ErrInvalidStock    = errors.New("stock must not be negative")
	ErrNoImageStorage  = errors.New("image storage is not configured")
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	ListCategoryProducts(ctx context.Context, categorySlug string, page int) (*model.Category, []model.Product, int, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	ApplyDiscount(ctx context.Context, input *dto.ApplyDiscountInput) (int, error)
	UploadImage(ctx context.Context, id, filename, contentType string, body io.Reader) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	PageSize() int
}
