package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/category"
	"github.com/fekuna/omnipos-storefront/internal/event"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/pkg/cache"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/search"
	"github.com/fekuna/omnipos-storefront/internal/pkg/slug"
	"github.com/fekuna/omnipos-storefront/internal/pkg/storage"
	"github.com/fekuna/omnipos-storefront/internal/product"
	"github.com/fekuna/omnipos-storefront/internal/product/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	indexName    = "storefront-products"
	listCacheTTL = 5 * time.Minute
)

var minPrice = decimal.RequireFromString("0.01")

type productUseCase struct {
	repo      product.Repository
	category  category.UseCase
	txm       postgres.TxManager
	publisher event.Publisher
	cache     *cache.RedisClient
	es        *search.Client
	uploader  storage.Uploader
	pageSize  int
	logger    logger.ZapLogger
}

func NewProductUseCase(
	repo product.Repository,
	categoryUC category.UseCase,
	txm postgres.TxManager,
	publisher event.Publisher,
	cache *cache.RedisClient,
	es *search.Client,
	uploader storage.Uploader,
	pageSize int,
	log logger.ZapLogger,
) product.UseCase {
	return &productUseCase{
		repo:      repo,
		category:  categoryUC,
		txm:       txm,
		publisher: publisher,
		cache:     cache,
		es:        es,
		uploader:  uploader,
		pageSize:  pageSize,
		logger:    log,
	}
}

func (uc *productUseCase) PageSize() int { return uc.pageSize }

func validate(p *model.Product) error {
	if p.Price.LessThan(minPrice) {
		return product.ErrInvalidPrice
	}
	if p.Discount < 0 || p.Discount > 99 {
		return product.ErrInvalidDiscount
	}
	if p.Stock < 0 {
		return product.ErrInvalidStock
	}
	return nil
}

func (uc *productUseCase) resolveCategory(ctx context.Context, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	def, err := uc.category.DefaultCategory(ctx)
	if err != nil {
		return "", err
	}
	return def.ID, nil
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	now := time.Now()
	p := &model.Product{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Discount:    input.Discount,
		Stock:       input.Stock,
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	err := uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		categoryID, err := uc.resolveCategory(ctx, input.CategoryID)
		if err != nil {
			return err
		}
		p.CategoryID = categoryID

		p.Slug, err = slug.Unique(ctx, p.Title, uc.repo.SlugExists)
		if err != nil {
			return err
		}

		if err := uc.repo.Create(ctx, p); err != nil {
			return err
		}

		for title, value := range input.Attributes {
			if err := uc.repo.SetAttribute(ctx, p.ID, title, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Product created", zap.String("product_id", p.ID), zap.String("slug", p.Slug))
	uc.invalidateProductCache(ctx)
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

func (uc *productUseCase) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	p, err := uc.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, product.ErrProductNotFound
	}

	p.Attributes, err = uc.repo.ListAttributes(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

type cachedList struct {
	Products []model.Product
	Count    int
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = uc.pageSize
	}

	cacheKey, err := generateCacheKey(filters)
	if err == nil && uc.cache != nil {
		val, err := uc.cache.Client.Get(ctx, cacheKey).Result()
		if err == nil {
			var result cachedList
			if err := json.Unmarshal([]byte(val), &result); err == nil {
				return result.Products, result.Count, nil
			}
		}
	}

	if filters.SearchQuery != "" && uc.es != nil {
		products, count, err := uc.searchElastic(ctx, filters)
		if err == nil {
			return products, count, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if cacheKey != "" && uc.cache != nil {
		if data, err := json.Marshal(cachedList{Products: products, Count: count}); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, listCacheTTL)
		}
	}

	return products, count, nil
}

func (uc *productUseCase) searchElastic(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	must := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":     filters.SearchQuery,
				"fields":    []string{"title^3", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	if len(filters.CategoryIDs) > 0 {
		must = append(must, map[string]interface{}{
			"terms": map[string]interface{}{"category_id": filters.CategoryIDs},
		})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{"bool": map[string]interface{}{"must": must}},
		"from":  (filters.Page - 1) * filters.PageSize,
		"size":  filters.PageSize,
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, 0, err
	}

	products := make([]model.Product, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var p model.Product
		if err := json.Unmarshal(hit.Source, &p); err == nil {
			products = append(products, p)
		}
	}
	return products, res.Hits.Total.Value, nil
}

func (uc *productUseCase) ListCategoryProducts(ctx context.Context, categorySlug string, page int) (*model.Category, []model.Product, int, error) {
	cat, err := uc.category.GetCategoryBySlug(ctx, categorySlug)
	if err != nil {
		return nil, nil, 0, err
	}

	ids, err := uc.category.DescendantIDs(ctx, cat.ID)
	if err != nil {
		return nil, nil, 0, err
	}

	products, count, err := uc.ListProducts(ctx, &dto.ProductFilters{CategoryIDs: ids, Page: page})
	if err != nil {
		return nil, nil, 0, err
	}
	return cat, products, count, nil
}

// UpdateProduct saves an admin edit and publishes ProductEdited in the same
// transaction, so cart flags roll back together with the product row.
func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	var updated model.Product

	err := uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		old, err := uc.repo.FindByIDForUpdate(ctx, input.ID)
		if err != nil {
			return err
		}
		if old == nil {
			return product.ErrProductNotFound
		}

		updated = *old
		updated.Title = input.Title
		updated.Description = input.Description
		updated.Price = input.Price
		updated.Discount = input.Discount
		updated.Stock = input.Stock
		updated.UpdatedAt = time.Now()
		if err := validate(&updated); err != nil {
			return err
		}

		updated.CategoryID, err = uc.resolveCategory(ctx, input.CategoryID)
		if err != nil {
			return err
		}

		if err := uc.repo.Update(ctx, &updated); err != nil {
			return err
		}
		return uc.publisher.PublishProductSaved(ctx, old, &updated)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateProductCache(ctx)
	go uc.syncToElastic(context.Background(), &updated)

	return &updated, nil
}

func (uc *productUseCase) ApplyDiscount(ctx context.Context, input *dto.ApplyDiscountInput) (int, error) {
	if input.Discount < 0 || input.Discount > 99 {
		return 0, product.ErrInvalidDiscount
	}

	var changed []*model.Product
	err := uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		for _, id := range input.ProductIDs {
			old, err := uc.repo.FindByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if old == nil {
				continue
			}

			p := *old
			p.Discount = input.Discount
			p.UpdatedAt = time.Now()
			if err := uc.repo.Update(ctx, &p); err != nil {
				return err
			}
			if err := uc.publisher.PublishProductSaved(ctx, old, &p); err != nil {
				return err
			}
			changed = append(changed, &p)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	uc.invalidateProductCache(ctx)
	for _, p := range changed {
		go uc.syncToElastic(context.Background(), p)
	}

	uc.logger.Info("Discount applied", zap.Int("discount", input.Discount), zap.Int("products", len(changed)))
	return len(changed), nil
}

func (uc *productUseCase) UploadImage(ctx context.Context, id, filename, contentType string, body io.Reader) (*model.Product, error) {
	if uc.uploader == nil {
		return nil, product.ErrNoImageStorage
	}
	p, err := uc.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	location, err := uc.uploader.Upload(ctx, storage.ImageKey(filename), body, contentType)
	if err != nil {
		return nil, err
	}

	p.Image = &location
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	uc.invalidateProductCache(ctx)
	go uc.syncToElastic(context.Background(), p)
	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	uc.invalidateProductCache(ctx)
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), indexName, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Error(err))
			}
		}()
	}
	return nil
}

func generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%x", product.ListCacheKeyPrefix, md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateProductCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeletePattern(ctx, product.ListCacheKeyPrefix+"*"); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.Error(err))
	}
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"category_id": { "type": "keyword" },
				"title": { "type": "text" },
				"slug": { "type": "keyword" },
				"description": { "type": "text" },
				"price": { "type": "scaled_float", "scaling_factor": 100 },
				"discount": { "type": "integer" },
				"stock": { "type": "integer" },
				"created_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, indexName, mapping)

	if err := uc.es.Index(ctx, indexName, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}
