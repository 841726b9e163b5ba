package usecase

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-storefront/internal/category"
	catdto "github.com/fekuna/omnipos-storefront/internal/category/dto"
	"github.com/fekuna/omnipos-storefront/internal/event"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/pkg/cache"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/product"
	"github.com/fekuna/omnipos-storefront/internal/product/dto"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*model.Product
	attrs    map[string][]model.AttributeValue
	findAll  int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*model.Product{}, attrs: map[string][]model.AttributeValue{}}
}

func (f *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) FindByID(_ context.Context, id string) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeProductRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.Product, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeProductRepo) FindBySlug(_ context.Context, slug string) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, _ := f.FindByID(ctx, id); p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) FindAll(_ context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findAll++
	var out []model.Product
	for _, p := range f.products {
		if filters.SearchQuery != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(filters.SearchQuery)) {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	p, _ := f.FindBySlug(ctx, slug)
	return p != nil, nil
}

func (f *fakeProductRepo) ListAttributes(_ context.Context, productID string) ([]model.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attrs[productID], nil
}

func (f *fakeProductRepo) SetAttribute(_ context.Context, productID, title, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attrs[productID] = append(f.attrs[productID], model.AttributeValue{ProductID: productID, Attribute: title, Value: value})
	return nil
}

type fakeCategoryUC struct {
	def *model.Category
}

func (f *fakeCategoryUC) CreateCategory(context.Context, *catdto.CreateCategoryInput) (*model.Category, error) {
	return nil, nil
}

func (f *fakeCategoryUC) GetCategoryBySlug(_ context.Context, slug string) (*model.Category, error) {
	if slug == f.def.Slug {
		return f.def, nil
	}
	return nil, category.ErrCategoryNotFound
}

func (f *fakeCategoryUC) ListCategories(context.Context) ([]model.Category, error) { return nil, nil }

func (f *fakeCategoryUC) DefaultCategory(context.Context) (*model.Category, error) { return f.def, nil }

func (f *fakeCategoryUC) DescendantIDs(_ context.Context, id string) ([]string, error) {
	return []string{id}, nil
}

func (f *fakeCategoryUC) DeleteCategory(context.Context, string) error { return nil }

type fakeUploader struct {
	key string
}

func (f *fakeUploader) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	f.key = key
	_, _ = io.ReadAll(body)
	return "https://cdn.example.com/" + key, nil
}

type fixture struct {
	uc       product.UseCase
	repo     *fakeProductRepo
	bus      *event.Bus
	uploader *fakeUploader
	mr       *miniredis.Miniredis
	edited   []event.ProductEdited
	restock  []event.StockReplenished
}

func setup(t *testing.T) *fixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	f := &fixture{repo: newFakeProductRepo(), bus: event.NewBus(), uploader: &fakeUploader{}, mr: mr}
	f.bus.OnProductEdited(func(_ context.Context, e event.ProductEdited) error {
		f.edited = append(f.edited, e)
		return nil
	})
	f.bus.OnStockReplenished(func(_ context.Context, e event.StockReplenished) error {
		f.restock = append(f.restock, e)
		return nil
	})

	catUC := &fakeCategoryUC{def: &model.Category{BaseModel: model.BaseModel{ID: "cat-unassigned"}, Title: model.UnassignedCategory, Slug: "unassigned"}}
	f.uc = NewProductUseCase(f.repo, catUC, postgres.NoopTxManager{}, f.bus,
		&cache.RedisClient{Client: client}, nil, f.uploader, 6, logger.NewNopLogger())
	return f
}

func createInput(title string, stock int) *dto.CreateProductInput {
	return &dto.CreateProductInput{Title: title, Price: decimal.NewFromInt(10), Stock: stock}
}

func TestCreateProductSlugCollisions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var slugs []string
	for i := 0; i < 3; i++ {
		p, err := f.uc.CreateProduct(ctx, createInput("Socks", 1))
		require.NoError(t, err)
		slugs = append(slugs, p.Slug)
	}
	assert.Equal(t, []string{"socks", "socks-1", "socks-2"}, slugs)
}

func TestCreateProductDefaultsCategoryAndAttributes(t *testing.T) {
	f := setup(t)
	in := createInput("Filament", 3)
	in.Attributes = map[string]string{"Color": "Red"}

	p, err := f.uc.CreateProduct(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "cat-unassigned", p.CategoryID)

	got, err := f.uc.GetProductBySlug(context.Background(), "filament")
	require.NoError(t, err)
	require.Len(t, got.Attributes, 1)
	assert.Equal(t, "Red", got.Attributes[0].Value)
}

func TestCreateProductValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	in := createInput("Cheap", 1)
	in.Price = decimal.Zero
	_, err := f.uc.CreateProduct(ctx, in)
	assert.ErrorIs(t, err, product.ErrInvalidPrice)

	in = createInput("Too much off", 1)
	in.Discount = 100
	_, err = f.uc.CreateProduct(ctx, in)
	assert.ErrorIs(t, err, product.ErrInvalidDiscount)

	_, err = f.uc.CreateProduct(ctx, createInput("Negative", -1))
	assert.ErrorIs(t, err, product.ErrInvalidStock)
}

func TestUpdateProductKeepsSlugAndPublishes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p, err := f.uc.CreateProduct(ctx, createInput("Socks", 0))
	require.NoError(t, err)

	updated, err := f.uc.UpdateProduct(ctx, &dto.UpdateProductInput{
		ID: p.ID, Title: "Warm socks", Price: p.Price, Discount: 10, Stock: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "socks", updated.Slug)
	assert.Equal(t, "Warm socks", updated.Title)

	require.Len(t, f.edited, 1)
	assert.Equal(t, 0, f.edited[0].Old.Discount)
	assert.Equal(t, 10, f.edited[0].New.Discount)
	require.Len(t, f.restock, 1)
	assert.Equal(t, 5, f.restock[0].Product.Stock)
}

func TestUpdateProductMissing(t *testing.T) {
	f := setup(t)
	_, err := f.uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{ID: "nope", Title: "x", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.Empty(t, f.edited)
}

func TestApplyDiscount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, err := f.uc.CreateProduct(ctx, createInput("A", 1))
	require.NoError(t, err)
	b, err := f.uc.CreateProduct(ctx, createInput("B", 1))
	require.NoError(t, err)

	n, err := f.uc.ApplyDiscount(ctx, &dto.ApplyDiscountInput{ProductIDs: []string{a.ID, b.ID, "missing"}, Discount: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, f.edited, 2)

	got, err := f.uc.GetProduct(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Discount)
}

func TestListProductsCachesAndInvalidates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.uc.CreateProduct(ctx, createInput("Socks", 1))
	require.NoError(t, err)

	items, count, err := f.uc.ListProducts(ctx, &dto.ProductFilters{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, items, 1)

	_, _, err = f.uc.ListProducts(ctx, &dto.ProductFilters{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.findAll, "second call should be served from cache")

	_, err = f.uc.CreateProduct(ctx, createInput("Hat", 1))
	require.NoError(t, err)

	_, count, err = f.uc.ListProducts(ctx, &dto.ProductFilters{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, f.repo.findAll)
}

func TestListCategoryProducts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.uc.CreateProduct(ctx, createInput("Socks", 1))
	require.NoError(t, err)

	cat, items, count, err := f.uc.ListCategoryProducts(ctx, "unassigned", 1)
	require.NoError(t, err)
	assert.Equal(t, model.UnassignedCategory, cat.Title)
	assert.Equal(t, 1, count)
	assert.Len(t, items, 1)

	_, _, _, err = f.uc.ListCategoryProducts(ctx, "missing", 1)
	assert.ErrorIs(t, err, category.ErrCategoryNotFound)
}

func TestUploadImage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p, err := f.uc.CreateProduct(ctx, createInput("Socks", 1))
	require.NoError(t, err)

	got, err := f.uc.UploadImage(ctx, p.ID, "photo.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	require.NotNil(t, got.Image)
	assert.Equal(t, "https://cdn.example.com/"+f.uploader.key, *got.Image)
	assert.True(t, strings.HasSuffix(f.uploader.key, ".png"))
}

func TestDeleteProduct(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p, err := f.uc.CreateProduct(ctx, createInput("Socks", 1))
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteProduct(ctx, p.ID))
	_, err = f.uc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.NoError(t, f.uc.DeleteProduct(ctx, p.ID))
}
