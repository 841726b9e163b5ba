package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-storefront/internal/event"
	"github.com/fekuna/omnipos-storefront/internal/inventory"
	"github.com/fekuna/omnipos-storefront/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/pkg/cache"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu        sync.Mutex
	stock     map[string]int
	movements []model.InventoryMovement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stock: map[string]int{}}
}

func (f *fakeRepo) LockProduct(_ context.Context, id string) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stock[id]
	if !ok {
		return nil, nil
	}
	return &model.Product{BaseModel: model.BaseModel{ID: id}, Title: "Mug", Stock: s}, nil
}

func (f *fakeRepo) SetStock(_ context.Context, id string, stock int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stock[id] = stock
	return nil
}

func (f *fakeRepo) DecrementStock(_ context.Context, id string, qty int) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stock[id] < qty {
		return 0, false, nil
	}
	f.stock[id] -= qty
	return f.stock[id], true, nil
}

func (f *fakeRepo) LogMovement(_ context.Context, m *model.InventoryMovement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movements = append(f.movements, *m)
	return nil
}

func (f *fakeRepo) ListMovements(_ context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	var out []model.InventoryMovement
	for _, m := range f.movements {
		if filters.ProductID == "" || m.ProductID == filters.ProductID {
			out = append(out, m)
		}
	}
	return out, len(out), nil
}

type fixture struct {
	repo        *fakeRepo
	uc          inventory.UseCase
	mr          *miniredis.Miniredis
	replenished int
}

func setup(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := &cache.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	f := &fixture{repo: newFakeRepo(), mr: mr}
	bus := event.NewBus()
	bus.OnStockReplenished(func(ctx context.Context, e event.StockReplenished) error {
		f.replenished++
		return nil
	})
	f.uc = NewInventoryUseCase(f.repo, postgres.NoopTxManager{}, bus, rc, logger.NewNopLogger())
	return f
}

func TestAdjustStockRestockFromZero(t *testing.T) {
	f := setup(t)
	f.repo.stock["p1"] = 0
	f.mr.Set("products:list:abc", "cached")

	m, err := f.uc.AdjustStock(context.Background(), &dto.AdjustStockInput{
		ProductID: "p1", QuantityChange: 5, Reason: "delivery", ReferenceID: "po-7",
	})
	require.NoError(t, err)

	assert.Equal(t, model.MovementRestock, m.MovementType)
	assert.Equal(t, 0, m.QuantityBefore)
	assert.Equal(t, 5, m.QuantityAfter)
	require.NotNil(t, m.ReferenceID)
	assert.Equal(t, "po-7", *m.ReferenceID)
	assert.Nil(t, m.ReferenceType)
	assert.Equal(t, 5, f.repo.stock["p1"])
	assert.Equal(t, 1, f.replenished)
	assert.False(t, f.mr.Exists("products:list:abc"))
	assert.False(t, f.mr.Exists("lock:inventory:p1"))
}

func TestAdjustStockPositiveToPositiveDoesNotReplenish(t *testing.T) {
	f := setup(t)
	f.repo.stock["p1"] = 5

	_, err := f.uc.AdjustStock(context.Background(), &dto.AdjustStockInput{ProductID: "p1", QuantityChange: 3})
	require.NoError(t, err)
	assert.Equal(t, 8, f.repo.stock["p1"])
	assert.Equal(t, 0, f.replenished)
}

func TestAdjustStockErrors(t *testing.T) {
	f := setup(t)
	f.repo.stock["p1"] = 2

	_, err := f.uc.AdjustStock(context.Background(), &dto.AdjustStockInput{ProductID: "p1", QuantityChange: -3})
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Equal(t, 2, f.repo.stock["p1"])

	_, err = f.uc.AdjustStock(context.Background(), &dto.AdjustStockInput{ProductID: "missing", QuantityChange: 1})
	assert.ErrorIs(t, err, inventory.ErrProductNotFound)

	_, err = f.uc.AdjustStock(context.Background(), &dto.AdjustStockInput{ProductID: "p1"})
	assert.ErrorIs(t, err, inventory.ErrZeroQuantityChange)
	assert.Empty(t, f.repo.movements)
}

func TestAdjustStockLockHeld(t *testing.T) {
	f := setup(t)
	f.repo.stock["p1"] = 1
	require.NoError(t, f.mr.Set("lock:inventory:p1", "someone-else"))
	f.mr.SetTTL("lock:inventory:p1", time.Minute)

	_, err := f.uc.AdjustStock(context.Background(), &dto.AdjustStockInput{ProductID: "p1", QuantityChange: 1})
	assert.ErrorIs(t, err, inventory.ErrLockNotAcquired)
	assert.Equal(t, 1, f.repo.stock["p1"])

	val, _ := f.mr.Get("lock:inventory:p1")
	assert.Equal(t, "someone-else", val)
}

func TestRecordSale(t *testing.T) {
	f := setup(t)
	f.repo.stock["p1"] = 4

	require.NoError(t, f.uc.RecordSale(context.Background(), "p1", 3, "order-1"))
	assert.Equal(t, 1, f.repo.stock["p1"])
	require.Len(t, f.repo.movements, 1)
	m := f.repo.movements[0]
	assert.Equal(t, model.MovementSale, m.MovementType)
	assert.Equal(t, -3, m.QuantityChange)
	assert.Equal(t, 4, m.QuantityBefore)
	assert.Equal(t, 1, m.QuantityAfter)
	assert.Equal(t, "order-1", *m.ReferenceID)

	err := f.uc.RecordSale(context.Background(), "p1", 2, "order-2")
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Equal(t, 1, f.repo.stock["p1"])
	assert.Equal(t, 0, f.replenished)
}

func TestRecordSaleClearsListCacheAfterCommit(t *testing.T) {
	f := setup(t)
	f.repo.stock["p1"] = 4
	ctx := context.Background()
	require.NoError(t, f.mr.Set("products:list:abc", "[]"))

	err := postgres.NoopTxManager{}.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, f.uc.RecordSale(ctx, "p1", 1, "order-1"))
		assert.True(t, f.mr.Exists("products:list:abc"), "cache survives until commit")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, f.mr.Exists("products:list:abc"))

	require.NoError(t, f.mr.Set("products:list:abc", "[]"))
	_ = postgres.NoopTxManager{}.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, f.uc.RecordSale(ctx, "p1", 1, "order-2"))
		return inventory.ErrInsufficientStock
	})
	assert.True(t, f.mr.Exists("products:list:abc"), "rolled back sales keep the cache")
}

func TestListMovementsDefaults(t *testing.T) {
	f := setup(t)
	f.repo.stock["p1"] = 4
	require.NoError(t, f.uc.RecordSale(context.Background(), "p1", 1, "o"))

	filters := &dto.MovementFilters{ProductID: "p1"}
	items, count, err := f.uc.ListMovements(context.Background(), filters)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, filters.Page)
	assert.Equal(t, 20, filters.PageSize)
}
