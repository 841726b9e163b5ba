package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/event"
	"github.com/fekuna/omnipos-storefront/internal/inventory"
	"github.com/fekuna/omnipos-storefront/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/pkg/cache"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/product"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockTTL      = 5 * time.Second
	lockAttempts = 3
	lockBackoff  = 100 * time.Millisecond
)

type inventoryUseCase struct {
	repo      inventory.Repository
	txm       postgres.TxManager
	publisher event.Publisher
	cache     *cache.RedisClient
	logger    logger.ZapLogger
}

func NewInventoryUseCase(
	repo inventory.Repository,
	txm postgres.TxManager,
	publisher event.Publisher,
	cache *cache.RedisClient,
	log logger.ZapLogger,
) inventory.UseCase {
	return &inventoryUseCase{
		repo:      repo,
		txm:       txm,
		publisher: publisher,
		cache:     cache,
		logger:    log,
	}
}

func (uc *inventoryUseCase) lock(ctx context.Context, productID string) (func(), error) {
	key := "lock:inventory:" + productID
	value := uuid.New().String()

	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.cache.AcquireLock(ctx, key, value, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			return func() {
				if err := uc.cache.ReleaseLock(context.Background(), key, value); err != nil {
					uc.logger.Warn("failed to release inventory lock", zap.String("key", key), zap.Error(err))
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockBackoff):
		}
	}
	return nil, inventory.ErrLockNotAcquired
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// AdjustStock applies a signed stock delta under a per-product lock. The
// product save is published on the event bus inside the same transaction,
// so a restock from zero queues reminder mail.
func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.InventoryMovement, error) {
	if input.QuantityChange == 0 {
		return nil, inventory.ErrZeroQuantityChange
	}

	unlock, err := uc.lock(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var movement *model.InventoryMovement
	err = uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		old, err := uc.repo.LockProduct(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if old == nil {
			return inventory.ErrProductNotFound
		}

		after := old.Stock + input.QuantityChange
		if after < 0 {
			return inventory.ErrInsufficientStock
		}

		if err := uc.repo.SetStock(ctx, old.ID, after); err != nil {
			return err
		}

		movementType := model.MovementAdjustment
		if input.QuantityChange > 0 {
			movementType = model.MovementRestock
		}
		movement = &model.InventoryMovement{
			ID:             uuid.New().String(),
			ProductID:      old.ID,
			MovementType:   movementType,
			QuantityChange: input.QuantityChange,
			QuantityBefore: old.Stock,
			QuantityAfter:  after,
			ReferenceType:  optional(input.ReferenceType),
			ReferenceID:    optional(input.ReferenceID),
			Notes:          input.Reason,
			CreatedAt:      time.Now(),
		}
		if err := uc.repo.LogMovement(ctx, movement); err != nil {
			return err
		}

		updated := *old
		updated.Stock = after
		return uc.publisher.PublishProductSaved(ctx, old, &updated)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Stock adjusted",
		zap.String("product_id", movement.ProductID),
		zap.Int("before", movement.QuantityBefore),
		zap.Int("after", movement.QuantityAfter),
	)
	uc.invalidateListCache(ctx)
	return movement, nil
}

func (uc *inventoryUseCase) invalidateListCache(ctx context.Context) {
	if err := uc.cache.DeletePattern(ctx, product.ListCacheKeyPrefix+"*"); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.Error(err))
	}
}

func (uc *inventoryUseCase) RecordSale(ctx context.Context, productID string, quantity int, orderID string) error {
	after, ok, err := uc.repo.DecrementStock(ctx, productID, quantity)
	if err != nil {
		return err
	}
	if !ok {
		return inventory.ErrInsufficientStock
	}

	// listings show stock, so cached pages go stale once the sale commits
	postgres.AfterCommit(ctx, uc.invalidateListCache)

	ref := "order"
	return uc.repo.LogMovement(ctx, &model.InventoryMovement{
		ID:             uuid.New().String(),
		ProductID:      productID,
		MovementType:   model.MovementSale,
		QuantityChange: -quantity,
		QuantityBefore: after + quantity,
		QuantityAfter:  after,
		ReferenceType:  &ref,
		ReferenceID:    &orderID,
		Notes:          "Order Sale",
		CreatedAt:      time.Now(),
	})
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	return uc.repo.ListMovements(ctx, filters)
}
