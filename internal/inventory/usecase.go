package inventory

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-storefront/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront/internal/model"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrLockNotAcquired    = errors.New("system busy, please try again later")
	ErrZeroQuantityChange = errors.New("quantity change must not be zero")
)

type UseCase interface {
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.InventoryMovement, error)
	// RecordSale debits stock for an order line. It joins the caller's
	// transaction and does not publish product events.
	RecordSale(ctx context.Context, productID string, quantity int, orderID string) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}
