package inventory

import (
	"context"

	"github.com/fekuna/omnipos-storefront/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront/internal/model"
)

type Repository interface {
	// LockProduct loads the product row FOR UPDATE inside the ctx transaction.
	LockProduct(ctx context.Context, productID string) (*model.Product, error)
	SetStock(ctx context.Context, productID string, stock int) error
	// DecrementStock subtracts qty only when enough stock is left and reports
	// the stock after the update. ok is false when the guard rejected it.
	DecrementStock(ctx context.Context, productID string, qty int) (after int, ok bool, err error)

	LogMovement(ctx context.Context, movement *model.InventoryMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}
