package event

import (
	"context"
	"errors"
	"sync"

	"github.com/fekuna/omnipos-storefront/internal/model"
)

// ProductEdited is published whenever an existing product is saved.
type ProductEdited struct {
	Old *model.Product
	New *model.Product
}

// StockReplenished is published when stock moves from exactly zero to positive.
type StockReplenished struct {
	Product *model.Product
}

type ProductEditedHandler func(ctx context.Context, e ProductEdited) error

type StockReplenishedHandler func(ctx context.Context, e StockReplenished) error

// Publisher is the side product writers depend on.
type Publisher interface {
	PublishProductSaved(ctx context.Context, old, updated *model.Product) error
}

// Bus dispatches events synchronously, in subscription order, on the
// caller's goroutine. A handler error is returned to the publisher so the
// surrounding transaction can roll back.
type Bus struct {
	mu          sync.RWMutex
	edited      []ProductEditedHandler
	replenished []StockReplenishedHandler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) OnProductEdited(h ProductEditedHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.edited = append(b.edited, h)
}

func (b *Bus) OnStockReplenished(h StockReplenishedHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replenished = append(b.replenished, h)
}

func (b *Bus) PublishProductEdited(ctx context.Context, e ProductEdited) error {
	b.mu.RLock()
	handlers := append([]ProductEditedHandler(nil), b.edited...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) PublishStockReplenished(ctx context.Context, e StockReplenished) error {
	b.mu.RLock()
	handlers := append([]StockReplenishedHandler(nil), b.replenished...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishProductSaved emits ProductEdited and, on the zero-to-positive stock
// edge, StockReplenished.
func (b *Bus) PublishProductSaved(ctx context.Context, old, updated *model.Product) error {
	if err := b.PublishProductEdited(ctx, ProductEdited{Old: old, New: updated}); err != nil {
		return err
	}
	if Replenished(old, updated) {
		return b.PublishStockReplenished(ctx, StockReplenished{Product: updated})
	}
	return nil
}

func Replenished(old, updated *model.Product) bool {
	return old != nil && old.Stock == 0 && updated.Stock > 0
}
