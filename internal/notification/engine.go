// Package notification reacts to product saves: it flags cart lines whose
// price moved and queues back-in-stock mail.
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-storefront/internal/event"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/task"
	"go.uber.org/zap"
)

// PriceFlagger marks active cart lines of a product as repriced.
type PriceFlagger interface {
	FlagPriceChange(ctx context.Context, productID string) (int64, error)
}

type Engine struct {
	carts   PriceFlagger
	tasks   task.Enqueuer
	baseURL string
	logger  logger.ZapLogger
}

func NewEngine(carts PriceFlagger, tasks task.Enqueuer, baseURL string, log logger.ZapLogger) *Engine {
	return &Engine{
		carts:   carts,
		tasks:   tasks,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log,
	}
}

// Subscribe registers both rules on bus.
func (e *Engine) Subscribe(bus *event.Bus) {
	bus.OnProductEdited(e.HandleProductEdited)
	bus.OnStockReplenished(e.HandleStockReplenished)
}

func (e *Engine) HandleProductEdited(ctx context.Context, ev event.ProductEdited) error {
	if ev.Old == nil || !ev.Old.PriceDiffers(ev.New) {
		return nil
	}

	n, err := e.carts.FlagPriceChange(ctx, ev.New.ID)
	if err != nil {
		return fmt.Errorf("flag price change for %s: %w", ev.New.ID, err)
	}
	e.logger.Info("Cart lines flagged after price change",
		zap.String("product_id", ev.New.ID),
		zap.Int64("lines", n),
	)
	return nil
}

// HandleStockReplenished queues the reminder mail once the save has
// committed, so a rolled back restock never reaches the worker.
func (e *Engine) HandleStockReplenished(ctx context.Context, ev event.StockReplenished) error {
	p := *ev.Product
	postgres.AfterCommit(ctx, func(ctx context.Context) {
		t, err := task.Submit(ctx, e.tasks, task.TypeReminderNotify, task.ReminderNotifyPayload{
			ProductID:    p.ID,
			ProductTitle: p.Title,
			URL:          e.ProductURL(p.Slug),
		})
		if err != nil {
			e.logger.Error("Failed to queue restock reminder", zap.String("product_id", p.ID), zap.Error(err))
			return
		}
		e.logger.Info("Restock reminder queued", zap.String("product_id", p.ID), zap.String("task_id", t.ID))
	})
	return nil
}

func (e *Engine) ProductURL(slug string) string {
	return e.baseURL + "/products/" + slug
}
