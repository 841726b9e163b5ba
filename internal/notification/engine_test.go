package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-storefront/internal/event"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/task"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flagger struct {
	flagged []string
	err     error
}

func (f *flagger) FlagPriceChange(_ context.Context, productID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.flagged = append(f.flagged, productID)
	return 1, nil
}

func setup(t *testing.T) (*event.Bus, *flagger, *task.RedisQueue) {
	t.Helper()
	mr := miniredis.RunT(t)
	q := task.NewRedisQueue(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:tasks")
	f := &flagger{}
	bus := event.NewBus()
	NewEngine(f, q, "https://shop.example.com/", logger.NewNopLogger()).Subscribe(bus)
	return bus, f, q
}

func sock(price string, discount, stock int) *model.Product {
	return &model.Product{
		BaseModel: model.BaseModel{ID: "p1"},
		Title:     "Socks",
		Slug:      "socks",
		Price:     decimal.RequireFromString(price),
		Discount:  discount,
		Stock:     stock,
	}
}

func TestPriceRule(t *testing.T) {
	tests := []struct {
		name    string
		old     *model.Product
		updated *model.Product
		flagged int
	}{
		{"discount 0 to 10", sock("10", 0, 3), sock("10", 10, 3), 1},
		{"price change", sock("10", 0, 3), sock("12.50", 0, 3), 1},
		{"title only", sock("10", 0, 3), func() *model.Product { p := sock("10", 0, 3); p.Title = "Wool socks"; return p }(), 0},
		{"equal decimals", sock("10", 0, 3), sock("10.00", 0, 3), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus, f, _ := setup(t)
			require.NoError(t, bus.PublishProductSaved(context.Background(), tt.old, tt.updated))
			assert.Len(t, f.flagged, tt.flagged)
		})
	}
}

func TestRestockRule(t *testing.T) {
	ctx := context.Background()

	bus, _, q := setup(t)
	require.NoError(t, bus.PublishProductSaved(ctx, sock("10", 0, 0), sock("10", 0, 5)))
	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	queued, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, queued)
	assert.Equal(t, task.TypeReminderNotify, queued.Type)
	var payload task.ReminderNotifyPayload
	require.NoError(t, queued.Decode(&payload))
	assert.Equal(t, "p1", payload.ProductID)
	assert.Equal(t, "Socks", payload.ProductTitle)
	assert.Equal(t, "https://shop.example.com/products/socks", payload.URL)

	bus, _, q = setup(t)
	require.NoError(t, bus.PublishProductSaved(ctx, sock("10", 0, 5), sock("10", 0, 8)))
	n, err = q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestRestockReminderWaitsForCommit(t *testing.T) {
	ctx := context.Background()
	txm := postgres.NoopTxManager{}

	bus, _, q := setup(t)
	err := txm.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, bus.PublishProductSaved(ctx, sock("10", 0, 0), sock("10", 0, 5)))
		n, err := q.Len(ctx)
		require.NoError(t, err)
		assert.Zero(t, n, "nothing is queued before commit")
		return nil
	})
	require.NoError(t, err)
	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	bus, _, q = setup(t)
	err = txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := bus.PublishProductSaved(ctx, sock("10", 0, 0), sock("10", 0, 5)); err != nil {
			return err
		}
		return errors.New("commit failed")
	})
	require.Error(t, err)
	n, err = q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "a rolled back restock queues no mail")
}

func TestPriceRuleErrorPropagates(t *testing.T) {
	bus, f, q := setup(t)
	f.err = errors.New("db down")

	err := bus.PublishProductSaved(context.Background(), sock("10", 0, 0), sock("10", 10, 5))
	assert.ErrorIs(t, err, f.err)

	n, _ := q.Len(context.Background())
	assert.EqualValues(t, 0, n)
}
