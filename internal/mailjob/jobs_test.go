package mailjob

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/order"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/mailer"
	"github.com/fekuna/omnipos-storefront/internal/task"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outbox struct {
	sends [][]*mailer.Message
	err   error
}

func (o *outbox) Send(_ context.Context, msgs ...*mailer.Message) error {
	if o.err != nil {
		return o.err
	}
	o.sends = append(o.sends, msgs)
	return nil
}

type reminders struct {
	items    []model.Reminder
	consumed []model.Reminder
}

func (r *reminders) Pending(_ context.Context, productID string) ([]model.Reminder, error) {
	var out []model.Reminder
	for _, it := range r.items {
		if it.ProductID == productID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *reminders) Consume(_ context.Context, items []model.Reminder) error {
	r.consumed = append(r.consumed, items...)
	return nil
}

type orders map[string]*model.Order

func (o orders) Get(_ context.Context, id string) (*model.Order, error) {
	if ord, ok := o[id]; ok {
		return ord, nil
	}
	return nil, order.ErrOrderNotFound
}

func newTask(t *testing.T, typ string, payload any) *task.Task {
	t.Helper()
	tk, err := task.New(typ, payload)
	require.NoError(t, err)
	return tk
}

var cfg = Config{SiteName: "3DShop", Managers: []string{"boss@example.com", "ops@example.com"}}

func TestNotifyReminders(t *testing.T) {
	rs := &reminders{items: []model.Reminder{
		{ID: "r1", ProductID: "p1", Email: "a@example.com"},
		{ID: "r2", ProductID: "p1", Email: "b@example.com"},
		{ID: "r3", ProductID: "p2", Email: "c@example.com"},
	}}
	box := &outbox{}
	jobs := NewJobs(rs, orders{}, box, cfg, logger.NewNopLogger())

	err := jobs.NotifyReminders(context.Background(), newTask(t, task.TypeReminderNotify, task.ReminderNotifyPayload{
		ProductID: "p1", ProductTitle: "Socks", URL: "https://shop.example.com/products/socks",
	}))
	require.NoError(t, err)

	require.Len(t, box.sends, 1)
	require.Len(t, box.sends[0], 1)
	msg := box.sends[0][0]
	assert.Equal(t, "Socks have gone on sale!", msg.Subject)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, msg.To)
	assert.Contains(t, msg.HTML, "https://shop.example.com/products/socks")
	assert.Len(t, rs.consumed, 2)
}

func TestNotifyRemindersNoSubscribers(t *testing.T) {
	box := &outbox{}
	jobs := NewJobs(&reminders{}, orders{}, box, cfg, logger.NewNopLogger())

	err := jobs.NotifyReminders(context.Background(), newTask(t, task.TypeReminderNotify, task.ReminderNotifyPayload{ProductID: "p1"}))
	require.NoError(t, err)
	assert.Empty(t, box.sends)
}

func TestNotifyRemindersKeepsRowsWhenSendFails(t *testing.T) {
	rs := &reminders{items: []model.Reminder{{ID: "r1", ProductID: "p1", Email: "a@example.com"}}}
	box := &outbox{err: errors.New("smtp down")}
	jobs := NewJobs(rs, orders{}, box, cfg, logger.NewNopLogger())

	err := jobs.NotifyReminders(context.Background(), newTask(t, task.TypeReminderNotify, task.ReminderNotifyPayload{ProductID: "p1"}))
	assert.Error(t, err)
	assert.Empty(t, rs.consumed)
}

func TestSendOrderPlaced(t *testing.T) {
	o := &model.Order{
		BaseModel: model.BaseModel{ID: "o1"},
		Email:     "buyer@example.com",
		FullName:  "Ada Lovelace",
		Total:     decimal.NewFromInt(25),
		Lines: []model.Line{{
			ProductID:  "p1",
			Quantity:   2,
			FinalPrice: decimal.NewNullDecimal(decimal.NewFromInt(20)),
			Product:    &model.Product{Title: "Socks"},
		}},
	}
	box := &outbox{}
	jobs := NewJobs(&reminders{}, orders{"o1": o}, box, cfg, logger.NewNopLogger())

	err := jobs.SendOrderPlaced(context.Background(), newTask(t, task.TypeOrderPlaced, task.OrderPlacedPayload{
		OrderID: "o1", AdminURL: "https://shop.example.com/admin/orders/o1",
	}))
	require.NoError(t, err)

	require.Len(t, box.sends, 1, "both messages share one send call")
	msgs := box.sends[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, []string{"buyer@example.com"}, msgs[0].To)
	assert.Equal(t, cfg.Managers, msgs[1].To)
	assert.Equal(t, "Order placed on 3DShop", msgs[0].Subject)
	assert.Contains(t, msgs[0].HTML, "Socks")
	assert.Contains(t, msgs[0].HTML, "25")
	assert.Contains(t, msgs[1].HTML, "https://shop.example.com/admin/orders/o1")
}

func TestSendOrderPlacedMissingOrder(t *testing.T) {
	box := &outbox{}
	jobs := NewJobs(&reminders{}, orders{}, box, cfg, logger.NewNopLogger())

	err := jobs.SendOrderPlaced(context.Background(), newTask(t, task.TypeOrderPlaced, task.OrderPlacedPayload{OrderID: "gone"}))
	require.NoError(t, err)
	assert.Empty(t, box.sends)
}

func TestSendFeedback(t *testing.T) {
	box := &outbox{}
	jobs := NewJobs(&reminders{}, orders{}, box, cfg, logger.NewNopLogger())

	err := jobs.SendFeedback(context.Background(), newTask(t, task.TypeFeedbackSend, task.FeedbackSendPayload{
		Name: "Ada", Email: "ada@example.com", Message: "&lt;b&gt;hi&lt;/b&gt;",
	}))
	require.NoError(t, err)

	require.Len(t, box.sends, 1)
	msg := box.sends[0][0]
	assert.Equal(t, "Message from Ada. Email: ada@example.com", msg.Subject)
	assert.Equal(t, cfg.Managers, msg.To)
	assert.Equal(t, "&lt;b&gt;hi&lt;/b&gt;", msg.Text)
	assert.Empty(t, msg.HTML)
}

func TestRegister(t *testing.T) {
	jobs := NewJobs(&reminders{}, orders{}, &outbox{}, Config{}, logger.NewNopLogger())
	mr := miniredis.RunT(t)
	q := task.NewRedisQueue(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:tasks")
	w := task.NewWorker(q, task.WorkerConfig{}, logger.NewNopLogger())
	jobs.Register(w)

	// Unconfigured managers: feedback is dropped without error.
	w.Process(context.Background(), newTask(t, task.TypeFeedbackSend, task.FeedbackSendPayload{Name: "x"}))
}
