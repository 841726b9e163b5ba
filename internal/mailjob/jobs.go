// Package mailjob holds the background handlers that send storefront mail.
package mailjob

import (
	"context"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/order"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/mailer"
	"github.com/fekuna/omnipos-storefront/internal/task"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ReminderStore interface {
	Pending(ctx context.Context, productID string) ([]model.Reminder, error)
	Consume(ctx context.Context, reminders []model.Reminder) error
}

type OrderFinder interface {
	Get(ctx context.Context, id string) (*model.Order, error)
}

type Config struct {
	SiteName string
	Managers []string
}

type Jobs struct {
	reminders ReminderStore
	orders    OrderFinder
	mail      mailer.Sender
	cfg       Config
	logger    logger.ZapLogger
}

func NewJobs(reminders ReminderStore, orders OrderFinder, mail mailer.Sender, cfg Config, log logger.ZapLogger) *Jobs {
	return &Jobs{
		reminders: reminders,
		orders:    orders,
		mail:      mail,
		cfg:       cfg,
		logger:    log,
	}
}

func (j *Jobs) Register(w *task.Worker) {
	w.Register(task.TypeReminderNotify, j.NotifyReminders)
	w.Register(task.TypeOrderPlaced, j.SendOrderPlaced)
	w.Register(task.TypeFeedbackSend, j.SendFeedback)
}

// NotifyReminders mails every subscriber of a restocked product in one
// message, then deletes the reminders that were mailed.
func (j *Jobs) NotifyReminders(ctx context.Context, t *task.Task) error {
	var p task.ReminderNotifyPayload
	if err := t.Decode(&p); err != nil {
		return err
	}

	pending, err := j.reminders.Pending(ctx, p.ProductID)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	emails := make([]string, len(pending))
	for i, r := range pending {
		emails[i] = r.Email
	}

	body, err := mailer.Render("reminder.html", map[string]any{
		"Title":    p.ProductTitle,
		"URL":      p.URL,
		"SiteName": j.cfg.SiteName,
	})
	if err != nil {
		return err
	}

	err = j.mail.Send(ctx, &mailer.Message{
		To:      emails,
		Subject: fmt.Sprintf("%s have gone on sale!", p.ProductTitle),
		HTML:    body,
	})
	if err != nil {
		return err
	}

	j.logger.Info("Restock reminders sent", zap.String("product_id", p.ProductID), zap.Int("recipients", len(emails)))
	return j.reminders.Consume(ctx, pending)
}

type lineView struct {
	Title      string
	Quantity   int
	FinalPrice decimal.Decimal
}

// SendOrderPlaced mails the buyer and the managers over one connection.
// A missing order is logged and dropped without retry.
func (j *Jobs) SendOrderPlaced(ctx context.Context, t *task.Task) error {
	var p task.OrderPlacedPayload
	if err := t.Decode(&p); err != nil {
		return err
	}

	o, err := j.orders.Get(ctx, p.OrderID)
	if errors.Is(err, order.ErrOrderNotFound) {
		j.logger.Warn("Non existing order", zap.String("order_id", p.OrderID))
		return nil
	}
	if err != nil {
		return err
	}

	lines := make([]lineView, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = lineView{Quantity: l.Quantity, FinalPrice: l.FinalPrice.Decimal}
		if l.Product != nil {
			lines[i].Title = l.Product.Title
		}
	}

	siteName := p.SiteName
	if siteName == "" {
		siteName = j.cfg.SiteName
	}
	data := map[string]any{
		"Order":    o,
		"Lines":    lines,
		"SiteName": siteName,
		"AdminURL": p.AdminURL,
	}
	subject := fmt.Sprintf("Order placed on %s", siteName)

	userBody, err := mailer.Render("order_placed_user.html", data)
	if err != nil {
		return err
	}
	msgs := []*mailer.Message{{To: []string{o.Email}, Subject: subject, HTML: userBody}}

	if len(j.cfg.Managers) > 0 {
		managersBody, err := mailer.Render("order_placed_managers.html", data)
		if err != nil {
			return err
		}
		msgs = append(msgs, &mailer.Message{To: j.cfg.Managers, Subject: subject, HTML: managersBody})
	} else {
		j.logger.Warn("No managers configured, skipping manager copy", zap.String("order_id", o.ID))
	}

	return j.mail.Send(ctx, msgs...)
}

func (j *Jobs) SendFeedback(ctx context.Context, t *task.Task) error {
	var p task.FeedbackSendPayload
	if err := t.Decode(&p); err != nil {
		return err
	}
	if len(j.cfg.Managers) == 0 {
		j.logger.Warn("No managers configured, feedback dropped", zap.String("email", p.Email))
		return nil
	}

	return j.mail.Send(ctx, &mailer.Message{
		To:      j.cfg.Managers,
		Subject: fmt.Sprintf("Message from %s. Email: %s", p.Name, p.Email),
		Text:    p.Message,
	})
}
