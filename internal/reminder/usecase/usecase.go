package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/reminder"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type reminderUseCase struct {
	repo     reminder.Repository
	products reminder.ProductFinder
	logger   logger.ZapLogger
}

func NewReminderUseCase(repo reminder.Repository, products reminder.ProductFinder, log logger.ZapLogger) reminder.UseCase {
	return &reminderUseCase{repo: repo, products: products, logger: log}
}

func (uc *reminderUseCase) AddReminder(ctx context.Context, productID, email string) (*model.Reminder, error) {
	email = strings.TrimSpace(email)

	p, err := uc.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, reminder.ErrProductNotFound
	}
	if p.Stock != 0 {
		return nil, reminder.ErrProductInStock
	}

	exists, err := uc.repo.Exists(ctx, productID, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, reminder.ErrAlreadySubscribed
	}

	r := &model.Reminder{
		ID:        uuid.New().String(),
		ProductID: productID,
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	uc.logger.Info("Reminder added", zap.String("product_id", productID))
	return r, nil
}

func (uc *reminderUseCase) Pending(ctx context.Context, productID string) ([]model.Reminder, error) {
	return uc.repo.FindByProduct(ctx, productID)
}

// Consume deletes exactly the reminders that were notified, so addresses
// subscribed while the mail was sending stay queued.
func (uc *reminderUseCase) Consume(ctx context.Context, reminders []model.Reminder) error {
	ids := make([]string, len(reminders))
	for i, r := range reminders {
		ids[i] = r.ID
	}
	return uc.repo.DeleteByIDs(ctx, ids)
}
