package usecase

import (
	"context"
	"html"

	"github.com/fekuna/omnipos-storefront/internal/auth"
	"github.com/fekuna/omnipos-storefront/internal/feedback"
	"github.com/fekuna/omnipos-storefront/internal/feedback/dto"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/task"
	"go.uber.org/zap"
)

type feedbackUseCase struct {
	profiles feedback.ProfileReader
	tasks    task.Enqueuer
	logger   logger.ZapLogger
}

func NewFeedbackUseCase(profiles feedback.ProfileReader, tasks task.Enqueuer, log logger.ZapLogger) feedback.UseCase {
	return &feedbackUseCase{profiles: profiles, tasks: tasks, logger: log}
}

func (uc *feedbackUseCase) Initial(ctx context.Context) (*dto.FeedbackForm, error) {
	form := &dto.FeedbackForm{}
	userID := auth.UserID(ctx)
	if userID == "" {
		return form, nil
	}

	u, _, err := uc.profiles.Detail(ctx, userID)
	if err != nil {
		return nil, err
	}
	form.Name = u.FullName()
	form.Email = u.Email
	return form, nil
}

func (uc *feedbackUseCase) Send(ctx context.Context, form *dto.FeedbackForm) error {
	t, err := task.Submit(ctx, uc.tasks, task.TypeFeedbackSend, task.FeedbackSendPayload{
		Name:    html.EscapeString(form.Name),
		Email:   html.EscapeString(form.Email),
		Message: html.EscapeString(form.Message),
	})
	if err != nil {
		return err
	}
	uc.logger.Debug("Feedback scheduled", zap.String("task_id", t.ID))
	return nil
}
