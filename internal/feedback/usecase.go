package feedback

import (
	"context"

	"github.com/fekuna/omnipos-storefront/internal/feedback/dto"
	"github.com/fekuna/omnipos-storefront/internal/model"
)

type ProfileReader interface {
	Detail(ctx context.Context, userID string) (*model.User, *model.Address, error)
}

type UseCase interface {
	// Initial pre-fills name and email for logged-in users.
	Initial(ctx context.Context) (*dto.FeedbackForm, error)
	// Send escapes the form values and schedules the mail to managers.
	Send(ctx context.Context, form *dto.FeedbackForm) error
}
