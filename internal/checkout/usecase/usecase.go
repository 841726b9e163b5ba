package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-storefront/internal/auth"
	"github.com/fekuna/omnipos-storefront/internal/cart"
	"github.com/fekuna/omnipos-storefront/internal/checkout"
	"github.com/fekuna/omnipos-storefront/internal/checkout/dto"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/order"
	orderdto "github.com/fekuna/omnipos-storefront/internal/order/dto"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/validation"
	profiledto "github.com/fekuna/omnipos-storefront/internal/profile/dto"
	"github.com/fekuna/omnipos-storefront/internal/session"
	"github.com/fekuna/omnipos-storefront/internal/task"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Config struct {
	SiteName string
	BaseURL  string
}

type checkoutUseCase struct {
	carts    checkout.CartReader
	orders   checkout.OrderPlacer
	profiles checkout.ProfileReader
	tasks    task.Enqueuer
	validate *validator.Validate
	cfg      Config
	logger   logger.ZapLogger
}

func NewCheckoutUseCase(
	carts checkout.CartReader,
	orders checkout.OrderPlacer,
	profiles checkout.ProfileReader,
	tasks task.Enqueuer,
	cfg Config,
	log logger.ZapLogger,
) checkout.UseCase {
	return &checkoutUseCase{
		carts:    carts,
		orders:   orders,
		profiles: profiles,
		tasks:    tasks,
		validate: validation.New(),
		cfg:      cfg,
		logger:   log,
	}
}

func (uc *checkoutUseCase) EnsureLines(ctx context.Context, c *model.Cart) ([]model.Line, error) {
	lines, err := uc.carts.Lines(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, order.ErrEmptyCart
	}
	return lines, nil
}

func (uc *checkoutUseCase) Initial(ctx context.Context) (*orderdto.CustomerData, error) {
	data := &orderdto.CustomerData{}
	userID := auth.UserID(ctx)
	if userID == "" {
		return data, nil
	}

	u, a, err := uc.profiles.Detail(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := profiledto.FromModels(u, a)
	data.User, data.Address = p.User, p.Address
	return data, nil
}

func (uc *checkoutUseCase) SaveDraft(ctx context.Context, sess *session.Session, data *orderdto.CustomerData) error {
	if err := uc.validate.Struct(data); err != nil {
		return &checkout.FormError{Fields: validation.FieldErrors(err)}
	}
	return sess.SetJSON(ctx, session.KeyForm, data)
}

func (uc *checkoutUseCase) Draft(ctx context.Context, sess *session.Session) (*orderdto.CustomerData, error) {
	var data orderdto.CustomerData
	ok, err := sess.GetJSON(ctx, session.KeyForm, &data)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, checkout.ErrMissingCheckoutDraft
	}
	return &data, nil
}

func (uc *checkoutUseCase) Review(ctx context.Context, sess *session.Session, c *model.Cart) (*dto.Review, error) {
	data, err := uc.Draft(ctx, sess)
	if err != nil {
		return nil, err
	}
	lines, err := uc.EnsureLines(ctx, c)
	if err != nil {
		return nil, err
	}

	return &dto.Review{
		Order: uc.orders.CreateDraft(data),
		Lines: lines,
		Total: cart.TotalOf(lines),
	}, nil
}

func (uc *checkoutUseCase) Confirm(ctx context.Context, sess *session.Session, c *model.Cart) (*model.Order, error) {
	data, err := uc.Draft(ctx, sess)
	if err != nil {
		return nil, err
	}

	o, err := uc.orders.Materialize(ctx, uc.orders.CreateDraft(data), c)
	if err != nil {
		return nil, err
	}

	// The order is committed at this point; a failed enqueue only loses the mail.
	_, err = task.Submit(ctx, uc.tasks, task.TypeOrderPlaced, task.OrderPlacedPayload{
		OrderID:  o.ID,
		SiteName: uc.cfg.SiteName,
		AdminURL: uc.adminURL(o.ID),
	})
	if err != nil {
		uc.logger.Error("Failed to schedule order placed mail", zap.String("order_id", o.ID), zap.Error(err))
	}

	if err := sess.Delete(ctx, session.KeyForm); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *checkoutUseCase) adminURL(orderID string) string {
	return fmt.Sprintf("%s/admin/orders/%s", strings.TrimRight(uc.cfg.BaseURL, "/"), orderID)
}
