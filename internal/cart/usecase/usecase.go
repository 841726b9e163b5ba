package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/auth"
	"github.com/fekuna/omnipos-storefront/internal/cart"
	"github.com/fekuna/omnipos-storefront/internal/cart/dto"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/session"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type cartUseCase struct {
	repo     cart.Repository
	products cart.ProductFinder
	txm      postgres.TxManager
	logger   logger.ZapLogger
}

func NewCartUseCase(repo cart.Repository, products cart.ProductFinder, txm postgres.TxManager, log logger.ZapLogger) cart.UseCase {
	return &cartUseCase{
		repo:     repo,
		products: products,
		txm:      txm,
		logger:   log,
	}
}

func (uc *cartUseCase) newCart(ctx context.Context, userID *string) (*model.Cart, error) {
	now := time.Now()
	c := &model.Cart{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		UserID:    userID,
	}
	if err := uc.repo.CreateCart(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *cartUseCase) userCart(ctx context.Context, userID string) (*model.Cart, error) {
	c, err := uc.repo.FindCartByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}
	return uc.newCart(ctx, &userID)
}

func (uc *cartUseCase) ResolveCart(ctx context.Context, sess *session.Session) (*model.Cart, error) {
	if userID := auth.UserID(ctx); userID != "" {
		return uc.userCart(ctx, userID)
	}

	cartID, ok, err := sess.Get(ctx, session.KeyCartID)
	if err != nil {
		return nil, err
	}
	if ok {
		c, err := uc.repo.FindCartByID(ctx, cartID)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return c, nil
		}
		uc.logger.Debug("Session cart is gone, creating a new one", zap.String("cart_id", cartID))
	}

	c, err := uc.newCart(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err := sess.Set(ctx, session.KeyCartID, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *cartUseCase) product(ctx context.Context, productID string) (*model.Product, error) {
	p, err := uc.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, cart.ErrProductNotFound
	}
	return p, nil
}

func (uc *cartUseCase) AddProduct(ctx context.Context, c *model.Cart, productID string) error {
	p, err := uc.product(ctx, productID)
	if err != nil {
		return err
	}

	line, err := uc.repo.FindLine(ctx, c.ID, p.ID)
	if err != nil {
		return err
	}
	if line != nil {
		return cart.ErrAlreadyInCart
	}
	if !p.InStock() {
		return cart.ErrProductUnavailable
	}

	return uc.repo.CreateLine(ctx, &model.Line{
		ID:        uuid.New().String(),
		CartID:    &c.ID,
		ProductID: p.ID,
		Quantity:  1,
		CreatedAt: time.Now(),
	})
}

func (uc *cartUseCase) RemoveProduct(ctx context.Context, c *model.Cart, productID string) error {
	line, err := uc.repo.FindLine(ctx, c.ID, productID)
	if err != nil {
		return err
	}
	if line == nil {
		return cart.ErrNotInCart
	}
	return uc.repo.DeleteLine(ctx, line.ID)
}

// ChangeQuantity does not touch price_changed.
func (uc *cartUseCase) ChangeQuantity(ctx context.Context, c *model.Cart, productID string, quantity int) error {
	line, err := uc.repo.FindLine(ctx, c.ID, productID)
	if err != nil {
		return err
	}
	if line == nil {
		return cart.ErrNotInCart
	}

	p, err := uc.product(ctx, productID)
	if err != nil {
		return err
	}
	if quantity > p.Stock {
		return cart.ErrInsufficientStock
	}
	return uc.repo.UpdateLineQuantity(ctx, line.ID, quantity)
}

func (uc *cartUseCase) AcknowledgePriceChange(ctx context.Context, c *model.Cart) error {
	return uc.repo.ClearPriceChanged(ctx, c.ID)
}

func (uc *cartUseCase) Lines(ctx context.Context, c *model.Cart) ([]model.Line, error) {
	lines, err := uc.repo.FindLines(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return []model.Line{}, nil
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := uc.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range lines {
		lines[i].Product = byID[lines[i].ProductID]
	}
	return lines, nil
}

func (uc *cartUseCase) TotalPrice(ctx context.Context, c *model.Cart) (decimal.Decimal, error) {
	lines, err := uc.Lines(ctx, c)
	if err != nil {
		return decimal.Zero, err
	}
	return cart.TotalOf(lines), nil
}

func (uc *cartUseCase) AnyPriceChanged(ctx context.Context, c *model.Cart) (bool, error) {
	lines, err := uc.repo.FindLines(ctx, c.ID)
	if err != nil {
		return false, err
	}
	return cart.AnyChanged(lines), nil
}

func (uc *cartUseCase) Detail(ctx context.Context, c *model.Cart) (*dto.CartDetail, error) {
	lines, err := uc.Lines(ctx, c)
	if err != nil {
		return nil, err
	}
	return &dto.CartDetail{
		ID:           c.ID,
		Lines:        lines,
		Total:        cart.TotalOf(lines),
		PriceChanged: cart.AnyChanged(lines),
	}, nil
}

// MergeOnLogin keeps one line per product. When both carts hold the same
// product the session cart's line replaces the user's. The session keeps its
// cart id until the merge has committed.
func (uc *cartUseCase) MergeOnLogin(ctx context.Context, userID string, sess *session.Session) (*model.Cart, error) {
	sessionCartID, hasSessionCart, err := sess.Get(ctx, session.KeyCartID)
	if err != nil {
		return nil, err
	}

	var userCart *model.Cart
	err = uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		userCart, err = uc.userCart(ctx, userID)
		if err != nil {
			return err
		}
		if !hasSessionCart || sessionCartID == userCart.ID {
			return nil
		}

		sessionCart, err := uc.repo.FindCartByID(ctx, sessionCartID)
		if err != nil {
			return err
		}
		if sessionCart == nil || (sessionCart.UserID != nil && *sessionCart.UserID != userID) {
			return nil
		}

		lines, err := uc.repo.FindLines(ctx, sessionCart.ID)
		if err != nil {
			return err
		}
		productIDs := make([]string, len(lines))
		for i, l := range lines {
			productIDs[i] = l.ProductID
		}

		if err := uc.repo.DeleteLinesByProducts(ctx, userCart.ID, productIDs); err != nil {
			return err
		}
		if err := uc.repo.MoveLines(ctx, sessionCart.ID, userCart.ID); err != nil {
			return err
		}
		if err := uc.repo.DeleteCart(ctx, sessionCart.ID); err != nil {
			return err
		}

		uc.logger.Info("Session cart merged",
			zap.String("user_id", userID),
			zap.String("session_cart_id", sessionCart.ID),
			zap.Int("lines", len(lines)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if hasSessionCart {
		if err := sess.Delete(ctx, session.KeyCartID); err != nil {
			return nil, err
		}
	}
	return userCart, nil
}

func (uc *cartUseCase) FlagPriceChange(ctx context.Context, productID string) (int64, error) {
	return uc.repo.MarkPriceChanged(ctx, productID)
}
