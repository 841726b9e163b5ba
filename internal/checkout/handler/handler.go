package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-storefront/internal/checkout"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/order"
	orderdto "github.com/fekuna/omnipos-storefront/internal/order/dto"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/response"
	"github.com/fekuna/omnipos-storefront/internal/pkg/validation"
	"github.com/fekuna/omnipos-storefront/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	HomePath       = "/"
	PlaceOrderPath = "/orders/place_order"
	CheckOrderPath = "/orders/check_order"
)

const (
	msgEmptyCart   = "You can't place orders with empty cart"
	msgFillForm    = "Please fill out form to continue"
	msgOrderPlaced = "Your order now proccessing! Information will be sent to email."
	msgNoStock     = "Not enough products in stock"
)

type CartResolver interface {
	ResolveCart(ctx context.Context, sess *session.Session) (*model.Cart, error)
}

type CheckoutHandler struct {
	uc     checkout.UseCase
	carts  CartResolver
	logger logger.ZapLogger
}

func NewCheckoutHandler(uc checkout.UseCase, carts CartResolver, log logger.ZapLogger) *CheckoutHandler {
	return &CheckoutHandler{uc: uc, carts: carts, logger: log}
}

func (h *CheckoutHandler) redirect(c *gin.Context, level session.Level, text, location string) {
	if err := session.FromContext(c).AddMessage(c.Request.Context(), level, text); err != nil {
		h.logger.Warn("failed to store flash message", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, location)
	c.Abort()
}

// cartWithLines resolves the request cart and redirects home when it is empty.
func (h *CheckoutHandler) cartWithLines(c *gin.Context) (*model.Cart, bool) {
	ctx := c.Request.Context()
	ct, err := h.carts.ResolveCart(ctx, session.FromContext(c))
	if err != nil {
		h.logger.Error("failed to resolve cart", zap.Error(err))
		response.InternalError(c)
		return nil, false
	}

	_, err = h.uc.EnsureLines(ctx, ct)
	if errors.Is(err, order.ErrEmptyCart) {
		h.redirect(c, session.LevelError, msgEmptyCart, HomePath)
		return nil, false
	}
	if err != nil {
		h.logger.Error("failed to load cart lines", zap.Error(err))
		response.InternalError(c)
		return nil, false
	}
	return ct, true
}

// requireDraft sends the buyer back to the first step when no form is stored.
func (h *CheckoutHandler) requireDraft(c *gin.Context) bool {
	_, err := h.uc.Draft(c.Request.Context(), session.FromContext(c))
	if errors.Is(err, checkout.ErrMissingCheckoutDraft) {
		h.redirect(c, session.LevelWarning, msgFillForm, PlaceOrderPath)
		return false
	}
	if err != nil {
		h.logger.Error("failed to read checkout draft", zap.Error(err))
		response.InternalError(c)
		return false
	}
	return true
}

func (h *CheckoutHandler) PlaceOrderForm(c *gin.Context) {
	if _, ok := h.cartWithLines(c); !ok {
		return
	}

	data, err := h.uc.Initial(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load profile for checkout", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": data})
}

func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	if _, ok := h.cartWithLines(c); !ok {
		return
	}

	var input orderdto.CustomerData
	if err := c.ShouldBind(&input); err != nil {
		response.Errors(c, http.StatusBadRequest, validation.FieldErrors(err))
		return
	}

	err := h.uc.SaveDraft(c.Request.Context(), session.FromContext(c), &input)
	var formErr *checkout.FormError
	if errors.As(err, &formErr) {
		response.Errors(c, http.StatusBadRequest, formErr.Fields)
		return
	}
	if err != nil {
		h.logger.Error("failed to save checkout draft", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.Redirect(http.StatusSeeOther, CheckOrderPath)
}

func (h *CheckoutHandler) CheckOrder(c *gin.Context) {
	if !h.requireDraft(c) {
		return
	}
	ct, ok := h.cartWithLines(c)
	if !ok {
		return
	}

	review, err := h.uc.Review(c.Request.Context(), session.FromContext(c), ct)
	if err != nil {
		h.logger.Error("failed to build order review", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *CheckoutHandler) ConfirmOrder(c *gin.Context) {
	if !h.requireDraft(c) {
		return
	}
	ct, ok := h.cartWithLines(c)
	if !ok {
		return
	}

	o, err := h.uc.Confirm(c.Request.Context(), session.FromContext(c), ct)
	switch {
	case err == nil:
		h.logger.Info("Order placed", zap.String("order_id", o.ID))
		h.redirect(c, session.LevelSuccess, msgOrderPlaced, HomePath)
	case errors.Is(err, order.ErrEmptyCart):
		h.redirect(c, session.LevelError, msgEmptyCart, HomePath)
	case errors.Is(err, order.ErrInsufficientStock):
		h.redirect(c, session.LevelError, msgNoStock, CheckOrderPath)
	default:
		h.logger.Error("failed to place order", zap.Error(err))
		response.InternalError(c)
	}
}
