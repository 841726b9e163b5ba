package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-storefront/internal/cart"
	"github.com/fekuna/omnipos-storefront/internal/cart/dto"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/response"
	"github.com/fekuna/omnipos-storefront/internal/pkg/validation"
	"github.com/fekuna/omnipos-storefront/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var userMessages = map[error]string{
	cart.ErrAlreadyInCart:      "Product already in your cart",
	cart.ErrNotInCart:          "Product not in cart",
	cart.ErrProductUnavailable: "Product not in stock",
	cart.ErrInsufficientStock:  "Not enough products in stock",
	cart.ErrProductNotFound:    "Product not found",
}

type CartHandler struct {
	uc       cart.UseCase
	validate *validator.Validate
	logger   logger.ZapLogger
}

func NewCartHandler(uc cart.UseCase, log logger.ZapLogger) *CartHandler {
	return &CartHandler{
		uc:       uc,
		validate: validation.New(),
		logger:   log,
	}
}

// prepare binds the JSON body and resolves the request cart.
func (h *CartHandler) prepare(c *gin.Context, input any) (*model.Cart, bool) {
	if input != nil {
		if err := c.ShouldBindJSON(input); err != nil {
			response.Errors(c, http.StatusBadRequest, validation.FieldErrors(err))
			return nil, false
		}
		if err := h.validate.Struct(input); err != nil {
			response.Errors(c, http.StatusBadRequest, validation.FieldErrors(err))
			return nil, false
		}
	}

	ct, err := h.uc.ResolveCart(c.Request.Context(), session.FromContext(c))
	if err != nil {
		h.logger.Error("failed to resolve cart", zap.Error(err))
		response.InternalError(c)
		return nil, false
	}
	return ct, true
}

func (h *CartHandler) fail(c *gin.Context, err error) {
	for target, msg := range userMessages {
		if errors.Is(err, target) {
			response.Errors(c, http.StatusBadRequest, gin.H{"__all__": []string{msg}})
			return
		}
	}
	h.logger.Error("cart operation failed", zap.Error(err))
	response.InternalError(c)
}

func (h *CartHandler) AddProduct(c *gin.Context) {
	var input dto.ProductInput
	ct, ok := h.prepare(c, &input)
	if !ok {
		return
	}
	if err := h.uc.AddProduct(c.Request.Context(), ct, input.ID); err != nil {
		h.fail(c, err)
		return
	}
	response.Message(c, "Product successfully added to cart!")
}

func (h *CartHandler) RemoveProduct(c *gin.Context) {
	var input dto.ProductInput
	ct, ok := h.prepare(c, &input)
	if !ok {
		return
	}
	if err := h.uc.RemoveProduct(c.Request.Context(), ct, input.ID); err != nil {
		h.fail(c, err)
		return
	}
	response.Message(c, "Successfully removed")
}

func (h *CartHandler) ChangeQuantity(c *gin.Context) {
	var input dto.QuantityInput
	ct, ok := h.prepare(c, &input)
	if !ok {
		return
	}
	if err := h.uc.ChangeQuantity(c.Request.Context(), ct, input.ID, *input.Quantity); err != nil {
		h.fail(c, err)
		return
	}
	response.Message(c, "ok")
}

func (h *CartHandler) PriceChanged(c *gin.Context) {
	var input dto.PriceChangedInput
	ct, ok := h.prepare(c, &input)
	if !ok {
		return
	}
	if err := h.uc.AcknowledgePriceChange(c.Request.Context(), ct); err != nil {
		h.fail(c, err)
		return
	}
	response.Message(c, "Ok")
}

func (h *CartHandler) Detail(c *gin.Context) {
	ct, ok := h.prepare(c, nil)
	if !ok {
		return
	}
	detail, err := h.uc.Detail(c.Request.Context(), ct)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
