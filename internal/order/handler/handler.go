package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-storefront/internal/auth"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/order"
	"github.com/fekuna/omnipos-storefront/internal/order/dto"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/response"
	"github.com/fekuna/omnipos-storefront/internal/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type OrderHandler struct {
	uc       order.UseCase
	validate *validator.Validate
	logger   logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:       uc,
		validate: validation.New(),
		logger:   log,
	}
}

// History lists the orders of the logged-in user. Requires auth.RequireLogin.
func (h *OrderHandler) History(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	orders, count, err := h.uc.History(c.Request.Context(), auth.UserID(c.Request.Context()), page)
	if err != nil {
		h.logger.Error("failed to load order history", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.JSON(http.StatusOK, response.NewPage(orders, page, h.uc.HistoryPageSize(), count))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, order.ErrOrderNotFound) {
		response.Error(c, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get order", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var input dto.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Errors(c, http.StatusBadRequest, validation.FieldErrors(err))
		return
	}
	if err := h.validate.Struct(&input); err != nil {
		response.Errors(c, http.StatusBadRequest, validation.FieldErrors(err))
		return
	}

	o, err := h.uc.UpdateStatus(c.Request.Context(), c.Param("id"), model.OrderStatus(input.Status))
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		response.Error(c, http.StatusNotFound, "order not found")
	case errors.Is(err, order.ErrInvalidStatus):
		response.Errors(c, http.StatusBadRequest, gin.H{"status": []string{err.Error()}})
	case err != nil:
		h.logger.Error("failed to update order status", zap.Error(err))
		response.InternalError(c)
	default:
		c.JSON(http.StatusOK, gin.H{"id": o.ID, "status": o.Status, "status_label": o.Status.Label()})
	}
}
