package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-storefront/internal/inventory"
	"github.com/fekuna/omnipos-storefront/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/response"
	"github.com/fekuna/omnipos-storefront/internal/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	uc       inventory.UseCase
	validate *validator.Validate
	logger   logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:       uc,
		validate: validation.New(),
		logger:   log,
	}
}

func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var input dto.AdjustStockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Errors(c, http.StatusBadRequest, validation.FieldErrors(err))
		return
	}
	if err := h.validate.Struct(&input); err != nil {
		response.Errors(c, http.StatusBadRequest, validation.FieldErrors(err))
		return
	}
	input.ProductID = c.Param("id")
	if input.ReferenceType == "" {
		input.ReferenceType = "manual"
	}

	movement, err := h.uc.AdjustStock(c.Request.Context(), &input)
	switch {
	case errors.Is(err, inventory.ErrProductNotFound):
		response.Error(c, http.StatusNotFound, "product not found")
	case errors.Is(err, inventory.ErrInsufficientStock), errors.Is(err, inventory.ErrZeroQuantityChange):
		response.Errors(c, http.StatusBadRequest, gin.H{"quantity_change": []string{err.Error()}})
	case errors.Is(err, inventory.ErrLockNotAcquired):
		response.Error(c, http.StatusConflict, err.Error())
	case err != nil:
		h.logger.Error("failed to adjust stock", zap.String("product_id", input.ProductID), zap.Error(err))
		response.InternalError(c)
	default:
		c.JSON(http.StatusOK, movement)
	}
}

func (h *InventoryHandler) ListMovements(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filters := &dto.MovementFilters{
		ProductID:    c.Param("id"),
		MovementType: c.Query("type"),
		Page:         page,
		PageSize:     pageSize,
	}
	items, count, err := h.uc.ListMovements(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list movements", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.JSON(http.StatusOK, response.NewPage(items, filters.Page, filters.PageSize, count))
}
