package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-storefront/internal/category"
	"github.com/fekuna/omnipos-storefront/internal/category/dto"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/response"
	"github.com/fekuna/omnipos-storefront/internal/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	uc       category.UseCase
	validate *validator.Validate
	logger   logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:       uc,
		validate: validation.New(),
		logger:   log,
	}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	tree, err := h.uc.ListCategories(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list categories", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": tree})
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var input dto.CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Errors(c, http.StatusBadRequest, validation.FieldErrors(err))
		return
	}
	if err := h.validate.Struct(&input); err != nil {
		response.Errors(c, http.StatusBadRequest, validation.FieldErrors(err))
		return
	}

	cat, err := h.uc.CreateCategory(c.Request.Context(), &input)
	switch {
	case errors.Is(err, category.ErrCategoryNotFound):
		response.Errors(c, http.StatusBadRequest, gin.H{"parent_id": []string{"Parent category does not exist."}})
		return
	case errors.Is(err, category.ErrTitleTaken):
		response.Errors(c, http.StatusBadRequest, gin.H{"title": []string{"Category with this title already exists."}})
		return
	case err != nil:
		h.logger.Error("failed to create category", zap.Error(err))
		response.InternalError(c)
		return
	}

	c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	err := h.uc.DeleteCategory(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, category.ErrCategoryNotFound):
		response.Error(c, http.StatusNotFound, "category not found")
		return
	case errors.Is(err, category.ErrDefaultCategory):
		response.Error(c, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.Error("failed to delete category", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.Status(http.StatusNoContent)
}
