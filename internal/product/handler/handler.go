package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-storefront/internal/category"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/response"
	"github.com/fekuna/omnipos-storefront/internal/pkg/validation"
	"github.com/fekuna/omnipos-storefront/internal/product"
	"github.com/fekuna/omnipos-storefront/internal/product/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxImageSize = 10 << 20

type ProductHandler struct {
	uc       product.UseCase
	validate *validator.Validate
	logger   logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:       uc,
		validate: validation.New(),
		logger:   log,
	}
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	page := pageParam(c)
	products, count, err := h.uc.ListProducts(c.Request.Context(), &dto.ProductFilters{Page: page})
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.JSON(http.StatusOK, response.NewPage(products, page, h.uc.PageSize(), count))
}

func (h *ProductHandler) SearchProducts(c *gin.Context) {
	page := pageParam(c)
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusOK, response.NewPage([]model.Product{}, page, h.uc.PageSize(), 0))
		return
	}

	products, count, err := h.uc.ListProducts(c.Request.Context(), &dto.ProductFilters{SearchQuery: query, Page: page})
	if err != nil {
		h.logger.Error("failed to search products", zap.String("q", query), zap.Error(err))
		response.InternalError(c)
		return
	}
	c.JSON(http.StatusOK, response.NewPage(products, page, h.uc.PageSize(), count))
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.uc.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, product.ErrProductNotFound) {
		response.Error(c, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get product", zap.Error(err))
		response.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":     p,
		"final_price": p.FinalPrice(),
		"in_stock":    p.InStock(),
	})
}

func (h *ProductHandler) GetCategory(c *gin.Context) {
	page := pageParam(c)
	cat, products, count, err := h.uc.ListCategoryProducts(c.Request.Context(), c.Param("slug"), page)
	if errors.Is(err, category.ErrCategoryNotFound) {
		response.Error(c, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to list category products", zap.Error(err))
		response.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": cat,
		"products": response.NewPage(products, page, h.uc.PageSize(), count),
	})
}

// --- admin ---

func (h *ProductHandler) writeUseCaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, product.ErrProductNotFound):
		response.Error(c, http.StatusNotFound, "product not found")
	case errors.Is(err, product.ErrInvalidPrice):
		response.Errors(c, http.StatusBadRequest, gin.H{"price": []string{err.Error()}})
	case errors.Is(err, product.ErrInvalidDiscount):
		response.Errors(c, http.StatusBadRequest, gin.H{"discount": []string{err.Error()}})
	case errors.Is(err, product.ErrNoImageStorage):
		response.Error(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, product.ErrInvalidStock):
		response.Errors(c, http.StatusBadRequest, gin.H{"stock": []string{err.Error()}})
	default:
		h.logger.Error("product admin operation failed", zap.Error(err))
		response.InternalError(c)
	}
}

func (h *ProductHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Errors(c, http.StatusBadRequest, validation.FieldErrors(err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		response.Errors(c, http.StatusBadRequest, validation.FieldErrors(err))
		return false
	}
	return true
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input dto.CreateProductInput
	if !h.bind(c, &input) {
		return
	}

	p, err := h.uc.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		h.writeUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var input dto.UpdateProductInput
	if !h.bind(c, &input) {
		return
	}
	input.ID = c.Param("id")

	p, err := h.uc.UpdateProduct(c.Request.Context(), &input)
	if err != nil {
		h.writeUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) ApplyDiscount(c *gin.Context) {
	var input dto.ApplyDiscountInput
	if !h.bind(c, &input) {
		return
	}

	n, err := h.uc.ApplyDiscount(c.Request.Context(), &input)
	if err != nil {
		h.writeUseCaseError(c, err)
		return
	}
	response.Message(c, strconv.Itoa(n)+" products were successfully updated.")
}

func (h *ProductHandler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageSize)
	file, err := c.FormFile("image")
	if err != nil {
		response.Errors(c, http.StatusBadRequest, gin.H{"image": []string{"No file uploaded."}})
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Errors(c, http.StatusBadRequest, gin.H{"image": []string{err.Error()}})
		return
	}
	defer f.Close()

	p, err := h.uc.UploadImage(c.Request.Context(), c.Param("id"), file.Filename, file.Header.Get("Content-Type"), f)
	if err != nil {
		h.writeUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.uc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.writeUseCaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
