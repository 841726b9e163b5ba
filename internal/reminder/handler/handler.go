package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/response"
	"github.com/fekuna/omnipos-storefront/internal/pkg/validation"
	"github.com/fekuna/omnipos-storefront/internal/reminder"
	"github.com/fekuna/omnipos-storefront/internal/reminder/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	okMessage   = "We will notify you as soon as product will go on sale"
	failMessage = "Something went wrong, try again later"
)

type ReminderHandler struct {
	uc       reminder.UseCase
	validate *validator.Validate
	logger   logger.ZapLogger
}

func NewReminderHandler(uc reminder.UseCase, log logger.ZapLogger) *ReminderHandler {
	return &ReminderHandler{uc: uc, validate: validation.New(), logger: log}
}

// AddReminder answers 404 for every rejected request, matching the
// storefront script that only distinguishes success from failure.
func (h *ReminderHandler) AddReminder(c *gin.Context) {
	var input dto.AddReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusNotFound, failMessage)
		return
	}
	if err := h.validate.Struct(&input); err != nil {
		response.Error(c, http.StatusNotFound, failMessage)
		return
	}

	_, err := h.uc.AddReminder(c.Request.Context(), input.ProductID, input.Email)
	switch {
	case errors.Is(err, reminder.ErrProductNotFound),
		errors.Is(err, reminder.ErrProductInStock),
		errors.Is(err, reminder.ErrAlreadySubscribed):
		response.Error(c, http.StatusNotFound, failMessage)
	case err != nil:
		h.logger.Error("failed to add reminder", zap.Error(err))
		response.Error(c, http.StatusNotFound, failMessage)
	default:
		response.Message(c, okMessage)
	}
}
