package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-storefront/internal/feedback"
	"github.com/fekuna/omnipos-storefront/internal/feedback/dto"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/response"
	"github.com/fekuna/omnipos-storefront/internal/pkg/validation"
	"github.com/fekuna/omnipos-storefront/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type FeedbackHandler struct {
	uc       feedback.UseCase
	validate *validator.Validate
	logger   logger.ZapLogger
}

func NewFeedbackHandler(uc feedback.UseCase, log logger.ZapLogger) *FeedbackHandler {
	return &FeedbackHandler{uc: uc, validate: validation.New(), logger: log}
}

func (h *FeedbackHandler) Form(c *gin.Context) {
	form, err := h.uc.Initial(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to pre-fill feedback form", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": form})
}

func (h *FeedbackHandler) Send(c *gin.Context) {
	var form dto.FeedbackForm
	if err := c.ShouldBind(&form); err != nil {
		response.Errors(c, http.StatusBadRequest, validation.FieldErrors(err))
		return
	}
	if err := h.validate.Struct(&form); err != nil {
		response.Errors(c, http.StatusBadRequest, validation.FieldErrors(err))
		return
	}

	ctx := c.Request.Context()
	if err := h.uc.Send(ctx, &form); err != nil {
		h.logger.Error("failed to schedule feedback", zap.Error(err))
		response.InternalError(c)
		return
	}

	if err := session.FromContext(c).AddMessage(ctx, session.LevelSuccess, "Thank you for your feedback!"); err != nil {
		h.logger.Warn("failed to store flash message", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}
