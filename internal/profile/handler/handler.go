package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-storefront/internal/auth"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/response"
	"github.com/fekuna/omnipos-storefront/internal/pkg/validation"
	"github.com/fekuna/omnipos-storefront/internal/profile"
	"github.com/fekuna/omnipos-storefront/internal/profile/dto"
	"github.com/fekuna/omnipos-storefront/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const DetailPath = "/profile/"

type ProfileHandler struct {
	uc       profile.UseCase
	validate *validator.Validate
	logger   logger.ZapLogger
}

func NewProfileHandler(uc profile.UseCase, log logger.ZapLogger) *ProfileHandler {
	return &ProfileHandler{
		uc:       uc,
		validate: validation.New(),
		logger:   log,
	}
}

func (h *ProfileHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBind(dst); err != nil {
		response.Errors(c, http.StatusBadRequest, validation.FieldErrors(err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		response.Errors(c, http.StatusBadRequest, validation.FieldErrors(err))
		return false
	}
	return true
}

func (h *ProfileHandler) Register(c *gin.Context) {
	var input dto.RegisterInput
	if !h.bind(c, &input) {
		return
	}

	u, err := h.uc.Register(c.Request.Context(), &input)
	if errors.Is(err, profile.ErrUserExists) {
		response.Errors(c, http.StatusBadRequest, gin.H{"username": []string{"A user with that username already exists."}})
		return
	}
	if err != nil {
		h.logger.Error("failed to register user", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *ProfileHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if !h.bind(c, &input) {
		return
	}

	result, err := h.uc.Login(c.Request.Context(), session.FromContext(c), &input)
	if errors.Is(err, profile.ErrInvalidCredentials) {
		response.Errors(c, http.StatusBadRequest, gin.H{"__all__": []string{
			"Please enter a correct username and password. Note that both fields may be case-sensitive.",
		}})
		return
	}
	if err != nil {
		h.logger.Error("failed to log in", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ProfileHandler) Logout(c *gin.Context) {
	if err := h.uc.Logout(c.Request.Context(), session.FromContext(c)); err != nil {
		h.logger.Error("failed to log out", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Message(c, "Logged out")
}

// Detail requires auth.RequireLogin.
func (h *ProfileHandler) Detail(c *gin.Context) {
	u, a, err := h.uc.Detail(c.Request.Context(), auth.UserID(c.Request.Context()))
	if errors.Is(err, profile.ErrUserNotFound) {
		response.Error(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load profile", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.JSON(http.StatusOK, dto.FromModels(u, a))
}

func (h *ProfileHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	sess := session.FromContext(c)

	var input dto.ProfileInput
	if !h.bind(c, &input) {
		_ = sess.AddMessage(ctx, session.LevelError, "Please correct the errors below.")
		return
	}

	err := h.uc.Update(ctx, auth.UserID(ctx), &input)
	if errors.Is(err, profile.ErrUserNotFound) {
		response.Error(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to update profile", zap.Error(err))
		response.InternalError(c)
		return
	}

	if err := sess.AddMessage(ctx, session.LevelSuccess, "Your profile was successfully updated!"); err != nil {
		h.logger.Warn("failed to store flash message", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, DetailPath)
}
