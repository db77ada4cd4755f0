package handler

import (
	"context"
	"fmt"

	"github.com/dtroode/sessiongate/internal/api/http/response"
	"github.com/dtroode/sessiongate/internal/logger"
	"github.com/dtroode/sessiongate/internal/model"
	"github.com/gin-gonic/gin"
)

// AuthService defines the account operations exposed over HTTP.
type AuthService interface {
	Login(ctx context.Context, creds model.Credentials) (model.LoginResult, error)
	Profile(ctx context.Context, subject string) (model.Profile, error)
	ChangePassword(ctx context.Context, subject, current, next string) error
	Logout(ctx context.Context, subject string) error
}

// Auth handles login and the account routes of an authenticated user.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler instance.
func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// Login handles POST /login.
func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Auth handler: invalid login body",
			"error", err.Error())
		response.Error(c, fmt.Errorf("%w: %w", model.ErrBadRequest, err))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), model.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.LoginOK(c, result)
}

// Me handles GET /users/me.
func (h *Auth) Me(c *gin.Context) {
	subject, ok := h.subject(c)
	if !ok {
		return
	}

	profile, err := h.authService.Profile(c.Request.Context(), subject)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.ProfileOK(c, profile)
}

// ChangePassword handles PATCH /users/me/password.
func (h *Auth) ChangePassword(c *gin.Context) {
	subject, ok := h.subject(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, fmt.Errorf("%w: %w", model.ErrBadRequest, err))
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), subject, req.CurrentPassword, req.NewPassword)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Password changed")
}

// Logout handles POST /logout.
func (h *Auth) Logout(c *gin.Context) {
	subject, ok := h.subject(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), subject); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Logged out")
}

func (h *Auth) subject(c *gin.Context) (string, bool) {
	subject, ok := h.contextManager.GetSubjectFromContext(c.Request.Context())
	if !ok {
		response.Error(c, model.ErrMissingAuthorization)
		return "", false
	}
	return subject, true
}
