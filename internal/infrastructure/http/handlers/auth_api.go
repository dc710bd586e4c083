package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zerowastechef/server/internal/infrastructure/security"
	"github.com/zerowastechef/server/internal/ports/inbound"
)

// PasswordResetMessage confirms a completed password reset
const PasswordResetMessage = "Password reset successfully"

// AuthAPIHandlers handles account requests
type AuthAPIHandlers struct {
	users  inbound.IdentityService
	logger *zap.Logger
}

// NewAuthAPIHandlers creates a new authentication API handlers instance
func NewAuthAPIHandlers(users inbound.IdentityService, logger *zap.Logger) *AuthAPIHandlers {
	return &AuthAPIHandlers{
		users:  users,
		logger: logger.Named("auth-api"),
	}
}

// Register handles POST /api/auth/register
func (h *AuthAPIHandlers) Register(c *gin.Context) {
	var cmd inbound.RegisterCommand
	if !bindJSON(c, &cmd) {
		return
	}

	token, err := h.users.Register(c.Request.Context(), cmd)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, token)
}

// Login handles POST /api/auth/login
func (h *AuthAPIHandlers) Login(c *gin.Context) {
	var cmd inbound.LoginCommand
	if !bindJSON(c, &cmd) {
		return
	}

	token, err := h.users.Login(c.Request.Context(), cmd)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *AuthAPIHandlers) ForgotPassword(c *gin.Context) {
	var cmd inbound.ForgotPasswordCommand
	if !bindJSON(c, &cmd) {
		return
	}

	ticket, err := h.users.ForgotPassword(c.Request.Context(), cmd)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthAPIHandlers) ResetPassword(c *gin.Context) {
	var cmd inbound.ResetPasswordCommand
	if !bindJSON(c, &cmd) {
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), cmd); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: PasswordResetMessage})
}

// CheckDuplicates handles POST /api/auth/check-duplicates
func (h *AuthAPIHandlers) CheckDuplicates(c *gin.Context) {
	var query inbound.DuplicateQuery
	if !bindJSON(c, &query) {
		return
	}

	result, err := h.users.CheckDuplicates(c.Request.Context(), query)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Profile handles GET /api/user
func (h *AuthAPIHandlers) Profile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	profile, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Activities handles GET /api/user/activities
func (h *AuthAPIHandlers) Activities(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	activities, err := h.users.GetActivities(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, activities)
}

// AllActivities handles GET /api/all-activities
func (h *AuthAPIHandlers) AllActivities(c *gin.Context) {
	activities, err := h.users.GetAllActivities(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, activities)
}

// ListUsers handles GET /api/users
func (h *AuthAPIHandlers) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// DeleteUser handles DELETE /api/users/:id
func (h *AuthAPIHandlers) DeleteUser(c *gin.Context) {
	userID, ok := pathID(c, "id", "user id")
	if !ok {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), userID); err != nil {
		fail(c, err)
		return
	}

	h.logger.Info("User deleted by admin",
		zap.Int64("user_id", userID),
		zap.Int64("admin_id", c.GetInt64(security.ContextKeyUserID)),
	)
	c.Status(http.StatusNoContent)
}
