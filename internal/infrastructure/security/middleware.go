package security

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zerowastechef/server/internal/domain/user"
	apperrors "github.com/zerowastechef/server/pkg/errors"
)

// Context keys set by Authenticate
const (
	ContextKeyIdentity = "identity"
	ContextKeyUserID   = "user_id"
)

// RoleReader loads the stored user record for role checks
type RoleReader interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

// Authenticate verifies the bearer token and attaches the caller's identity
func (s *TokenService) Authenticate(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := s.AuthenticateRequest(c.GetHeader("Authorization"))
		if err != nil {
			logger.Debug("Token rejected",
				zap.String("path", c.FullPath()),
				zap.String("ip", c.ClientIP()),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(apperrors.ToResponse(err))
			return
		}

		c.Set(ContextKeyIdentity, identity)
		c.Set(ContextKeyUserID, identity.ID)
		c.Next()
	}
}

// RequireAdmin lets the request through only when the caller's stored role
// is administrator. It must run after Authenticate.
func RequireAdmin(roles RoleReader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(apperrors.ToResponse(apperrors.NewMissingTokenError()))
			return
		}

		if err := AuthorizeAdmin(c.Request.Context(), roles, identity); err != nil {
			if !apperrors.Is(err, apperrors.CodeForbiddenRole) {
				logger.Error("Role lookup failed", zap.Int64("user_id", identity.ID), zap.Error(err))
			}
			c.AbortWithStatusJSON(apperrors.ToResponse(err))
			return
		}
		c.Next()
	}
}

// AuthorizeAdmin re-reads the identity's stored role. Identities that no
// longer exist are treated like standard users.
func AuthorizeAdmin(ctx context.Context, roles RoleReader, identity *Identity) error {
	u, err := roles.FindByID(ctx, identity.ID)
	if errors.Is(err, user.ErrUserNotFound) {
		return apperrors.NewForbiddenRoleError()
	}
	if err != nil {
		return apperrors.NewDatabaseError("load user role", err)
	}
	if !u.IsAdmin() {
		return apperrors.NewForbiddenRoleError()
	}
	return nil
}

// IdentityFromContext returns the identity set by Authenticate
func IdentityFromContext(c *gin.Context) (*Identity, bool) {
	value, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*Identity)
	return identity, ok
}
