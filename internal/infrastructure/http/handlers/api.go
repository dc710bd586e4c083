// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zerowastechef/server/internal/infrastructure/security"
	apperrors "github.com/zerowastechef/server/pkg/errors"
)

// MessageResponse is the body of endpoints that only confirm an action
type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedResponse carries the id of a created resource
type CreatedResponse struct {
	ID int64 `json:"id"`
}

// fail hands err to the error middleware and stops the chain
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// bindJSON decodes the request body. Field rules are checked by the
// services, so only malformed bodies are rejected here.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, apperrors.NewBadRequestError("Invalid request body").WithCause(err))
		return false
	}
	return true
}

// pathID parses a numeric path parameter
func pathID(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		fail(c, apperrors.NewBadRequestError("Invalid "+label))
		return 0, false
	}
	return id, true
}

// callerID returns the id of the authenticated caller
func callerID(c *gin.Context) (int64, bool) {
	identity, ok := security.IdentityFromContext(c)
	if !ok {
		fail(c, apperrors.NewMissingTokenError())
		return 0, false
	}
	return identity.ID, true
}
