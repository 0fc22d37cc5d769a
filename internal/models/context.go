package models

import (
	"context"

	"github.com/gin-gonic/gin"
)

// IdentityContextKey is the gin context key under which the bearer
// middleware stores the decoded *Identity.
const IdentityContextKey = "identity"

// GetUsernameFromContext extracts the username of the authenticated caller.
// Returns empty string if the caller cannot be determined.
func GetUsernameFromContext(ctx context.Context) string {
	if identity := GetIdentityFromContext(ctx); identity != nil {
		return identity.Username
	}
	return ""
}

// GetIdentityFromContext returns the identity set by the bearer middleware, or nil.
func GetIdentityFromContext(ctx context.Context) *Identity {
	ginCtx, ok := ctx.(*gin.Context)
	if !ok {
		return nil
	}
	val, exists := ginCtx.Get(IdentityContextKey)
	if !exists {
		return nil
	}
	identity, _ := val.(*Identity)
	return identity
}
