package util

import (
	"context"

	"github.com/gin-gonic/gin"
)

type contextKey string

const (
	clientIPKey  contextKey = "client_ip"
	userAgentKey contextKey = "user_agent"
)

// WithRequestMetadata stores the caller's address and user agent on ctx for
// code that runs outside a gin handler.
func WithRequestMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey, clientIP)
	return context.WithValue(ctx, userAgentKey, userAgent)
}

// GetIPFromContext extracts the client IP address from the context
func GetIPFromContext(ctx context.Context) string {
	// Gin's ClientIP() handles X-Forwarded-For and other headers
	if ginCtx, ok := ctx.(*gin.Context); ok {
		return ginCtx.ClientIP()
	}

	if ip, ok := ctx.Value(clientIPKey).(string); ok {
		return ip
	}

	return ""
}

// GetUserAgentFromContext extracts the User-Agent header from the context
func GetUserAgentFromContext(ctx context.Context) string {
	if ginCtx, ok := ctx.(*gin.Context); ok && ginCtx.Request != nil {
		return ginCtx.Request.UserAgent()
	}

	if ua, ok := ctx.Value(userAgentKey).(string); ok {
		return ua
	}

	return ""
}
