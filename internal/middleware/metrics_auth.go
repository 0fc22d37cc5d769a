package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
)

// MetricsAuthMiddleware creates a middleware that protects metrics endpoint with Bearer token
func MetricsAuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// If no token configured, allow access
		if token == "" {
			c.Next()
			return
		}

		provided, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Metrics", "Bearer token required")
			return
		}

		// Constant-time comparison to prevent timing attacks
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			abortUnauthorized(c, "Metrics", "Invalid token")
			return
		}

		c.Next()
	}
}
