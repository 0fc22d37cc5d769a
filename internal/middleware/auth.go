package middleware

import (
	"net/http"
	"strings"

	"github.com/adelabdelgawad/auth-base/internal/core"
	"github.com/adelabdelgawad/auth-base/internal/models"
	"github.com/adelabdelgawad/auth-base/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// Token validation results reported to the metrics recorder
const (
	validationValid   = "valid"
	validationMissing = "missing"
	validationInvalid = "invalid"
)

// AccessTokenDecoder verifies access tokens.
type AccessTokenDecoder interface {
	DecodeAccessToken(tokenString string) (jwt.MapClaims, error)
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	return tok, tok != ""
}

func abortUnauthorized(c *gin.Context, realm, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="`+realm+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
	})
}

// RequireAccessToken rejects requests without a valid access token and
// stores the decoded identity under models.IdentityContextKey.
func RequireAccessToken(decoder AccessTokenDecoder, m core.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			m.RecordTokenValidation(validationMissing)
			abortUnauthorized(c, "auth-base", "Bearer token required")
			return
		}

		claims, err := decoder.DecodeAccessToken(raw)
		if err != nil {
			m.RecordTokenValidation(validationInvalid)
			abortUnauthorized(c, "auth-base", "Invalid or expired token")
			return
		}

		identity, err := token.IdentityFromClaims(claims)
		if err != nil {
			m.RecordTokenValidation(validationInvalid)
			abortUnauthorized(c, "auth-base", "Invalid or expired token")
			return
		}

		m.RecordTokenValidation(validationValid)
		c.Set(models.IdentityContextKey, identity)
		c.Next()
	}
}
