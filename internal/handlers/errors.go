package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the "error" field of JSON error bodies
const (
	errCodeInvalidRequest     = "invalid_request"
	errCodeAccountNotFound    = "account_not_found"
	errCodeInvalidCredentials = "invalid_credentials"
	errCodeInvalidToken       = "invalid_token"
	errCodeDirectoryError     = "directory_error"
	errCodeServerError        = "server_error"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error":   code,
		"message": message,
	})
}

// respondInternalError logs err and writes a body that does not leak it.
func respondInternalError(c *gin.Context, scope string, err error) {
	log.Printf("[%s] %s %s failed: %v", scope, c.Request.Method, c.FullPath(), err)
	respondError(c, http.StatusInternalServerError, errCodeServerError, "Internal server error")
}
