package handlers

import (
	"errors"
	"net/http"

	"github.com/adelabdelgawad/auth-base/internal/models"
	"github.com/adelabdelgawad/auth-base/internal/services"
	"github.com/adelabdelgawad/auth-base/internal/token"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(as *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, errCodeInvalidRequest, "Request body must be a JSON object")
		return
	}

	pair, err := h.authService.Login(c, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBadRequest):
			respondError(c, http.StatusBadRequest, errCodeInvalidRequest, "Username and password are required")
		case errors.Is(err, services.ErrAccountNotFound):
			respondError(c, http.StatusNotFound, errCodeAccountNotFound, "Account not found")
		case errors.Is(err, services.ErrUnauthorized):
			respondError(c, http.StatusUnauthorized, errCodeInvalidCredentials, "Invalid username or password")
		default:
			respondInternalError(c, "Auth", err)
		}
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, errCodeInvalidRequest, "Request body must be a JSON object")
		return
	}

	pair, err := h.authService.Refresh(c, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBadRequest):
			respondError(c, http.StatusBadRequest, errCodeInvalidRequest, "Refresh token is required")
		case errors.Is(err, token.ErrInvalidToken),
			errors.Is(err, token.ErrMalformedToken),
			errors.Is(err, token.ErrExpiredOrInvalid),
			errors.Is(err, services.ErrAccountNotFound),
			errors.Is(err, services.ErrUnauthorized):
			respondError(c, http.StatusUnauthorized, errCodeInvalidToken, "Invalid or expired refresh token")
		default:
			respondInternalError(c, "Auth", err)
		}
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Me handles GET /auth/me and returns the identity carried by the access token.
// It must run behind middleware.RequireAccessToken.
func (h *AuthHandler) Me(c *gin.Context) {
	identity := models.GetIdentityFromContext(c)
	if identity == nil {
		respondError(c, http.StatusUnauthorized, errCodeInvalidToken, "Not authenticated")
		return
	}
	c.JSON(http.StatusOK, identity)
}
