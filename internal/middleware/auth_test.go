package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adelabdelgawad/auth-base/internal/config"
	"github.com/adelabdelgawad/auth-base/internal/mocks"
	"github.com/adelabdelgawad/auth-base/internal/models"
	"github.com/adelabdelgawad/auth-base/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTokenProvider(t *testing.T) *token.LocalTokenProvider {
	t.Helper()
	p, err := token.NewLocalTokenProvider(&config.Config{
		SessionSecret:        "middleware-secret",
		Algorithm:            "HS256",
		AccessTokenDuration:  time.Minute,
		RefreshTokenDuration: time.Hour,
	})
	require.NoError(t, err)
	return p
}

func newProtectedRouter(t *testing.T, p *token.LocalTokenProvider, recorder *mocks.MockRecorder) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/auth/me", RequireAccessToken(p, recorder), func(c *gin.Context) {
		identity := models.GetIdentityFromContext(c)
		if identity == nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, identity)
	})
	return r
}

func requestMe(r http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAccessToken_Valid(t *testing.T) {
	ctrl := gomock.NewController(t)
	recorder := mocks.NewMockRecorder(ctrl)
	recorder.EXPECT().RecordTokenValidation(validationValid)

	p := newTokenProvider(t)
	access, _, err := p.IssueAccessToken(&models.Identity{
		ID:       3,
		Username: "jdoe",
		FullName: "John Doe",
		Roles:    []int64{1, 2},
	}, 0)
	require.NoError(t, err)

	w := requestMe(newProtectedRouter(t, p, recorder), "Bearer "+access)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"id":3,"username":"jdoe","fullname":"John Doe","title":"","email":"","roles":[1,2]}`,
		w.Body.String(),
	)
}

func TestRequireAccessToken_Rejections(t *testing.T) {
	p := newTokenProvider(t)

	refresh, err := p.CreateRefreshToken(3)
	require.NoError(t, err)

	other, err := token.NewLocalTokenProvider(&config.Config{
		SessionSecret:        "another-secret",
		Algorithm:            "HS256",
		AccessTokenDuration:  time.Minute,
		RefreshTokenDuration: time.Hour,
	})
	require.NoError(t, err)
	forged, _, err := other.IssueAccessToken(&models.Identity{ID: 3, Username: "jdoe"}, 0)
	require.NoError(t, err)

	noAccount, _, err := p.CreateAccessToken(map[string]any{"foo": "bar"}, 0)
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		result        string
		message       string
	}{
		{"missing header", "", validationMissing, "Bearer token required"},
		{"wrong scheme", "Basic dGVzdDp0ZXN0", validationMissing, "Bearer token required"},
		{"garbage", "Bearer not-a-jwt", validationInvalid, "Invalid or expired token"},
		{"refresh token", "Bearer " + refresh, validationInvalid, "Invalid or expired token"},
		{"foreign signature", "Bearer " + forged, validationInvalid, "Invalid or expired token"},
		{"no account claim", "Bearer " + noAccount, validationInvalid, "Invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			recorder := mocks.NewMockRecorder(ctrl)
			recorder.EXPECT().RecordTokenValidation(tt.result)

			w := requestMe(newProtectedRouter(t, p, recorder), tt.authorization)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
			assert.Equal(t, `Bearer realm="auth-base"`, w.Header().Get("WWW-Authenticate"))
		})
	}
}
