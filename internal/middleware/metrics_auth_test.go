package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const testToken = "test-secret-token-123"

func newMetricsRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(MetricsAuthMiddleware(token))
	r.GET("/metrics", func(c *gin.Context) {
		c.String(http.StatusOK, "metrics")
	})
	return r
}

func TestMetricsAuthMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		configured    string
		authorization string
		wantStatus    int
		wantBody      string
	}{
		{
			name:       "no token configured allows access",
			configured: "",
			wantStatus: http.StatusOK,
			wantBody:   "metrics",
		},
		{
			name:          "valid token",
			configured:    testToken,
			authorization: "Bearer " + testToken,
			wantStatus:    http.StatusOK,
			wantBody:      "metrics",
		},
		{
			name:          "wrong token",
			configured:    testToken,
			authorization: "Bearer wrong-token",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      "Invalid token",
		},
		{
			name:       "missing header",
			configured: testToken,
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Bearer token required",
		},
		{
			name:          "basic auth scheme",
			configured:    testToken,
			authorization: "Basic dGVzdDp0ZXN0",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      "Bearer token required",
		},
		{
			name:          "empty bearer token",
			configured:    testToken,
			authorization: "Bearer ",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      "Bearer token required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newMetricsRouter(tt.configured)
			w := httptest.NewRecorder()
			req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/metrics", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, `Bearer realm="Metrics"`, w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}
