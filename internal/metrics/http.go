package metrics

import (
	"strconv"
	"time"

	"github.com/adelabdelgawad/auth-base/internal/core"

	"github.com/gin-gonic/gin"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// HTTPMetricsMiddleware creates a Gin middleware that records HTTP metrics
func HTTPMetricsMiddleware(m core.Recorder) gin.HandlerFunc {
	metrics, ok := m.(*Metrics)
	if !ok {
		// NoopMetrics or unknown implementation
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		// Skip metrics endpoint to avoid self-recording
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		path := normalizePath(c.FullPath()) // Use route pattern, not actual path
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// normalizePath returns the route pattern, or "unknown" for unmatched routes
// so that arbitrary paths cannot blow up label cardinality.
func normalizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

func resultLabel(success bool) string {
	if success {
		return resultSuccess
	}
	return resultFailure
}

// RecordLogin records a login attempt and how long it took
func (m *Metrics) RecordLogin(method string, success bool, duration time.Duration) {
	m.AuthLoginTotal.WithLabelValues(method, resultLabel(success)).Inc()
	m.AuthLoginDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordTokenIssued records a signed access or refresh token
func (m *Metrics) RecordTokenIssued(tokenType string) {
	m.TokensIssuedTotal.WithLabelValues(tokenType).Inc()
}

// RecordTokenRefresh records the outcome of a refresh token exchange
func (m *Metrics) RecordTokenRefresh(success bool) {
	m.TokensRefreshedTotal.WithLabelValues(resultLabel(success)).Inc()
}

// RecordTokenValidation records a bearer token check
func (m *Metrics) RecordTokenValidation(result string) {
	m.TokenValidationTotal.WithLabelValues(result).Inc()
}

// RecordDirectorySearch records a full directory user search
func (m *Metrics) RecordDirectorySearch(duration time.Duration, users, failedOUs int) {
	m.DirectorySearchDuration.Observe(duration.Seconds())
	m.DirectoryUsersFound.Set(float64(users))
	m.DirectoryFailedOUsTotal.Add(float64(failedOUs))
}

// RecordDirectoryCacheResult records a hit or miss on the user listing cache
func (m *Metrics) RecordDirectoryCacheResult(hit bool) {
	if hit {
		m.DirectoryCacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	m.DirectoryCacheLookupsTotal.WithLabelValues("miss").Inc()
}

// RecordDatabaseQueryError records a failed query
func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}
