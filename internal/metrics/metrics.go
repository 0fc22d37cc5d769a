package metrics

import (
	"sync"

	"github.com/adelabdelgawad/auth-base/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ensure Metrics implements core.Recorder at compile time
var _ core.Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Authentication Metrics
	AuthLoginTotal    *prometheus.CounterVec
	AuthLoginDuration *prometheus.HistogramVec

	// Token Metrics
	TokensIssuedTotal    *prometheus.CounterVec
	TokensRefreshedTotal *prometheus.CounterVec
	TokenValidationTotal *prometheus.CounterVec

	// Directory Metrics
	DirectorySearchDuration    prometheus.Histogram
	DirectoryUsersFound        prometheus.Gauge
	DirectoryFailedOUsTotal    prometheus.Counter
	DirectoryCacheLookupsTotal *prometheus.CounterVec

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database Query Metrics
	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) core.Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	return &Metrics{
		AuthLoginTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_total",
				Help: "Total number of login attempts",
			},
			[]string{"method", "result"}, // method: local, directory; result: success, failure
		),
		AuthLoginDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "auth_login_duration_seconds",
				Help:    "Time taken to verify credentials and issue tokens",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),

		TokensIssuedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_tokens_issued_total",
				Help: "Total number of tokens issued",
			},
			[]string{"token_type"}, // access, refresh
		),
		TokensRefreshedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_tokens_refreshed_total",
				Help: "Total number of refresh token exchanges",
			},
			[]string{"result"},
		),
		TokenValidationTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_token_validation_total",
				Help: "Total number of bearer token validations",
			},
			[]string{"result"}, // valid, invalid, missing
		),

		DirectorySearchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "directory_search_duration_seconds",
				Help:    "Time taken to search all organizational units",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		DirectoryUsersFound: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "directory_users_found",
				Help: "Number of enabled users returned by the last directory search",
			},
		),
		DirectoryFailedOUsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "directory_failed_ous_total",
				Help: "Total number of organizational unit searches that failed",
			},
		),
		DirectoryCacheLookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_cache_lookups_total",
				Help: "Directory user listing cache lookups",
			},
			[]string{"result"}, // hit, miss
		),

		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),

		DatabaseQueryErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_query_errors_total",
				Help: "Total number of database query errors",
			},
			[]string{"operation"}, // get_account, get_roles, update_profile
		),
	}
}
