package core

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Authentication
	RecordLogin(method string, success bool, duration time.Duration)

	// Token Operations
	RecordTokenIssued(tokenType string)
	RecordTokenRefresh(success bool)
	RecordTokenValidation(result string)

	// Directory
	RecordDirectorySearch(duration time.Duration, users, failedOUs int)
	RecordDirectoryCacheResult(hit bool)

	// Database Operations
	RecordDatabaseQueryError(operation string)
}
