package metrics

import (
	"time"

	"github.com/adelabdelgawad/auth-base/internal/core"
)

// NoopMetrics discards every measurement. Used when METRICS_ENABLED=false.
type NoopMetrics struct{}

var _ core.Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a recorder that does nothing
func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordLogin(method string, success bool, duration time.Duration)    {}
func (n *NoopMetrics) RecordTokenIssued(tokenType string)                                 {}
func (n *NoopMetrics) RecordTokenRefresh(success bool)                                    {}
func (n *NoopMetrics) RecordTokenValidation(result string)                                {}
func (n *NoopMetrics) RecordDirectorySearch(duration time.Duration, users, failedOUs int) {}
func (n *NoopMetrics) RecordDirectoryCacheResult(hit bool)                                {}
func (n *NoopMetrics) RecordDatabaseQueryError(operation string)                          {}
