package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/adelabdelgawad/auth-base/internal/models"
	"github.com/adelabdelgawad/auth-base/internal/util"

	"github.com/google/uuid"
)

const auditBatchSize = 100

// AuthEventWriter persists batches of auth events.
type AuthEventWriter interface {
	CreateAuthEventBatch(events []*models.AuthEvent) error
}

// AuthEventEntry represents the data needed to record an auth event
type AuthEventEntry struct {
	EventType    models.EventType
	Method       models.AuthMethod
	AccountID    int64
	Username     string
	ClientIP     string
	UserAgent    string
	Success      bool
	ErrorMessage string
	Details      models.EventDetails
}

// AuditService records login and refresh attempts asynchronously in batches
type AuditService struct {
	store      AuthEventWriter
	enabled    bool
	bufferSize int

	// Async logging channel
	logChan chan *models.AuthEvent

	// Batch buffer
	batchBuffer []*models.AuthEvent
	batchMutex  sync.Mutex
	batchTicker *time.Ticker

	// Graceful shutdown
	wg           sync.WaitGroup
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// NewAuditService creates a new audit service
func NewAuditService(s AuthEventWriter, enabled bool, bufferSize int) *AuditService {
	if bufferSize <= 0 {
		bufferSize = 1000 // Default buffer size
	}

	service := &AuditService{
		store:       s,
		enabled:     enabled,
		bufferSize:  bufferSize,
		logChan:     make(chan *models.AuthEvent, bufferSize),
		batchBuffer: make([]*models.AuthEvent, 0, auditBatchSize),
		shutdownCh:  make(chan struct{}),
	}

	if enabled {
		service.batchTicker = time.NewTicker(1 * time.Second)
		service.wg.Add(1)
		go service.worker()
		log.Printf("[Audit] Service started with buffer size %d", bufferSize)
	} else {
		log.Println("[Audit] Service is disabled")
	}

	return service
}

// worker is the background goroutine that processes auth events
func (s *AuditService) worker() {
	defer s.wg.Done()

	for {
		select {
		case event := <-s.logChan:
			s.addToBatch(event)

		case <-s.batchTicker.C:
			s.flushBatch()

		case <-s.shutdownCh:
			// Drain whatever is still queued, then flush
			for {
				select {
				case event := <-s.logChan:
					s.addToBatch(event)
				default:
					s.flushBatch()
					return
				}
			}
		}
	}
}

// addToBatch adds an event to the batch buffer
func (s *AuditService) addToBatch(event *models.AuthEvent) {
	s.batchMutex.Lock()
	defer s.batchMutex.Unlock()

	s.batchBuffer = append(s.batchBuffer, event)

	if len(s.batchBuffer) >= auditBatchSize {
		s.flushBatchUnsafe()
	}
}

// flushBatch flushes the batch buffer to the database (thread-safe)
func (s *AuditService) flushBatch() {
	s.batchMutex.Lock()
	defer s.batchMutex.Unlock()
	s.flushBatchUnsafe()
}

// flushBatchUnsafe flushes the batch buffer without locking (caller must hold lock)
func (s *AuditService) flushBatchUnsafe() {
	if len(s.batchBuffer) == 0 {
		return
	}

	toWrite := make([]*models.AuthEvent, len(s.batchBuffer))
	copy(toWrite, s.batchBuffer)
	s.batchBuffer = s.batchBuffer[:0]

	if err := s.store.CreateAuthEventBatch(toWrite); err != nil {
		log.Printf("[Audit] Failed to write %d events: %v", len(toWrite), err)
	}
}

// Log records an auth event asynchronously. Events are dropped when the
// buffer is full so a slow database never blocks a login.
func (s *AuditService) Log(ctx context.Context, entry AuthEventEntry) {
	if s == nil || !s.enabled {
		return
	}

	if entry.ClientIP == "" {
		entry.ClientIP = util.GetIPFromContext(ctx)
	}
	if entry.UserAgent == "" {
		entry.UserAgent = util.GetUserAgentFromContext(ctx)
	}

	now := time.Now()
	event := &models.AuthEvent{
		ID:           uuid.New().String(),
		EventType:    entry.EventType,
		EventTime:    now,
		Method:       entry.Method,
		AccountID:    entry.AccountID,
		Username:     entry.Username,
		ClientIP:     entry.ClientIP,
		UserAgent:    entry.UserAgent,
		Success:      entry.Success,
		ErrorMessage: entry.ErrorMessage,
		Details:      maskSensitiveDetails(entry.Details),
		CreatedAt:    now,
	}

	select {
	case s.logChan <- event:
	default:
		log.Printf("[Audit] WARNING: buffer full, dropping %s event for %q", entry.EventType, entry.Username)
	}
}

// Shutdown gracefully shuts down the audit service
func (s *AuditService) Shutdown(ctx context.Context) error {
	if s == nil || !s.enabled {
		return nil
	}

	s.shutdownOnce.Do(func() {
		s.batchTicker.Stop()
		close(s.shutdownCh)
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[Audit] Service shut down gracefully")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit service shutdown timeout: %w", ctx.Err())
	}
}

// maskSensitiveDetails redacts credentials that callers put in event details
func maskSensitiveDetails(details models.EventDetails) models.EventDetails {
	if details == nil {
		return details
	}

	masked := make(models.EventDetails, len(details))
	for key, value := range details {
		if isSensitiveField(key) {
			masked[key] = "***REDACTED***"
			continue
		}
		masked[key] = value
	}
	return masked
}

// isSensitiveField checks if a field should be completely masked
func isSensitiveField(key string) bool {
	key = strings.ToLower(key)
	for _, field := range []string{"password", "token", "secret"} {
		if strings.Contains(key, field) {
			return true
		}
	}
	return false
}
