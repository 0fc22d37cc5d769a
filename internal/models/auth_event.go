package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of authentication event
type EventType string

const (
	EventLoginSuccess      EventType = "LOGIN_SUCCESS"
	EventLoginFailure      EventType = "LOGIN_FAILURE"
	EventTokenRefreshed    EventType = "TOKEN_REFRESHED"
	EventRefreshFailure    EventType = "TOKEN_REFRESH_FAILURE"
	EventRateLimitExceeded EventType = "RATE_LIMIT_EXCEEDED"
)

// AuthMethod records which credential check handled a login.
type AuthMethod string

const (
	AuthMethodLocal     AuthMethod = "local"
	AuthMethodDirectory AuthMethod = "directory"
	AuthMethodRefresh   AuthMethod = "refresh_token"
)

// EventDetails stores additional event-specific information as JSON
type EventDetails map[string]any

// Value implements the driver.Valuer interface for database storage
func (d EventDetails) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil //nolint:nilnil // nil driver.Value represents SQL NULL
	}
	return json.Marshal(d)
}

// Scan implements the sql.Scanner interface for database retrieval
func (d *EventDetails) Scan(value any) error {
	if value == nil {
		*d = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal EventDetails value: %v", value)
	}

	result := make(EventDetails)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}

	*d = result
	return nil
}

// AuthEvent is an immutable record of a login or refresh attempt.
type AuthEvent struct {
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id"`

	EventType EventType  `gorm:"type:varchar(50);index;not null" json:"event_type"`
	EventTime time.Time  `gorm:"index;not null"                  json:"event_time"`
	Method    AuthMethod `gorm:"type:varchar(20)"                json:"method"`

	AccountID int64  `gorm:"index"             json:"account_id,omitempty"`
	Username  string `gorm:"type:varchar(255)" json:"username"`
	ClientIP  string `gorm:"type:varchar(45)"  json:"client_ip"` // Support IPv6
	UserAgent string `gorm:"type:varchar(500)" json:"user_agent,omitempty"`

	Success      bool         `gorm:"index;not null" json:"success"`
	ErrorMessage string       `gorm:"type:text"      json:"error_message,omitempty"`
	Details      EventDetails `gorm:"type:json"      json:"details,omitempty"`

	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
}

// TableName specifies the table name for GORM
func (AuthEvent) TableName() string {
	return "auth_events"
}
