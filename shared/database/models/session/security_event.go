package session

import (
	"time"

	"github.com/google/uuid"
)

// Security event types and severities
const (
	EventDeviceMismatch = "device_mismatch"
	EventTokenMismatch  = "token_mismatch"

	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// SecurityEvent - durable audit row for critical session security findings
// (device fingerprint mismatch, token echo mismatch). Device identifiers are
// stored as truncated hashes, never raw.
type SecurityEvent struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID         uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	SessionID      uuid.UUID `json:"session_id" gorm:"type:uuid;not null"`
	EventType      string    `json:"event_type" gorm:"size:100;not null"`
	Severity       string    `json:"severity" gorm:"size:50;not null"`
	BoundDevice    string    `json:"bound_device" gorm:"size:64"`     // truncated hash
	PresentedValue string    `json:"presented_value" gorm:"size:64"`  // truncated hash
	IPAddress      string    `json:"ip_address" gorm:"size:50"`
	UserAgent      string    `json:"user_agent" gorm:"size:500"`
	CreatedAt      time.Time `json:"created_at"`
}
