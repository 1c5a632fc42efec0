package session

import (
	"time"

	"cubis-academy-backend/shared/database/models"

	"github.com/google/uuid"
)

// Login methods recorded on a session
const (
	LoginMethodPassword  = "password"
	LoginMethodFederated = "federated"
	LoginMethodOther     = "other"
)

// SessionRecord - one row per issued login. Rows are never hard-deleted;
// revocation flips is_active to false and it never goes back.
type SessionRecord struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	SessionToken string    `json:"-" gorm:"size:500;uniqueIndex;not null"`
	DeviceID     *string   `json:"device_id" gorm:"size:255"` // nil until first device check binds it
	IPAddress    string    `json:"ip_address" gorm:"size:50"`
	UserAgent    string    `json:"user_agent" gorm:"size:500"`
	LoginMethod  string    `json:"login_method" gorm:"size:50;default:'password'"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null"`
	LastActivity time.Time `json:"last_activity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	User models.User `json:"-" gorm:"foreignKey:UserID"`
}

// HasDevice reports whether the session has been bound to a device fingerprint.
func (s *SessionRecord) HasDevice() bool {
	return s.DeviceID != nil && *s.DeviceID != ""
}

// Device returns the bound device fingerprint or "" when unbound.
func (s *SessionRecord) Device() string {
	if s.DeviceID == nil {
		return ""
	}
	return *s.DeviceID
}

// Expired reports whether the session is past its absolute lifetime at now.
// Expiry is time-derived; is_active is not consulted.
func (s *SessionRecord) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
