package sessions

import "github.com/google/uuid"

// SessionContext is the typed caller identity threaded from the auth
// middleware into every session operation. It replaces ad hoc per-callsite
// lookups of token and device values off the request.
type SessionContext struct {
	UserID    uuid.UUID
	Email     string
	Token     string // raw bearer token, never logged
	DeviceID  string // persistent client fingerprint from X-Device-ID, may be empty
	IPAddress string
	UserAgent string
}
