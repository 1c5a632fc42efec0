package sessions

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Sentinel errors for the session subsystem. Store and cache implementations
// map driver failures onto ErrStoreUnavailable / ErrCacheUnavailable so that
// security checks can tell "no such session" apart from "backend is down" and
// fail closed on the latter.
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrDeviceAlreadyBound = errors.New("session is already bound to a different device")
	ErrForbidden          = errors.New("session does not belong to the caller")
	ErrStoreUnavailable   = errors.New("session store unavailable")
	ErrCacheUnavailable   = errors.New("session cache unavailable")
)

// Validation reason codes, preserved end-to-end per the propagation policy.
const (
	ReasonNotFound       = "not_found"
	ReasonRevoked        = "revoked"
	ReasonExpired        = "expired"
	ReasonDeviceMismatch = "device_mismatch"
	ReasonTokenMismatch  = "token_mismatch"
)

// IsInfrastructure reports whether err denotes an unreachable or timed-out
// backend. Callers performing security checks must treat these as deny.
func IsInfrastructure(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrCacheUnavailable)
}

// HashIdentifier returns a short stable digest of a secret identifier
// (session token, device fingerprint) safe to log and persist in audit rows.
func HashIdentifier(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])[:12]
}
