package sessions

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	sessionmodels "cubis-academy-backend/shared/database/models/session"
)

// ValidationResult is the tri-state verdict for a presented token. When
// Valid is false, Reason is one of not_found / revoked / expired.
type ValidationResult struct {
	Valid     bool      `json:"valid"`
	Reason    string    `json:"reason,omitempty"`
	UserID    uuid.UUID `json:"user_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Validator answers "is this token good right now" on the cheap path:
// cache-first with store fallback and repopulation. Infrastructure failures
// are returned as errors, never as verdicts - callers deny on error.
type Validator struct {
	store   Store
	cache   SessionCache
	timeout time.Duration
	now     func() time.Time
}

func NewValidator(store Store, cache SessionCache, timeout time.Duration) *Validator {
	return &Validator{
		store:   store,
		cache:   cache,
		timeout: timeout,
		now:     time.Now,
	}
}

// Validate looks the token up cache-first and evaluates its state. Expiry is
// re-derived from expires_at on every call, even when is_active is still
// true - there is no background reaper to rely on.
func (v *Validator) Validate(ctx context.Context, token string) (*ValidationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	record, hit, err := v.cache.Get(ctx, token)
	if err != nil {
		// The cache is an accelerator; the store stays authoritative. Only
		// log here - if the store is down too, the error below denies.
		log.Printf("❌ Session cache read failed, falling back to store: %v", err)
		hit = false
	}

	if !hit {
		record, err = v.store.GetByToken(ctx, token)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				return &ValidationResult{Valid: false, Reason: ReasonNotFound}, nil
			}
			return nil, err
		}
		if putErr := v.cache.Put(ctx, record); putErr != nil {
			log.Printf("❌ Session cache repopulation failed: %v", putErr)
		}
	}

	return v.evaluate(ctx, token, record), nil
}

func (v *Validator) evaluate(ctx context.Context, token string, record *sessionmodels.SessionRecord) *ValidationResult {
	if !record.IsActive {
		return &ValidationResult{Valid: false, Reason: ReasonRevoked, UserID: record.UserID}
	}
	if record.Expired(v.now()) {
		return &ValidationResult{Valid: false, Reason: ReasonExpired, UserID: record.UserID}
	}

	// Activity bump is display metadata only; a failure never fails the check.
	if err := v.store.TouchActivity(ctx, token, v.now().UTC()); err != nil {
		log.Printf("Warning: could not bump session activity: %v", err)
	}

	return &ValidationResult{
		Valid:     true,
		UserID:    record.UserID,
		ExpiresAt: record.ExpiresAt,
	}
}
