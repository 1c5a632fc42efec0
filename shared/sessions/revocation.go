package sessions

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// RevocationManager invalidates sessions: one by id, all for a user, or all
// but the current one (password change). Every mutation is a single
// transactional intent - store soft-delete first, then cache invalidation -
// and the cache step must succeed before the operation reports success, so a
// revoked session can never keep validating from a stale cache entry.
type RevocationManager struct {
	store Store
	cache SessionCache
}

func NewRevocationManager(store Store, cache SessionCache) *RevocationManager {
	return &RevocationManager{store: store, cache: cache}
}

// Revoke soft-deletes one session after verifying the caller owns it.
// A foreign session yields ErrForbidden, not a silent no-op.
func (m *RevocationManager) Revoke(ctx context.Context, callerID uuid.UUID, sessionID uuid.UUID) error {
	record, err := m.store.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if record.UserID != callerID {
		return ErrForbidden
	}

	if err := m.store.Deactivate(ctx, sessionID); err != nil {
		return err
	}

	if err := m.cache.Invalidate(ctx, record.SessionToken); err != nil {
		// The store already holds is_active=false, so the session is dead
		// authoritatively; reporting the error makes the caller retry until
		// the cache agrees.
		return fmt.Errorf("session revoked but cache invalidation incomplete: %w", err)
	}

	log.Printf("🗑️  Session revoked: %s (user %s)", sessionID, callerID)
	return nil
}

// RevokeAll revokes every active session for the user and returns the count.
func (m *RevocationManager) RevokeAll(ctx context.Context, userID uuid.UUID) (int, error) {
	return m.revokeActive(ctx, userID, "")
}

// RevokeAllExceptCurrent revokes every active session for the user except
// the one matching currentToken. Used after a password change so the current
// browser stays signed in; the returned count feeds the "we signed you out
// of N other devices" notice.
func (m *RevocationManager) RevokeAllExceptCurrent(ctx context.Context, userID uuid.UUID, currentToken string) (int, error) {
	return m.revokeActive(ctx, userID, currentToken)
}

func (m *RevocationManager) revokeActive(ctx context.Context, userID uuid.UUID, keepToken string) (int, error) {
	records, err := m.store.GetActiveByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	ids := make([]uuid.UUID, 0, len(records))
	tokens := make([]string, 0, len(records))
	for _, record := range records {
		if keepToken != "" && record.SessionToken == keepToken {
			continue
		}
		ids = append(ids, record.ID)
		tokens = append(tokens, record.SessionToken)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := m.store.DeactivateByIDs(ctx, ids); err != nil {
		return 0, err
	}

	// Invalidate every token even if one fails, then surface the first
	// failure so the caller retries.
	var firstErr error
	for _, token := range tokens {
		if err := m.cache.Invalidate(ctx, token); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return len(ids), fmt.Errorf("sessions revoked but cache invalidation incomplete: %w", firstErr)
	}

	log.Printf("🗑️  Revoked %d session(s) for user %s", len(ids), userID)
	return len(ids), nil
}
