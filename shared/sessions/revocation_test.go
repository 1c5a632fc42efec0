package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRevokeThenValidateSeesRevoked(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	userID := uuid.New()
	record := newActiveRecord(userID, "tok-revoke")
	store.put(record)
	if err := cache.Put(context.Background(), record); err != nil {
		t.Fatal(err)
	}

	revoker := NewRevocationManager(store, cache)
	if err := revoker.Revoke(context.Background(), userID, record.ID); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if cache.contains("tok-revoke") {
		t.Fatal("cache entry survived revocation")
	}

	v := NewValidator(store, cache, time.Second)
	result, err := v.Validate(context.Background(), "tok-revoke")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if result.Valid || result.Reason != ReasonRevoked {
		t.Fatalf("expected revoked verdict after Revoke, got valid=%v reason=%q", result.Valid, result.Reason)
	}
}

func TestRevokeForeignSessionForbidden(t *testing.T) {
	store := newMemStore()
	owner := uuid.New()
	record := newActiveRecord(owner, "tok-foreign")
	store.put(record)

	revoker := NewRevocationManager(store, newMemCache())
	err := revoker.Revoke(context.Background(), uuid.New(), record.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	stored, _ := store.GetByToken(context.Background(), "tok-foreign")
	if !stored.IsActive {
		t.Error("foreign revoke attempt deactivated the session")
	}
}

func TestRevokeUnknownSession(t *testing.T) {
	revoker := NewRevocationManager(newMemStore(), newMemCache())
	err := revoker.Revoke(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	userID := uuid.New()
	record := newActiveRecord(userID, "tok-twice")
	store.put(record)

	revoker := NewRevocationManager(store, cache)
	ctx := context.Background()
	if err := revoker.Revoke(ctx, userID, record.ID); err != nil {
		t.Fatal(err)
	}
	if err := revoker.Revoke(ctx, userID, record.ID); err != nil {
		t.Fatalf("second revoke should be a no-op success, got %v", err)
	}

	stored, _ := store.GetByToken(ctx, "tok-twice")
	if stored.IsActive {
		t.Error("session active again after double revoke")
	}
}

func TestRevokeCacheFailureSurfacesError(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	cache.invalidateFails = 1
	userID := uuid.New()
	record := newActiveRecord(userID, "tok-cachefail")
	store.put(record)

	revoker := NewRevocationManager(store, cache)
	err := revoker.Revoke(context.Background(), userID, record.ID)
	if err == nil {
		t.Fatal("expected error when cache invalidation fails")
	}
	if !errors.Is(err, ErrCacheUnavailable) {
		t.Errorf("expected wrapped ErrCacheUnavailable, got %v", err)
	}

	// The store side is already authoritative.
	stored, _ := store.GetByToken(context.Background(), "tok-cachefail")
	if stored.IsActive {
		t.Error("store still shows the session active")
	}
}

func TestRevokeAllExceptCurrent(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	userID := uuid.New()
	current := newActiveRecord(userID, "tok-current")
	store.put(current)
	store.put(newActiveRecord(userID, "tok-b"))
	store.put(newActiveRecord(userID, "tok-c"))
	store.put(newActiveRecord(uuid.New(), "tok-other-user"))

	revoker := NewRevocationManager(store, cache)
	count, err := revoker.RevokeAllExceptCurrent(context.Background(), userID, "tok-current")
	if err != nil {
		t.Fatalf("RevokeAllExceptCurrent returned error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 revoked sessions, got %d", count)
	}

	ctx := context.Background()
	for token, wantActive := range map[string]bool{
		"tok-current":    true,
		"tok-b":          false,
		"tok-c":          false,
		"tok-other-user": true,
	} {
		stored, err := store.GetByToken(ctx, token)
		if err != nil {
			t.Fatal(err)
		}
		if stored.IsActive != wantActive {
			t.Errorf("%s: active=%v, want %v", token, stored.IsActive, wantActive)
		}
	}
}

func TestRevokeAll(t *testing.T) {
	store := newMemStore()
	userID := uuid.New()
	store.put(newActiveRecord(userID, "tok-1"))
	store.put(newActiveRecord(userID, "tok-2"))
	already := newActiveRecord(userID, "tok-dead")
	already.IsActive = false
	store.put(already)

	revoker := NewRevocationManager(store, newMemCache())
	count, err := revoker.RevokeAll(context.Background(), userID)
	if err != nil {
		t.Fatalf("RevokeAll returned error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 revoked sessions (inactive ones excluded), got %d", count)
	}
}

func TestRevokeAllNoActiveSessions(t *testing.T) {
	revoker := NewRevocationManager(newMemStore(), newMemCache())
	count, err := revoker.RevokeAll(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("RevokeAll returned error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0, got %d", count)
	}
}
