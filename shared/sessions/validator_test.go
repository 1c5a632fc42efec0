package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestValidateFreshSession(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	userID := uuid.New()
	store.put(newActiveRecord(userID, "tok-fresh"))

	v := NewValidator(store, cache, time.Second)
	result, err := v.Validate(context.Background(), "tok-fresh")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid verdict, got reason %q", result.Reason)
	}
	if result.UserID != userID {
		t.Errorf("expected user %s, got %s", userID, result.UserID)
	}
}

func TestValidateCacheMissFallsBackAndRepopulates(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	store.put(newActiveRecord(uuid.New(), "tok-miss"))

	v := NewValidator(store, cache, time.Second)
	result, err := v.Validate(context.Background(), "tok-miss")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid verdict, got reason %q", result.Reason)
	}
	if cache.puts != 1 {
		t.Errorf("expected one cache repopulation, got %d", cache.puts)
	}
}

func TestValidateCacheHitSkipsStore(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	record := newActiveRecord(uuid.New(), "tok-hit")
	if err := cache.Put(context.Background(), record); err != nil {
		t.Fatal(err)
	}
	// Deliberately absent from the store: a hit must never reach it.
	store.failAll = true

	v := NewValidator(store, cache, time.Second)
	result, err := v.Validate(context.Background(), "tok-hit")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid verdict from cached record, got %q", result.Reason)
	}
}

func TestValidateRevoked(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	record := newActiveRecord(uuid.New(), "tok-revoked")
	record.IsActive = false
	store.put(record)

	v := NewValidator(store, cache, time.Second)
	result, err := v.Validate(context.Background(), "tok-revoked")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if result.Valid || result.Reason != ReasonRevoked {
		t.Fatalf("expected revoked verdict, got valid=%v reason=%q", result.Valid, result.Reason)
	}
}

func TestValidateExpiredWhileStillActive(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	record := newActiveRecord(uuid.New(), "tok-expired")
	record.ExpiresAt = time.Now().Add(-time.Minute)
	store.put(record)

	v := NewValidator(store, cache, time.Second)
	result, err := v.Validate(context.Background(), "tok-expired")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if result.Valid || result.Reason != ReasonExpired {
		t.Fatalf("expected expired verdict, got valid=%v reason=%q", result.Valid, result.Reason)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	v := NewValidator(newMemStore(), newMemCache(), time.Second)
	result, err := v.Validate(context.Background(), "tok-nowhere")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if result.Valid || result.Reason != ReasonNotFound {
		t.Fatalf("expected not_found verdict, got valid=%v reason=%q", result.Valid, result.Reason)
	}
}

func TestValidateStoreDownFailsClosed(t *testing.T) {
	store := newMemStore()
	store.failAll = true

	v := NewValidator(store, newMemCache(), time.Second)
	result, err := v.Validate(context.Background(), "tok-any")
	if err == nil {
		t.Fatalf("expected infrastructure error, got result %+v", result)
	}
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestValidateCacheReadErrorFallsBackToStore(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	cache.getErr = ErrCacheUnavailable
	store.put(newActiveRecord(uuid.New(), "tok-degrade"))

	v := NewValidator(store, cache, time.Second)
	result, err := v.Validate(context.Background(), "tok-degrade")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid verdict via store fallback, got %q", result.Reason)
	}
}

func TestValidateCachePutFailureDoesNotFailValidation(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	cache.putErr = ErrCacheUnavailable
	store.put(newActiveRecord(uuid.New(), "tok-putfail"))

	v := NewValidator(store, cache, time.Second)
	result, err := v.Validate(context.Background(), "tok-putfail")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid verdict, got %q", result.Reason)
	}
}

func TestValidateBumpsLastActivity(t *testing.T) {
	store := newMemStore()
	store.put(newActiveRecord(uuid.New(), "tok-touch"))

	v := NewValidator(store, newMemCache(), time.Second)
	if _, err := v.Validate(context.Background(), "tok-touch"); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if store.touchCount != 1 {
		t.Errorf("expected one activity bump, got %d", store.touchCount)
	}
}
