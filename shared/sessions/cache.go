package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	sessionmodels "cubis-academy-backend/shared/database/models/session"
)

// SessionCache is the volatile lookup accelerator in front of the Store. It
// is never authoritative: a miss or a read failure sends the caller to the
// Store, and a write failure is swallowed. Invalidate is the one call that
// must not be lost - revocation depends on it.
type SessionCache interface {
	// Get returns (record, true, nil) on a hit and (nil, false, nil) on a
	// miss. Errors denote an unreachable cache, not a missing entry.
	Get(ctx context.Context, token string) (*sessionmodels.SessionRecord, bool, error)
	Put(ctx context.Context, record *sessionmodels.SessionRecord) error
	Invalidate(ctx context.Context, token string) error
}

const (
	invalidateAttempts = 3
	invalidateBackoff  = 50 * time.Millisecond
)

// cachePayload is the wire form of a cached record. The token itself is
// carried explicitly because the model redacts it from JSON.
type cachePayload struct {
	sessionmodels.SessionRecord
	SessionToken string    `json:"session_token"`
	CachedAt     time.Time `json:"cached_at"`
}

// RedisSessionCache implements SessionCache on a shared Redis instance so
// that every server replica observes the same revocation state.
type RedisSessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionCache(client *redis.Client, ttl time.Duration) *RedisSessionCache {
	return &RedisSessionCache{client: client, ttl: ttl}
}

// cacheKey derives the Redis key from a digest of the token so raw secrets
// never appear in key listings.
func cacheKey(token string) string {
	return fmt.Sprintf("session:token:%s", HashIdentifier(token))
}

func (c *RedisSessionCache) Get(ctx context.Context, token string) (*sessionmodels.SessionRecord, bool, error) {
	result, err := c.client.Get(ctx, cacheKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: get: %v", ErrCacheUnavailable, err)
	}

	var payload cachePayload
	if err := json.Unmarshal([]byte(result), &payload); err != nil {
		// A corrupt entry is as good as a miss; the store remains the
		// source of truth.
		log.Printf("❌ Failed to unmarshal cached session, treating as miss: %v", err)
		return nil, false, nil
	}

	record := payload.SessionRecord
	record.SessionToken = payload.SessionToken
	return &record, true, nil
}

func (c *RedisSessionCache) Put(ctx context.Context, record *sessionmodels.SessionRecord) error {
	payload := cachePayload{
		SessionRecord: *record,
		SessionToken:  record.SessionToken,
		CachedAt:      time.Now().UTC(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal session for cache: %w", err)
	}

	// Never cache past the record's own expiry.
	ttl := c.ttl
	if remaining := time.Until(record.ExpiresAt); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return nil
	}

	if err := c.client.Set(ctx, cacheKey(record.SessionToken), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: put: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Invalidate removes the cache entry for the token, retrying on failure. A
// revocation is not complete until this succeeds, so exhausting the retries
// surfaces as an error rather than being logged away.
func (c *RedisSessionCache) Invalidate(ctx context.Context, token string) error {
	var lastErr error
	backoff := invalidateBackoff

	for attempt := 1; attempt <= invalidateAttempts; attempt++ {
		if err := c.client.Del(ctx, cacheKey(token)).Err(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt < invalidateAttempts {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: invalidate: %v", ErrCacheUnavailable, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return fmt.Errorf("%w: invalidate after %d attempts: %v", ErrCacheUnavailable, invalidateAttempts, lastErr)
}
