package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	sessionmodels "cubis-academy-backend/shared/database/models/session"
)

// memStore implements Store in memory for tests. Error injection fields
// simulate an unreachable database.
type memStore struct {
	mu      sync.Mutex
	byToken map[string]*sessionmodels.SessionRecord
	events  []*sessionmodels.SecurityEvent

	failAll    bool
	touchCount int
}

func newMemStore() *memStore {
	return &memStore{byToken: make(map[string]*sessionmodels.SessionRecord)}
}

func (m *memStore) unavailable() error {
	return ErrStoreUnavailable
}

func copyRecord(r *sessionmodels.SessionRecord) *sessionmodels.SessionRecord {
	cp := *r
	if r.DeviceID != nil {
		d := *r.DeviceID
		cp.DeviceID = &d
	}
	return &cp
}

func (m *memStore) Ensure(ctx context.Context, params EnsureParams) (*sessionmodels.SessionRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, false, m.unavailable()
	}

	if existing, ok := m.byToken[params.SessionToken]; ok {
		if existing.IsActive {
			existing.LastActivity = time.Now().UTC()
		}
		return copyRecord(existing), false, nil
	}

	record := &sessionmodels.SessionRecord{
		ID:           uuid.New(),
		UserID:       params.UserID,
		SessionToken: params.SessionToken,
		IPAddress:    params.IPAddress,
		UserAgent:    params.UserAgent,
		LoginMethod:  params.LoginMethod,
		IsActive:     true,
		ExpiresAt:    params.ExpiresAt,
		LastActivity: time.Now().UTC(),
		CreatedAt:    time.Now().UTC(),
	}
	if params.DeviceID != "" {
		d := params.DeviceID
		record.DeviceID = &d
	}
	m.byToken[params.SessionToken] = record
	return copyRecord(record), true, nil
}

func (m *memStore) GetByToken(ctx context.Context, token string) (*sessionmodels.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, m.unavailable()
	}
	record, ok := m.byToken[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copyRecord(record), nil
}

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (*sessionmodels.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, m.unavailable()
	}
	for _, record := range m.byToken {
		if record.ID == id {
			return copyRecord(record), nil
		}
	}
	return nil, ErrSessionNotFound
}

func (m *memStore) GetByUser(ctx context.Context, userID uuid.UUID) ([]sessionmodels.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, m.unavailable()
	}
	var out []sessionmodels.SessionRecord
	for _, record := range m.byToken {
		if record.UserID == userID {
			out = append(out, *copyRecord(record))
		}
	}
	return out, nil
}

func (m *memStore) GetActiveByUser(ctx context.Context, userID uuid.UUID) ([]sessionmodels.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, m.unavailable()
	}
	var out []sessionmodels.SessionRecord
	for _, record := range m.byToken {
		if record.UserID == userID && record.IsActive {
			out = append(out, *copyRecord(record))
		}
	}
	return out, nil
}

func (m *memStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return m.unavailable()
	}
	for _, record := range m.byToken {
		if record.ID == id {
			record.IsActive = false
		}
	}
	return nil
}

func (m *memStore) DeactivateByIDs(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if err := m.Deactivate(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) BindDevice(ctx context.Context, token, deviceID string) (*sessionmodels.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, m.unavailable()
	}
	record, ok := m.byToken[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if record.DeviceID == nil || *record.DeviceID == "" {
		d := deviceID
		record.DeviceID = &d
		return copyRecord(record), nil
	}
	if *record.DeviceID != deviceID {
		return copyRecord(record), ErrDeviceAlreadyBound
	}
	return copyRecord(record), nil
}

func (m *memStore) TouchActivity(ctx context.Context, token string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return m.unavailable()
	}
	m.touchCount++
	if record, ok := m.byToken[token]; ok {
		record.LastActivity = at
	}
	return nil
}

func (m *memStore) RecordSecurityEvent(ctx context.Context, event *sessionmodels.SecurityEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return m.unavailable()
	}
	m.events = append(m.events, event)
	return nil
}

// put inserts a record directly, bypassing Ensure, for test setup.
func (m *memStore) put(record *sessionmodels.SessionRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byToken[record.SessionToken] = record
}

// memCache implements SessionCache in memory for tests.
type memCache struct {
	mu      sync.Mutex
	entries map[string]*sessionmodels.SessionRecord

	getErr          error
	putErr          error
	invalidateFails int // fail the first N invalidation calls

	gets, puts, invalidations int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*sessionmodels.SessionRecord)}
}

func (c *memCache) Get(ctx context.Context, token string) (*sessionmodels.SessionRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	record, ok := c.entries[token]
	if !ok {
		return nil, false, nil
	}
	return copyRecord(record), true, nil
}

func (c *memCache) Put(ctx context.Context, record *sessionmodels.SessionRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	c.entries[record.SessionToken] = copyRecord(record)
	return nil
}

func (c *memCache) Invalidate(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	if c.invalidateFails > 0 {
		c.invalidateFails--
		return ErrCacheUnavailable
	}
	delete(c.entries, token)
	return nil
}

func (c *memCache) contains(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[token]
	return ok
}

// newActiveRecord builds a live session for tests.
func newActiveRecord(userID uuid.UUID, token string) *sessionmodels.SessionRecord {
	return &sessionmodels.SessionRecord{
		ID:           uuid.New(),
		UserID:       userID,
		SessionToken: token,
		IsActive:     true,
		ExpiresAt:    time.Now().Add(time.Hour),
		LastActivity: time.Now().UTC(),
		CreatedAt:    time.Now().UTC(),
	}
}
