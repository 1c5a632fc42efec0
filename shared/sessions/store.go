package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	sessionmodels "cubis-academy-backend/shared/database/models/session"
)

// EnsureParams carries everything needed to create a session record at login
// or re-ensure it afterwards.
type EnsureParams struct {
	UserID       uuid.UUID
	SessionToken string
	DeviceID     string // optional; bound immediately when the client already knows it
	IPAddress    string
	UserAgent    string
	LoginMethod  string
	ExpiresAt    time.Time
}

// Store is the authoritative persisted record of every session ever created.
// Rows are soft-deleted only; is_active never transitions back to true.
type Store interface {
	// Ensure upserts the record keyed on session token. The bool result is
	// true when this call created the row. Concurrent calls for the same
	// token collapse onto one row via the unique constraint.
	Ensure(ctx context.Context, params EnsureParams) (*sessionmodels.SessionRecord, bool, error)
	GetByToken(ctx context.Context, token string) (*sessionmodels.SessionRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*sessionmodels.SessionRecord, error)
	// GetByUser returns every record for the user, active and inactive.
	GetByUser(ctx context.Context, userID uuid.UUID) ([]sessionmodels.SessionRecord, error)
	GetActiveByUser(ctx context.Context, userID uuid.UUID) ([]sessionmodels.SessionRecord, error)
	// Deactivate soft-deletes one session. Revoking an already-inactive
	// session is a no-op, not an error.
	Deactivate(ctx context.Context, id uuid.UUID) error
	DeactivateByIDs(ctx context.Context, ids []uuid.UUID) error
	// BindDevice sets device_id only while it is NULL, enforced by a
	// conditional update in the database. When the session is already bound
	// to a different value it returns the record plus ErrDeviceAlreadyBound.
	BindDevice(ctx context.Context, token, deviceID string) (*sessionmodels.SessionRecord, error)
	// TouchActivity bumps last_activity. Best-effort, not security-relevant.
	TouchActivity(ctx context.Context, token string, at time.Time) error
	RecordSecurityEvent(ctx context.Context, event *sessionmodels.SecurityEvent) error
}

// GormStore implements Store on top of the platform's Postgres database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Ensure(ctx context.Context, params EnsureParams) (*sessionmodels.SessionRecord, bool, error) {
	now := time.Now().UTC()

	record := sessionmodels.SessionRecord{
		UserID:       params.UserID,
		SessionToken: params.SessionToken,
		IPAddress:    params.IPAddress,
		UserAgent:    params.UserAgent,
		LoginMethod:  params.LoginMethod,
		IsActive:     true,
		ExpiresAt:    params.ExpiresAt,
		LastActivity: now,
	}
	if params.DeviceID != "" {
		deviceID := params.DeviceID
		record.DeviceID = &deviceID
	}
	if record.LoginMethod == "" {
		record.LoginMethod = sessionmodels.LoginMethodPassword
	}

	// DO NOTHING on conflict keeps creation idempotent under races: the
	// unique index on session_token guarantees at most one row, and a lost
	// race degrades into the already-exists path below.
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_token"}},
			DoNothing: true,
		}).
		Create(&record)
	if result.Error != nil {
		return nil, false, fmt.Errorf("%w: ensure session: %v", ErrStoreUnavailable, result.Error)
	}

	if result.RowsAffected > 0 {
		return &record, true, nil
	}

	existing, err := s.GetByToken(ctx, params.SessionToken)
	if err != nil {
		return nil, false, err
	}
	if existing.IsActive {
		_ = s.TouchActivity(ctx, params.SessionToken, now)
		existing.LastActivity = now
	}
	return existing, false, nil
}

func (s *GormStore) GetByToken(ctx context.Context, token string) (*sessionmodels.SessionRecord, error) {
	var record sessionmodels.SessionRecord
	err := s.db.WithContext(ctx).Where("session_token = ?", token).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: get by token: %v", ErrStoreUnavailable, err)
	}
	return &record, nil
}

func (s *GormStore) GetByID(ctx context.Context, id uuid.UUID) (*sessionmodels.SessionRecord, error) {
	var record sessionmodels.SessionRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: get by id: %v", ErrStoreUnavailable, err)
	}
	return &record, nil
}

func (s *GormStore) GetByUser(ctx context.Context, userID uuid.UUID) ([]sessionmodels.SessionRecord, error) {
	var records []sessionmodels.SessionRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: get by user: %v", ErrStoreUnavailable, err)
	}
	return records, nil
}

func (s *GormStore) GetActiveByUser(ctx context.Context, userID uuid.UUID) ([]sessionmodels.SessionRecord, error) {
	var records []sessionmodels.SessionRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: get active by user: %v", ErrStoreUnavailable, err)
	}
	return records, nil
}

func (s *GormStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Model(&sessionmodels.SessionRecord{}).
		Where("id = ?", id).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("%w: deactivate: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *GormStore) DeactivateByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Model(&sessionmodels.SessionRecord{}).
		Where("id IN ?", ids).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("%w: deactivate batch: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *GormStore) BindDevice(ctx context.Context, token, deviceID string) (*sessionmodels.SessionRecord, error) {
	// Compare-and-set: only the first caller to observe a NULL device_id may
	// bind. The database enforces atomicity; no application lock is involved.
	result := s.db.WithContext(ctx).
		Model(&sessionmodels.SessionRecord{}).
		Where("session_token = ? AND device_id IS NULL", token).
		Update("device_id", deviceID)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: bind device: %v", ErrStoreUnavailable, result.Error)
	}

	record, err := s.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if result.RowsAffected == 0 && record.Device() != deviceID {
		return record, ErrDeviceAlreadyBound
	}
	return record, nil
}

func (s *GormStore) TouchActivity(ctx context.Context, token string, at time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&sessionmodels.SessionRecord{}).
		Where("session_token = ?", token).
		Update("last_activity", at).Error
	if err != nil {
		return fmt.Errorf("%w: touch activity: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *GormStore) RecordSecurityEvent(ctx context.Context, event *sessionmodels.SecurityEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("%w: record security event: %v", ErrStoreUnavailable, err)
	}
	return nil
}
