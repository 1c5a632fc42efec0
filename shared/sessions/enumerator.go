package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cubis-academy-backend/shared/utils/device"
	"cubis-academy-backend/shared/utils/geo"
)

// SessionView is the redacted, display-ready projection of a SessionRecord.
// The raw token is never exposed.
type SessionView struct {
	ID           uuid.UUID `json:"id"`
	Browser      string    `json:"browser"`
	OS           string    `json:"os"`
	Device       string    `json:"device"`
	IPAddress    string    `json:"ip_address"`
	Location     string    `json:"location"`
	DeviceID     string    `json:"device_id,omitempty"`
	LoginMethod  string    `json:"login_method"`
	IsActive     bool      `json:"is_active"`
	IsCurrent    bool      `json:"is_current"`
	LastActivity time.Time `json:"last_activity"`
	Created      time.Time `json:"created"`
}

// Enumerator lists a user's sessions with derived display metadata.
type Enumerator struct {
	store Store
}

func NewEnumerator(store Store) *Enumerator {
	return &Enumerator{store: store}
}

// List returns views for every session of the user, active and inactive,
// newest first. A view is flagged current only when its token matches AND
// its device binding does not contradict the presented fingerprint - a
// stolen token alone is never shown as "this device".
func (e *Enumerator) List(ctx context.Context, userID uuid.UUID, currentToken, currentDeviceID string) ([]SessionView, error) {
	records, err := e.store.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]SessionView, 0, len(records))
	for _, record := range records {
		info := device.Parse(record.UserAgent)

		isCurrent := record.SessionToken == currentToken &&
			(!record.HasDevice() || record.Device() == currentDeviceID)

		views = append(views, SessionView{
			ID:           record.ID,
			Browser:      info.Browser,
			OS:           info.OS,
			Device:       info.Device,
			IPAddress:    record.IPAddress,
			Location:     geo.LocationFromIP(record.IPAddress),
			DeviceID:     record.Device(),
			LoginMethod:  record.LoginMethod,
			IsActive:     record.IsActive,
			IsCurrent:    isCurrent,
			LastActivity: record.LastActivity,
			Created:      record.CreatedAt,
		})
	}
	return views, nil
}
