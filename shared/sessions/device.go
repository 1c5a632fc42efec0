package sessions

import (
	"context"
	"errors"
	"log"
	"time"

	sessionmodels "cubis-academy-backend/shared/database/models/session"
)

// DeviceCheckResult is the verdict of the device-binding check. A mismatch
// carries severity critical and forces logout; a session that is merely
// expired or revoked also forces logout but at severity warning so the
// messaging layer can tell "you timed out" from "you were hijacked".
type DeviceCheckResult struct {
	OK           bool   `json:"ok"`
	Reason       string `json:"reason,omitempty"`
	Severity     string `json:"severity,omitempty"`
	ShouldLogout bool   `json:"should_logout"`
}

// SecurityAlert is the payload handed to the alert sink on critical findings.
type SecurityAlert struct {
	UserID        string    `json:"user_id"`
	SessionID     string    `json:"session_id"`
	AlertType     string    `json:"alert_type"`
	Severity      string    `json:"severity"`
	BoundDevice   string    `json:"bound_device"`    // truncated hash
	PresentedHash string    `json:"presented_value"` // truncated hash
	IPAddress     string    `json:"ip_address"`
	Timestamp     time.Time `json:"timestamp"`
}

// AlertSink forwards critical security findings to the platform's
// notification service. Delivery is best-effort and never blocks a verdict.
type AlertSink interface {
	SendSessionAlert(ctx context.Context, alert SecurityAlert) error
}

// DeviceChecker binds a session to the first device fingerprint that uses it
// and detects token replay from any other device. It always reads the Store
// directly - the binding decision is never made against a cached value.
type DeviceChecker struct {
	store   Store
	alerts  AlertSink
	timeout time.Duration
	now     func() time.Time
}

func NewDeviceChecker(store Store, alerts AlertSink, timeout time.Duration) *DeviceChecker {
	return &DeviceChecker{
		store:   store,
		alerts:  alerts,
		timeout: timeout,
		now:     time.Now,
	}
}

// CheckDevice validates the presented fingerprint against the session's
// binding, performing the one-time bind on first use. Infrastructure errors
// propagate as errors; the caller denies.
func (d *DeviceChecker) CheckDevice(ctx context.Context, sctx SessionContext, presentedDeviceID string) (*DeviceCheckResult, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	record, err := d.store.GetByToken(ctx, sctx.Token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return &DeviceCheckResult{
				Reason:       ReasonNotFound,
				Severity:     sessionmodels.SeverityWarning,
				ShouldLogout: true,
			}, nil
		}
		return nil, err
	}

	// The record must have been resolved by its own token. Anything else
	// means a lookup path substituted an unrelated session.
	if record.SessionToken != sctx.Token {
		d.raiseAlert(ctx, record, sessionmodels.EventTokenMismatch, sctx, presentedDeviceID)
		return &DeviceCheckResult{
			Reason:       ReasonTokenMismatch,
			Severity:     sessionmodels.SeverityCritical,
			ShouldLogout: true,
		}, nil
	}

	if !record.IsActive {
		return &DeviceCheckResult{
			Reason:       ReasonRevoked,
			Severity:     sessionmodels.SeverityWarning,
			ShouldLogout: true,
		}, nil
	}
	if record.Expired(d.now()) {
		return &DeviceCheckResult{
			Reason:       ReasonExpired,
			Severity:     sessionmodels.SeverityWarning,
			ShouldLogout: true,
		}, nil
	}

	if !record.HasDevice() {
		// First use after login binds the trusted device. The conditional
		// write in the store lets exactly one racer win; the loser falls
		// through to the match/mismatch branches below.
		bound, err := d.store.BindDevice(ctx, sctx.Token, presentedDeviceID)
		if err != nil && !errors.Is(err, ErrDeviceAlreadyBound) {
			return nil, err
		}
		record = bound
	}

	if record.Device() == presentedDeviceID {
		return &DeviceCheckResult{OK: true}, nil
	}

	// Token replay from a second device. The original binding stays as-is
	// for audit; we only record and report.
	d.raiseAlert(ctx, record, sessionmodels.EventDeviceMismatch, sctx, presentedDeviceID)
	return &DeviceCheckResult{
		Reason:       ReasonDeviceMismatch,
		Severity:     sessionmodels.SeverityCritical,
		ShouldLogout: true,
	}, nil
}

// raiseAlert persists a SecurityEvent and notifies the alert sink. Both are
// best-effort; the verdict is already decided. Device identifiers are only
// ever handled as truncated hashes from here on.
func (d *DeviceChecker) raiseAlert(ctx context.Context, record *sessionmodels.SessionRecord, eventType string, sctx SessionContext, presented string) {
	boundHash := HashIdentifier(record.Device())
	presentedHash := HashIdentifier(presented)

	log.Printf("🔒 SECURITY %s: user=%s session=%s bound=%s presented=%s ip=%s",
		eventType, record.UserID, record.ID, boundHash, presentedHash, sctx.IPAddress)

	event := &sessionmodels.SecurityEvent{
		UserID:         record.UserID,
		SessionID:      record.ID,
		EventType:      eventType,
		Severity:       sessionmodels.SeverityCritical,
		BoundDevice:    boundHash,
		PresentedValue: presentedHash,
		IPAddress:      sctx.IPAddress,
		UserAgent:      sctx.UserAgent,
	}
	if err := d.store.RecordSecurityEvent(ctx, event); err != nil {
		log.Printf("❌ Failed to persist security event: %v", err)
	}

	if d.alerts == nil {
		return
	}
	alert := SecurityAlert{
		UserID:        record.UserID.String(),
		SessionID:     record.ID.String(),
		AlertType:     eventType,
		Severity:      sessionmodels.SeverityCritical,
		BoundDevice:   boundHash,
		PresentedHash: presentedHash,
		IPAddress:     sctx.IPAddress,
		Timestamp:     d.now().UTC(),
	}
	if err := d.alerts.SendSessionAlert(ctx, alert); err != nil {
		log.Printf("❌ Failed to deliver security alert: %v", err)
	}
}
