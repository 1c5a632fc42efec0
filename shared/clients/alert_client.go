package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cubis-academy-backend/shared/config"
	"cubis-academy-backend/shared/sessions"
)

// AlertClient delivers session security alerts to the platform's
// notification service through the API gateway. Implements
// sessions.AlertSink.
type AlertClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAlertClient creates a new alert client
func NewAlertClient() *AlertClient {
	cfg := config.GetConfig()
	return &AlertClient{
		baseURL: cfg.APIGatewayURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendSessionAlert posts a security alert for asynchronous user and admin
// notification. Callers treat delivery as best-effort.
func (c *AlertClient) SendSessionAlert(ctx context.Context, alert sessions.SecurityAlert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal security alert: %w", err)
	}

	url := fmt.Sprintf("%s/api/notifications/security-alert", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send security alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notification service returned status %d", resp.StatusCode)
	}
	return nil
}
