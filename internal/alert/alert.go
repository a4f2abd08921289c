// Package alert dispatches drift notifications. The check engine never
// calls into this package; the CLI does, keyed on the report's compliant
// field and the --alert flag.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/driftcheck/driftcheck/internal/models"
	"github.com/driftcheck/driftcheck/internal/observability/logging"
)

// Alert is the payload sent when drift is detected.
type Alert struct {
	Source     string              `json:"source"`
	PolicyFile string              `json:"policy_file"`
	ConfigFile string              `json:"config_file"`
	Timestamp  time.Time           `json:"timestamp"`
	Report     *models.DriftReport `json:"report"`
}

// Notifier delivers one alert.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// WebhookNotifier posts the alert as JSON to an HTTP endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhook(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookNotifier) Notify(ctx context.Context, a Alert) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("alert delivery failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("alert webhook returned %s", resp.Status)
	}
	return nil
}

// LogNotifier records the alert as a structured log event. Used when no
// webhook is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, a Alert) error {
	logging.From(ctx).Event(ctx, "alert.drift", map[string]any{
		"policy_file": a.PolicyFile,
		"config_file": a.ConfigFile,
		"violations":  len(a.Report.Violations),
	})
	return nil
}
