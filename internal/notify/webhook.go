// Package notify posts completion callbacks to an external endpoint once a
// generation run settles.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Event is the payload delivered when a run finishes.
type Event struct {
	ProjectID  string    `json:"projectId"`
	Status     string    `json:"status"`
	Intent     string    `json:"intent"`
	FileCount  int       `json:"fileCount"`
	ErrorCount int       `json:"errorCount"`
	Iterations int       `json:"iterations"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Webhook posts events to a configured URL. An empty URL disables it; every
// method becomes a no-op so callers never need to branch.
type Webhook struct {
	url    string
	secret string
	client *http.Client
	log    zerolog.Logger
}

func NewWebhook(url, secret string, log zerolog.Logger) *Webhook {
	return &Webhook{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log,
	}
}

func (w *Webhook) Enabled() bool { return w != nil && w.url != "" }

// ProjectFinished delivers one event. Delivery failures are logged and
// returned but never affect the run that triggered them.
func (w *Webhook) ProjectFinished(ctx context.Context, ev Event) error {
	if !w.Enabled() {
		return nil
	}
	if ev.FinishedAt.IsZero() {
		ev.FinishedAt = time.Now()
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal webhook event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.secret != "" {
		req.Header.Set("Authorization", "Bearer "+w.secret)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		w.log.Warn().Err(err).Str("project_id", ev.ProjectID).Msg("webhook delivery failed")
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		w.log.Warn().Int("status", resp.StatusCode).Str("project_id", ev.ProjectID).Msg("webhook rejected")
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
