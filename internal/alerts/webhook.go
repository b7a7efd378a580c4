// Package alerts delivers operator notifications such as the end-of-day
// report.
package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Alerter delivers one notification. Delivery failures are for the caller to
// log; trading never blocks on an alert.
type Alerter interface {
	Send(ctx context.Context, subject, body string) error
}

// WebhookConfig holds configuration for webhook alert delivery.
type WebhookConfig struct {
	URL            string
	Sender         string
	Recipients     []string
	TimeoutSeconds int
}

// Webhook posts notifications as JSON to a configured endpoint.
type Webhook struct {
	cfg    WebhookConfig
	client *http.Client
}

func NewWebhook(cfg WebhookConfig) (*Webhook, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 10
	}
	return &Webhook{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}, nil
}

type webhookMessage struct {
	Sender     string   `json:"sender"`
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
}

func (w *Webhook) Send(ctx context.Context, subject, body string) error {
	payload, err := json.Marshal(webhookMessage{
		Sender:     w.cfg.Sender,
		Recipients: w.cfg.Recipients,
		Subject:    subject,
		Body:       body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
