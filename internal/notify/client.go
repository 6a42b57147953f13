// Package notify posts operator alerts to a chat incoming webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"exits_backend/internal/finance"
	"exits_backend/platform/config"
	"exits_backend/platform/logger"
)

// Client is nil when no webhook is configured; every method is nil-safe.
type Client struct {
	webhookURL string
	http       *http.Client
	log        *logger.Logger
}

type webhookRequest struct {
	Text string `json:"text"`
}

func NewClient(cfg config.NotifierConfig, log *logger.Logger) *Client {
	if strings.TrimSpace(cfg.GetChatWebhookURL()) == "" {
		return nil
	}

	return &Client{
		webhookURL: strings.TrimSpace(cfg.GetChatWebhookURL()),
		http:       &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Enabled reports whether messages will actually be posted.
func (c *Client) Enabled() bool {
	return c != nil
}

func (c *Client) SendMessage(ctx context.Context, text string) error {
	if c == nil {
		return nil
	}

	body, err := json.Marshal(webhookRequest{Text: text})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Debug("chat notification sent")
	return nil
}

// NewLeadText formats the new lead alert. A missing price renders as "$0".
func NewLeadText(email, title string, price *int64) string {
	var amount float64
	if price != nil {
		amount = float64(*price)
	}
	return fmt.Sprintf("🎯 New Lead: %s - %s (%s)", email, title, finance.Dollars(amount))
}

// DigestSentText summarizes a finished weekly digest run.
func DigestSentText(vertical, weekOf string, listings, recipients, sent, failed int) string {
	text := fmt.Sprintf("📬 Weekly digest %s (week of %s): %d/%d sent, %d listings",
		vertical, weekOf, sent, recipients, listings)
	if failed > 0 {
		text += fmt.Sprintf(", %d failed", failed)
	}
	return text
}

// UnsubscribedText announces a digest opt-out.
func UnsubscribedText(email, vertical string) string {
	return fmt.Sprintf("👋 Unsubscribed: %s (%s)", email, vertical)
}

// LeadStatusText announces an operator moving a lead through the pipeline.
func LeadStatusText(leadID, vertical, from, to string) string {
	return fmt.Sprintf("📌 Lead %s (%s): %s → %s", leadID, vertical, from, to)
}
