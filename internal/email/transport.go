package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message is a fully rendered email ready for delivery.
type Message struct {
	FromName  string
	FromEmail string
	To        string
	Subject   string
	HTML      string
}

// From formats the sender as "Name <address>".
func (m Message) From() string {
	if m.FromName == "" {
		return m.FromEmail
	}
	return fmt.Sprintf("%s <%s>", m.FromName, m.FromEmail)
}

// Transport delivers a rendered Message.
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

// NoopTransport drops every message. Used when EMAIL_PROVIDER is none.
type NoopTransport struct{}

func (NoopTransport) Deliver(ctx context.Context, msg Message) error {
	return nil
}

// ResendTransport posts messages to a Resend-compatible HTTP API.
type ResendTransport struct {
	apiKey string
	apiURL string
	client *http.Client
}

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// NewResendTransport creates a transport for the given endpoint and API key.
func NewResendTransport(apiURL, apiKey string) *ResendTransport {
	return &ResendTransport{
		apiKey: apiKey,
		apiURL: apiURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *ResendTransport) Deliver(ctx context.Context, msg Message) error {
	body, err := json.Marshal(resendEmailRequest{
		From:    msg.From(),
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("resend send failed: status %d: %s", resp.StatusCode, string(data))
	}

	return nil
}
