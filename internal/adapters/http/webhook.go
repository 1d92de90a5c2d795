// Package http posts sent messages to a webhook.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/bft-labs/blinkscan/internal/domain"
	"github.com/bft-labs/blinkscan/pkg/log"
)

// Client abstracts HTTP request execution. *http.Client satisfies it.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

type payload struct {
	ID     int64     `json:"id,omitempty"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// WebhookSink implements ports.MessageSink by posting each message as JSON.
type WebhookSink struct {
	client Client
	url    string
	token  string
	logger log.Logger
}

// NewWebhookSink creates a sink posting to url. A non-empty token is sent
// as a bearer credential.
func NewWebhookSink(client Client, url, token string, logger log.Logger) *WebhookSink {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &WebhookSink{
		client: client,
		url:    url,
		token:  token,
		logger: logger,
	}
}

// Deliver posts msg and fails on any non-2xx response.
func (s *WebhookSink) Deliver(ctx context.Context, msg domain.Message) error {
	body, err := json.Marshal(payload{ID: msg.ID, Text: msg.Text, SentAt: msg.SentAt})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	if host, err := os.Hostname(); err == nil {
		req.Header.Set("X-Blinkscan-Hostname", host)
	}
	req.Header.Set("X-Blinkscan-OSArch", runtime.GOOS+"/"+runtime.GOARCH)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(respBody))
	}

	s.logger.Debug("message posted",
		log.String("url", s.url),
		log.Int("status", resp.StatusCode),
	)
	return nil
}
