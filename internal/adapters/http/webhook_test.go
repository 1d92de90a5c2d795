package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/blinkscan/internal/domain"
)

func TestWebhookSink_Deliver(t *testing.T) {
	var got payload
	var auth, contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sentAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sink := NewWebhookSink(srv.Client(), srv.URL, "secret", nil)
	err := sink.Deliver(context.Background(), domain.Message{ID: 7, Text: "HELLO", SentAt: sentAt})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, payload{ID: 7, Text: "HELLO", SentAt: sentAt}, got)
}

func TestWebhookSink_NoToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.Client(), srv.URL, "", nil)
	require.NoError(t, sink.Deliver(context.Background(), domain.Message{Text: "HI"}))
	assert.Empty(t, auth)
}

func TestWebhookSink_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.Client(), srv.URL, "", nil)
	err := sink.Deliver(context.Background(), domain.Message{Text: "HI"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestWebhookSink_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := NewWebhookSink(srv.Client(), srv.URL, "", nil)
	assert.ErrorIs(t, sink.Deliver(ctx, domain.Message{Text: "HI"}), context.Canceled)
}
