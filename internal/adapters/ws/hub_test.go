package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/blinkscan/internal/domain"
	"github.com/bft-labs/blinkscan/pkg/scan"
	"github.com/bft-labs/blinkscan/pkg/sensor"
)

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + Path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestHub_BroadcastsObserverEvents(t *testing.T) {
	hub := NewHub(nil, nil)
	conn := dial(t, hub)

	hub.OnCursor(scan.Position{Row: 2, Column: 3})
	hub.OnStateChange(sensor.Connecting, sensor.Connected, "handshake")
	hub.OnCountdown(4 * time.Second)
	msg, _ := domain.NewMessage("HELLO", time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC))
	require.NoError(t, hub.Deliver(context.Background(), msg))

	ev := readEvent(t, conn)
	assert.Equal(t, TypeCursor, ev.Type)
	assert.Equal(t, 2, ev.Row)
	assert.Equal(t, 3, ev.Column)
	assert.NotEmpty(t, ev.Time)

	ev = readEvent(t, conn)
	assert.Equal(t, TypeConnection, ev.Type)
	assert.Equal(t, "Connected", ev.State)
	assert.Equal(t, "handshake", ev.Reason)

	ev = readEvent(t, conn)
	assert.Equal(t, TypeCountdown, ev.Type)
	assert.Equal(t, int64(4000), ev.RemainingMs)

	ev = readEvent(t, conn)
	assert.Equal(t, TypeSent, ev.Type)
	assert.Equal(t, "HELLO", ev.Text)
	assert.Equal(t, "2026-02-03T04:05:06Z", ev.Time)
}

func TestHub_RemoteTrigger(t *testing.T) {
	var triggers atomic.Int32
	hub := NewHub(nil, func(ctx context.Context) error {
		triggers.Add(1)
		return nil
	})
	conn := dial(t, hub)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(Command{Type: "noop"}))
	require.NoError(t, conn.WriteJSON(Command{Type: CommandTrigger}))

	assert.Eventually(t, func() bool { return triggers.Load() == 1 }, 2*time.Second, time.Millisecond)
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := NewHub(nil, nil)
	conn := dial(t, hub)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, time.Millisecond)

	// Broadcasting with no clients is a no-op.
	hub.OnPhaseChange(scan.PhaseIdle, scan.PhaseScanningColumn)
}

func TestHub_ServeStopsOnCancel(t *testing.T) {
	hub := NewHub(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- hub.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}
