// Package ws broadcasts scan activity to WebSocket clients and accepts
// remote switch presses from them.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bft-labs/blinkscan/internal/domain"
	"github.com/bft-labs/blinkscan/pkg/log"
	"github.com/bft-labs/blinkscan/pkg/scan"
	"github.com/bft-labs/blinkscan/pkg/sensor"
	"github.com/bft-labs/blinkscan/pkg/thinkgear"
)

// Path is the endpoint served by Hub.
const Path = "/events"

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingEvery  = 15 * time.Second
	sendBuffer = 64
	readLimit  = 4 << 10
)

// Event types.
const (
	TypePhase      = "phase"
	TypeCursor     = "cursor"
	TypeCountdown  = "countdown"
	TypeCommit     = "commit"
	TypeConnection = "connection"
	TypeError      = "error"
	TypeBlink      = "blink"
	TypeText       = "text"
	TypeExit       = "exit_pending"
	TypeSent       = "sent"
)

// Event is the JSON message sent to clients.
type Event struct {
	Type        string `json:"type"`
	Time        string `json:"time"`
	Phase       string `json:"phase,omitempty"`
	Row         int    `json:"row,omitempty"`
	Column      int    `json:"column,omitempty"`
	RemainingMs int64  `json:"remaining_ms,omitempty"`
	State       string `json:"state,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Strength    int    `json:"strength,omitempty"`
	Text        string `json:"text,omitempty"`
	Pending     bool   `json:"pending,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Command is a JSON message accepted from clients.
type Command struct {
	Type string `json:"type"`
}

// CommandTrigger presses the switch once.
const CommandTrigger = "trigger"

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Hub fans events out to every connected client.
type Hub struct {
	logger   log.Logger
	upgrader websocket.Upgrader
	trigger  func(ctx context.Context) error

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates a hub. trigger is called for each "trigger" command and may be nil.
func NewHub(logger log.Logger, trigger func(ctx context.Context) error) *Hub {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Hub{
		logger:  logger,
		trigger: trigger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", log.Err(err))
		return
	}
	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("event client connected", log.String("remote", r.RemoteAddr))

	go h.writeLoop(c)
	h.readLoop(r.Context(), c)
}

// readLoop handles control frames and commands until the client goes away.
func (h *Hub) readLoop(ctx context.Context, c *client) {
	defer h.remove(c)

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.logger.Debug("ignored malformed command", log.Err(err))
			continue
		}
		if cmd.Type == CommandTrigger && h.trigger != nil {
			if err := h.trigger(ctx); err != nil {
				h.logger.Warn("remote trigger failed", log.Err(err))
			}
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ping := time.NewTicker(pingEvery)
	defer ping.Stop()
	defer c.close()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
	h.logger.Info("event client disconnected")
}

// Broadcast queues ev for every client. Clients whose buffer is full are dropped.
func (h *Hub) Broadcast(ev Event) {
	if ev.Time == "" {
		ev.Time = time.Now().UTC().Format(time.RFC3339Nano)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to encode event", log.Err(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow event client")
			delete(h.clients, c)
			c.close()
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

// ListenAndServe serves the hub on addr until ctx is canceled.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return h.Serve(ctx, ln)
}

// Serve serves the hub on ln until ctx is canceled.
func (h *Hub) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(Path, h)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	stop := context.AfterFunc(ctx, func() {
		h.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})
	defer stop()

	h.logger.Info("serving events", log.String("addr", ln.Addr().String()), log.String("path", Path))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// OnPhaseChange implements scan.Observer.
func (h *Hub) OnPhaseChange(previous, current scan.Phase) {
	h.Broadcast(Event{Type: TypePhase, Phase: current.String()})
}

// OnCursor implements scan.Observer.
func (h *Hub) OnCursor(pos scan.Position) {
	h.Broadcast(Event{Type: TypeCursor, Row: pos.Row, Column: pos.Column})
}

// OnCountdown implements scan.Observer.
func (h *Hub) OnCountdown(remaining time.Duration) {
	h.Broadcast(Event{Type: TypeCountdown, RemainingMs: remaining.Milliseconds()})
}

// OnCommit implements scan.Observer.
func (h *Hub) OnCommit(pos scan.Position) {
	h.Broadcast(Event{Type: TypeCommit, Row: pos.Row, Column: pos.Column})
}

// OnStateChange implements sensor.Notifier.
func (h *Hub) OnStateChange(previous, current sensor.ConnectionState, reason string) {
	h.Broadcast(Event{Type: TypeConnection, State: current.String(), Reason: reason})
}

// OnError implements sensor.Notifier.
func (h *Hub) OnError(err error) {
	h.Broadcast(Event{Type: TypeError, Error: err.Error()})
}

// OnSample implements sensor.Notifier. Only hits are broadcast.
func (h *Hub) OnSample(s thinkgear.Sample, hit bool) {
	if hit {
		h.Broadcast(Event{Type: TypeBlink, Strength: s.BlinkStrength})
	}
}

// OnText implements keyboard.Observer.
func (h *Hub) OnText(text string) {
	h.Broadcast(Event{Type: TypeText, Text: text})
}

// OnExitPending implements keyboard.Observer.
func (h *Hub) OnExitPending(pending bool) {
	h.Broadcast(Event{Type: TypeExit, Pending: pending})
}

// Deliver implements ports.MessageSink.
func (h *Hub) Deliver(ctx context.Context, msg domain.Message) error {
	h.Broadcast(Event{Type: TypeSent, Text: msg.Text, Time: msg.SentAt.Format(time.RFC3339Nano)})
	return nil
}
