package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bft-labs/blinkscan/internal/domain"
	"github.com/bft-labs/blinkscan/pkg/scan"
	"github.com/bft-labs/blinkscan/pkg/sensor"
	"github.com/bft-labs/blinkscan/pkg/thinkgear"
)

// Bridge turns scanning notifications into tea messages. Messages sent
// before Attach are dropped.
type Bridge struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

// NewBridge creates a detached bridge.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach delivers further messages to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.AttachFunc(p.Send)
}

// AttachFunc delivers further messages to send.
func (b *Bridge) AttachFunc(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Bridge) emit(msg tea.Msg) {
	b.mu.RLock()
	send := b.send
	b.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (b *Bridge) OnPhaseChange(previous, current scan.Phase) { b.emit(PhaseMsg{Phase: current}) }
func (b *Bridge) OnCursor(pos scan.Position)                 { b.emit(CursorMsg{Position: pos}) }
func (b *Bridge) OnCountdown(remaining time.Duration)        { b.emit(CountdownMsg{Remaining: remaining}) }
func (b *Bridge) OnCommit(pos scan.Position)                 { b.emit(CommitMsg{Position: pos}) }

func (b *Bridge) OnStateChange(previous, current sensor.ConnectionState, reason string) {
	b.emit(ConnectionMsg{State: current, Reason: reason})
}

func (b *Bridge) OnError(err error) {
	b.emit(LogLineMsg{Line: "error: " + err.Error()})
}

func (b *Bridge) OnSample(s thinkgear.Sample, hit bool) {
	b.emit(SampleMsg{Strength: s.BlinkStrength, Hit: hit})
}

func (b *Bridge) OnText(text string)         { b.emit(TextMsg{Text: text}) }
func (b *Bridge) OnExitPending(pending bool) { b.emit(ExitPendingMsg{Pending: pending}) }

// Deliver shows a sent message in the log panel.
func (b *Bridge) Deliver(ctx context.Context, msg domain.Message) error {
	b.emit(LogLineMsg{Line: fmt.Sprintf("sent: %q", msg.Text)})
	return nil
}

// Done asks the program to quit.
func (b *Bridge) Done() {
	b.emit(DoneMsg{})
}

// Writer returns an io.Writer that forwards complete lines to the log
// panel. Use it as the logger output while the TUI owns the terminal.
func (b *Bridge) Writer() *LineWriter {
	return &LineWriter{emit: b.emit}
}

// LineWriter buffers partial writes and emits one LogLineMsg per line.
type LineWriter struct {
	mu   sync.Mutex
	buf  strings.Builder
	emit func(tea.Msg)
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	content := w.buf.String()
	lines := strings.Split(content, "\n")

	w.buf.Reset()
	w.buf.WriteString(lines[len(lines)-1])
	for _, line := range lines[:len(lines)-1] {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			w.emit(LogLineMsg{Line: line})
		}
	}
	return len(p), nil
}
