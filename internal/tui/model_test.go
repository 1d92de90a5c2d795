package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/blinkscan/internal/domain"
	"github.com/bft-labs/blinkscan/pkg/keyboard"
	"github.com/bft-labs/blinkscan/pkg/scan"
	"github.com/bft-labs/blinkscan/pkg/sensor"
	"github.com/bft-labs/blinkscan/pkg/thinkgear"
)

func newModel(trigger func(ctx context.Context) error) Model {
	layout := keyboard.DefaultLayout()
	return New(layout.Grid(), layout.Label, trigger)
}

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_ScanProgress(t *testing.T) {
	m := update(t, newModel(nil),
		ConnectionMsg{State: sensor.Connected, Reason: "handshake"},
		PhaseMsg{Phase: scan.PhaseScanningColumn},
		CursorMsg{Position: scan.Position{Row: 1, Column: 3}},
		CountdownMsg{Remaining: 4 * time.Second},
		SampleMsg{Strength: 88, Hit: true},
		TextMsg{Text: "HELLO"},
	)

	view := m.View()
	assert.Contains(t, view, "ScanningColumn")
	assert.Contains(t, view, "4s")
	assert.Contains(t, view, "blink 88")
	assert.Contains(t, view, "HELLO")
	assert.Contains(t, view, "DELETE")
	assert.Contains(t, view, "bridge connected (handshake)")
	assert.Equal(t, scan.Position{Row: 1, Column: 3}, m.cursor)
}

func TestModel_CommitResetsCursor(t *testing.T) {
	m := update(t, newModel(nil),
		PhaseMsg{Phase: scan.PhaseScanningRow},
		CursorMsg{Position: scan.Position{Row: 5, Column: 8}},
		PhaseMsg{Phase: scan.PhaseIdle},
		CommitMsg{Position: scan.Position{Row: 5, Column: 8}},
	)

	assert.True(t, m.cursor.IsZero())
	assert.Equal(t, "EXIT", m.last)
	assert.Contains(t, m.View(), "committed EXIT (5,8)")
}

func TestModel_ExitPendingBanner(t *testing.T) {
	m := update(t, newModel(nil), ExitPendingMsg{Pending: true})
	assert.Contains(t, m.View(), "select EXIT again to quit")

	m = update(t, m, ExitPendingMsg{Pending: false})
	assert.NotContains(t, m.View(), "select EXIT again to quit")
}

func TestModel_LogPanelIsBounded(t *testing.T) {
	m := newModel(nil)
	for i := 0; i < 20; i++ {
		m = update(t, m, LogLineMsg{Line: strings.Repeat("x", i+1)})
	}
	require.Len(t, m.logs, maxLogLines)
	assert.Equal(t, strings.Repeat("x", 20), m.logs[maxLogLines-1])
}

func TestModel_Keys(t *testing.T) {
	triggered := make(chan struct{}, 1)
	m := newModel(func(ctx context.Context) error {
		triggered <- struct{}{}
		return nil
	})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	select {
	case <-triggered:
	default:
		t.Fatal("space did not trigger")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(DoneMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_TriggerFailureIsLogged(t *testing.T) {
	m := newModel(func(ctx context.Context) error { return errors.New("engine queue full") })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	assert.Contains(t, m.View(), "trigger failed: engine queue full")
}

func TestBridge_ForwardsAfterAttach(t *testing.T) {
	b := NewBridge()
	b.OnCursor(scan.Position{Row: 1, Column: 1}) // dropped

	var got []tea.Msg
	b.AttachFunc(func(msg tea.Msg) { got = append(got, msg) })

	b.OnPhaseChange(scan.PhaseIdle, scan.PhaseScanningColumn)
	b.OnSample(thinkgear.Sample{BlinkStrength: 71}, true)
	b.OnError(errors.New("boom"))
	require.NoError(t, b.Deliver(context.Background(), domain.Message{Text: "HI"}))
	b.Done()

	assert.Equal(t, []tea.Msg{
		PhaseMsg{Phase: scan.PhaseScanningColumn},
		SampleMsg{Strength: 71, Hit: true},
		LogLineMsg{Line: "error: boom"},
		LogLineMsg{Line: `sent: "HI"`},
		DoneMsg{},
	}, got)
}

func TestLineWriter_SplitsLines(t *testing.T) {
	var got []string
	b := NewBridge()
	b.AttachFunc(func(msg tea.Msg) {
		if l, ok := msg.(LogLineMsg); ok {
			got = append(got, l.Line)
		}
	})
	w := b.Writer()

	_, _ = w.Write([]byte("first li"))
	_, _ = w.Write([]byte("ne\r\nsecond\n\nthi"))
	assert.Equal(t, []string{"first line", "second"}, got)

	_, _ = w.Write([]byte("rd\n"))
	assert.Equal(t, []string{"first line", "second", "third"}, got)
}
