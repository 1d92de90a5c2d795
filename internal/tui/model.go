package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bft-labs/blinkscan/pkg/scan"
	"github.com/bft-labs/blinkscan/pkg/sensor"
)

const (
	maxLogLines = 8
	cellWidth   = 8
)

type keyMap struct {
	Trigger key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Trigger, k.Quit} }
func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Trigger: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "blink")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cellStyle    = lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Center).Border(lipgloss.NormalBorder())
	laneStyle    = cellStyle.BorderForeground(lipgloss.Color("11"))
	cursorStyle  = cellStyle.Reverse(true).Bold(true).BorderForeground(lipgloss.Color("10"))
	textStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	connectStyle = map[sensor.ConnectionState]lipgloss.Style{
		sensor.Disconnected: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		sensor.Connecting:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		sensor.Connected:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

// Model is the bubbletea model of the scanning keyboard.
type Model struct {
	grid    scan.Grid
	label   func(scan.Position) string
	trigger func(ctx context.Context) error
	help    help.Model

	phase       scan.Phase
	cursor      scan.Position
	remaining   time.Duration
	last        string
	text        string
	exitPending bool
	conn        sensor.ConnectionState
	strength    int
	logs        []string
	width       int
}

// New creates the model. label names the key at a cell and trigger injects
// a manual trigger; either may be nil.
func New(grid scan.Grid, label func(scan.Position) string, trigger func(ctx context.Context) error) Model {
	if label == nil {
		label = func(scan.Position) string { return "" }
	}
	return Model{
		grid:    grid,
		label:   label,
		trigger: trigger,
		help:    help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Trigger):
			return m, m.triggerCmd()
		}

	case PhaseMsg:
		m.phase = msg.Phase
		if msg.Phase == scan.PhaseIdle {
			m.cursor = scan.Position{}
		}
	case CursorMsg:
		m.cursor = msg.Position
	case CountdownMsg:
		m.remaining = msg.Remaining
	case CommitMsg:
		label := m.label(msg.Position)
		if label == "" {
			label = "<none>"
		}
		m.last = label
		m = m.appendLog(fmt.Sprintf("committed %s %s", label, msg.Position))
	case ConnectionMsg:
		m.conn = msg.State
		m = m.appendLog(fmt.Sprintf("bridge %s (%s)", strings.ToLower(msg.State.String()), msg.Reason))
	case SampleMsg:
		m.strength = msg.Strength
	case TextMsg:
		m.text = msg.Text
	case ExitPendingMsg:
		m.exitPending = msg.Pending
	case LogLineMsg:
		m = m.appendLog(msg.Line)
	case triggerErrMsg:
		m = m.appendLog("trigger failed: " + msg.err.Error())
	case DoneMsg:
		return m, tea.Quit
	}
	return m, nil
}

type triggerErrMsg struct{ err error }

func (m Model) triggerCmd() tea.Cmd {
	if m.trigger == nil {
		return nil
	}
	trigger := m.trigger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := trigger(ctx); err != nil {
			return triggerErrMsg{err: err}
		}
		return nil
	}
}

func (m Model) appendLog(line string) Model {
	logs := append(append([]string(nil), m.logs...), line)
	if len(logs) > maxLogLines {
		logs = logs[len(logs)-maxLogLines:]
	}
	m.logs = logs
	return m
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("blinkscan"))
	b.WriteString("  ")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.gridView())
	b.WriteString("\n")
	b.WriteString(textStyle.Render(m.text + "▏"))
	b.WriteString("\n")
	if m.exitPending {
		b.WriteString(warnStyle.Render("select EXIT again to quit"))
		b.WriteString("\n")
	}
	for _, line := range m.logs {
		b.WriteString(dimStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m Model) statusLine() string {
	conn := connectStyle[m.conn].Render(strings.ToLower(m.conn.String()))
	parts := []string{
		"bridge " + conn,
		"phase " + m.phase.String(),
	}
	if m.phase != scan.PhaseIdle {
		parts = append(parts, fmt.Sprintf("%ds", int((m.remaining+time.Second-1)/time.Second)))
	}
	if m.strength > 0 {
		parts = append(parts, fmt.Sprintf("blink %d", m.strength))
	}
	if m.last != "" {
		parts = append(parts, "last "+m.last)
	}
	return strings.Join(parts, " · ")
}

func (m Model) gridView() string {
	rows := make([]string, 0, m.grid.Rows)
	for r := 1; r <= m.grid.Rows; r++ {
		cells := make([]string, 0, m.grid.Columns)
		for c := 1; c <= m.grid.Columns; c++ {
			pos := scan.Position{Row: r, Column: c}
			cells = append(cells, m.cellStyle(pos).Render(m.label(pos)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// cellStyle highlights the cursor. While columns are scanned the whole
// column is marked since the row is not chosen yet.
func (m Model) cellStyle(pos scan.Position) lipgloss.Style {
	switch {
	case m.phase == scan.PhaseIdle:
		return cellStyle
	case pos == m.cursor:
		return cursorStyle
	case m.phase == scan.PhaseScanningColumn && pos.Column == m.cursor.Column:
		return laneStyle
	default:
		return cellStyle
	}
}
