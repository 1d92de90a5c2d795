// Package console renders scan activity as coloured lines on a terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/bft-labs/blinkscan/internal/domain"
	"github.com/bft-labs/blinkscan/pkg/scan"
	"github.com/bft-labs/blinkscan/pkg/sensor"
	"github.com/bft-labs/blinkscan/pkg/thinkgear"
)

var (
	phaseColor  = color.New(color.FgCyan)
	cursorColor = color.New(color.FgHiMagenta, color.Bold)
	commitColor = color.New(color.FgHiGreen, color.Bold)
	sentColor   = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed)
	dimColor    = color.New(color.Faint)
	textColor   = color.New(color.FgHiWhite)
)

var stateColors = map[sensor.ConnectionState]*color.Color{
	sensor.Disconnected: color.New(color.FgRed),
	sensor.Connecting:   color.New(color.FgYellow),
	sensor.Connected:    color.New(color.FgGreen),
}

// Printer writes one line per notable event. It observes the engine, the
// sensor link and the composer, and acts as a SEND sink.
type Printer struct {
	mu        sync.Mutex
	w         io.Writer
	label     func(scan.Position) string
	countdown bool
}

// NewPrinter creates a printer. label resolves a position to its key label
// and may be nil.
func NewPrinter(w io.Writer, label func(scan.Position) string) *Printer {
	return &Printer{w: w, label: label}
}

// ShowCountdown enables one line per countdown tick.
func (p *Printer) ShowCountdown(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.countdown = enabled
}

func (p *Printer) printf(c *color.Color, format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ts := dimColor.Sprint(time.Now().Format("15:04:05"))
	fmt.Fprintf(p.w, "%s %s\n", ts, c.Sprintf(format, args...))
}

func (p *Printer) describe(pos scan.Position) string {
	if p.label == nil {
		return pos.String()
	}
	if l := p.label(pos); l != "" {
		return fmt.Sprintf("%s %s", l, pos)
	}
	return fmt.Sprintf("<none> %s", pos)
}

// OnPhaseChange implements scan.Observer.
func (p *Printer) OnPhaseChange(previous, current scan.Phase) {
	p.printf(phaseColor, "phase: %s", current)
}

// OnCursor implements scan.Observer.
func (p *Printer) OnCursor(pos scan.Position) {
	p.printf(cursorColor, "selection: %s", p.describe(pos))
}

// OnCountdown implements scan.Observer.
func (p *Printer) OnCountdown(remaining time.Duration) {
	p.mu.Lock()
	show := p.countdown
	p.mu.Unlock()
	if show && remaining > 0 {
		p.printf(dimColor, "%s", remaining.Round(time.Second))
	}
}

// OnCommit implements scan.Observer.
func (p *Printer) OnCommit(pos scan.Position) {
	p.printf(commitColor, "committed: %s", p.describe(pos))
}

// OnStateChange implements sensor.Notifier.
func (p *Printer) OnStateChange(previous, current sensor.ConnectionState, reason string) {
	c, ok := stateColors[current]
	if !ok {
		c = dimColor
	}
	p.printf(c, "bridge %s (%s)", current, reason)
}

// OnError implements sensor.Notifier.
func (p *Printer) OnError(err error) {
	p.printf(errorColor, "error: %v", err)
}

// OnSample implements sensor.Notifier. Only hits are printed.
func (p *Printer) OnSample(s thinkgear.Sample, hit bool) {
	if hit {
		p.printf(warnColor, "blink %d", s.BlinkStrength)
	}
}

// OnText implements keyboard.Observer.
func (p *Printer) OnText(text string) {
	p.printf(textColor, "text: %q", text)
}

// OnExitPending implements keyboard.Observer.
func (p *Printer) OnExitPending(pending bool) {
	if pending {
		p.printf(warnColor, "select EXIT again to quit")
	} else {
		p.printf(dimColor, "exit cancelled")
	}
}

// Deliver implements ports.MessageSink.
func (p *Printer) Deliver(ctx context.Context, msg domain.Message) error {
	p.printf(sentColor, "sent: %s", msg.Text)
	return nil
}
