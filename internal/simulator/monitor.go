package simulator

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/wheelshow/internal/statistics"
)

// Monitor receives progress notifications from Run. OnGameComplete may be
// called from several goroutines at once.
type Monitor interface {
	// OnRunStart is called before the first game.
	OnRunStart(games int)

	// OnGameComplete is called after each game finishes.
	OnGameComplete(completed int, result statistics.GameResult)

	// OnRunComplete is called once every game has finished or the run failed.
	OnRunComplete(completed int, err error)
}

// NullMonitor is a no-op implementation.
type NullMonitor struct{}

func (NullMonitor) OnRunStart(int)                            {}
func (NullMonitor) OnGameComplete(int, statistics.GameResult) {}
func (NullMonitor) OnRunComplete(int, error)                  {}

// MultiMonitor fans notifications out to several monitors.
type MultiMonitor []Monitor

// NewMultiMonitor builds a composite monitor, dropping nil entries.
func NewMultiMonitor(monitors ...Monitor) Monitor {
	filtered := make(MultiMonitor, 0, len(monitors))
	for _, m := range monitors {
		if m != nil {
			filtered = append(filtered, m)
		}
	}
	switch len(filtered) {
	case 0:
		return NullMonitor{}
	case 1:
		return filtered[0]
	}
	return filtered
}

func (mm MultiMonitor) OnRunStart(games int) {
	for _, m := range mm {
		m.OnRunStart(games)
	}
}

func (mm MultiMonitor) OnGameComplete(completed int, result statistics.GameResult) {
	for _, m := range mm {
		m.OnGameComplete(completed, result)
	}
}

func (mm MultiMonitor) OnRunComplete(completed int, err error) {
	for _, m := range mm {
		m.OnRunComplete(completed, err)
	}
}

// seatColors cycles across seats so each winner gets a recognisable dot.
var seatColors = []lipgloss.Color{"#04B575", "#7D56F4", "#FFD700", "#FF6B6B", "#96CEB4", "#FFEAA7"}

// DotsMonitor prints one dot per game, coloured by the winning seat.
type DotsMonitor struct {
	writer    io.Writer
	mu        sync.Mutex
	dotCount  int
	lineWidth int // Wrap after this many dots
}

// NewDotsMonitor creates a new dots monitor.
func NewDotsMonitor(writer io.Writer) *DotsMonitor {
	if writer == nil {
		writer = os.Stdout
	}
	return &DotsMonitor{writer: writer, lineWidth: 80}
}

// OnRunStart implements Monitor.
func (d *DotsMonitor) OnRunStart(int) {}

// OnGameComplete implements Monitor.
func (d *DotsMonitor) OnGameComplete(_ int, result statistics.GameResult) {
	d.mu.Lock()
	defer d.mu.Unlock()

	color := seatColors[result.Winner%len(seatColors)]
	fmt.Fprint(d.writer, lipgloss.NewStyle().Foreground(color).Render("●"))

	d.dotCount++
	if d.dotCount >= d.lineWidth {
		fmt.Fprintln(d.writer)
		d.dotCount = 0
	}
}

// OnRunComplete implements Monitor.
func (d *DotsMonitor) OnRunComplete(completed int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dotCount > 0 {
		fmt.Fprintln(d.writer)
	}
	if err != nil {
		fmt.Fprintf(d.writer, "Stopped after %d games: %v\n", completed, err)
		return
	}
	fmt.Fprintf(d.writer, "Completed %d games\n", completed)
}
