// Package simulator plays headless all-computer sessions.
package simulator

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/wheelshow/internal/ai"
	"github.com/lox/wheelshow/internal/game"
	"github.com/lox/wheelshow/internal/phrases"
	"github.com/lox/wheelshow/internal/randutil"
	"github.com/lox/wheelshow/internal/renderer"
	"github.com/lox/wheelshow/internal/statistics"
	"github.com/lox/wheelshow/internal/wheel"
)

// Config holds configuration for running simulations
type Config struct {
	Games       int
	Seed        int64
	Concurrency int           // games played at once; 0 means one
	Timeout     time.Duration // per game
	Roster      []game.Seat   // every seat is played by the computer
	Bank        *phrases.Bank
	Settings    game.Settings
	Wedges      []wheel.Wedge
	Logger      *log.Logger
	Monitor     Monitor // progress; nil for none
}

// Simulator runs wheel game simulations
type Simulator struct {
	config Config
	clock  quartz.Clock
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if len(config.Roster) == 0 {
		config.Roster = game.DefaultRoster()
	}
	if config.Bank == nil {
		config.Bank = phrases.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if config.Logger == nil {
		config.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if config.Monitor == nil {
		config.Monitor = NullMonitor{}
	}
	return &Simulator{config: config, clock: quartz.NewReal()}
}

// Names returns the seat names in table order.
func (s *Simulator) Names() []string {
	names := make([]string, len(s.config.Roster))
	for i, seat := range s.config.Roster {
		names[i] = seat.Name
	}
	return names
}

// Run plays every game and returns the aggregate.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	results := make([]statistics.GameResult, s.config.Games)
	var completed atomic.Int64
	s.config.Monitor.OnRunStart(s.config.Games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for i := range s.config.Games {
		seed := randutil.Derive(s.config.Seed, i)
		g.Go(func() error {
			result, err := s.PlayGame(ctx, seed)
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			results[i] = result
			s.config.Monitor.OnGameComplete(int(completed.Add(1)), result)
			return nil
		})
	}
	err := g.Wait()
	s.config.Monitor.OnRunComplete(int(completed.Load()), err)
	if err != nil {
		return nil, err
	}

	stats := statistics.New(s.Names())
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

// PlayGame plays one session to GameEnd.
func (s *Simulator) PlayGame(ctx context.Context, seed int64) (statistics.GameResult, error) {
	if err := ctx.Err(); err != nil {
		return statistics.GameResult{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	logger := s.config.Logger.With("seed", seed)
	roster := make([]game.Seat, len(s.config.Roster))
	for i, seat := range s.config.Roster {
		seat.Type = game.AI
		roster[i] = seat
	}

	opts := []game.Option{
		game.WithRoster(roster),
		game.WithPhraseBank(s.config.Bank),
		game.WithSettings(s.config.Settings),
		game.WithLogger(logger),
	}
	if len(s.config.Wedges) > 0 {
		opts = append(opts, game.WithWedges(s.config.Wedges))
	}
	engine := game.NewEngine(randutil.New(seed), opts...)

	runner := ai.NewRunner(engine, s.clock, ai.Instant(), logger)
	defer runner.Close()
	engine.SetScheduler(runner)

	spins := renderer.NewAuto(engine, randutil.New(randutil.Derive(seed, 1)), s.clock, 0, logger)
	defer spins.Stop()
	engine.Subscribe(spins)

	rec := newRecorder(engine, len(roster))
	engine.Subscribe(rec)

	if err := engine.StartGame(); err != nil {
		return statistics.GameResult{}, fmt.Errorf("failed to start game: %w", err)
	}

	select {
	case <-rec.done:
	case <-ctx.Done():
		snap := engine.Snapshot()
		return statistics.GameResult{}, fmt.Errorf("game did not finish (seed: %d, phase: %s, round: %d): %w",
			seed, snap.Phase, snap.RoundIndex+1, ctx.Err())
	}

	result := rec.result()
	result.Seed = seed
	logger.Debug("Game finished", "winner", roster[result.Winner].Name, "spins", result.Spins)
	return result, nil
}

// recorder tallies a game from its events and moves on after each round.
type recorder struct {
	engine *game.Engine

	mu        sync.Mutex
	roundWins []int
	winnings  []int
	winner    int
	spins     int
	bankrupts int

	once sync.Once
	done chan struct{}
}

func newRecorder(engine *game.Engine, seats int) *recorder {
	return &recorder{
		engine:    engine,
		roundWins: make([]int, seats),
		winnings:  make([]int, seats),
		done:      make(chan struct{}),
	}
}

func (r *recorder) OnEvent(ev game.Event) {
	switch e := ev.(type) {
	case game.WedgeLanded:
		r.mu.Lock()
		r.spins++
		if e.Wedge.Kind == wheel.Bankrupt {
			r.bankrupts++
		}
		r.mu.Unlock()

	case game.RoundEnded:
		r.mu.Lock()
		r.roundWins[e.Winner]++
		r.mu.Unlock()
		_ = r.engine.NextRound()

	case game.GameEnded:
		r.mu.Lock()
		for _, p := range e.Standings {
			r.winnings[p.ID-1] = p.TotalBank
		}
		r.winner = e.Standings[0].ID - 1
		r.mu.Unlock()
		r.once.Do(func() { close(r.done) })
	}
}

func (r *recorder) result() statistics.GameResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return statistics.GameResult{
		Winnings:  append([]int(nil), r.winnings...),
		Winner:    r.winner,
		RoundWins: append([]int(nil), r.roundWins...),
		Spins:     r.spins,
		Bankrupts: r.bankrupts,
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
)

// FormatSummary renders the per-seat results as a table.
func FormatSummary(stats *statistics.Statistics) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Player", "Wins", "Win %", "Rounds", "Mean $", "Median $", "95% CI").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			default:
				return numberStyle
			}
		})

	for i := range stats.Seats {
		ss := &stats.Seats[i]
		lo, hi := ss.ConfidenceInterval95()
		t.Row(
			ss.Name,
			fmt.Sprint(ss.Wins),
			fmt.Sprintf("%.1f", ss.WinRate()*100),
			fmt.Sprint(ss.RoundsWon),
			fmt.Sprintf("%.0f", ss.Mean()),
			fmt.Sprintf("%.0f", ss.Median()),
			fmt.Sprintf("[%.0f, %.0f]", lo, hi),
		)
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%d games, %d rounds", stats.Games, stats.Rounds)))
	sb.WriteString("\n")
	sb.WriteString(t.String())
	sb.WriteString("\n")
	bankruptRate := 0.0
	if stats.Spins > 0 {
		bankruptRate = float64(stats.Bankrupts) / float64(stats.Spins) * 100
	}
	sb.WriteString(fmt.Sprintf("Spins: %d (%.1f%% bankrupt)\n", stats.Spins, bankruptRate))
	return sb.String()
}
