package simulator

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wheelshow/internal/game"
	"github.com/lox/wheelshow/internal/phrases"
	"github.com/lox/wheelshow/internal/statistics"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	bank, err := phrases.New([]phrases.Entry{
		{Category: "THING", Text: "CAT"},
		{Category: "PHRASE", Text: "PIECE OF CAKE"},
		{Category: "PLACE", Text: "THE GREAT OUTDOORS"},
	})
	require.NoError(t, err)

	return Config{
		Games:       6,
		Seed:        12345,
		Concurrency: 3,
		Timeout:     10 * time.Second,
		Roster: []game.Seat{
			{Name: "Ada", Type: game.AI},
			{Name: "Max", Type: game.AI},
			{Name: "You", Type: game.Human},
		},
		Bank:     bank,
		Settings: game.Settings{RoundsTotal: 2},
		Logger:   log.NewWithOptions(io.Discard, log.Options{Level: log.WarnLevel}),
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	t.Parallel()
	s := New(Config{Games: 1})
	assert.Len(t, s.config.Roster, 3)
	assert.NotNil(t, s.config.Bank)
	assert.Equal(t, 1, s.config.Concurrency)
	assert.Equal(t, []string{"You", "Ada", "Max"}, s.Names())
}

func TestPlayGameFinishes(t *testing.T) {
	t.Parallel()
	s := New(testConfig(t))

	result, err := s.PlayGame(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), result.Seed)
	require.Len(t, result.Winnings, 3)
	require.Len(t, result.RoundWins, 3)
	assert.Equal(t, 2, result.RoundWins[0]+result.RoundWins[1]+result.RoundWins[2])
	for seat, w := range result.Winnings {
		assert.LessOrEqual(t, w, result.Winnings[result.Winner], "seat %d beat the winner", seat)
	}
}

func TestRunAggregates(t *testing.T) {
	t.Parallel()
	s := New(testConfig(t))

	stats, err := s.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, stats.Validate())

	assert.Equal(t, 6, stats.Games)
	assert.Equal(t, 12, stats.Rounds)
	require.Len(t, stats.Seats, 3)
	assert.Equal(t, "Ada", stats.Seats[0].Name)

	summary := FormatSummary(stats)
	assert.Contains(t, summary, "6 games, 12 rounds")
	assert.Contains(t, summary, "Ada")
	assert.Contains(t, summary, "Spins:")
}

func TestRunIsDeterministicPerSeed(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Games = 1

	a, err := New(cfg).PlayGame(context.Background(), 7)
	require.NoError(t, err)
	b, err := New(cfg).PlayGame(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRunHonoursCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig(t)).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type countingMonitor struct {
	mu        sync.Mutex
	started   int
	games     int
	completed int
	err       error
}

func (c *countingMonitor) OnRunStart(games int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = games
}

func (c *countingMonitor) OnGameComplete(int, statistics.GameResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.games++
}

func (c *countingMonitor) OnRunComplete(completed int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed = completed
	c.err = err
}

func TestRunReportsProgress(t *testing.T) {
	cfg := testConfig(t)
	counter := &countingMonitor{}
	var dots bytes.Buffer
	cfg.Monitor = NewMultiMonitor(counter, nil, NewDotsMonitor(&dots))

	_, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, counter.started)
	assert.Equal(t, 6, counter.games)
	assert.Equal(t, 6, counter.completed)
	assert.NoError(t, counter.err)
	assert.Equal(t, 6, strings.Count(dots.String(), "●"))
	assert.Contains(t, dots.String(), "Completed 6 games")
}

func TestNewMultiMonitor(t *testing.T) {
	assert.Equal(t, NullMonitor{}, NewMultiMonitor())
	assert.Equal(t, NullMonitor{}, NewMultiMonitor(nil))

	single := &countingMonitor{}
	assert.Same(t, single, NewMultiMonitor(nil, single))
}
