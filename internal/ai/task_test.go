package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wheelshow/internal/game"
	"github.com/lox/wheelshow/internal/phrases"
	"github.com/lox/wheelshow/internal/randutil"
)

// newComputerGame starts a game between two computer players on a fixed
// phrase. Spins land on the $500 wedge as soon as they are requested.
func newComputerGame(t *testing.T, opts ...game.Option) *game.Engine {
	t.Helper()
	bank, err := phrases.New([]phrases.Entry{{Category: "THING", Text: "STAR"}})
	require.NoError(t, err)

	base := []game.Option{
		game.WithRoster([]game.Seat{
			{Name: "Ada", Type: game.AI, Personality: game.Steady},
			{Name: "Max", Type: game.AI, Personality: game.Quick},
		}),
		game.WithPhraseBank(bank),
	}
	e := game.NewEngine(randutil.New(7), append(base, opts...)...)
	e.Subscribe(game.SubscriberFunc(func(ev game.Event) {
		if req, ok := ev.(game.SpinRequested); ok {
			assert.NoError(t, e.OnSpinComplete(req.Token, 0))
		}
	}))
	return e
}

func runTask(t *testing.T, task *Task) {
	t.Helper()
	for range 10 {
		done, err := task.Step()
		require.NoError(t, err)
		if done {
			return
		}
	}
	t.Fatal("task did not finish")
}

func TestTaskPlaysSpinThenConsonant(t *testing.T) {
	t.Parallel()
	e := newComputerGame(t)
	require.NoError(t, e.StartGame())
	s := e.Snapshot()
	require.Equal(t, game.TurnAI, s.Phase)

	task := NewTask(e, s.TurnRef(), DefaultPacing())
	assert.Equal(t, DefaultPacing().Think, task.Delay())

	done, err := task.Step()
	require.NoError(t, err)
	require.False(t, done)
	assert.Equal(t, game.AwaitConsonant, e.Snapshot().Phase)
	assert.Equal(t, DefaultPacing().PollInterval, task.Delay())

	done, err = task.Step()
	require.NoError(t, err)
	require.False(t, done)
	assert.Equal(t, DefaultPacing().Consonant, task.Delay())

	done, err = task.Step()
	require.NoError(t, err)
	assert.True(t, done)

	s = e.Snapshot()
	assert.True(t, s.Board.Revealed.Has('R'))
	assert.Equal(t, 500, s.Players[0].RoundBank)
	assert.Equal(t, game.AwaitAction, s.Phase)
}

func TestTaskBuysVowelThenSolves(t *testing.T) {
	t.Parallel()
	e := newComputerGame(t)
	require.NoError(t, e.StartGame())
	runTask(t, NewTask(e, e.Snapshot().TurnRef(), Instant()))

	task := NewTask(e, e.Snapshot().TurnRef(), Instant())
	done, err := task.Step()
	require.NoError(t, err)
	require.False(t, done)
	assert.Equal(t, game.BuyVowel, e.Snapshot().Phase)
	runTask(t, task)
	assert.True(t, e.Snapshot().Board.Revealed.Has('A'))

	runTask(t, NewTask(e, e.Snapshot().TurnRef(), Instant()))
	s := e.Snapshot()
	assert.Equal(t, game.RoundEnd, s.Phase)
	assert.Equal(t, 250, s.Players[0].TotalBank)
}

func TestTaskAbortsWhenTurnIsOver(t *testing.T) {
	t.Parallel()
	e := newComputerGame(t)
	require.NoError(t, e.StartGame())
	task := NewTask(e, e.Snapshot().TurnRef(), Instant())

	require.NoError(t, e.Restart())
	done, err := task.Step()
	assert.True(t, done)
	assert.ErrorIs(t, err, ErrStale)

	done, err = task.Step()
	assert.True(t, done)
	assert.NoError(t, err)
}

func TestTaskAbortsInUnexpectedPhase(t *testing.T) {
	t.Parallel()
	bank, err := phrases.New([]phrases.Entry{{Category: "THING", Text: "STAR"}})
	require.NoError(t, err)
	e := game.NewEngine(randutil.New(7),
		game.WithRoster([]game.Seat{{Name: "Ada", Type: game.AI}}),
		game.WithPhraseBank(bank),
	)
	require.NoError(t, e.StartGame())
	task := NewTask(e, e.Snapshot().TurnRef(), Instant())

	// Someone else spun; nobody has reported the wedge yet.
	require.NoError(t, e.SpinWheel())
	done, err := task.Step()
	assert.True(t, done)
	assert.ErrorIs(t, err, ErrStale)
	assert.Equal(t, game.Spin, e.Snapshot().Phase)
}

func TestTaskGivesUpOnStuckWheel(t *testing.T) {
	t.Parallel()
	bank, err := phrases.New([]phrases.Entry{{Category: "THING", Text: "STAR"}})
	require.NoError(t, err)
	e := game.NewEngine(randutil.New(7),
		game.WithRoster([]game.Seat{{Name: "Ada", Type: game.AI}}),
		game.WithPhraseBank(bank),
	)
	require.NoError(t, e.StartGame())

	pacing := Instant()
	pacing.MaxPolls = 3
	task := NewTask(e, e.Snapshot().TurnRef(), pacing)

	done, err := task.Step()
	require.NoError(t, err)
	require.False(t, done)

	for range 2 {
		done, err = task.Step()
		require.NoError(t, err)
		require.False(t, done)
	}
	done, err = task.Step()
	assert.True(t, done)
	assert.ErrorIs(t, err, ErrSpinTimeout)

	// The wheel stops late. The engine asks for the seat again and a new
	// task calls the consonant.
	turns := make(chan game.TurnRef, 1)
	e.SetScheduler(schedulerFunc(func(turn game.TurnRef) { turns <- turn }))
	require.NoError(t, e.OnSpinComplete(e.Snapshot().SpinToken, 0))
	require.Equal(t, game.AwaitConsonant, e.Snapshot().Phase)

	var turn game.TurnRef
	select {
	case turn = <-turns:
	default:
		t.Fatal("cash landing did not schedule the computer player")
	}
	assert.Equal(t, task.Turn(), turn)

	runTask(t, NewTask(e, turn, pacing))
	s := e.Snapshot()
	assert.True(t, s.Board.Revealed.Has('R'))
	assert.Equal(t, game.AwaitAction, s.Phase)
}

type schedulerFunc func(game.TurnRef)

func (f schedulerFunc) Schedule(turn game.TurnRef) { f(turn) }
func (f schedulerFunc) Cancel()                    {}
