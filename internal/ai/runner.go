package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/wheelshow/internal/game"
)

// Runner plays computer turns in the background. It implements
// game.Scheduler: each Schedule starts a Task on its own goroutine and
// cancels whatever task was running before.
type Runner struct {
	engine Engine
	clock  quartz.Clock
	pacing Pacing
	logger *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// NewRunner creates a runner. Attach it with engine.SetScheduler.
func NewRunner(engine Engine, clock quartz.Clock, pacing Pacing, logger *log.Logger) *Runner {
	return &Runner{
		engine: engine,
		clock:  clock,
		pacing: pacing,
		logger: logger.WithPrefix("ai"),
	}
}

// Schedule starts playing turn.
func (r *Runner) Schedule(turn game.TurnRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if r.cancel != nil {
		r.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		r.run(ctx, turn)
	}()
}

// Cancel stops the running task, if any.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Close cancels the running task and waits for it to return. Later calls to
// Schedule are ignored.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, turn game.TurnRef) {
	s := r.engine.Snapshot()
	if turn.Player >= len(s.Players) {
		return
	}
	player := s.Players[turn.Player]
	task := NewTask(r.engine, turn, r.pacing.For(player.Personality))
	logger := r.logger.With("player", player.Name, "turn", turn.Turn)

	for {
		if err := r.sleep(ctx, task.Delay()); err != nil {
			logger.Debug("Turn cancelled")
			return
		}

		done, err := task.Step()
		switch {
		case err == nil:
		case errors.Is(err, ErrStale):
			logger.Debug("Dropping stale turn", "reason", err)
		case errors.Is(err, game.ErrRejected):
			logger.Debug("Move rejected", "error", err)
		default:
			logger.Warn("Computer turn failed", "error", err)
		}
		if done {
			return
		}
	}
}

// sleep waits d on the runner's clock. A zero delay still honours
// cancellation.
func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := r.clock.NewTimer(d, "ai", "pace")
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
