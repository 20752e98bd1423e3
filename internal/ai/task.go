package ai

import (
	"errors"
	"fmt"
	"time"

	"github.com/lox/wheelshow/internal/game"
)

// Engine is the part of *game.Engine a computer player drives.
type Engine interface {
	Snapshot() game.State
	SpinWheel() error
	PickLetter(letter rune) error
	BuyVowel() error
	AttemptSolve(guess string) error
}

var (
	// ErrStale means the turn a task was created for is over, or the game
	// moved somewhere the task did not expect.
	ErrStale = errors.New("turn is no longer current")

	// ErrSpinTimeout means the wheel never stopped within MaxPolls.
	ErrSpinTimeout = errors.New("gave up waiting for the wheel")
)

type step int

const (
	stepDecide step = iota
	stepPickVowel
	stepAwaitSpin
	stepPickConsonant
	stepDone
)

func (s step) String() string {
	return [...]string{"decide", "pick_vowel", "await_spin", "pick_consonant", "done"}[s]
}

// Task plays one computer turn. Call Delay, wait that long, then Step, until
// Step reports done. Every Step starts from a fresh snapshot and checks it
// still belongs to the task's turn before doing anything.
type Task struct {
	turn   game.TurnRef
	engine Engine
	pacing Pacing
	step   step
	polls  int
}

// NewTask creates a task for turn.
func NewTask(engine Engine, turn game.TurnRef, pacing Pacing) *Task {
	return &Task{turn: turn, engine: engine, pacing: pacing}
}

// Turn returns the turn the task was created for.
func (t *Task) Turn() game.TurnRef {
	return t.turn
}

// Delay is how long to pause before the next Step.
func (t *Task) Delay() time.Duration {
	switch t.step {
	case stepDecide:
		return t.pacing.Think
	case stepPickVowel:
		return t.pacing.Vowel
	case stepAwaitSpin:
		return t.pacing.PollInterval
	case stepPickConsonant:
		return t.pacing.Consonant
	default:
		return 0
	}
}

// Step runs the next step. It returns done once the task has nothing left
// to do, whether it finished normally or not.
func (t *Task) Step() (done bool, err error) {
	if t.step == stepDone {
		return true, nil
	}

	s := t.engine.Snapshot()
	if err := t.guard(s); err != nil {
		t.step = stepDone
		return true, err
	}

	switch t.step {
	case stepDecide:
		err = t.decide(s)
	case stepPickVowel:
		err = t.pick(s, ChooseVowel)
	case stepAwaitSpin:
		err = t.awaitSpin(s)
	case stepPickConsonant:
		err = t.pick(s, ChooseConsonant)
	}
	if err != nil {
		t.step = stepDone
	}
	return t.step == stepDone, err
}

func (t *Task) guard(s game.State) error {
	if s.Turn != t.turn.Turn || s.CurrentPlayerIndex != t.turn.Player || s.RoundIndex != t.turn.Round {
		return ErrStale
	}
	var ok bool
	switch t.step {
	case stepDecide:
		ok = s.Phase == game.TurnAI || s.Phase == game.AwaitAction || s.Phase == game.AwaitConsonant
	case stepPickVowel:
		ok = s.Phase == game.BuyVowel
	case stepAwaitSpin:
		ok = s.Phase == game.Spin || s.Phase == game.AwaitConsonant
	case stepPickConsonant:
		ok = s.Phase == game.AwaitConsonant
	}
	if !ok {
		return fmt.Errorf("%w: %s in phase %s", ErrStale, t.step, s.Phase)
	}
	return nil
}

func (t *Task) decide(s game.State) error {
	// The wheel already stopped on cash, possibly after an earlier task gave
	// up waiting for it.
	if s.Phase == game.AwaitConsonant {
		t.step = stepPickConsonant
		return nil
	}

	d := Decide(s)
	switch d.Move {
	case MoveSolve:
		t.step = stepDone
		return t.engine.AttemptSolve(d.Guess)
	case MoveBuyVowel:
		if err := t.engine.BuyVowel(); err != nil {
			return err
		}
		t.step = stepPickVowel
	default:
		if err := t.engine.SpinWheel(); err != nil {
			return err
		}
		t.step = stepAwaitSpin
		t.polls = 0
	}
	return nil
}

func (t *Task) awaitSpin(s game.State) error {
	if s.Phase == game.AwaitConsonant {
		t.step = stepPickConsonant
		return nil
	}
	t.polls++
	if t.polls >= t.pacing.MaxPolls {
		return ErrSpinTimeout
	}
	return nil
}

func (t *Task) pick(s game.State, choose func(game.Board) (rune, bool)) error {
	t.step = stepDone
	letter, ok := choose(s.Board)
	if !ok {
		return fmt.Errorf("no letter left to call in %s", s.Phase)
	}
	return t.engine.PickLetter(letter)
}
