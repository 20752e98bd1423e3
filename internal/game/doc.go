// Package game implements the state engine for a wheel game show.
//
// The main type is Engine, which owns a single session: the roster, the
// board for the current round, the wheel, and the phase state machine that
// decides which intents are legal.
//
// # Basic Usage
//
//	e := game.NewEngine(randutil.New(42))
//	_ = e.StartGame()
//	_ = e.SpinWheel()
//	// a renderer animates the spin and reports back
//	_ = e.OnSpinComplete(e.Snapshot().SpinToken, 3)
//	_ = e.PickLetter('T')
//
// # Intents and Rejections
//
// Each intent (StartGame, SpinWheel, OnSpinComplete, PickLetter, BuyVowel,
// AttemptSolve, NextRound, Restart) either applies fully or returns a
// *Rejection and leaves the state untouched. Rejections are expected during
// normal play, for example when a UI sends the same click twice, so callers
// check them with errors.Is(err, game.ErrRejected) rather than treating
// them as failures.
//
// # Observers
//
// Subscribers registered with Subscribe receive events after the engine
// lock is released, in the order the intents were applied. Every accepted
// intent ends with a StateChanged event carrying a snapshot.
//
// # Computer Players
//
// When control passes to a computer seat the engine hands a TurnRef to its
// Scheduler. The ai package provides one that plays the turn with paced
// delays and re-checks the TurnRef each time it resumes.
package game
