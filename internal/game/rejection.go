package game

import (
	"errors"
	"fmt"
)

// Action names an engine intent.
type Action string

const (
	ActionStartGame    Action = "start_game"
	ActionSpinWheel    Action = "spin_wheel"
	ActionSpinComplete Action = "spin_complete"
	ActionPickLetter   Action = "pick_letter"
	ActionBuyVowel     Action = "buy_vowel"
	ActionAttemptSolve Action = "attempt_solve"
	ActionNextRound    Action = "next_round"
	ActionRestart      Action = "restart"
)

// Reason says why an intent was turned away. It is also returned on its own
// by Resolve.
type Reason string

const (
	ReasonWrongPhase        Reason = "wrong_phase"
	ReasonStaleSpin         Reason = "stale_spin"
	ReasonWedgeOutOfRange   Reason = "wedge_out_of_range"
	ReasonNotALetter        Reason = "not_a_letter"
	ReasonNotConsonant      Reason = "not_a_consonant"
	ReasonNotVowel          Reason = "not_a_vowel"
	ReasonAlreadyGuessed    Reason = "already_guessed"
	ReasonInsufficientFunds Reason = "insufficient_funds"
	ReasonNoConsonantsLeft  Reason = "no_consonants_left"
	ReasonNoVowelsLeft      Reason = "no_vowels_left"
)

func (r Reason) Error() string {
	return string(r)
}

// ErrRejected matches every *Rejection via errors.Is.
var ErrRejected = errors.New("intent rejected")

// Rejection is returned when an intent's guard fails. The engine state is
// left exactly as it was.
type Rejection struct {
	Action Action
	Phase  Phase
	Reason Reason
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s rejected in %s: %s", r.Action, r.Phase, r.Reason)
}

// Is makes errors.Is(err, ErrRejected) and errors.Is(err, Reason...) work.
func (r *Rejection) Is(target error) bool {
	if target == ErrRejected {
		return true
	}
	if reason, ok := target.(Reason); ok {
		return reason == r.Reason
	}
	return false
}

// RejectionReason extracts the reason from err, or "" if err is not a
// rejection.
func RejectionReason(err error) Reason {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return ""
}
