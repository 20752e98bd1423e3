package ai

import (
	"time"

	"github.com/lox/wheelshow/internal/game"
)

// Pacing controls how long a computer player pauses before each step.
type Pacing struct {
	Think        time.Duration // before choosing a move
	Vowel        time.Duration // between buying a vowel and calling it
	Consonant    time.Duration // between the wheel stopping and calling a consonant
	PollInterval time.Duration // while waiting for the wheel
	MaxPolls     int
}

// DefaultPacing is tuned for a person watching the TUI.
func DefaultPacing() Pacing {
	return Pacing{
		Think:        900 * time.Millisecond,
		Vowel:        700 * time.Millisecond,
		Consonant:    800 * time.Millisecond,
		PollInterval: 100 * time.Millisecond,
		MaxPolls:     100,
	}
}

// Instant has no pauses, for simulations. The wheel is still polled
// briefly in case another goroutine is delivering the spin.
func Instant() Pacing {
	return Pacing{PollInterval: time.Millisecond, MaxPolls: 5000}
}

// For scales the pauses for a personality. Polling is left alone since it
// tracks the wheel, not the player.
func (p Pacing) For(personality game.Personality) Pacing {
	f := personality.PacingScale()
	scale := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) * f)
	}
	p.Think = scale(p.Think)
	p.Vowel = scale(p.Vowel)
	p.Consonant = scale(p.Consonant)
	return p
}
