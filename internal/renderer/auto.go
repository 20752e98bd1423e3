// Package renderer stands in for a wheel animation when nobody is watching.
package renderer

import (
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/wheelshow/internal/game"
	"github.com/lox/wheelshow/internal/wheel"
)

// SpinTarget is where finished spins are reported.
type SpinTarget interface {
	OnSpinComplete(token uint64, wedgeIndex int) error
	Wedges() []wheel.Wedge
}

// Auto answers every SpinRequested with a random wedge after a fixed delay.
// It is a game.Subscriber.
type Auto struct {
	target SpinTarget
	clock  quartz.Clock
	delay  time.Duration
	logger *log.Logger

	mu      sync.Mutex
	rng     *rand.Rand
	enabled bool
	timers  map[uint64]*quartz.Timer
}

// NewAuto creates an enabled renderer. A zero delay reports the wedge
// immediately, on the goroutine that published the request.
func NewAuto(target SpinTarget, rng *rand.Rand, clock quartz.Clock, delay time.Duration, logger *log.Logger) *Auto {
	return &Auto{
		target:  target,
		clock:   clock,
		delay:   delay,
		logger:  logger.WithPrefix("renderer"),
		rng:     rng,
		enabled: true,
		timers:  make(map[uint64]*quartz.Timer),
	}
}

// SetEnabled turns the renderer on or off. Spins already in flight still
// land.
func (a *Auto) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// Enabled reports whether new spins are answered.
func (a *Auto) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// OnEvent implements game.Subscriber.
func (a *Auto) OnEvent(ev game.Event) {
	req, ok := ev.(game.SpinRequested)
	if !ok {
		return
	}
	if !a.Enabled() {
		return
	}
	a.Land(req.Token)
}

// Land spins for token whether or not the renderer is enabled. It is used
// to finish a spin whose renderer went away before reporting. A token that
// is already animating is left alone.
func (a *Auto) Land(token uint64) {
	a.mu.Lock()
	if _, busy := a.timers[token]; busy {
		a.mu.Unlock()
		return
	}
	n := len(a.target.Wedges())
	if n == 0 {
		a.mu.Unlock()
		return
	}
	index := a.rng.IntN(n)

	if a.delay <= 0 {
		a.mu.Unlock()
		a.land(token, index)
		return
	}
	a.timers[token] = a.clock.AfterFunc(a.delay, func() {
		a.mu.Lock()
		delete(a.timers, token)
		a.mu.Unlock()
		a.land(token, index)
	}, "renderer", "spin")
	a.mu.Unlock()
}

func (a *Auto) land(token uint64, index int) {
	if err := a.target.OnSpinComplete(token, index); err != nil {
		a.logger.Debug("Spin result not accepted", "token", token, "wedge", index, "error", err)
	}
}

// Stop cancels spins still animating.
func (a *Auto) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for token, t := range a.timers {
		t.Stop()
		delete(a.timers, token)
	}
}
