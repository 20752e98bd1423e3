package game

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/wheelshow/internal/phrases"
	"github.com/lox/wheelshow/internal/wheel"
)

// Option configures an Engine during creation.
type Option func(*engineConfig)

type engineConfig struct {
	roster    []Seat
	bank      *phrases.Bank
	settings  Settings
	wedges    []wheel.Wedge
	logger    *log.Logger
	scheduler Scheduler
	gameID    string
}

// WithRoster sets the seats. Default is DefaultRoster.
func WithRoster(roster []Seat) Option {
	return func(c *engineConfig) {
		c.roster = roster
	}
}

// WithPhraseBank sets the bank rounds are drawn from. Default is
// phrases.Default.
func WithPhraseBank(bank *phrases.Bank) Option {
	return func(c *engineConfig) {
		c.bank = bank
	}
}

// WithSettings overrides the rules. Zero fields keep their defaults.
func WithSettings(s Settings) Option {
	return func(c *engineConfig) {
		if s.RoundsTotal > 0 {
			c.settings.RoundsTotal = s.RoundsTotal
		}
		if s.VowelPrice > 0 {
			c.settings.VowelPrice = s.VowelPrice
		}
		if s.HostLineLimit > 0 {
			c.settings.HostLineLimit = s.HostLineLimit
		}
	}
}

// WithWedges replaces the wheel layout, mostly for tests that need a
// particular wedge at a known index.
func WithWedges(wedges []wheel.Wedge) Option {
	return func(c *engineConfig) {
		c.wedges = wedges
	}
}

// WithLogger sets the logger. Default discards.
func WithLogger(logger *log.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithScheduler sets who is told when a computer player must act. It can
// also be attached later with SetScheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *engineConfig) {
		c.scheduler = s
	}
}

// WithGameID fixes the session ID instead of generating one.
func WithGameID(id string) Option {
	return func(c *engineConfig) {
		c.gameID = id
	}
}

func defaultConfig() *engineConfig {
	return &engineConfig{
		roster:   DefaultRoster(),
		settings: DefaultSettings(),
		wedges:   wheel.Standard(),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
}
