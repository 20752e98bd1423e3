// Package config loads wheelshow settings from an HCL file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/wheelshow/internal/ai"
	"github.com/lox/wheelshow/internal/game"
	"github.com/lox/wheelshow/internal/phrases"
)

// Config is the complete configuration file. Every block is optional.
type Config struct {
	Server  *ServerSettings `hcl:"server,block"`
	Game    *GameSettings   `hcl:"game,block"`
	Pacing  *PacingSettings `hcl:"pacing,block"`
	Players []PlayerConfig  `hcl:"player,block"`
	Phrases []PhraseConfig  `hcl:"phrase,block"`
}

// ServerSettings configures the WebSocket bridge and logging.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// GameSettings are the session rules.
type GameSettings struct {
	Rounds     int `hcl:"rounds,optional"`
	VowelPrice int `hcl:"vowel_price,optional"`
	HostLines  int `hcl:"host_lines,optional"`
}

// PacingSettings are the computer player and spin delays in milliseconds.
// Zero or missing values take the defaults.
type PacingSettings struct {
	ThinkMS     int `hcl:"think_ms,optional"`
	VowelMS     int `hcl:"vowel_ms,optional"`
	ConsonantMS int `hcl:"consonant_ms,optional"`
	PollMS      int `hcl:"poll_ms,optional"`
	MaxPolls    int `hcl:"max_polls,optional"`
	SpinMS      int `hcl:"spin_ms,optional"`
}

// PlayerConfig is one seat, in table order.
type PlayerConfig struct {
	Name        string `hcl:"name,label"`
	Type        string `hcl:"type,optional"`
	Personality string `hcl:"personality,optional"`
}

// PhraseConfig adds a puzzle to the bank. When any are given they replace
// the built-in phrases.
type PhraseConfig struct {
	Category string `hcl:"category,optional"`
	Text     string `hcl:"text"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func defaultServer() ServerSettings {
	return ServerSettings{
		Address:  "localhost",
		Port:     8080,
		LogLevel: "info",
		LogFile:  "wheelshow.log",
	}
}

func defaultGame() GameSettings {
	s := game.DefaultSettings()
	return GameSettings{Rounds: s.RoundsTotal, VowelPrice: s.VowelPrice, HostLines: s.HostLineLimit}
}

func defaultPacing() PacingSettings {
	p := ai.DefaultPacing()
	return PacingSettings{
		ThinkMS:     int(p.Think / time.Millisecond),
		VowelMS:     int(p.Vowel / time.Millisecond),
		ConsonantMS: int(p.Consonant / time.Millisecond),
		PollMS:      int(p.PollInterval / time.Millisecond),
		MaxPolls:    p.MaxPolls,
		SpinMS:      1500,
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// DefaultConfig.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

// applyDefaults fills in missing blocks and zero values.
func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	ds := defaultServer()
	if c.Server.Address == "" {
		c.Server.Address = ds.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = ds.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = ds.LogLevel
	}
	if c.Server.LogFile == "" {
		c.Server.LogFile = ds.LogFile
	}

	if c.Game == nil {
		c.Game = &GameSettings{}
	}
	dg := defaultGame()
	if c.Game.Rounds == 0 {
		c.Game.Rounds = dg.Rounds
	}
	if c.Game.VowelPrice == 0 {
		c.Game.VowelPrice = dg.VowelPrice
	}
	if c.Game.HostLines == 0 {
		c.Game.HostLines = dg.HostLines
	}

	if c.Pacing == nil {
		c.Pacing = &PacingSettings{}
	}
	dp := defaultPacing()
	if c.Pacing.ThinkMS == 0 {
		c.Pacing.ThinkMS = dp.ThinkMS
	}
	if c.Pacing.VowelMS == 0 {
		c.Pacing.VowelMS = dp.VowelMS
	}
	if c.Pacing.ConsonantMS == 0 {
		c.Pacing.ConsonantMS = dp.ConsonantMS
	}
	if c.Pacing.PollMS == 0 {
		c.Pacing.PollMS = dp.PollMS
	}
	if c.Pacing.MaxPolls == 0 {
		c.Pacing.MaxPolls = dp.MaxPolls
	}
	if c.Pacing.SpinMS == 0 {
		c.Pacing.SpinMS = dp.SpinMS
	}

	if len(c.Players) == 0 {
		for _, seat := range game.DefaultRoster() {
			c.Players = append(c.Players, PlayerConfig{
				Name:        seat.Name,
				Type:        seat.Type.String(),
				Personality: string(seat.Personality),
			})
		}
	}
	for i := range c.Players {
		if c.Players[i].Type == "" {
			c.Players[i].Type = game.AI.String()
		}
	}
}

// Validate checks ranges and names.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1, got %d", c.Game.Rounds)
	}
	if c.Game.VowelPrice < 1 {
		return fmt.Errorf("vowel price must be positive, got %d", c.Game.VowelPrice)
	}
	if c.Game.HostLines < 1 {
		return fmt.Errorf("host lines must be positive, got %d", c.Game.HostLines)
	}

	p := c.Pacing
	for name, v := range map[string]int{
		"think_ms": p.ThinkMS, "vowel_ms": p.VowelMS, "consonant_ms": p.ConsonantMS,
		"poll_ms": p.PollMS, "spin_ms": p.SpinMS,
	} {
		if v < 0 {
			return fmt.Errorf("pacing %s must not be negative", name)
		}
	}
	if p.PollMS < 1 {
		return fmt.Errorf("pacing poll_ms must be at least 1")
	}
	if p.MaxPolls < 1 {
		return fmt.Errorf("pacing max_polls must be at least 1")
	}
	// Computer players stop waiting for the wheel after max_polls polls.
	if p.PollMS*p.MaxPolls <= p.SpinMS {
		return fmt.Errorf("pacing poll_ms * max_polls (%dms) must exceed spin_ms (%dms)", p.PollMS*p.MaxPolls, p.SpinMS)
	}

	if len(c.Players) == 0 {
		return fmt.Errorf("at least one player must be configured")
	}
	seen := make(map[string]bool)
	for _, pc := range c.Players {
		if seen[pc.Name] {
			return fmt.Errorf("duplicate player %q", pc.Name)
		}
		seen[pc.Name] = true
		if _, err := game.ParsePlayerType(pc.Type); err != nil {
			return fmt.Errorf("player %s: %w", pc.Name, err)
		}
		if !game.Personality(pc.Personality).Valid() {
			return fmt.Errorf("player %s: unknown personality %q", pc.Name, pc.Personality)
		}
	}

	for _, pc := range c.Phrases {
		if _, err := phrases.Normalize(phrases.Entry{Category: pc.Category, Text: pc.Text}); err != nil {
			return fmt.Errorf("phrase %q: %w", pc.Text, err)
		}
	}
	return nil
}

// Roster returns the configured seats.
func (c *Config) Roster() ([]game.Seat, error) {
	seats := make([]game.Seat, 0, len(c.Players))
	for _, pc := range c.Players {
		t, err := game.ParsePlayerType(pc.Type)
		if err != nil {
			return nil, fmt.Errorf("player %s: %w", pc.Name, err)
		}
		seats = append(seats, game.Seat{Name: pc.Name, Type: t, Personality: game.Personality(pc.Personality)})
	}
	return seats, nil
}

// PhraseBank returns the configured phrases, or the built-in bank when none
// are configured.
func (c *Config) PhraseBank() (*phrases.Bank, error) {
	if len(c.Phrases) == 0 {
		return phrases.Default(), nil
	}
	entries := make([]phrases.Entry, 0, len(c.Phrases))
	for _, pc := range c.Phrases {
		entries = append(entries, phrases.Entry{Category: pc.Category, Text: pc.Text})
	}
	bank, err := phrases.New(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to build phrase bank: %w", err)
	}
	return bank, nil
}

// Settings returns the session rules.
func (c *Config) Settings() game.Settings {
	return game.Settings{
		RoundsTotal:   c.Game.Rounds,
		VowelPrice:    c.Game.VowelPrice,
		HostLineLimit: c.Game.HostLines,
	}
}

// EngineOptions gathers the roster, rules and phrase bank as engine options.
func (c *Config) EngineOptions() ([]game.Option, error) {
	roster, err := c.Roster()
	if err != nil {
		return nil, err
	}
	bank, err := c.PhraseBank()
	if err != nil {
		return nil, err
	}
	return []game.Option{
		game.WithRoster(roster),
		game.WithPhraseBank(bank),
		game.WithSettings(c.Settings()),
	}, nil
}

// AIPacing returns the computer player delays.
func (c *Config) AIPacing() ai.Pacing {
	p := c.Pacing
	return ai.Pacing{
		Think:        ms(p.ThinkMS),
		Vowel:        ms(p.VowelMS),
		Consonant:    ms(p.ConsonantMS),
		PollInterval: ms(p.PollMS),
		MaxPolls:     p.MaxPolls,
	}
}

// SpinDuration is how long the wheel animates before reporting a wedge.
func (c *Config) SpinDuration() time.Duration {
	return ms(c.Pacing.SpinMS)
}

// ServerAddress returns the listen address for the bridge.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
