package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wheelshow/internal/ai"
	"github.com/lox/wheelshow/internal/game"
	"github.com/lox/wheelshow/internal/randutil"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wheelshow.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigMissingFileGivesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, game.DefaultSettings(), cfg.Settings())
	assert.Equal(t, "localhost:8080", cfg.ServerAddress())
	assert.Len(t, cfg.Players, 3)

	bank, err := cfg.PhraseBank()
	require.NoError(t, err)
	assert.Positive(t, bank.Len())
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
server {
  port = 9090
}

game {
  rounds      = 2
  vowel_price = 300
}

pacing {
  think_ms = 10
  spin_ms  = 300
}

player "Alice" {
  type = "human"
}

player "Bob" {
  personality = "deliberate"
}

phrase {
  category = "place"
  text     = "under the sea"
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "localhost:9090", cfg.ServerAddress())
	assert.Equal(t, game.Settings{RoundsTotal: 2, VowelPrice: 300, HostLineLimit: 50}, cfg.Settings())

	roster, err := cfg.Roster()
	require.NoError(t, err)
	assert.Equal(t, []game.Seat{
		{Name: "Alice", Type: game.Human},
		{Name: "Bob", Type: game.AI, Personality: game.Deliberate},
	}, roster)

	bank, err := cfg.PhraseBank()
	require.NoError(t, err)
	require.Equal(t, 1, bank.Len())
	entry := bank.Pick(randutil.New(1))
	assert.Equal(t, "UNDER THE SEA", entry.Text)
	assert.Equal(t, "PLACE", entry.Category)

	pacing := cfg.AIPacing()
	assert.Equal(t, 10*time.Millisecond, pacing.Think)
	assert.Equal(t, 700*time.Millisecond, pacing.Vowel)
	assert.Equal(t, 100*time.Millisecond, pacing.PollInterval)
	assert.Positive(t, pacing.MaxPolls)
	assert.Equal(t, 300*time.Millisecond, cfg.SpinDuration())

	opts, err := cfg.EngineOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 3)
}

func TestLoadConfigParseError(t *testing.T) {
	t.Parallel()
	_, err := LoadConfig(writeConfig(t, `game { rounds = `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file")

	_, err = LoadConfig(writeConfig(t, `game { laps = 3 }`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode HCL")
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid port"},
		{"no rounds", func(c *Config) { c.Game.Rounds = -1 }, "rounds"},
		{"free vowels", func(c *Config) { c.Game.VowelPrice = -5 }, "vowel price"},
		{"negative delay", func(c *Config) { c.Pacing.ThinkMS = -1 }, "think_ms"},
		{"no polling", func(c *Config) { c.Pacing.PollMS = 0 }, "poll_ms"},
		{"poll budget shorter than spin", func(c *Config) {
			c.Pacing.PollMS, c.Pacing.MaxPolls, c.Pacing.SpinMS = 100, 10, 1000
		}, "must exceed spin_ms"},
		{"duplicate player", func(c *Config) { c.Players = append(c.Players, c.Players[0]) }, "duplicate player"},
		{"unknown type", func(c *Config) { c.Players[0].Type = "robot" }, "unknown player type"},
		{"unknown personality", func(c *Config) { c.Players[1].Personality = "grumpy" }, "unknown personality"},
		{"phrase without letters", func(c *Config) { c.Phrases = []PhraseConfig{{Text: "42"}} }, "phrase"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfigPartialPacingBlock(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
pacing {
  spin_ms = 300
}

player "Ada" {
  type = "ai"
}

player "Max" {
  type = "ai"
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	want := ai.DefaultPacing()
	got := cfg.AIPacing()
	assert.Equal(t, want, got)
	assert.Equal(t, 300*time.Millisecond, cfg.SpinDuration())
	assert.Greater(t, got.PollInterval*time.Duration(got.MaxPolls), cfg.SpinDuration())
}

func TestExampleConfigIsValid(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "wheelshow.example.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	roster, err := cfg.Roster()
	require.NoError(t, err)
	require.Len(t, roster, 3)
	assert.Equal(t, game.Human, roster[0].Type)
	assert.Equal(t, game.Quick, roster[2].Personality)

	bank, err := cfg.PhraseBank()
	require.NoError(t, err)
	assert.Equal(t, 2, bank.Len())
	assert.Equal(t, 1500*time.Millisecond, cfg.SpinDuration())
}
