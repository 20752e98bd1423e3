package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/lox/wheelshow/internal/config"
)

// GameFlags override the matching settings from the config file.
type GameFlags struct {
	Config     string `short:"c" default:"wheelshow.hcl" help:"Path to HCL configuration file"`
	Seed       *int64 `help:"Deterministic RNG seed (optional)"`
	Rounds     int    `help:"Rounds per game (overrides config)"`
	VowelPrice int    `help:"Price of a vowel (overrides config)"`
	Debug      bool   `help:"Enable debug logging"`
}

// load reads the config file and applies the flag overrides.
func (f GameFlags) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(f.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if f.Rounds > 0 {
		cfg.Game.Rounds = f.Rounds
	}
	if f.VowelPrice > 0 {
		cfg.Game.VowelPrice = f.VowelPrice
	}
	if f.Debug {
		cfg.Server.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger at the configured level.
func newLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// setupSignalHandler creates a context that is cancelled on interrupt signals
func setupSignalHandler(logger *log.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("Received signal, shutting down gracefully", "signal", sig.String())
		cancel()
	}()

	return ctx
}
