package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/coder/quartz"
	"github.com/muesli/termenv"

	"github.com/lox/wheelshow/internal/ai"
	"github.com/lox/wheelshow/internal/game"
	"github.com/lox/wheelshow/internal/randutil"
	"github.com/lox/wheelshow/internal/tui"
)

// PlayCmd runs the interactive terminal game
type PlayCmd struct {
	GameFlags
	LogFile string `help:"Log file path (overrides config)"`
	SpinMS  *int   `name:"spin-ms" help:"Wheel animation length in milliseconds (overrides config)"`
}

func (c *PlayCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	if c.LogFile != "" {
		cfg.Server.LogFile = c.LogFile
	}
	if c.SpinMS != nil {
		cfg.Pacing.SpinMS = *c.SpinMS
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	// Logs go to a file so the terminal stays clean
	logFile, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()
	logger := newLogger(logFile, cfg.Server.LogLevel)

	if termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	rng, seed := randutil.FromFlag(c.Seed)
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	engine := game.NewEngine(rng, append(opts, game.WithLogger(logger))...)
	logger.Info("Starting game", "game_id", engine.GameID(), "seed", seed, "players", len(cfg.Players))

	runner := ai.NewRunner(engine, quartz.NewReal(), cfg.AIPacing(), logger)
	defer runner.Close()
	engine.SetScheduler(runner)

	model := tui.NewTUIModel(engine, logger, tui.Options{
		SpinDuration: cfg.SpinDuration(),
		Rand:         randutil.New(randutil.Derive(seed, 0)),
	})
	defer model.Close()

	ctx := setupSignalHandler(logger)
	go func() {
		<-ctx.Done()
		model.SendQuitSignal()
	}()

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	logger.Info("Game closed", "game_id", engine.GameID())
	return nil
}
