package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/lox/wheelshow/internal/randutil"
	"github.com/lox/wheelshow/internal/simulator"
	"github.com/lox/wheelshow/internal/statistics"
)

// SimulateCmd plays headless games between computer players
type SimulateCmd struct {
	GameFlags
	Games       int           `short:"n" default:"100" help:"Number of games to simulate"`
	Concurrency int           `short:"j" default:"0" help:"Games played at once (0 for one per CPU)"`
	Timeout     time.Duration `default:"30s" help:"Per-game timeout"`
	Output      string        `short:"o" help:"Also write the results as JSON to this file"`
	Progress    bool          `help:"Print a dot per game, coloured by the winner"`
}

func (c *SimulateCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.Server.LogLevel)

	roster, err := cfg.Roster()
	if err != nil {
		return err
	}
	bank, err := cfg.PhraseBank()
	if err != nil {
		return err
	}

	_, seed := randutil.FromFlag(c.Seed)
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	var monitor simulator.Monitor
	if c.Progress {
		monitor = simulator.NewDotsMonitor(os.Stderr)
	}

	sim := simulator.New(simulator.Config{
		Games:       c.Games,
		Seed:        seed,
		Concurrency: concurrency,
		Timeout:     c.Timeout,
		Roster:      roster,
		Bank:        bank,
		Settings:    cfg.Settings(),
		Logger:      logger,
		Monitor:     monitor,
	})

	logger.Info("Starting simulation", "games", c.Games, "seed", seed, "concurrency", concurrency, "players", sim.Names())
	ctx := setupSignalHandler(logger)

	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	logger.Info("Simulation complete", "duration", time.Since(start).Round(time.Millisecond))

	fmt.Print(simulator.FormatSummary(stats))

	if c.Output != "" {
		if err := statistics.WriteReport(c.Output, statistics.NewReport(stats, seed)); err != nil {
			return err
		}
		logger.Info("Wrote report", "path", c.Output)
	}
	return nil
}
