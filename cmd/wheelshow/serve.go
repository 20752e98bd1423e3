package main

import (
	"os"

	"github.com/coder/quartz"

	"github.com/lox/wheelshow/internal/ai"
	"github.com/lox/wheelshow/internal/game"
	"github.com/lox/wheelshow/internal/randutil"
	"github.com/lox/wheelshow/internal/renderer"
	"github.com/lox/wheelshow/internal/server"
)

// ServeCmd exposes one game over WebSocket
type ServeCmd struct {
	GameFlags
	Addr string `short:"a" help:"Server address to bind to (overrides config)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.Server.LogLevel)

	addr := cfg.ServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	rng, seed := randutil.FromFlag(c.Seed)
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	engine := game.NewEngine(rng, append(opts, game.WithLogger(logger))...)

	clock := quartz.NewReal()
	runner := ai.NewRunner(engine, clock, cfg.AIPacing(), logger)
	defer runner.Close()
	engine.SetScheduler(runner)

	// Lands spins while no renderer is connected
	fallback := renderer.NewAuto(engine, randutil.New(randutil.Derive(seed, 1)), clock, cfg.SpinDuration(), logger)
	defer fallback.Stop()
	engine.Subscribe(fallback)

	srv := server.NewServer(addr, engine, fallback, logger)

	logger.Info("Starting wheelshow server",
		"addr", addr,
		"game_id", engine.GameID(),
		"seed", seed,
		"players", len(cfg.Players),
		"rounds", cfg.Game.Rounds)

	ctx := setupSignalHandler(logger)
	return srv.Start(ctx)
}
