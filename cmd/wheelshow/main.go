package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"withargs" help:"Play the game show in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Play headless all-computer games and report the results"`
	Serve    ServeCmd         `cmd:"" help:"Serve the game to WebSocket renderers"`
	Wedges   WedgesCmd        `cmd:"" help:"Print the wheel layout"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("wheelshow"),
		kong.Description("A wheel-spinning word puzzle game show"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
