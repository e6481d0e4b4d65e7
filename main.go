/*
Hex War runs the engine with the testbed board and the headless backend.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/F3kilo/hex-war/engine"
	"github.com/F3kilo/hex-war/engine/core"
	"github.com/F3kilo/hex-war/engine/renderer"
	"github.com/F3kilo/hex-war/engine/renderer/headless"
	"github.com/F3kilo/hex-war/testbed"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the engine configuration file")
	flag.Parse()

	config, err := core.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal("can't load configuration: %s", err)
	}

	tb := testbed.NewTestGame(config)

	e, err := engine.New(tb.Game, func(textures renderer.TextureRegistry) renderer.Backend {
		return headless.New(textures)
	})
	if err != nil {
		core.LogFatal("can't boot engine: %s", err)
	}

	if err := e.Initialize(); err != nil {
		e.Shutdown()
		core.LogFatal("can't initialize engine: %s", err)
	}

	// signal context to capture system calls
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	// run engine
	runErr := e.Run(ctx)
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
