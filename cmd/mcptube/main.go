// Command mcptube turns YouTube videos into a searchable library for AI assistants.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/mcptube/internal/adapters/driven/ai"
	"github.com/custodia-labs/mcptube/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mcptube/internal/adapters/driving/cli"
	"github.com/custodia-labs/mcptube/internal/core/services"
	"github.com/custodia-labs/mcptube/internal/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening config: %v\n", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore, ai.NewProber(0))

	cli.SetVersion(version)
	cli.SetServices(&cli.Services{Settings: settingsService})

	// Configuration commands must work even when the rest of the stack
	// cannot be built, so wiring failures only warn.
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("loading settings: %v", err)
		return cli.Execute(ctx)
	}

	app, err := wire(ctx, settings)
	if err != nil {
		logger.Warn("%v; run 'mcptube config validate' to check your settings", err)
		return cli.Execute(ctx)
	}
	defer app.Close()

	app.services.Settings = settingsService
	cli.SetServices(app.services)
	return cli.Execute(ctx)
}
