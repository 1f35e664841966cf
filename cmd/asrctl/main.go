package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/codebuildervaibhav/asr-console/internal/app"
	"github.com/codebuildervaibhav/asr-console/internal/cli"
	"github.com/codebuildervaibhav/asr-console/internal/config"
	"github.com/codebuildervaibhav/asr-console/internal/output"
	"github.com/codebuildervaibhav/asr-console/internal/views"
)

func main() {
	notifier := output.NewNotifier(os.Stdout, os.Stderr)
	if err := run(notifier); err != nil {
		if !notifier.Errored() {
			formatter := output.NewFormatter(os.Stderr)
			formatter.Error(err.Error())
		}
		os.Exit(1)
	}
}

func run(notifier *output.Notifier) error {
	configPath := os.Getenv(config.EnvPrefix + "CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	// Component logs are noise on a terminal unless asked for
	if os.Getenv(config.EnvPrefix+"VERBOSE") == "" {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, func(string) views.Notifier { return notifier })
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	defer application.Close()

	deps := &cli.Dependencies{
		App:    application,
		Config: cfg,
		Out:    os.Stdout,
		In:     os.Stdin,
	}

	return cli.NewRootCmd(deps).ExecuteContext(ctx)
}
