// Command helpdesk is a terminal client for the help desk backend.
//
// Usage:
//
//	helpdesk <command> [flags] [args]
//
// Run "helpdesk help" for the command list. Configuration is read from the
// environment and an optional .env file in the working directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/quickdesk/helpdesk-client/internal/pkg/config"
	"github.com/quickdesk/helpdesk-client/internal/telemetry"
	"github.com/quickdesk/helpdesk-client/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env not loaded: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitError
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, App: "helpdesk"})

	shutdownTracing := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: "helpdesk-client",
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
	}, log)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	a, err := newApp(ctx, cfg, stdio{in: os.Stdin, out: os.Stdout, err: os.Stderr})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitError
	}
	defer a.Close()

	return a.Run(ctx, os.Args[1:])
}
