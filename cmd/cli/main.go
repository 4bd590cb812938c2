package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/shipwright/internal/app"
	"github.com/specialistvlad/shipwright/internal/cli"
	"github.com/specialistvlad/shipwright/internal/hcl"
)

// main is the entrypoint for the shipwright application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Args[1:], os.Getenv)
	stop()

	// The real main function handles errors and exit codes.
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string, getenv func(string) string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW, getenv)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	loader := hcl.NewLoader()
	if getenv != nil {
		loader.Getenv = getenv
	}
	shipwright, err := app.NewApp(outW, appConfig, loader)
	if err != nil {
		return err
	}
	defer shipwright.Close()

	if err := shipwright.Run(ctx); err != nil {
		if app.IsUsageError(err) {
			return &cli.ExitError{Code: 2, Message: err.Error()}
		}
		return err
	}
	return nil
}
