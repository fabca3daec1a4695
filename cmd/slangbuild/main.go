package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/slangbuild/internal/app"
	"github.com/vk/slangbuild/internal/cli"
	"github.com/vk/slangbuild/internal/hcl"
)

// main is the entrypoint for the slangbuild application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The real main function handles errors and exit codes.
	if exitErr := cli.FromRunError(run(ctx, os.Stdout, os.Args[1:], os.LookupEnv)); exitErr != nil {
		fmt.Fprintln(os.Stderr, exitErr.Message)
		stop()
		os.Exit(exitErr.Code)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string, lookupEnv cli.LookupEnv) error {
	appConfig, shouldExit, err := cli.Parse(args, outW, lookupEnv, hcl.NewLoaderWithEnv(lookupEnv))
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	return app.NewApp(outW, appConfig, nil).Run(ctx)
}
