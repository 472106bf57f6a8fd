package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnvFile(".env"); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	runner := NewRunner(RunnerOpts{Logger: logger})

	// Interrupts cancel pending retry waits and requests so the run is still recorded.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := runner.app().Run(ctx, os.Args)
	interrupted := ctx.Err() != nil
	stop()

	if err != nil {
		if interrupted {
			logger.Warn("interrupted", "error", err)
			os.Exit(130)
		}
		if errors.Is(err, shared.ErrNotConfirmed) {
			logger.Warn("aborting", "reason", err)
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:      "discogs-uploader",
		Usage:     "Upload a record inventory CSV to your Discogs collection",
		Version:   "1.0.0",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file"},
		},
		Action:   r.Root,
		Commands: r.register(),
	}
}
