package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/tbx/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	// Missing .env is fine; TBX_* can come from the environment or config.toml.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env", "error", err)
	}

	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newApp(runner).Run(ctx, os.Args)
	runner.Close()
	stop()
	os.Exit(exitError(logger, err))
}

// newApp builds the root command with the global flags shared by every subcommand.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:                      "tbx",
		Usage:                     "Bulk label, copy, archive & delete Trello cards",
		Version:                   "0.1.0",
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Session token (value of the dsc cookie)",
				Sources: cli.EnvVars("TBX_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "cookie",
				Usage:   "Raw Cookie header of a logged-in browser session",
				Sources: cli.EnvVars("TBX_COOKIE"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "info",
			},
		},
		Before:   r.configure,
		Commands: r.register(),
	}
}
