// Package cli provides the command-line interface for vibebuild.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/pbakaus/vibe-design-plugins/internal/config"
	"github.com/pbakaus/vibe-design-plugins/internal/logging"
	"github.com/pbakaus/vibe-design-plugins/internal/ui"
)

var (
	// Version is the current version of the application.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildDate is the date and time of the build.
	BuildDate = "unknown"
)

// Run executes the CLI application with the given context and arguments.
func Run(ctx context.Context, args []string) error {
	app := &cli.Command{
		Name:    "vibebuild",
		Usage:   "Build design commands and skills for Cursor, Claude Code, Gemini and Codex",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (info level logging)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug output (debug level logging, implies verbose)",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "Write logs as JSON",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the config file (default: ./" + config.FileName + " if present)",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Color output: auto, always, never (default from config: auto)",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := configureLogging(cmd); err != nil {
				return ctx, err
			}
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return ctx, fmt.Errorf("failed to load config: %w", err)
			}
			if err := configureColors(cmd, cfg); err != nil {
				return ctx, err
			}
			return withConfig(ctx, cfg), nil
		},
		Commands: []*cli.Command{
			buildCommand(),
			validateCommand(),
			extractCommand(),
			serveCommand(),
			catalogCommand(),
			configCommand(),
			versionCommand(),
		},
	}
	return app.Run(ctx, args)
}

// configureColors sets up color output from the --color flag, falling back to the config.
func configureColors(cmd *cli.Command, cfg *config.Config) error {
	value := cfg.Output.Color
	if cmd.IsSet("color") {
		value = cmd.String("color")
	}
	mode, err := ui.ParseColorMode(value)
	if err != nil {
		return err
	}
	ui.SetColorMode(mode)
	return nil
}

// configureLogging sets up the logging level based on CLI flags.
func configureLogging(cmd *cli.Command) error {
	opts := logging.DefaultOptions()

	if cmd.Bool("debug") {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	} else if cmd.Bool("verbose") {
		opts.Level = slog.LevelInfo
	}
	opts.JSON = cmd.Bool("log-json")

	logger := logging.New(opts)
	logging.SetDefault(logger)

	logging.Debug("logging configured", slog.String("level", opts.Level.String()))

	return nil
}

type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFrom returns a copy of the configuration loaded by the root command.
func configFrom(ctx context.Context) config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return *cfg
	}
	return *config.Default()
}
