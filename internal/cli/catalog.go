package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/pbakaus/vibe-design-plugins/internal/catalog"
	"github.com/pbakaus/vibe-design-plugins/internal/source"
)

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Print the catalog of commands, skills and design patterns",
		Flags: []cli.Flag{
			sourceFlag(),
			readinessFlag(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "markdown",
				Usage:   "Output format: json, yaml, markdown",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFrom(ctx)
			if err := applyOverrides(&cfg, cmd); err != nil {
				return err
			}

			format, err := catalog.ParseFormat(cmd.String("format"))
			if err != nil {
				return err
			}

			m, err := source.Load(cfg.Source.Dir, source.WithReadiness(cfg.Readiness()))
			if err != nil {
				return err
			}
			c := catalog.Build(m)

			out := cmd.String("output")
			if out == "" {
				return catalog.Encode(c, os.Stdout, format)
			}

			// #nosec G304 - output path is provided by the user
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := catalog.Encode(c, f, format); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
}
