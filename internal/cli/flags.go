package cli

import (
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/pbakaus/vibe-design-plugins/internal/config"
)

func sourceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "source",
		Aliases: []string{"s"},
		Usage:   "Source root with commands/, skills/ and patterns.yaml (default from config: source)",
	}
}

func distFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "dist",
		Aliases: []string{"d"},
		Usage:   "Output directory for provider trees and catalog.json (default from config: dist)",
	}
}

func downloadsFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "downloads",
		Usage: "Output directory for archives (default: <dist>/downloads)",
	}
}

func readinessFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "readiness",
		Usage: "Handling of entries marked ready: false: include, exclude (default from config: include)",
	}
}

// applyOverrides applies the flags set on cmd over cfg and validates the result.
func applyOverrides(cfg *config.Config, cmd *cli.Command) error {
	defaultDownloads := config.Default().Output.DownloadsDir

	if cmd.IsSet("source") {
		cfg.Source.Dir = cmd.String("source")
	}
	if cmd.IsSet("dist") {
		cfg.Output.DistDir = cmd.String("dist")
		if !cmd.IsSet("downloads") && cfg.Output.DownloadsDir == defaultDownloads {
			cfg.Output.DownloadsDir = filepath.Join(cfg.Output.DistDir, "downloads")
		}
	}
	if cmd.IsSet("downloads") {
		cfg.Output.DownloadsDir = cmd.String("downloads")
	}
	if cmd.IsSet("readiness") {
		cfg.Build.Readiness = cmd.String("readiness")
	}
	if cmd.IsSet("sequential") {
		cfg.Build.Concurrent = !cmd.Bool("sequential")
	}
	if cmd.IsSet("mirror") {
		cfg.Mirror.Dir = cmd.String("mirror")
		cfg.Mirror.Enabled = true
	}
	if cmd.Bool("no-mirror") {
		cfg.Mirror.Enabled = false
	}
	if cmd.IsSet("debounce") {
		cfg.Watch.Debounce = cmd.Duration("debounce")
	}
	if cmd.IsSet("addr") {
		cfg.Serve.Addr = cmd.String("addr")
	}
	return cfg.Validate()
}
