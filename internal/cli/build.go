package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/pbakaus/vibe-design-plugins/internal/build"
	"github.com/pbakaus/vibe-design-plugins/internal/config"
	"github.com/pbakaus/vibe-design-plugins/internal/progress"
	"github.com/pbakaus/vibe-design-plugins/internal/ui"
	"github.com/pbakaus/vibe-design-plugins/internal/watch"
)

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "Transform the source tree for every provider and package the results",
		UsageText: "vibebuild build [options]",
		Description: `Load commands, skills and design patterns from the source tree, render them for
   Cursor, Claude Code, Gemini and Codex, and write:

     <dist>/<provider>/...                      install layout per provider
     <downloads>/<provider>.zip                 whole-provider bundle
     <downloads>/<provider>/<kind>/<id>.zip     single command or skill
     <dist>/catalog.json                        listing served at /api/catalog

   The Claude Code commands/ and skills/ directories are then mirrored into the local
   mirror directory (default .claude) unless --no-mirror is given.

   Examples:
     vibebuild build
     vibebuild build --readiness exclude --no-mirror
     vibebuild build --watch`,
		Flags: []cli.Flag{
			sourceFlag(),
			distFlag(),
			downloadsFlag(),
			readinessFlag(),
			&cli.StringFlag{
				Name:  "mirror",
				Usage: "Mirror directory for Claude Code commands and skills (default from config: .claude)",
			},
			&cli.BoolFlag{
				Name:  "no-mirror",
				Usage: "Skip the mirror stage",
			},
			&cli.BoolFlag{
				Name:  "sequential",
				Usage: "Run provider transforms one after another",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Rebuild whenever the source tree changes",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Quiet period before a watch rebuild (default from config: 300ms)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFrom(ctx)
			if err := applyOverrides(&cfg, cmd); err != nil {
				return err
			}
			if cmd.Bool("watch") {
				return watchBuild(ctx, &cfg)
			}
			_, err := runBuild(ctx, &cfg)
			return err
		},
	}
}

func buildOptions(cfg *config.Config) build.Options {
	opts := build.Options{
		SourceDir:    cfg.Source.Dir,
		DistDir:      cfg.Output.DistDir,
		DownloadsDir: cfg.Output.DownloadsDir,
		Readiness:    cfg.Readiness(),
		Concurrent:   cfg.Build.Concurrent,
	}
	if cfg.Mirror.Enabled {
		opts.MirrorDir = cfg.MirrorPath()
	}
	return opts
}

// runBuild runs one build with a stage progress bar and prints the summary.
func runBuild(ctx context.Context, cfg *config.Config) (*build.Result, error) {
	opts := buildOptions(cfg)

	// loaded, transformed, packaged, [mirrored], done
	steps := 4
	if opts.MirrorDir != "" {
		steps++
	}
	bar := progress.Stages(steps, os.Stderr)
	opts.OnStage = func(s build.Stage) {
		if s != build.StageIdle && s != build.StageFailed {
			bar.Step(s.String())
		}
	}

	result, err := build.New(opts).Run(ctx)
	if err != nil {
		_ = bar.Clear()
		return result, err
	}
	_ = bar.Finish()

	printBuildSummary(result)
	return result, nil
}

func printBuildSummary(r *build.Result) {
	rows := make([][]string, 0, len(r.Providers))
	for _, p := range r.Providers {
		rows = append(rows, []string{
			p.Provider.String(),
			strconv.Itoa(p.Files),
			strconv.Itoa(len(p.Entries)),
			p.Bundle.Path,
			shortDigest(p.Bundle.SHA256),
		})
	}
	fmt.Println(ui.Table([]string{"Provider", "Files", "Archives", "Bundle", "SHA-256"}, rows, 1, 2))

	if r.Mirror != nil {
		fmt.Println(ui.Stage("mirrored", fmt.Sprintf("%d files, replaced %v", r.Mirror.Files, r.Mirror.Replaced)))
	}
	fmt.Println(ui.StatusSuccess(r.String()))
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

// watchBuild builds once and then rebuilds on every batch of source changes until ctx is
// done. Failed rebuilds are reported and watching continues.
func watchBuild(ctx context.Context, cfg *config.Config) error {
	if _, err := runBuild(ctx, cfg); err != nil {
		fmt.Println(ui.StatusError(err.Error()))
	}

	w, err := watch.New(cfg.Source.Dir, watch.Options{Debounce: cfg.Watch.Debounce})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	fmt.Println(ui.Info(fmt.Sprintf("Watching %s for changes... Press Ctrl+C to stop", cfg.Source.Dir)))

	return w.Run(ctx, func(ctx context.Context, changed []string) {
		fmt.Println(ui.StatusPending(fmt.Sprintf("rebuilding after %d changed paths", len(changed))))
		if _, err := runBuild(ctx, cfg); err != nil {
			fmt.Println(ui.StatusError(err.Error()))
		}
	})
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Load and transform the source tree without writing anything",
		Flags: []cli.Flag{
			sourceFlag(),
			readinessFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFrom(ctx)
			if err := applyOverrides(&cfg, cmd); err != nil {
				return err
			}

			result, err := build.New(buildOptions(&cfg)).Validate(ctx)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(result.Providers))
			for _, p := range result.Providers {
				rows = append(rows, []string{p.Provider.String(), strconv.Itoa(p.Files), shortDigest(p.Digest)})
			}
			fmt.Println(ui.Table([]string{"Provider", "Files", "Digest"}, rows, 1))
			fmt.Println(ui.StatusSuccess(fmt.Sprintf("%d commands, %d skills, %d pattern pairs are valid",
				result.Commands, result.Skills, result.Patterns)))
			return nil
		},
	}
}
