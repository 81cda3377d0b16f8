package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/pbakaus/vibe-design-plugins/internal/catalog"
	"github.com/pbakaus/vibe-design-plugins/internal/logging"
	"github.com/pbakaus/vibe-design-plugins/internal/model"
	"github.com/pbakaus/vibe-design-plugins/internal/packaging"
	"github.com/pbakaus/vibe-design-plugins/internal/progress"
	"github.com/pbakaus/vibe-design-plugins/internal/ui"
	"github.com/pbakaus/vibe-design-plugins/internal/ui/tui"
)

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Unpack a provider bundle or single entries from the built archives",
		UsageText: "vibebuild extract [options]",
		Description: `Unpack archives written by "vibebuild build" into a directory, typically a
   project root.

   Examples:
     vibebuild extract --provider cursor --out ~/code/app
     vibebuild extract --provider claude-code --kind skill --id frontend-design
     vibebuild extract --interactive`,
		Flags: []cli.Flag{
			distFlag(),
			downloadsFlag(),
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "Provider to extract (cursor, claude-code, gemini, codex)",
			},
			&cli.StringFlag{
				Name:    "kind",
				Aliases: []string{"k"},
				Value:   "command",
				Usage:   "Entry kind when --id is given: command, skill",
			},
			&cli.StringSliceFlag{
				Name:  "id",
				Usage: "Entry id to extract; repeat for several (default: the whole bundle)",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   ".",
				Usage:   "Destination directory",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Pick the provider and entries interactively",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFrom(ctx)
			if err := applyOverrides(&cfg, cmd); err != nil {
				return err
			}

			var provider model.Provider
			if cmd.IsSet("provider") {
				p, err := model.ParseProvider(cmd.String("provider"))
				if err != nil {
					return err
				}
				provider = p
			}

			var refs []model.EntryRef
			if cmd.Bool("interactive") {
				c, err := catalog.Read(filepath.Join(cfg.Output.DistDir, catalog.FileName))
				if err != nil {
					return fmt.Errorf("run \"vibebuild build\" first: %w", err)
				}
				result, err := tui.RunEntryPicker(provider, pickerItems(c))
				if err != nil {
					return err
				}
				if result.Action == tui.EntryPickerActionNone {
					fmt.Println(ui.StatusSkipped("extract cancelled"))
					return nil
				}
				provider = result.Provider
				refs = result.Refs
			} else {
				if provider == "" {
					return errors.New("extract requires --provider or --interactive")
				}
				if ids := cmd.StringSlice("id"); len(ids) > 0 {
					kind, err := model.ParseKind(cmd.String("kind"))
					if err != nil {
						return err
					}
					for _, id := range ids {
						refs = append(refs, model.EntryRef{Kind: kind, ID: id})
					}
				}
			}

			return extract(cfg.Output.DownloadsDir, provider, refs, cmd.String("out"))
		},
	}
}

func pickerItems(c catalog.Catalog) []tui.EntryItem {
	entries := c.Entries()
	items := make([]tui.EntryItem, len(entries))
	for i, e := range entries {
		items[i] = tui.EntryItem{Ref: e.Ref, Description: e.Description, Ready: e.Ready}
	}
	return items
}

// extract unpacks the bundle of p into dest, or only the archives of refs when given.
func extract(downloads string, p model.Provider, refs []model.EntryRef, dest string) error {
	if len(refs) == 0 {
		path, err := packaging.Locate(downloads, p, "", "")
		if err != nil {
			return err
		}
		files, err := packaging.Unpack(path, dest)
		if err != nil {
			return err
		}
		if w, err := packaging.LoadManifest(downloads, p); err == nil && len(w.Entries) != len(files) {
			fmt.Println(ui.StatusWarning(fmt.Sprintf("bundle has %d files, manifest lists %d; rebuild to refresh", len(files), len(w.Entries))))
		} else if err != nil {
			logging.Debug("no manifest for bundle", logging.Provider(p.String()), logging.Err(err))
		}
		fmt.Println(ui.StatusSuccess(fmt.Sprintf("extracted %s bundle (%d files) to %s", p, len(files), dest)))
		return nil
	}

	bar := progress.Simple(int64(len(refs)), "extract "+p.String())
	var lines []string
	for _, ref := range refs {
		path, err := packaging.Locate(downloads, p, ref.Kind, ref.ID)
		if err != nil {
			_ = bar.Clear()
			return fmt.Errorf("%s: %w", ref, err)
		}
		files, err := packaging.Unpack(path, dest)
		if err != nil {
			_ = bar.Clear()
			return err
		}
		bar.Step(ref.String())
		lines = append(lines, ui.StatusSuccess(fmt.Sprintf("extracted %s for %s (%d files) to %s", ref, p, len(files), dest)))
	}
	_ = bar.Finish()

	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
