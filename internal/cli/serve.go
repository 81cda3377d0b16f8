package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/pbakaus/vibe-design-plugins/internal/serve"
	"github.com/pbakaus/vibe-design-plugins/internal/ui"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve built archives and the catalog over HTTP",
		Description: `Routes:
     GET /api/catalog
     GET /api/download/bundle/{provider}
     GET /api/download/{kind}/{provider}/{id}`,
		Flags: []cli.Flag{
			distFlag(),
			downloadsFlag(),
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Listen address (default from config: 127.0.0.1:3000)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFrom(ctx)
			if err := applyOverrides(&cfg, cmd); err != nil {
				return err
			}

			srv, err := serve.New(serve.Config{
				Addr:         cfg.Serve.Addr,
				DownloadsDir: cfg.Output.DownloadsDir,
				DistDir:      cfg.Output.DistDir,
			})
			if err != nil {
				return err
			}

			fmt.Println(ui.Info(fmt.Sprintf("Serving %s on http://%s", cfg.Output.DownloadsDir, cfg.Serve.Addr)))
			return srv.ListenAndServe(ctx)
		},
	}
}
