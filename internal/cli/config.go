package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/pbakaus/vibe-design-plugins/internal/config"
	"github.com/pbakaus/vibe-design-plugins/internal/ui"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Display or initialize the configuration",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return showConfig(ctx)
		},
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Display the effective configuration (file, environment and defaults)",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return showConfig(ctx)
				},
			},
			{
				Name:  "init",
				Usage: "Write the default configuration to ./" + config.FileName,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config file",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					if config.Exists() && !cmd.Bool("force") {
						return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
					}
					if err := config.Default().SaveToPath(config.FileName); err != nil {
						return fmt.Errorf("failed to write %s: %w", config.FileName, err)
					}
					fmt.Println(ui.StatusSuccess("wrote " + config.FileName))
					return nil
				},
			},
		},
	}
}

func showConfig(ctx context.Context) error {
	cfg := configFrom(ctx)
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	fmt.Println(ui.Header("Configuration") + ui.Dim(" (environment overrides use the "+config.EnvPrefix+" prefix)"))
	fmt.Print(string(data))
	return nil
}
