package main

import (
	"context"

	"github.com/skyforgehq/playpub/internal/history"
	"github.com/skyforgehq/playpub/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a starter config file and bootstraps the history database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}
	r.writePlain("Created %s\n", configPath)

	cfg, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Database.Path != "" {
		db, err := shared.NewDatabase(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := history.NewStore(db).Init(); err != nil {
			return err
		}
		r.writePlain("Initialized history database at %s\n", cfg.Database.Path)
	}

	r.writePlain("Edit %s to set credentials and package name.\n", configPath)
	return nil
}

// setupCommand initializes local state
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Write a starter config and initialize the history database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
