package main

import (
	"context"
	"fmt"

	"github.com/skyforgehq/playpub/internal/publisher"
	"github.com/skyforgehq/playpub/internal/shared"
	"github.com/urfave/cli/v3"
)

// EditsAbandon deletes a lingering edit, discarding its staged changes.
func (r *Runner) EditsAbandon(ctx context.Context, cmd *cli.Command) error {
	cfg := r.loadConfig(cmd)

	credPath := firstNonEmpty(cmd.String("json"), cfg.Credentials.JSONPath)
	packageName := firstNonEmpty(cmd.String("package-name"), cfg.Publish.PackageName)
	editID := cmd.String("id")

	if credPath == "" {
		return fmt.Errorf("%w: credential file (--json)", shared.ErrMissingArgument)
	}
	if packageName == "" {
		return fmt.Errorf("%w: package name (--package-name)", shared.ErrMissingArgument)
	}

	api, err := r.publisherAPI(ctx, cfg, credPath)
	if err != nil {
		return err
	}

	if err := api.AbandonEdit(ctx, packageName, editID); err != nil {
		return fmt.Errorf("%w: abandoning edit %q: %v", shared.ErrEditUnavailable, editID, err)
	}

	r.writePlain("Abandoned edit %q for %s\n", editID, packageName)
	return nil
}

// editsCommand handles edit lifecycle maintenance
func editsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "edits",
		Usage: "Edit transaction maintenance",
		Commands: []*cli.Command{
			{
				Name:  "abandon",
				Usage: "Delete an edit and discard its staged changes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Edit id to abandon",
						Value: publisher.FixedEditID,
					},
					&cli.StringFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Path to service account credential JSON",
					},
					&cli.StringFlag{
						Name:    "package-name",
						Aliases: []string{"p"},
						Usage:   "Target application package",
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
					},
				},
				Action: r.EditsAbandon,
			},
		},
	}
}
