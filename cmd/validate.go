package main

import (
	"context"
	"fmt"
	"os"

	"github.com/skyforgehq/playpub/internal/credentials"
	"github.com/skyforgehq/playpub/internal/shared"
	"github.com/urfave/cli/v3"
)

// Validate runs the pipeline's preflight checks without any network calls:
// the credential document must load and the artifact must exist.
func (r *Runner) Validate(ctx context.Context, cmd *cli.Command) error {
	cfg := r.loadConfig(cmd)

	credPath := firstNonEmpty(cmd.String("json"), cfg.Credentials.JSONPath)
	artifact := firstNonEmpty(cmd.String("file"), cfg.Publish.Artifact)

	if credPath == "" {
		return fmt.Errorf("%w: credential file (--json)", shared.ErrMissingArgument)
	}

	cred, err := credentials.Load(credPath)
	if err != nil {
		return err
	}
	r.writePlain("✓ Credential: %s (%s)\n", credPath, cred.ClientEmail)

	if artifact == "" {
		r.writePlain("– Artifact: not configured\n")
		return nil
	}

	info, err := os.Stat(artifact)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrArtifactMissing, artifact)
	}
	r.writePlain("✓ Artifact: %s (%s)\n", artifact, shared.FormatSize(info.Size()))

	return nil
}

// validateCommand runs preflight checks
func validateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check credential and artifact without network calls",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Path to service account credential JSON",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Path to the app bundle artifact (.aab)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
		},
		Action: r.Validate,
	}
}
