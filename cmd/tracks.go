package main

import (
	"context"
	"fmt"
	"os"

	"github.com/skyforgehq/playpub/internal/formatter"
	"github.com/skyforgehq/playpub/internal/pipeline"
	"github.com/skyforgehq/playpub/internal/publisher"
	"github.com/skyforgehq/playpub/internal/shared"
	"github.com/urfave/cli/v3"
)

// fetchTracks opens (or creates) the fixed edit and lists its tracks.
func (r *Runner) fetchTracks(ctx context.Context, cmd *cli.Command) ([]publisher.Track, error) {
	cfg := r.loadConfig(cmd)

	credPath := firstNonEmpty(cmd.String("json"), cfg.Credentials.JSONPath)
	packageName := firstNonEmpty(cmd.String("package-name"), cfg.Publish.PackageName)

	if credPath == "" {
		return nil, fmt.Errorf("%w: credential file (--json)", shared.ErrMissingArgument)
	}
	if packageName == "" {
		return nil, fmt.Errorf("%w: package name (--package-name)", shared.ErrMissingArgument)
	}

	api, err := r.publisherAPI(ctx, cfg, credPath)
	if err != nil {
		return nil, err
	}

	engine := pipeline.NewEngine(api, publisher.NewFixedEdit(""), r.logger)
	edit, _, err := engine.OpenEdit(ctx, packageName, nil)
	if err != nil {
		return nil, err
	}

	tracks, err := api.Tracks(ctx, packageName, edit.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing tracks: %v", shared.ErrTrackUpdateFailed, err)
	}
	return tracks, nil
}

// TracksList lists release tracks and their releases for a package.
func (r *Runner) TracksList(ctx context.Context, cmd *cli.Command) error {
	tracks, err := r.fetchTracks(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("raw") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	for _, track := range tracks {
		r.output.Write(formatter.TrackToText(track))
		r.writePlain("\n")
	}
	return nil
}

// TracksExport writes one track's release history to a file in the chosen format.
func (r *Runner) TracksExport(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")
	format := cmd.String("format")
	output := cmd.String("output")

	tracks, err := r.fetchTracks(ctx, cmd)
	if err != nil {
		return err
	}

	var target *publisher.Track
	for i := range tracks {
		if tracks[i].Name == name {
			target = &tracks[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: no track named %q", shared.ErrTrackNotFound, name)
	}

	var data []byte
	switch format {
	case "csv":
		data, err = formatter.TrackToCSV(*target)
		if err != nil {
			return err
		}
	case "md", "markdown":
		data = formatter.TrackToMarkdown(*target)
	case "text", "txt":
		data = formatter.TrackToText(*target)
	default:
		return fmt.Errorf("%w: unknown format %q (csv, md, text)", shared.ErrInvalidArgument, format)
	}

	if output == "" {
		_, err := r.output.Write(data)
		return err
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	r.writePlain("Exported track %q to %s\n", name, output)
	return nil
}

// tracksCommand handles release track operations
func tracksCommand(r *Runner) *cli.Command {
	commonFlags := []cli.Flag{
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
	}

	return &cli.Command{
		Name:  "tracks",
		Usage: "Inspect release tracks",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tracks and their releases",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "raw",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				}, commonFlags...),
				Action: r.TracksList,
			},
			{
				Name:  "export",
				Usage: "Export one track's release history",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Track name to export",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format (csv, md, text)",
						Value: "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (defaults to stdout)",
					},
				}, commonFlags...),
				Action: r.TracksExport,
			},
		},
	}
}
