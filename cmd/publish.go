package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/skyforgehq/playpub/internal/history"
	"github.com/skyforgehq/playpub/internal/pipeline"
	"github.com/skyforgehq/playpub/internal/publisher"
	"github.com/skyforgehq/playpub/internal/shared"
	"github.com/urfave/cli/v3"
)

// Publish runs the full pipeline: load credential, authenticate, open edit,
// upload bundle, update track, commit.
func (r *Runner) Publish(ctx context.Context, cmd *cli.Command) error {
	cfg := r.loadConfig(cmd)

	credPath := firstNonEmpty(cmd.String("json"), cfg.Credentials.JSONPath)
	artifact := firstNonEmpty(cmd.String("file"), cfg.Publish.Artifact)
	packageName := firstNonEmpty(cmd.String("package-name"), cfg.Publish.PackageName)
	trackName := firstNonEmpty(cmd.String("track"), cfg.Publish.Track, publisher.DefaultTrack)
	freshEdit := cmd.Bool("fresh-edit") || cfg.Publish.FreshEdit

	if credPath == "" {
		return fmt.Errorf("%w: credential file (--json)", shared.ErrMissingArgument)
	}
	if artifact == "" {
		return fmt.Errorf("%w: artifact file (--file)", shared.ErrMissingArgument)
	}
	if packageName == "" {
		return fmt.Errorf("%w: package name (--package-name)", shared.ErrMissingArgument)
	}

	// Artifact presence is checked before anything touches credentials or
	// the network.
	if _, err := os.Stat(artifact); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrArtifactMissing, artifact)
	}

	r.logger.Info("starting publish", "package", packageName, "track", trackName, "artifact", artifact)

	api, err := r.publisherAPI(ctx, cfg, credPath)
	if err != nil {
		return err
	}

	var policy publisher.EditPolicy = publisher.NewFixedEdit("")
	if freshEdit {
		policy = publisher.NewFreshEdit()
	}
	engine := pipeline.NewEngine(api, policy, r.logger)

	progressCh := make(chan pipeline.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			switch update.Phase {
			case pipeline.OpenEdit:
				r.writePlain("📝 %s\n", update.Message)
			case pipeline.UploadBundle:
				r.writePlain("📦 %s\n", update.Message)
			case pipeline.UpdateTrack:
				r.writePlain("🚀 %s\n", update.Message)
			case pipeline.Commit:
				r.writePlain("✅ %s\n", update.Message)
			case pipeline.Abandon:
				r.writePlain("🗑  %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, pipeline.Options{
		PackageName:  packageName,
		Track:        trackName,
		ArtifactPath: artifact,
	}, progressCh)
	close(progressCh)
	<-drained

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Publish Complete!")
	r.writePlain("Package: %s\n", packageName)
	r.writePlain("Edit: %s\n", result.EditID)
	r.writePlain("Version code: %d\n", result.VersionCode)
	r.writePlain("Track: %s (release %q, %d releases)\n", result.Track, result.ReleaseName, result.ReleaseCount)
	r.writePlain("Artifact: %s (%s)\n", artifact, shared.FormatSize(result.ArtifactBytes))
	if result.SHA256 != "" {
		r.writePlain("SHA-256: %s\n", result.SHA256)
	}
	r.writePlain("Elapsed: %s\n", result.Elapsed.Round(time.Millisecond))

	r.recordPublish(cfg, packageName, artifact, result)
	return nil
}

// recordPublish appends the run to the local history store. Best effort:
// the publish already committed, so a bookkeeping failure only warns.
func (r *Runner) recordPublish(cfg *shared.Config, packageName, artifact string, result *pipeline.Result) {
	if cfg.Database.Path == "" {
		return
	}

	db, err := shared.NewDatabase(cfg.Database.Path)
	if err != nil {
		r.logger.Warn("failed to open history database", "error", err)
		return
	}
	defer db.Close()
	shared.ConfigureDatabase(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)

	store := history.NewStore(db)
	if err := store.Init(); err != nil {
		r.logger.Warn("failed to initialize history store", "error", err)
		return
	}

	rec := &history.Record{
		PackageName:   packageName,
		Track:         result.Track,
		ReleaseName:   result.ReleaseName,
		VersionCode:   result.VersionCode,
		EditID:        result.EditID,
		ArtifactPath:  artifact,
		ArtifactBytes: result.ArtifactBytes,
	}
	if err := store.Insert(rec); err != nil {
		r.logger.Warn("failed to record publish", "error", err)
	}
}

// publishCommand is the pipeline entry point
func publishCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "publish",
		Usage: "Upload an app bundle and release it on a track",
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
				Name:    "package-name",
				Aliases: []string{"p"},
				Usage:   "Target application package (e.g. com.example.app)",
			},
			&cli.StringFlag{
				Name:  "track",
				Usage: "Release track to publish to",
			},
			&cli.BoolFlag{
				Name:  "fresh-edit",
				Usage: "Create a fresh edit instead of reusing the fixed edit id",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
		},
		Action: r.Publish,
	}
}
