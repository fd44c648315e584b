package main

import (
	"context"
	"fmt"

	"github.com/skyforgehq/playpub/internal/formatter"
	"github.com/skyforgehq/playpub/internal/history"
	"github.com/skyforgehq/playpub/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists previously recorded publishes from the local store.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	cfg := r.loadConfig(cmd)

	dbPath := firstNonEmpty(cmd.String("db"), cfg.Database.Path)
	if dbPath == "" {
		return fmt.Errorf("%w: history database path", shared.ErrMissingConfig)
	}

	db, err := shared.NewDatabase(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	store := history.NewStore(db)
	if err := store.Init(); err != nil {
		return err
	}

	records, err := store.List(cmd.String("package-name"), int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("csv") {
		data, err := formatter.HistoryToCSV(records)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	if len(records) == 0 {
		r.writePlain("No publishes recorded.\n")
		return nil
	}

	r.writePlainHeader("Publish History")
	for _, rec := range records {
		r.writePlain("%s  %s %s release=%s version=%d (%s)\n",
			rec.CreatedAt.Format("2006-01-02 15:04"), rec.PackageName, rec.Track,
			rec.ReleaseName, rec.VersionCode, shared.FormatSize(rec.ArtifactBytes))
	}
	return nil
}

// historyCommand lists past publishes
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List previously recorded publishes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "package-name",
				Aliases: []string{"p"},
				Usage:   "Filter by application package",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of records to return",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Output CSV",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the history database",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
		},
		Action: r.History,
	}
}
