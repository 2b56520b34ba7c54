package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/ytingest/internal/formatter"
	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/repositories"
	"github.com/desertthunder/ytingest/internal/shared"
	"github.com/urfave/cli/v3"
)

// History prints ledger rows in the requested format.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if config.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty, the ledger is disabled", shared.ErrInvalidConfig)
	}

	criteria := map[string]any{
		"task_id": cmd.String("task"),
		"outcome": cmd.String("outcome"),
		"limit":   cmd.Int("limit"),
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	repo := repositories.NewSongRepository(db)
	songs, err := repo.List(criteria)
	if err != nil {
		return err
	}
	r.logger.Debug("loaded ledger rows", "count", len(songs))

	format := strings.ToLower(cmd.String("format"))
	if out := cmd.String("output"); out != "" {
		if format != "csv" && format != "text" {
			return fmt.Errorf("%w: --output only supports csv", shared.ErrInvalidArgument)
		}
		n, err := formatter.WriteCSVExport(songs, out)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d rows to %s\n", n, out)
		return nil
	}

	switch format {
	case "json":
		if songs == nil {
			songs = []*models.PublishedSong{}
		}
		return r.writeJSON(songs, true)
	case "csv":
		data, err := formatter.SongsToCSV(songs)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	case "markdown", "md":
		counts, err := repo.CountByOutcome()
		if err != nil {
			return err
		}
		return r.writeBytes(formatter.SongsToMarkdown(songs, counts))
	case "text", "":
		return r.writeBytes(formatter.SongsToText(songs))
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}
