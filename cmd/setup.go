package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/ytingest/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the built-in config template to the given path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		path = "config.toml"
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set cloudinary credentials (or CLOUDINARY_* environment variables)\n")
	r.writePlain("2. Point catalog.base_url at the song API\n")
	r.writePlain("3. Run 'ytingest serve --config %s'\n", path)
	return nil
}

// SetupDatabase initializes the database and runs migrations, or reverts the latest one with --rollback.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	if config.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty, the ledger is disabled", shared.ErrInvalidConfig)
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	migrator, err := shared.NewMigrator(db, r.logger)
	if err != nil {
		return err
	}

	if cmd.Bool("rollback") {
		mig, err := migrator.Down()
		if err != nil {
			return fmt.Errorf("failed to roll back: %w", err)
		}
		r.writePlain("✓ Rolled back migration %04d (%s)\n", mig.Version, mig.Name)
		return nil
	}

	r.logger.Info("running database migrations")
	applied, err := migrator.Up()
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) == 0 {
		r.writePlainln("✓ Schema already up to date")
	} else {
		r.writePlain("✓ Applied %d migration(s)\n", len(applied))
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}
