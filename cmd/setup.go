package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/likeswap/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the example config when none exists, then opens the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); os.IsNotExist(err) {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			return err
		}
		r.writePlain("✓ Created %s\n", r.configPath)
	} else {
		r.logger.Info("using existing config", "path", r.configPath)
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	db, err := r.database()
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	version, err := shared.CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)

	r.writePlain("✓ Database ready at %s (schema version %d)\n", r.config.Database.Path, version)
	if err := r.config.Credentials.Spotify.Validate(); err != nil {
		r.writePlainln("Next steps:")
		r.writePlain("1. Add your Spotify client id and secret to %s or .env\n", r.configPath)
		r.writePlain("2. Run 'likeswap auth login'\n")
	} else {
		r.writePlainln("Next step: run 'likeswap auth login'")
	}
	return nil
}
