package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/pulse/internal/shared"
	"github.com/desertthunder/pulse/internal/ui"
	"github.com/urfave/cli/v3"
)

// Setup writes the config file when missing, then initializes the database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err != nil {
		if err := r.SetupConfig(ctx, cmd); err != nil {
			return err
		}
	}
	return r.SetupDatabase(ctx, cmd)
}

// SetupConfig creates the config file from the embedded example.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	r.logger.Info("creating config file from template", "path", configPath)
	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.writePlain("%s\n", ui.Styles.OK("config written to "+configPath))
	r.writePlain("%s\n", ui.Styles.Help("Set credentials.spotify and server.session_secret before going live."))
	return nil
}

// SetupDatabase initializes the database, runs migrations and creates the uploads directory.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, closeDB, err := r.openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	statuses, err := shared.MigrationsStatus(db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	if _, err := r.openStore(ctx); err != nil {
		return err
	}

	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		applied := "pending"
		if s.AppliedAt != nil {
			applied = s.AppliedAt.Format("2006-01-02 15:04:05")
		}
		rows = append(rows, []string{fmt.Sprintf("%04d", s.Version), s.Name, applied})
	}

	r.writePlain("%s\n", ui.Styles.Title("Migrations"))
	r.writePlain("%s", ui.Styles.Table([]string{"VERSION", "NAME", "APPLIED"}, rows))
	r.writePlain("%s\n", ui.Styles.OK("setup complete for database "+r.config.Database.Path))
	return nil
}

// SetupRollback reverts the latest applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}

	r.writePlain("%s\n", ui.Styles.OK("rolled back latest migration"))
	return nil
}
