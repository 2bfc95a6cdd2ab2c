package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-spice-must-tally/internal/cli"
	"github.com/Veraticus/the-spice-must-tally/internal/config"
	"github.com/Veraticus/the-spice-must-tally/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Other commands migrate automatically; this command is useful to check the schema
version or to prepare a database ahead of time.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	status, _ := cmd.Flags().GetBool("status")

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	slog.Debug("Starting database migration", "database", settings.DatabasePath, "status_only", status)

	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if status {
		state := cli.StyleSuccess("up to date")
		if current < storage.ExpectedSchemaVersion {
			state = cli.StyleWarning(fmt.Sprintf("%d migrations pending", storage.ExpectedSchemaVersion-current))
		}
		fmt.Fprintln(out, cli.RenderBox(cli.ChartIcon+" Database Migration Status", fmt.Sprintf(
			"Database: %s\nCurrent version: %d\nLatest version: %d\nStatus: %s",
			settings.DatabasePath, current, storage.ExpectedSchemaVersion, state)))
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database at schema version %d (was %d): %s",
		storage.ExpectedSchemaVersion, current, settings.DatabasePath)))
	return nil
}
