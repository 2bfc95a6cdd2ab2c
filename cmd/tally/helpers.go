package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-spice-must-tally/internal/config"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/Veraticus/the-spice-must-tally/internal/service"
	"github.com/Veraticus/the-spice-must-tally/internal/storage"
	"github.com/Veraticus/the-spice-must-tally/internal/taxonomy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context, settings *config.Settings) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadTaxonomy returns the taxonomy file when one is configured, otherwise the
// user's stored taxonomy, seeding the default one on first use.
func loadTaxonomy(ctx context.Context, settings *config.Settings) (model.Taxonomy, error) {
	if settings.TaxonomyFile != "" {
		t, err := taxonomy.LoadFile(settings.TaxonomyFile)
		if err != nil {
			return nil, err
		}
		slog.Debug("Loaded taxonomy file", "path", settings.TaxonomyFile, "categories", t.Len())
		return t, nil
	}

	store, err := initStorage(ctx, settings)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	t, err := store.LoadOrSeed(ctx, settings.User, model.DefaultTaxonomy())
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy for %q: %w", settings.User, err)
	}
	slog.Debug("Loaded stored taxonomy", "user", settings.User, "kind", t.Kind(), "categories", t.Len())
	return t, nil
}

// bindFlags binds a command's flags to viper keys. It runs from PreRunE so that
// commands sharing a key do not overwrite each other's binding.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}
	return nil
}
