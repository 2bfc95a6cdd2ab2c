// Package testutil provides shared fixtures for tests that need a store or statement files.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/Veraticus/the-spice-must-tally/internal/storage"
)

// TestStore wraps an in-memory store that is closed when the test ends.
type TestStore struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// Seed is a taxonomy saved for owner before the test runs.
type Seed struct {
	Taxonomy model.Taxonomy
	Owner    string
}

// SetupTestStore creates a migrated in-memory store and saves the given seeds.
//
// Example:
//
//	db := testutil.SetupTestStore(t, testutil.Seed{
//		Owner:    "default",
//		Taxonomy: model.DefaultTaxonomy(),
//	})
func SetupTestStore(t *testing.T, seeds ...Seed) *TestStore {
	t.Helper()

	s, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	ctx := context.Background()
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for _, seed := range seeds {
		if err := s.SaveTaxonomy(ctx, seed.Owner, seed.Taxonomy); err != nil {
			t.Fatalf("failed to seed taxonomy for %q: %v", seed.Owner, err)
		}
	}

	return &TestStore{Storage: s, t: t}
}

// MustLoad returns owner's taxonomy or fails the test.
func (db *TestStore) MustLoad(owner string) model.Taxonomy {
	db.t.Helper()
	taxonomy, err := db.Storage.LoadTaxonomy(context.Background(), owner)
	if err != nil {
		db.t.Fatalf("failed to load taxonomy for %q: %v", owner, err)
	}
	return taxonomy
}
