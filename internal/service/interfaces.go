// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/the-spice-must-tally/internal/model"
)

// TaxonomyStore persists one keyword taxonomy per owner.
type TaxonomyStore interface {
	// Whole-taxonomy operations
	LoadTaxonomy(ctx context.Context, owner string) (model.Taxonomy, error)
	SaveTaxonomy(ctx context.Context, owner string, t model.Taxonomy) error
	LoadOrSeed(ctx context.Context, owner string, seed model.Taxonomy) (model.Taxonomy, error)
	DeleteTaxonomy(ctx context.Context, owner string) error
	ListOwners(ctx context.Context) ([]string, error)

	// Entry operations
	AddCategory(ctx context.Context, owner, category, subcategory string) error
	AddKeyword(ctx context.Context, owner, category, subcategory, keyword string) error
	RemoveCategory(ctx context.Context, owner, category string) error
	RemoveSubcategory(ctx context.Context, owner, category, subcategory string) error
	RemoveKeyword(ctx context.Context, owner, category, subcategory, keyword string) error
}

// Migrator manages the schema of the persistence layer.
type Migrator interface {
	Migrate(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	TaxonomyStore
	Migrator
	Close() error
}
