package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/the-spice-must-tally/internal/common"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/Veraticus/the-spice-must-tally/internal/taxonomy"
)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// LoadTaxonomy returns the taxonomy stored for owner, or common.ErrNotFound.
func (s *SQLiteStorage) LoadTaxonomy(ctx context.Context, owner string) (model.Taxonomy, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(owner, "owner"); err != nil {
		return nil, err
	}
	return loadTaxonomy(ctx, s.db, owner)
}

// SaveTaxonomy replaces the owner's taxonomy atomically.
func (s *SQLiteStorage) SaveTaxonomy(ctx context.Context, owner string, t model.Taxonomy) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(owner, "owner"); err != nil {
		return err
	}
	if err := validateTaxonomy(t); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return saveTaxonomy(ctx, tx, owner, t)
	})
}

// LoadOrSeed returns the owner's taxonomy, storing seed first if the owner has none.
func (s *SQLiteStorage) LoadOrSeed(ctx context.Context, owner string, seed model.Taxonomy) (model.Taxonomy, error) {
	t, err := s.LoadTaxonomy(ctx, owner)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if err := s.SaveTaxonomy(ctx, owner, seed); err != nil {
		return nil, fmt.Errorf("failed to seed taxonomy: %w", err)
	}
	slog.Info("seeded taxonomy", "owner", owner, "categories", seed.Len())
	return seed, nil
}

// DeleteTaxonomy removes everything stored for owner.
func (s *SQLiteStorage) DeleteTaxonomy(ctx context.Context, owner string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM taxonomies WHERE owner = ?`, owner)
	if err != nil {
		return fmt.Errorf("failed to delete taxonomy: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("taxonomy for %q: %w", owner, common.ErrNotFound)
	}
	return nil
}

// ListOwners returns every owner with a stored taxonomy.
func (s *SQLiteStorage) ListOwners(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT owner FROM taxonomies ORDER BY owner`)
	if err != nil {
		return nil, fmt.Errorf("failed to query owners: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owners: %w", err)
	}
	return owners, nil
}

// AddKeyword appends keyword under category (and subcategory for hierarchical
// taxonomies), creating missing entries. An owner without a taxonomy gets one whose
// shape follows from whether subcategory is set.
func (s *SQLiteStorage) AddKeyword(ctx context.Context, owner, category, subcategory, keyword string) error {
	return s.update(ctx, owner, func(t model.Taxonomy) (model.Taxonomy, error) {
		return taxonomy.AddKeyword(t, category, subcategory, keyword)
	})
}

// AddCategory appends an empty category (and subcategory) when missing.
func (s *SQLiteStorage) AddCategory(ctx context.Context, owner, category, subcategory string) error {
	return s.update(ctx, owner, func(t model.Taxonomy) (model.Taxonomy, error) {
		return taxonomy.AddCategory(t, category, subcategory)
	})
}

// RemoveCategory deletes a category and its keywords.
func (s *SQLiteStorage) RemoveCategory(ctx context.Context, owner, category string) error {
	return s.update(ctx, owner, func(t model.Taxonomy) (model.Taxonomy, error) {
		if t == nil {
			return nil, fmt.Errorf("taxonomy for %q: %w", owner, common.ErrNotFound)
		}
		return taxonomy.RemoveCategory(t, category)
	})
}

// RemoveSubcategory deletes a subcategory of a hierarchical taxonomy.
func (s *SQLiteStorage) RemoveSubcategory(ctx context.Context, owner, category, subcategory string) error {
	return s.update(ctx, owner, func(t model.Taxonomy) (model.Taxonomy, error) {
		if t == nil {
			return nil, fmt.Errorf("taxonomy for %q: %w", owner, common.ErrNotFound)
		}
		return taxonomy.RemoveSubcategory(t, category, subcategory)
	})
}

// RemoveKeyword deletes one keyword.
func (s *SQLiteStorage) RemoveKeyword(ctx context.Context, owner, category, subcategory, keyword string) error {
	return s.update(ctx, owner, func(t model.Taxonomy) (model.Taxonomy, error) {
		if t == nil {
			return nil, fmt.Errorf("taxonomy for %q: %w", owner, common.ErrNotFound)
		}
		return taxonomy.RemoveKeyword(t, category, subcategory, keyword)
	})
}

// update applies fn to the owner's taxonomy inside one transaction. fn receives nil
// when the owner has no taxonomy yet.
func (s *SQLiteStorage) update(ctx context.Context, owner string, fn func(model.Taxonomy) (model.Taxonomy, error)) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(owner, "owner"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := loadTaxonomy(ctx, tx, owner)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if err := validateTaxonomy(next); err != nil {
			return err
		}
		return saveTaxonomy(ctx, tx, owner, next)
	})
}

func loadTaxonomy(ctx context.Context, q querier, owner string) (model.Taxonomy, error) {
	var kind string
	err := q.QueryRowContext(ctx, `SELECT kind FROM taxonomies WHERE owner = ?`, owner).Scan(&kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("taxonomy for %q: %w", owner, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query taxonomy: %w", err)
	}

	switch model.TaxonomyKind(kind) {
	case model.TaxonomyFlat:
		return loadFlat(ctx, q, owner)
	case model.TaxonomyHierarchical:
		return loadHierarchical(ctx, q, owner)
	}
	return nil, fmt.Errorf("%w: unknown taxonomy kind %q", common.ErrDatabaseCorrupted, kind)
}

func loadFlat(ctx context.Context, q querier, owner string) (model.FlatTaxonomy, error) {
	query := `
		SELECT c.id, c.name, k.keyword
		FROM categories c
		LEFT JOIN keywords k ON k.category_id = c.id AND k.subcategory_id IS NULL
		WHERE c.owner = ?
		ORDER BY c.position, k.position`

	rows, err := q.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := model.FlatTaxonomy{}
	lastID := int64(-1)
	for rows.Next() {
		var (
			id      int64
			name    string
			keyword sql.NullString
		)
		if err := rows.Scan(&id, &name, &keyword); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		if id != lastID {
			out = append(out, model.FlatCategory{Name: name, Keywords: []string{}})
			lastID = id
		}
		if keyword.Valid {
			last := &out[len(out)-1]
			last.Keywords = append(last.Keywords, keyword.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("loaded flat taxonomy", "owner", owner, "categories", len(out))
	return out, nil
}

func loadHierarchical(ctx context.Context, q querier, owner string) (model.HierarchicalTaxonomy, error) {
	query := `
		SELECT c.id, c.name, s.id, s.name, k.keyword
		FROM categories c
		LEFT JOIN subcategories s ON s.category_id = c.id
		LEFT JOIN keywords k ON k.subcategory_id = s.id
		WHERE c.owner = ?
		ORDER BY c.position, s.position, k.position`

	rows, err := q.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := model.HierarchicalTaxonomy{}
	lastCat, lastSub := int64(-1), int64(-1)
	for rows.Next() {
		var (
			catID   int64
			catName string
			subID   sql.NullInt64
			subName sql.NullString
			keyword sql.NullString
		)
		if err := rows.Scan(&catID, &catName, &subID, &subName, &keyword); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		if catID != lastCat {
			out = append(out, model.Category{Name: catName})
			lastCat = catID
			lastSub = -1
		}
		if !subID.Valid {
			continue
		}
		cat := &out[len(out)-1]
		if subID.Int64 != lastSub {
			cat.Subcategories = append(cat.Subcategories, model.Subcategory{Name: subName.String, Keywords: []string{}})
			lastSub = subID.Int64
		}
		if keyword.Valid {
			sub := &cat.Subcategories[len(cat.Subcategories)-1]
			sub.Keywords = append(sub.Keywords, keyword.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("loaded hierarchical taxonomy", "owner", owner, "categories", len(out))
	return out, nil
}

func saveTaxonomy(ctx context.Context, tx *sql.Tx, owner string, t model.Taxonomy) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM taxonomies WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("failed to clear taxonomy: %w", err)
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO taxonomies (owner, kind, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		owner, string(t.Kind()), now, now); err != nil {
		return fmt.Errorf("failed to insert taxonomy: %w", err)
	}

	insertCategory := func(name string, position int) (int64, error) {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO categories (owner, name, position) VALUES (?, ?, ?)`, owner, name, position)
		if err != nil {
			return 0, fmt.Errorf("failed to insert category %q: %w", name, err)
		}
		return result.LastInsertId()
	}
	insertKeywords := func(categoryID int64, subcategoryID *int64, keywords []string) error {
		for i, kw := range keywords {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO keywords (category_id, subcategory_id, keyword, position) VALUES (?, ?, ?, ?)`,
				categoryID, subcategoryID, kw, i); err != nil {
				return fmt.Errorf("failed to insert keyword %q: %w", kw, err)
			}
		}
		return nil
	}

	switch tax := t.(type) {
	case model.FlatTaxonomy:
		for i, cat := range tax {
			id, err := insertCategory(cat.Name, i)
			if err != nil {
				return err
			}
			if err := insertKeywords(id, nil, cat.Keywords); err != nil {
				return err
			}
		}
	case model.HierarchicalTaxonomy:
		for i, cat := range tax {
			id, err := insertCategory(cat.Name, i)
			if err != nil {
				return err
			}
			for j, sub := range cat.Subcategories {
				result, err := tx.ExecContext(ctx,
					`INSERT INTO subcategories (category_id, name, position) VALUES (?, ?, ?)`, id, sub.Name, j)
				if err != nil {
					return fmt.Errorf("failed to insert subcategory %q: %w", sub.Name, err)
				}
				subID, err := result.LastInsertId()
				if err != nil {
					return fmt.Errorf("failed to get subcategory ID: %w", err)
				}
				if err := insertKeywords(id, &subID, sub.Keywords); err != nil {
					return err
				}
			}
		}
	}

	slog.Debug("saved taxonomy", "owner", owner, "kind", t.Kind(), "categories", t.Len())
	return nil
}
