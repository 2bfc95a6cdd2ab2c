package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/the-spice-must-tally/internal/common"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/Veraticus/the-spice-must-tally/internal/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadTaxonomy(t *testing.T) {
	tests := []struct {
		taxonomy model.Taxonomy
		name     string
	}{
		{
			name:     "flat",
			taxonomy: model.DefaultTaxonomy(),
		},
		{
			name: "flat with empty category",
			taxonomy: model.FlatTaxonomy{
				{Name: "Software", Keywords: []string{"aws", "github", "aws"}},
				{Name: "Unused", Keywords: []string{}},
				{Name: "Travel", Keywords: []string{"cab"}},
			},
		},
		{
			name:     "empty flat",
			taxonomy: model.FlatTaxonomy{},
		},
		{
			name: "hierarchical",
			taxonomy: model.HierarchicalTaxonomy{
				{Name: "Travel", Subcategories: []model.Subcategory{
					{Name: "Flight", Keywords: []string{"indigo", "vistara"}},
					{Name: "Cab", Keywords: []string{"uber"}},
					{Name: "Train", Keywords: []string{}},
				}},
				{Name: "Meals"},
				{Name: "Software", Subcategories: []model.Subcategory{
					{Name: "Cloud", Keywords: []string{"aws"}},
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := createTestStorage(t)

			require.NoError(t, store.SaveTaxonomy(ctx, "alice", tt.taxonomy))

			got, err := store.LoadTaxonomy(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, tt.taxonomy, got)
		})
	}
}

func TestSaveTaxonomy_ReplacesAndIsolatesOwners(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.SaveTaxonomy(ctx, "alice", model.DefaultTaxonomy()))
	require.NoError(t, store.SaveTaxonomy(ctx, "bob", model.FlatTaxonomy{{Name: "Rent", Keywords: []string{"landlord"}}}))

	replacement := model.HierarchicalTaxonomy{
		{Name: "Travel", Subcategories: []model.Subcategory{{Name: "Cab", Keywords: []string{"uber"}}}},
	}
	require.NoError(t, store.SaveTaxonomy(ctx, "alice", replacement))

	alice, err := store.LoadTaxonomy(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, replacement, alice)

	bob, err := store.LoadTaxonomy(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, model.FlatTaxonomy{{Name: "Rent", Keywords: []string{"landlord"}}}, bob)

	owners, err := store.ListOwners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, owners)
}

func TestSaveTaxonomy_Validation(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	err := store.SaveTaxonomy(ctx, "alice", model.FlatTaxonomy{{Name: "A"}, {Name: "A"}})
	assert.ErrorIs(t, err, ErrInvalidTaxonomy)

	err = store.SaveTaxonomy(ctx, "alice", model.FlatTaxonomy{{Name: " "}})
	assert.ErrorIs(t, err, ErrInvalidTaxonomy)

	err = store.SaveTaxonomy(ctx, "alice", model.HierarchicalTaxonomy{
		{Name: "Travel", Subcategories: []model.Subcategory{{Name: "Cab"}, {Name: "Cab"}}},
	})
	assert.ErrorIs(t, err, ErrInvalidTaxonomy)

	err = store.SaveTaxonomy(ctx, "alice", nil)
	assert.ErrorIs(t, err, ErrNilParameter)

	err = store.SaveTaxonomy(ctx, "", model.FlatTaxonomy{})
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestLoadTaxonomy_NotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.LoadTaxonomy(context.Background(), "nobody")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLoadOrSeed(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	got, err := store.LoadOrSeed(ctx, "alice", model.DefaultTaxonomy())
	require.NoError(t, err)
	assert.Equal(t, model.Taxonomy(model.DefaultTaxonomy()), got)

	require.NoError(t, store.AddKeyword(ctx, "alice", "Software", "", "aws"))

	got, err = store.LoadOrSeed(ctx, "alice", model.DefaultTaxonomy())
	require.NoError(t, err)
	assert.Equal(t, []string{"naimish.dg", "aws"}, got.(model.FlatTaxonomy)[0].Keywords)
}

func TestKeywordEditing(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.AddKeyword(ctx, "alice", "Travel", "Cab", "uber"))
	require.NoError(t, store.AddKeyword(ctx, "alice", "Travel", "Cab", "ola"))
	require.NoError(t, store.AddCategory(ctx, "alice", "Meals", "Lunch"))
	require.NoError(t, store.AddKeyword(ctx, "alice", "Travel", "Flight", "indigo"))

	got, err := store.LoadTaxonomy(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.HierarchicalTaxonomy{
		{Name: "Travel", Subcategories: []model.Subcategory{
			{Name: "Cab", Keywords: []string{"uber", "ola"}},
			{Name: "Flight", Keywords: []string{"indigo"}},
		}},
		{Name: "Meals", Subcategories: []model.Subcategory{{Name: "Lunch", Keywords: []string{}}}},
	}, got)

	require.NoError(t, store.RemoveKeyword(ctx, "alice", "Travel", "Cab", "uber"))
	require.NoError(t, store.RemoveSubcategory(ctx, "alice", "Travel", "Flight"))
	require.NoError(t, store.RemoveCategory(ctx, "alice", "Meals"))

	got, err = store.LoadTaxonomy(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.HierarchicalTaxonomy{
		{Name: "Travel", Subcategories: []model.Subcategory{{Name: "Cab", Keywords: []string{"ola"}}}},
	}, got)

	err = store.AddKeyword(ctx, "alice", "Travel", "", "bus")
	assert.ErrorIs(t, err, taxonomy.ErrSubcategoryRequired)

	err = store.RemoveCategory(ctx, "alice", "Nope")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.RemoveKeyword(ctx, "bob", "Travel", "", "bus")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteTaxonomy(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.SaveTaxonomy(ctx, "alice", model.DefaultTaxonomy()))
	require.NoError(t, store.DeleteTaxonomy(ctx, "alice"))

	_, err := store.LoadTaxonomy(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)

	var orphans int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM keywords`).Scan(&orphans))
	assert.Zero(t, orphans)

	assert.ErrorIs(t, store.DeleteTaxonomy(ctx, "alice"), common.ErrNotFound)
}
