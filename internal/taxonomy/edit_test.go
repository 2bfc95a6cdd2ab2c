package taxonomy

import (
	"testing"

	"github.com/Veraticus/the-spice-must-tally/internal/common"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddKeyword_Flat(t *testing.T) {
	base := model.FlatTaxonomy{{Name: "Software", Keywords: []string{"aws"}}}

	got, err := AddKeyword(base, "Software", "", "github")
	require.NoError(t, err)
	got, err = AddKeyword(got, "Travel", "", "cab")
	require.NoError(t, err)
	got, err = AddKeyword(got, "Travel", "", "cab")
	require.NoError(t, err)

	assert.Equal(t, model.FlatTaxonomy{
		{Name: "Software", Keywords: []string{"aws", "github"}},
		{Name: "Travel", Keywords: []string{"cab"}},
	}, got)
	assert.Equal(t, model.FlatTaxonomy{{Name: "Software", Keywords: []string{"aws"}}}, base, "input untouched")

	_, err = AddKeyword(base, "Software", "Cloud", "aws")
	assert.ErrorIs(t, err, ErrSubcategoryOnFlat)

	_, err = AddKeyword(base, "  ", "", "aws")
	assert.ErrorIs(t, err, ErrBlankName)
}

func TestAddKeyword_Hierarchical(t *testing.T) {
	got, err := AddKeyword(nil, "Travel", "Cab", "uber")
	require.NoError(t, err)
	got, err = AddKeyword(got, "Travel", "Flight", "indigo")
	require.NoError(t, err)
	got, err = AddCategory(got, "Meals", "Team Lunch")
	require.NoError(t, err)

	assert.Equal(t, model.HierarchicalTaxonomy{
		{Name: "Travel", Subcategories: []model.Subcategory{
			{Name: "Cab", Keywords: []string{"uber"}},
			{Name: "Flight", Keywords: []string{"indigo"}},
		}},
		{Name: "Meals", Subcategories: []model.Subcategory{
			{Name: "Team Lunch", Keywords: []string{}},
		}},
	}, got)

	_, err = AddKeyword(got, "Travel", "", "ola")
	assert.ErrorIs(t, err, ErrSubcategoryRequired)
}

func TestAddCategory_NilTaxonomyIsFlat(t *testing.T) {
	got, err := AddCategory(nil, "Software", "")
	require.NoError(t, err)
	assert.Equal(t, model.FlatTaxonomy{{Name: "Software", Keywords: []string{}}}, got)
}

func TestRemove(t *testing.T) {
	flat := model.FlatTaxonomy{
		{Name: "Software", Keywords: []string{"aws", "github"}},
		{Name: "Travel", Keywords: []string{"cab"}},
	}

	got, err := RemoveKeyword(flat, "Software", "", "aws")
	require.NoError(t, err)
	assert.Equal(t, []string{"github"}, got.(model.FlatTaxonomy)[0].Keywords)
	assert.Equal(t, []string{"aws", "github"}, flat[0].Keywords)

	got, err = RemoveCategory(flat, "Software")
	require.NoError(t, err)
	assert.Equal(t, model.FlatTaxonomy{{Name: "Travel", Keywords: []string{"cab"}}}, got)

	_, err = RemoveCategory(flat, "Meals")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = RemoveKeyword(flat, "Travel", "", "uber")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = RemoveSubcategory(flat, "Travel", "Cab")
	assert.ErrorIs(t, err, ErrSubcategoryOnFlat)

	hier := model.HierarchicalTaxonomy{
		{Name: "Travel", Subcategories: []model.Subcategory{
			{Name: "Cab", Keywords: []string{"uber", "ola"}},
			{Name: "Flight", Keywords: []string{"indigo"}},
		}},
	}

	got, err = RemoveKeyword(hier, "Travel", "Cab", "uber")
	require.NoError(t, err)
	assert.Equal(t, []string{"ola"}, got.(model.HierarchicalTaxonomy)[0].Subcategories[0].Keywords)

	got, err = RemoveSubcategory(hier, "Travel", "Cab")
	require.NoError(t, err)
	assert.Equal(t, []model.Subcategory{{Name: "Flight", Keywords: []string{"indigo"}}}, got.(model.HierarchicalTaxonomy)[0].Subcategories)

	_, err = RemoveSubcategory(hier, "Travel", "Train")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Len(t, hier[0].Subcategories, 2)
}
