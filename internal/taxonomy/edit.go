package taxonomy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/the-spice-must-tally/internal/common"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
)

// Edit errors.
var (
	ErrBlankName           = errors.New("name cannot be blank")
	ErrSubcategoryRequired = errors.New("hierarchical taxonomy requires a subcategory")
	ErrSubcategoryOnFlat   = errors.New("flat taxonomy has no subcategories")
)

// Clone deep-copies a taxonomy. Edits below always work on a clone.
func Clone(t model.Taxonomy) model.Taxonomy {
	switch tax := t.(type) {
	case model.FlatTaxonomy:
		out := make(model.FlatTaxonomy, len(tax))
		for i, cat := range tax {
			out[i] = model.FlatCategory{Name: cat.Name, Keywords: append([]string{}, cat.Keywords...)}
		}
		return out
	case model.HierarchicalTaxonomy:
		out := make(model.HierarchicalTaxonomy, len(tax))
		for i, cat := range tax {
			out[i] = model.Category{Name: cat.Name}
			for _, sub := range cat.Subcategories {
				out[i].Subcategories = append(out[i].Subcategories, model.Subcategory{
					Name:     sub.Name,
					Keywords: append([]string{}, sub.Keywords...),
				})
			}
		}
		return out
	}
	return nil
}

// emptyFor returns an empty taxonomy whose shape fits subcategory.
func emptyFor(subcategory string) model.Taxonomy {
	if subcategory != "" {
		return model.HierarchicalTaxonomy{}
	}
	return model.FlatTaxonomy{}
}

// AddCategory appends category (and subcategory, for hierarchical taxonomies) if it is
// not present yet. A nil taxonomy takes its shape from whether subcategory is set.
func AddCategory(t model.Taxonomy, category, subcategory string) (model.Taxonomy, error) {
	return AddKeyword(t, category, subcategory, "")
}

// AddKeyword appends keyword to the given category, creating the category and
// subcategory at the end of the taxonomy when missing. An empty keyword only creates
// the entries. Keywords already present are not duplicated.
func AddKeyword(t model.Taxonomy, category, subcategory, keyword string) (model.Taxonomy, error) {
	category = strings.TrimSpace(category)
	subcategory = strings.TrimSpace(subcategory)
	if category == "" {
		return nil, fmt.Errorf("%w: category", ErrBlankName)
	}
	if t == nil {
		t = emptyFor(subcategory)
	}

	switch tax := Clone(t).(type) {
	case model.FlatTaxonomy:
		if subcategory != "" {
			return nil, ErrSubcategoryOnFlat
		}
		i := indexFlat(tax, category)
		if i < 0 {
			tax = append(tax, model.FlatCategory{Name: category, Keywords: []string{}})
			i = len(tax) - 1
		}
		tax[i].Keywords = appendKeyword(tax[i].Keywords, keyword)
		return tax, nil
	case model.HierarchicalTaxonomy:
		if subcategory == "" {
			return nil, ErrSubcategoryRequired
		}
		i := indexHierarchical(tax, category)
		if i < 0 {
			tax = append(tax, model.Category{Name: category})
			i = len(tax) - 1
		}
		j := indexSub(tax[i].Subcategories, subcategory)
		if j < 0 {
			tax[i].Subcategories = append(tax[i].Subcategories, model.Subcategory{Name: subcategory, Keywords: []string{}})
			j = len(tax[i].Subcategories) - 1
		}
		tax[i].Subcategories[j].Keywords = appendKeyword(tax[i].Subcategories[j].Keywords, keyword)
		return tax, nil
	}
	return nil, ErrInvalidShape
}

// RemoveCategory drops a category with everything below it.
func RemoveCategory(t model.Taxonomy, category string) (model.Taxonomy, error) {
	switch tax := Clone(t).(type) {
	case model.FlatTaxonomy:
		i := indexFlat(tax, category)
		if i < 0 {
			return nil, fmt.Errorf("category %q: %w", category, common.ErrNotFound)
		}
		return append(tax[:i], tax[i+1:]...), nil
	case model.HierarchicalTaxonomy:
		i := indexHierarchical(tax, category)
		if i < 0 {
			return nil, fmt.Errorf("category %q: %w", category, common.ErrNotFound)
		}
		return append(tax[:i], tax[i+1:]...), nil
	}
	return nil, fmt.Errorf("category %q: %w", category, common.ErrNotFound)
}

// RemoveSubcategory drops one subcategory of a hierarchical taxonomy.
func RemoveSubcategory(t model.Taxonomy, category, subcategory string) (model.Taxonomy, error) {
	tax, ok := Clone(t).(model.HierarchicalTaxonomy)
	if !ok {
		return nil, ErrSubcategoryOnFlat
	}
	i := indexHierarchical(tax, category)
	if i < 0 {
		return nil, fmt.Errorf("category %q: %w", category, common.ErrNotFound)
	}
	j := indexSub(tax[i].Subcategories, subcategory)
	if j < 0 {
		return nil, fmt.Errorf("subcategory %q: %w", subcategory, common.ErrNotFound)
	}
	subs := tax[i].Subcategories
	tax[i].Subcategories = append(subs[:j], subs[j+1:]...)
	return tax, nil
}

// RemoveKeyword drops keyword from a category (or subcategory).
func RemoveKeyword(t model.Taxonomy, category, subcategory, keyword string) (model.Taxonomy, error) {
	switch tax := Clone(t).(type) {
	case model.FlatTaxonomy:
		if subcategory != "" {
			return nil, ErrSubcategoryOnFlat
		}
		i := indexFlat(tax, category)
		if i < 0 {
			return nil, fmt.Errorf("category %q: %w", category, common.ErrNotFound)
		}
		kws, ok := removeKeyword(tax[i].Keywords, keyword)
		if !ok {
			return nil, fmt.Errorf("keyword %q: %w", keyword, common.ErrNotFound)
		}
		tax[i].Keywords = kws
		return tax, nil
	case model.HierarchicalTaxonomy:
		if subcategory == "" {
			return nil, ErrSubcategoryRequired
		}
		i := indexHierarchical(tax, category)
		if i < 0 {
			return nil, fmt.Errorf("category %q: %w", category, common.ErrNotFound)
		}
		j := indexSub(tax[i].Subcategories, subcategory)
		if j < 0 {
			return nil, fmt.Errorf("subcategory %q: %w", subcategory, common.ErrNotFound)
		}
		kws, ok := removeKeyword(tax[i].Subcategories[j].Keywords, keyword)
		if !ok {
			return nil, fmt.Errorf("keyword %q: %w", keyword, common.ErrNotFound)
		}
		tax[i].Subcategories[j].Keywords = kws
		return tax, nil
	}
	return nil, fmt.Errorf("category %q: %w", category, common.ErrNotFound)
}

func indexFlat(t model.FlatTaxonomy, name string) int {
	for i, c := range t {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func indexHierarchical(t model.HierarchicalTaxonomy, name string) int {
	for i, c := range t {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func indexSub(subs []model.Subcategory, name string) int {
	for i, s := range subs {
		if s.Name == name {
			return i
		}
	}
	return -1
}

func appendKeyword(keywords []string, keyword string) []string {
	if keyword == "" {
		return keywords
	}
	for _, kw := range keywords {
		if kw == keyword {
			return keywords
		}
	}
	return append(keywords, keyword)
}

func removeKeyword(keywords []string, keyword string) ([]string, bool) {
	for i, kw := range keywords {
		if kw == keyword {
			return append(keywords[:i], keywords[i+1:]...), true
		}
	}
	return keywords, false
}
