package model

// TaxonomyKind identifies the shape of a taxonomy.
type TaxonomyKind string

const (
	// TaxonomyFlat maps categories directly to keywords.
	TaxonomyFlat TaxonomyKind = "flat"
	// TaxonomyHierarchical maps categories to subcategories, each with keywords.
	TaxonomyHierarchical TaxonomyKind = "hierarchical"
)

// Taxonomy is the user's keyword-to-category mapping. It is either a FlatTaxonomy
// or a HierarchicalTaxonomy; slice order is match priority.
type Taxonomy interface {
	Kind() TaxonomyKind
	Len() int
	taxonomy()
}

// FlatCategory is a category with its matching keywords.
type FlatCategory struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// FlatTaxonomy is the category -> keywords form.
type FlatTaxonomy []FlatCategory

// Kind implements Taxonomy.
func (FlatTaxonomy) Kind() TaxonomyKind { return TaxonomyFlat }

// Len implements Taxonomy.
func (t FlatTaxonomy) Len() int { return len(t) }

func (FlatTaxonomy) taxonomy() {}

// Subcategory is a leaf of the hierarchical taxonomy.
type Subcategory struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Category groups subcategories in the hierarchical taxonomy.
type Category struct {
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories"`
}

// HierarchicalTaxonomy is the category -> subcategory -> keywords form.
type HierarchicalTaxonomy []Category

// Kind implements Taxonomy.
func (HierarchicalTaxonomy) Kind() TaxonomyKind { return TaxonomyHierarchical }

// Len implements Taxonomy.
func (t HierarchicalTaxonomy) Len() int { return len(t) }

func (HierarchicalTaxonomy) taxonomy() {}

// DefaultTaxonomy returns the keyword table new users start with.
func DefaultTaxonomy() FlatTaxonomy {
	return FlatTaxonomy{
		{Name: "Software", Keywords: []string{"naimish.dg"}},
		{Name: "Travel", Keywords: []string{"cab"}},
		{Name: "Office Supplies", Keywords: []string{"Google"}},
		{Name: "Client Entertainment", Keywords: []string{"madhurimamukher"}},
		{Name: "Employee Relaxation", Keywords: []string{"vamsi0597"}},
	}
}
