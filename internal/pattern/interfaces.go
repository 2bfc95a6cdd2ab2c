// Package pattern matches transaction remarks against a keyword taxonomy.
package pattern

// Matcher evaluates a transaction remark against a compiled taxonomy.
type Matcher interface {
	// Match returns the first taxonomy entry whose keyword occurs in remark.
	Match(remark string) (Match, bool)
}

// Match identifies the taxonomy entry a remark matched.
// Subcategory is empty for flat taxonomies.
type Match struct {
	Category    string
	Subcategory string
}
