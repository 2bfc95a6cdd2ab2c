package pattern

import (
	"strings"

	"github.com/Veraticus/the-spice-must-tally/internal/model"
)

// entry is one compiled taxonomy leaf in priority order.
type entry struct {
	match    Match
	keywords []string
}

// KeywordMatcher implements Matcher with case-insensitive substring containment.
// Entries are checked in taxonomy order and the first hit wins.
type KeywordMatcher struct {
	kind    model.TaxonomyKind
	entries []entry
}

// Compile prepares a matcher for taxonomy. The taxonomy is read, never modified.
// A nil taxonomy yields a matcher that never matches.
func Compile(taxonomy model.Taxonomy) *KeywordMatcher {
	m := &KeywordMatcher{kind: model.TaxonomyFlat}
	if taxonomy == nil {
		return m
	}
	m.kind = taxonomy.Kind()

	switch t := taxonomy.(type) {
	case model.FlatTaxonomy:
		m.entries = make([]entry, 0, len(t))
		for _, cat := range t {
			m.entries = append(m.entries, entry{
				match:    Match{Category: cat.Name},
				keywords: normalizeKeywords(cat.Keywords),
			})
		}
	case model.HierarchicalTaxonomy:
		for _, cat := range t {
			for _, sub := range cat.Subcategories {
				m.entries = append(m.entries, entry{
					match:    Match{Category: cat.Name, Subcategory: sub.Name},
					keywords: normalizeKeywords(sub.Keywords),
				})
			}
		}
	}

	return m
}

// Kind reports the shape of the compiled taxonomy.
func (m *KeywordMatcher) Kind() model.TaxonomyKind {
	return m.kind
}

// Match implements Matcher.
func (m *KeywordMatcher) Match(remark string) (Match, bool) {
	lowered := strings.ToLower(remark)
	for _, e := range m.entries {
		for _, kw := range e.keywords {
			if strings.Contains(lowered, kw) {
				return e.match, true
			}
		}
	}
	return Match{}, false
}

// normalizeKeywords lower-cases keywords and drops blank ones, which would
// otherwise match every remark.
func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			continue
		}
		out = append(out, strings.ToLower(kw))
	}
	return out
}
