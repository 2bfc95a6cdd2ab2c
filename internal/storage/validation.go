package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/the-spice-must-tally/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidTaxonomy = errors.New("invalid taxonomy")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTaxonomy checks names are present and unique at each level.
func validateTaxonomy(t model.Taxonomy) error {
	if t == nil {
		return fmt.Errorf("%w: taxonomy", ErrNilParameter)
	}

	seen := make(map[string]bool)
	checkName := func(name, what string) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: blank %s name", ErrInvalidTaxonomy, what)
		}
		return nil
	}

	switch tax := t.(type) {
	case model.FlatTaxonomy:
		for _, cat := range tax {
			if err := checkName(cat.Name, "category"); err != nil {
				return err
			}
			if seen[cat.Name] {
				return fmt.Errorf("%w: duplicate category %q", ErrInvalidTaxonomy, cat.Name)
			}
			seen[cat.Name] = true
		}
	case model.HierarchicalTaxonomy:
		for _, cat := range tax {
			if err := checkName(cat.Name, "category"); err != nil {
				return err
			}
			if seen[cat.Name] {
				return fmt.Errorf("%w: duplicate category %q", ErrInvalidTaxonomy, cat.Name)
			}
			seen[cat.Name] = true

			subs := make(map[string]bool)
			for _, sub := range cat.Subcategories {
				if err := checkName(sub.Name, "subcategory"); err != nil {
					return err
				}
				if subs[sub.Name] {
					return fmt.Errorf("%w: duplicate subcategory %q in %q", ErrInvalidTaxonomy, sub.Name, cat.Name)
				}
				subs[sub.Name] = true
			}
		}
	default:
		return fmt.Errorf("%w: unknown taxonomy kind", ErrInvalidTaxonomy)
	}
	return nil
}
