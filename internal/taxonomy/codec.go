// Package taxonomy reads and writes keyword taxonomies as nested JSON or YAML mappings.
//
// A flat taxonomy maps each category to a keyword list:
//
//	{"Software": ["aws", "github"], "Travel": ["uber"]}
//
// A hierarchical taxonomy adds a level of subcategories:
//
//	{"Travel": {"Cab": ["uber", "ola"], "Flight": ["indigo"]}}
//
// The shape is detected from the value types and key order is preserved, since it
// decides which category wins when a remark matches several.
package taxonomy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"gopkg.in/yaml.v3"
)

// Format is a taxonomy file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Decoding errors.
var (
	ErrInvalidShape = errors.New("taxonomy must map categories to keyword lists or to subcategory mappings")
	ErrMixedShape   = errors.New("taxonomy mixes flat and hierarchical categories")
)

// FormatFromPath picks the encoding from a file extension. Anything that is not
// YAML is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// LoadFile reads a taxonomy from path.
func LoadFile(path string) (model.Taxonomy, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to open taxonomy file: %w", err)
	}
	defer func() { _ = f.Close() }()

	tax, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tax, nil
}

// SaveFile writes taxonomy to path, creating parent directories as needed.
func SaveFile(path string, taxonomy model.Taxonomy) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create taxonomy directory: %w", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, taxonomy, FormatFromPath(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write taxonomy file: %w", err)
	}
	return nil
}

// Decode parses a taxonomy in the given format.
func Decode(r io.Reader, format Format) (model.Taxonomy, error) {
	var (
		root *node
		err  error
	)
	switch format {
	case FormatYAML:
		root, err = decodeYAML(r)
	default:
		root, err = decodeJSON(r)
	}
	if err != nil {
		return nil, err
	}
	return build(root)
}

// build converts the ordered document tree into a typed taxonomy.
func build(root *node) (model.Taxonomy, error) {
	if root == nil || root.kind == kindNull {
		return model.FlatTaxonomy{}, nil
	}
	if root.kind != kindMapping {
		return nil, ErrInvalidShape
	}

	var hierarchical, flat bool
	for _, v := range root.values {
		switch v.kind {
		case kindMapping:
			hierarchical = true
		case kindList:
			flat = true
		case kindNull:
		default:
			return nil, ErrInvalidShape
		}
	}
	if hierarchical && flat {
		return nil, ErrMixedShape
	}

	if !hierarchical {
		out := make(model.FlatTaxonomy, 0, len(root.keys))
		for i, name := range root.keys {
			keywords, err := keywordList(root.values[i])
			if err != nil {
				return nil, fmt.Errorf("category %q: %w", name, err)
			}
			out = append(out, model.FlatCategory{Name: name, Keywords: keywords})
		}
		return out, nil
	}

	out := make(model.HierarchicalTaxonomy, 0, len(root.keys))
	for i, name := range root.keys {
		cat := model.Category{Name: name}
		v := root.values[i]
		for j, subName := range v.keys {
			keywords, err := keywordList(v.values[j])
			if err != nil {
				return nil, fmt.Errorf("category %q subcategory %q: %w", name, subName, err)
			}
			cat.Subcategories = append(cat.Subcategories, model.Subcategory{Name: subName, Keywords: keywords})
		}
		out = append(out, cat)
	}
	return out, nil
}

func keywordList(v *node) ([]string, error) {
	switch v.kind {
	case kindNull:
		return []string{}, nil
	case kindList:
		out := make([]string, 0, len(v.items))
		for _, item := range v.items {
			if item.kind != kindScalar {
				return nil, fmt.Errorf("%w: keywords must be strings", ErrInvalidShape)
			}
			out = append(out, item.scalar)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: expected a keyword list", ErrInvalidShape)
}

// Encode writes taxonomy in the given format, preserving category order.
func Encode(w io.Writer, taxonomy model.Taxonomy, format Format) error {
	root := toNode(taxonomy)
	switch format {
	case FormatYAML:
		return encodeYAML(w, root)
	default:
		return encodeJSON(w, root)
	}
}

func toNode(taxonomy model.Taxonomy) *node {
	root := &node{kind: kindMapping}
	keywords := func(kws []string) *node {
		list := &node{kind: kindList}
		for _, kw := range kws {
			list.items = append(list.items, &node{kind: kindScalar, scalar: kw})
		}
		return list
	}

	switch t := taxonomy.(type) {
	case model.FlatTaxonomy:
		for _, cat := range t {
			root.set(cat.Name, keywords(cat.Keywords))
		}
	case model.HierarchicalTaxonomy:
		for _, cat := range t {
			subs := &node{kind: kindMapping}
			for _, sub := range cat.Subcategories {
				subs.set(sub.Name, keywords(sub.Keywords))
			}
			root.set(cat.Name, subs)
		}
	}
	return root
}

func encodeJSON(w io.Writer, root *node) error {
	var buf bytes.Buffer
	if err := writeJSON(&buf, root, 0); err != nil {
		return err
	}
	buf.WriteByte('\n')
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write taxonomy: %w", err)
	}
	return nil
}

func writeJSON(buf *bytes.Buffer, n *node, depth int) error {
	indent := strings.Repeat("  ", depth+1)
	closing := strings.Repeat("  ", depth)

	switch n.kind {
	case kindMapping:
		if len(n.keys) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i, k := range n.keys {
			key, err := json.Marshal(k)
			if err != nil {
				return fmt.Errorf("failed to encode key %q: %w", k, err)
			}
			buf.WriteString(indent)
			buf.Write(key)
			buf.WriteString(": ")
			if err := writeJSON(buf, n.values[i], depth+1); err != nil {
				return err
			}
			if i < len(n.keys)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(closing + "}")
	case kindList:
		items := make([]string, 0, len(n.items))
		for _, item := range n.items {
			items = append(items, item.scalar)
		}
		data, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("failed to encode keywords: %w", err)
		}
		buf.Write(data)
	default:
		buf.WriteString("null")
	}
	return nil
}

func encodeYAML(w io.Writer, root *node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root.yamlNode()); err != nil {
		return fmt.Errorf("failed to encode taxonomy: %w", err)
	}
	return enc.Close()
}
