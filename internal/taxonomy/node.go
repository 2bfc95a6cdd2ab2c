package taxonomy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type nodeKind int

const (
	kindNull nodeKind = iota
	kindScalar
	kindList
	kindMapping
)

// node is an order-preserving document tree shared by the JSON and YAML readers.
type node struct {
	scalar string
	keys   []string
	values []*node
	items  []*node
	kind   nodeKind
}

// set adds key to a mapping node. A repeated key keeps its first position and takes
// the later value.
func (n *node) set(key string, v *node) {
	for i, k := range n.keys {
		if k == key {
			n.values[i] = v
			return
		}
	}
	n.keys = append(n.keys, key)
	n.values = append(n.values, v)
}

func (n *node) yamlNode() *yaml.Node {
	switch n.kind {
	case kindMapping:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for i, k := range n.keys {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				n.values[i].yamlNode())
		}
		return out
	case kindList:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, item := range n.items {
			out.Content = append(out.Content, item.yamlNode())
		}
		return out
	case kindScalar:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.scalar}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

func decodeYAML(r io.Reader) (*node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse taxonomy YAML: %w", err)
	}
	return fromYAML(&doc)
}

func fromYAML(y *yaml.Node) (*node, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return nil, nil
		}
		return fromYAML(y.Content[0])
	case yaml.AliasNode:
		return fromYAML(y.Alias)
	case yaml.MappingNode:
		out := &node{kind: kindMapping}
		for i := 0; i+1 < len(y.Content); i += 2 {
			v, err := fromYAML(y.Content[i+1])
			if err != nil {
				return nil, err
			}
			out.set(y.Content[i].Value, v)
		}
		return out, nil
	case yaml.SequenceNode:
		out := &node{kind: kindList}
		for _, c := range y.Content {
			v, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			out.items = append(out.items, v)
		}
		return out, nil
	case yaml.ScalarNode:
		if y.Tag == "!!null" {
			return &node{kind: kindNull}, nil
		}
		return &node{kind: kindScalar, scalar: y.Value}, nil
	}
	return nil, fmt.Errorf("unsupported YAML node kind %d", y.Kind)
}

func decodeJSON(r io.Reader) (*node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	n, err := readJSON(dec)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy JSON: %w", err)
	}
	return n, nil
}

func readJSON(dec *json.Decoder) (*node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			out := &node{kind: kindMapping}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, unexpectedEOF(err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				v, err := readJSON(dec)
				if err != nil {
					return nil, unexpectedEOF(err)
				}
				out.set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, unexpectedEOF(err)
			}
			return out, nil
		case '[':
			out := &node{kind: kindList}
			for dec.More() {
				v, err := readJSON(dec)
				if err != nil {
					return nil, unexpectedEOF(err)
				}
				out.items = append(out.items, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, unexpectedEOF(err)
			}
			return out, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return &node{kind: kindScalar, scalar: t}, nil
	case json.Number:
		return &node{kind: kindScalar, scalar: t.String()}, nil
	case bool:
		return &node{kind: kindScalar, scalar: fmt.Sprintf("%t", t)}, nil
	case nil:
		return &node{kind: kindNull}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// unexpectedEOF turns io.EOF inside a document into io.ErrUnexpectedEOF so that only
// an empty input decodes to an empty taxonomy.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
