package schema

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

const (
	keyFieldTypes  = "__fieldTypes__"
	keyModelTypes  = "__modelTypes__"
	keyLabels      = "__labels__"
	keyInfo        = "__info__"
	keyGroups      = "__groups__"
	keyValidations = "__validations__"
)

// Decode parses a bundle from JSON (comments and trailing commas allowed) or
// YAML. Key order follows the document.
func Decode(raw []byte) (*Bundle, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrEmptyDocument
	}

	payload := trimmed
	if trimmed[0] == '{' || trimmed[0] == '[' {
		standard, err := standardizeJSON(trimmed)
		if err != nil {
			return nil, fmt.Errorf("schema: parse json: %w", err)
		}
		payload = standard
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse document: %w", err)
	}
	root := unwrap(&doc)
	if root == nil {
		return nil, ErrEmptyDocument
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrMalformed)
	}

	entries, err := decodeEntries(root, "")
	if err != nil {
		return nil, err
	}
	return &Bundle{entries: entries}, nil
}

// DecodeDocument decodes a loaded document and records its source.
func DecodeDocument(doc Document) (*Bundle, error) {
	bundle, err := Decode(doc.raw)
	if err != nil {
		if loc := doc.Location(); loc != "" {
			return nil, fmt.Errorf("schema: decode %s: %w", loc, err)
		}
		return nil, err
	}
	bundle.source = doc.Source()
	return bundle, nil
}

// MustDecode mirrors Decode but panics on error. Intended for tests and
// embedded fixtures.
func MustDecode(raw []byte) *Bundle {
	bundle, err := Decode(raw)
	if err != nil {
		panic(err)
	}
	return bundle
}

// standardizeJSON strips JWCC extensions and whitespace so the YAML parser
// never sees tab indentation.
func standardizeJSON(raw []byte) ([]byte, error) {
	value, err := hujson.Parse(raw)
	if err != nil {
		return nil, err
	}
	value.Standardize()
	value.Minimize()
	return value.Pack(), nil
}

func unwrap(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

func isDunder(key string) bool {
	return len(key) > 4 && strings.HasPrefix(key, "__") && strings.HasSuffix(key, "__")
}

func decodeEntries(mapping *yaml.Node, prefix string) (*Ordered[*Entry], error) {
	out := NewOrdered[*Entry]()
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		path := key
		if prefix != "" {
			path = prefix + "/" + key
		}
		entry, err := decodeEntry(unwrap(mapping.Content[i+1]), path)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			out.Set(key, entry)
		}
	}
	return out, nil
}

func decodeEntry(n *yaml.Node, path string) (*Entry, error) {
	if isNull(n) {
		return nil, nil
	}
	switch n.Kind {
	case yaml.SequenceNode:
		options, err := scalarList(n, path)
		if err != nil {
			return nil, err
		}
		return OptionsEntry(options...), nil
	case yaml.MappingNode:
		if hasDunderKey(n) {
			d, err := decodeDescriptor(n, path)
			if err != nil {
				return nil, err
			}
			return DescriptorEntry(d), nil
		}
		children, err := decodeEntries(n, path)
		if err != nil {
			return nil, err
		}
		return NamespaceEntry(children), nil
	default:
		return nil, fmt.Errorf("%w: %s: expected mapping or list, got scalar %q", ErrMalformed, path, n.Value)
	}
}

func hasDunderKey(n *yaml.Node) bool {
	for i := 0; i < len(n.Content); i += 2 {
		if isDunder(n.Content[i].Value) {
			return true
		}
	}
	return false
}

func decodeDescriptor(n *yaml.Node, path string) (*Descriptor, error) {
	d := &Descriptor{
		Name:        path,
		Labels:      map[string]string{},
		Info:        map[string]string{},
		Validations: map[string]Rules{},
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		value := unwrap(n.Content[i+1])
		if isNull(value) {
			continue
		}
		where := path + "." + key
		var err error
		switch key {
		case keyFieldTypes:
			d.FieldTypes = NewOrdered[TypeTag]()
			err = eachScalar(value, where, func(k, v string) { d.FieldTypes.Set(k, TypeTag(v)) })
		case keyModelTypes:
			d.ModelTypes = NewOrdered[Cardinality]()
			err = eachScalar(value, where, func(k, v string) {
				d.ModelTypes.Set(k, Cardinality(strings.TrimSpace(v)))
			})
		case keyLabels:
			err = eachScalar(value, where, func(k, v string) { d.Labels[k] = v })
		case keyInfo:
			err = eachScalar(value, where, func(k, v string) { d.Info[k] = v })
		case keyGroups:
			d.Groups, err = decodeGroups(value, where)
		case keyValidations:
			err = decodeValidations(value, where, d.Validations)
		}
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

func eachScalar(n *yaml.Node, where string, fn func(key, value string)) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: %s: expected mapping", ErrMalformed, where)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		value := unwrap(n.Content[i+1])
		if isNull(value) {
			fn(n.Content[i].Value, "")
			continue
		}
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: %s.%s: expected scalar", ErrMalformed, where, n.Content[i].Value)
		}
		fn(n.Content[i].Value, value.Value)
	}
	return nil
}

func scalarList(n *yaml.Node, where string) ([]string, error) {
	out := make([]string, 0, len(n.Content))
	for idx, item := range n.Content {
		item = unwrap(item)
		if item == nil || item.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: %s[%d]: expected scalar", ErrMalformed, where, idx)
		}
		out = append(out, item.Value)
	}
	return out, nil
}

func decodeGroups(n *yaml.Node, where string) ([]Group, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s: expected mapping", ErrMalformed, where)
	}
	groups := make([]Group, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		value := unwrap(n.Content[i+1])
		group := Group{Key: key}
		if !isNull(value) {
			if value.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("%w: %s.%s: expected list of field names", ErrMalformed, where, key)
			}
			fields, err := scalarList(value, where+"."+key)
			if err != nil {
				return nil, err
			}
			group.Fields = fields
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func decodeValidations(n *yaml.Node, where string, out map[string]Rules) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: %s: expected mapping", ErrMalformed, where)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		field := n.Content[i].Value
		value := unwrap(n.Content[i+1])
		if isNull(value) {
			continue
		}
		var rules Rules
		err := eachScalar(value, where+"."+field, func(k, v string) {
			rules = append(rules, Rule{Name: k, Value: v})
		})
		if err != nil {
			return err
		}
		out[field] = rules
	}
	return nil
}
