package openapi

import (
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// keyOrder answers the document order of mapping keys. kin-openapi decodes
// properties into Go maps, so the order is read from the raw document.
type keyOrder struct {
	root *yaml.Node
}

func newKeyOrder(raw []byte) keyOrder {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil || len(doc.Content) == 0 {
		return keyOrder{}
	}
	return keyOrder{root: doc.Content[0]}
}

// keys orders present by the mapping at path. Names the document does not
// list follow, sorted.
func (o keyOrder) keys(path []string, present []string) []string {
	var out []string
	if node := o.lookup(path); node != nil && node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			if key := node.Content[i].Value; slices.Contains(present, key) && !slices.Contains(out, key) {
				out = append(out, key)
			}
		}
	}
	var rest []string
	for _, key := range present {
		if !slices.Contains(out, key) {
			rest = append(rest, key)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

func (o keyOrder) lookup(path []string) *yaml.Node {
	node := o.root
	for _, segment := range path {
		if node != nil && node.Kind == yaml.SequenceNode {
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node.Content) {
				return nil
			}
			node = node.Content[idx]
			continue
		}
		if node == nil || node.Kind != yaml.MappingNode {
			return nil
		}
		var next *yaml.Node
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == segment {
				next = node.Content[i+1]
				break
			}
		}
		node = next
	}
	return node
}
