package autoform

import (
	"maps"

	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/controls"
	"github.com/goliatone/go-autoform/pkg/dom"
	"github.com/goliatone/go-autoform/pkg/filecontrol"
)

// GetFormData scans the live tree and returns its JSON value. Repeated names
// collect into lists. Nested forms contribute their own value under the host
// name; a nested form that has not rendered yet contributes an empty object.
func (n *Node) GetFormData() map[string]any {
	acc := newAccumulator()
	q := n.scope()

	named := func(el *html.Node) bool { return dom.GetAttr(el, "name") != "" }
	for _, el := range q.All(dom.And(dom.Tag("input", "select", "textarea", controls.FileTag), named, inField)) {
		if dom.IsCheckable(el) {
			continue
		}
		name := dom.GetAttr(el, "name")
		if dom.IsElement(el, controls.FileTag) {
			acc.add(name, n.fileValue(el))
			continue
		}
		acc.add(name, dom.Value(el))
	}

	for _, group := range checkGroups(q.All(dom.And(dom.Tag("input"), named, dom.IsCheckable, inField))) {
		acc.add(dom.GetAttr(group[0], "name"), checkedValue(group))
	}

	for _, host := range q.All(dom.And(dom.Tag(controls.HostTag), named)) {
		var value map[string]any
		if child, ok := n.byHost[host]; ok && child.state == StateRendered {
			value = child.GetFormData()
		} else {
			value = map[string]any{}
		}
		acc.add(dom.GetAttr(host, "name"), value)
	}

	n.working = maps.Clone(acc.data)
	return acc.data
}

// inField reports whether el belongs to a field instance. Inputs added by
// callers outside the layout, such as submission tokens, are not data.
func inField(el *html.Node) bool {
	return dom.Closest(el, func(n *html.Node) bool { return dom.HasAttr(n, controls.FieldAttr) }) != nil
}

func (n *Node) fileValue(el *html.Node) any {
	return filecontrol.Read(n.rt.cfg.files.Control(el))
}

// accumulator stores the first value of a name as is and promotes it to a
// list on the second.
type accumulator struct {
	data     map[string]any
	promoted map[string]bool
}

func newAccumulator() *accumulator {
	return &accumulator{data: map[string]any{}, promoted: map[string]bool{}}
}

func (a *accumulator) add(name string, value any) {
	prev, ok := a.data[name]
	switch {
	case !ok:
		a.data[name] = value
	case a.promoted[name]:
		a.data[name] = append(prev.([]any), value)
	default:
		a.data[name] = []any{prev, value}
		a.promoted[name] = true
	}
}

// checkGroups splits checkable controls into groups sharing a name and a
// parent element, in document order. Each repeated instance forms its own
// group.
func checkGroups(els []*html.Node) [][]*html.Node {
	type key struct {
		parent *html.Node
		name   string
	}
	index := map[key]int{}
	var groups [][]*html.Node
	for _, el := range els {
		k := key{parent: el.Parent, name: dom.GetAttr(el, "name")}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], el)
	}
	return groups
}

// checkGroup returns the controls sharing el's name and parent.
func checkGroup(el *html.Node) []*html.Node {
	if el.Parent == nil {
		return []*html.Node{el}
	}
	name := dom.GetAttr(el, "name")
	var group []*html.Node
	for c := el.Parent.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsCheckable(c) && dom.GetAttr(c, "name") == name {
			group = append(group, c)
		}
	}
	return group
}

// checkedValue is "" when nothing is checked, the value when one control is
// and the list of values otherwise.
func checkedValue(group []*html.Node) any {
	var values []any
	for _, el := range group {
		if dom.Checked(el) {
			values = append(values, dom.GetAttr(el, "value"))
		}
	}
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return values
	}
}
