package render

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/autoform"
	"github.com/goliatone/go-autoform/pkg/controls"
	"github.com/goliatone/go-autoform/pkg/dom"
)

const (
	feedbackClass     = "invalid-feedback"
	formFeedbackClass = "form-errors"
)

// location is a field resolved inside a rendered tree.
type location struct {
	form  *autoform.Node
	field string
	// index selects one instance; -1 addresses all of them.
	index int
	path  []string
}

func (l location) String() string { return strings.Join(l.path, ".") }

// locate walks segments down the tree. Segments left over after a leaf field
// are ignored so "phone/number" still lands on phone.
func locate(form *autoform.Node, segments []string) (location, bool) {
	node := form
	var path []string
	for i := 0; i < len(segments); i++ {
		name := segments[i]
		if node.Descriptor() == nil || !slices.Contains(node.Descriptor().Universe(), name) {
			return location{}, false
		}
		index := -1
		if i+1 < len(segments) {
			if n, err := strconv.Atoi(segments[i+1]); err == nil && n >= 0 {
				index = n
				i++
			}
		}
		path = append(path, name)
		if index >= 0 {
			path = append(path, strconv.Itoa(index))
		}
		here := location{form: node, field: name, index: index, path: path}
		if i == len(segments)-1 {
			return here, true
		}
		next := nestedInstance(node, name, max(index, 0))
		if next == nil {
			return here, true
		}
		node = next
	}
	return location{}, false
}

// nestedInstance returns the index-th nested form hosted under name.
func nestedInstance(form *autoform.Node, name string, index int) *autoform.Node {
	hosts := dom.Scoped(form.Container(), dom.Tag(controls.HostTag)).
		All(dom.And(dom.Tag(controls.HostTag), dom.AttrEquals("name", name)))
	if index >= len(hosts) {
		return nil
	}
	for _, child := range form.Children() {
		if child.Host() == hosts[index] {
			return child
		}
	}
	return nil
}

// instanceControls returns the controls of the addressed instances. A nested
// model contributes its host element.
func (l location) instanceControls() []*html.Node {
	roots := dom.Scoped(l.form.Container(), dom.Tag(controls.HostTag)).All(dom.AttrEquals(controls.FieldAttr, l.field))
	if l.index >= 0 {
		if l.index >= len(roots) {
			return nil
		}
		roots = roots[l.index : l.index+1]
	}
	match := dom.And(
		dom.Tag("input", "select", "textarea", controls.FileTag, controls.HostTag),
		dom.AttrEquals("name", l.field),
	)
	var out []*html.Node
	for _, root := range roots {
		if match(root) {
			out = append(out, root)
		}
		out = append(out, dom.Scoped(root, dom.Tag(controls.HostTag)).All(match)...)
	}
	return out
}

// ApplyErrors marks the controls named by mapping as invalid and appends the
// messages after them. Form-level messages are listed at the top of the root
// form.
func ApplyErrors(form *autoform.Node, mapping ErrorMapping) {
	if form == nil {
		return
	}
	invalid := form.Chrome().Invalid
	formMessages := slices.Clone(mapping.Form)

	paths := make([]string, 0, len(mapping.Fields))
	for path := range mapping.Fields {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	for _, path := range paths {
		messages := mapping.Fields[path]
		loc, ok := locate(form, splitPath(path))
		var targets []*html.Node
		if ok {
			targets = loc.instanceControls()
		}
		if len(targets) == 0 {
			formMessages = append(formMessages, messages...)
			continue
		}
		for _, control := range targets {
			dom.AddClass(control, invalid)
			dom.SetAttr(control, "aria-invalid", "true")
		}
		dom.Insert(feedback(feedbackClass, messages), targets[len(targets)-1], dom.After)
	}

	if messages := cleanMessages(formMessages); len(messages) > 0 {
		dom.Insert(feedback(formFeedbackClass, messages), form.Container(), dom.Prepend)
	}
}

func feedback(class string, messages []string) *html.Node {
	div := dom.Element("div", "class", class, "role", "alert")
	dom.SetText(div, strings.Join(cleanMessages(messages), " "))
	return div
}
