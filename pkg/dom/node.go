// Package dom holds the small set of golang.org/x/net/html helpers the form
// engine needs to treat a parsed node tree as a live document: element
// construction, attribute and class access, scoped queries, insertion
// positions, form control values and event listeners.
package dom

import (
	"bytes"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element creates a detached element. attrs are key/value pairs; a trailing
// key without a value is set to the empty string.
func Element(tag string, attrs ...string) *html.Node {
	tag = strings.ToLower(strings.TrimSpace(tag))
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i < len(attrs); i += 2 {
		value := ""
		if i+1 < len(attrs) {
			value = attrs[i+1]
		}
		SetAttr(n, attrs[i], value)
	}
	return n
}

// Text creates a detached text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// IsElement reports whether n is an element and, when tags are supplied,
// whether its tag is one of them.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, tag := range tags {
		if n.Data == tag {
			return true
		}
	}
	return false
}

// Attr returns the attribute value and whether it was present.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// GetAttr returns the attribute value or the empty string.
func GetAttr(n *html.Node, key string) string {
	v, _ := Attr(n, key)
	return v
}

// HasAttr reports whether the attribute is present.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, key, value string) {
	if n == nil || key == "" {
		return
	}
	key = strings.ToLower(key)
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	if n == nil {
		return
	}
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// Classes returns the class list in declaration order.
func Classes(n *html.Node) []string {
	return strings.Fields(GetAttr(n, "class"))
}

// HasClass reports whether class is in the class list.
func HasClass(n *html.Node, class string) bool {
	return slices.Contains(Classes(n), class)
}

// AddClass appends classes that are not present yet. Values may contain
// several space separated class names.
func AddClass(n *html.Node, classes ...string) {
	current := Classes(n)
	changed := false
	for _, value := range classes {
		for _, class := range strings.Fields(value) {
			if !slices.Contains(current, class) {
				current = append(current, class)
				changed = true
			}
		}
	}
	if changed {
		SetAttr(n, "class", strings.Join(current, " "))
	}
}

// Append appends children to parent and returns parent.
func Append(parent *html.Node, children ...*html.Node) *html.Node {
	for _, child := range children {
		if child == nil {
			continue
		}
		if child.Parent != nil {
			child.Parent.RemoveChild(child)
		}
		parent.AppendChild(child)
	}
	return parent
}

// TextContent concatenates every descendant text node.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(TextContent(c))
	}
	return b.String()
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, s string) {
	Empty(n)
	if s != "" {
		n.AppendChild(Text(s))
	}
}

// Render serialises n (including n itself) to HTML.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// MustRender mirrors Render but panics on error. Intended for tests.
func MustRender(n *html.Node) string {
	out, err := Render(n)
	if err != nil {
		panic(err)
	}
	return out
}

// RemoveClass drops classes from the class list, removing the attribute when
// it ends up empty.
func RemoveClass(n *html.Node, classes ...string) {
	var keep []string
	for _, c := range Classes(n) {
		if !slices.Contains(classes, c) {
			keep = append(keep, c)
		}
	}
	if len(keep) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(keep, " "))
}
