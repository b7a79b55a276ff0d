package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Visit tells Walk how to proceed after visiting a node.
type Visit int

const (
	// Continue descends into the node's children.
	Continue Visit = iota
	// Skip does not descend into the node's children.
	Skip
	// Stop ends the walk.
	Stop
)

// Matcher selects nodes during a query.
type Matcher func(*html.Node) bool

// Walk visits root and its descendants in document order.
func Walk(root *html.Node, fn func(*html.Node) Visit) {
	walk(root, fn)
}

func walk(n *html.Node, fn func(*html.Node) Visit) bool {
	if n == nil {
		return true
	}
	switch fn(n) {
	case Stop:
		return false
	case Skip:
		return true
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if !walk(c, fn) {
			return false
		}
		c = next
	}
	return true
}

// Query finds descendants of Root (Root excluded). Nodes matched by Boundary
// are still tested against the matcher but their subtree is never entered,
// which mirrors how a shadow root hides the content of a nested host.
type Query struct {
	Root     *html.Node
	Boundary Matcher
}

// In returns an unbounded query rooted at root.
func In(root *html.Node) Query {
	return Query{Root: root}
}

// Scoped returns a query that does not enter nodes matched by boundary.
func Scoped(root *html.Node, boundary Matcher) Query {
	return Query{Root: root, Boundary: boundary}
}

// All returns every matching descendant in document order.
func (q Query) All(match Matcher) []*html.Node {
	var out []*html.Node
	q.each(func(n *html.Node) bool {
		if match == nil || match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// First returns the first matching descendant or nil.
func (q Query) First(match Matcher) *html.Node {
	var found *html.Node
	q.each(func(n *html.Node) bool {
		if match == nil || match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// ByID returns the first element whose id equals id.
func (q Query) ByID(id string) *html.Node {
	return q.First(ID(id))
}

func (q Query) each(fn func(*html.Node) bool) {
	if q.Root == nil {
		return
	}
	Walk(q.Root, func(n *html.Node) Visit {
		if n == q.Root {
			return Continue
		}
		if !fn(n) {
			return Stop
		}
		if q.Boundary != nil && q.Boundary(n) {
			return Skip
		}
		return Continue
	})
}

// Tag matches elements by tag name.
func Tag(tags ...string) Matcher {
	return func(n *html.Node) bool {
		return IsElement(n, tags...)
	}
}

// ID matches elements by exact id.
func ID(id string) Matcher {
	return AttrEquals("id", id)
}

// AttrEquals matches elements whose attribute equals value.
func AttrEquals(key, value string) Matcher {
	return func(n *html.Node) bool {
		if !IsElement(n) {
			return false
		}
		v, ok := Attr(n, key)
		return ok && v == value
	}
}

// AttrPrefix matches elements whose attribute starts with prefix.
func AttrPrefix(key, prefix string) Matcher {
	return func(n *html.Node) bool {
		if !IsElement(n) {
			return false
		}
		v, ok := Attr(n, key)
		return ok && strings.HasPrefix(v, prefix)
	}
}

// And matches when every matcher does.
func And(matchers ...Matcher) Matcher {
	return func(n *html.Node) bool {
		for _, m := range matchers {
			if !m(n) {
				return false
			}
		}
		return true
	}
}

// Not negates a matcher.
func Not(m Matcher) Matcher {
	return func(n *html.Node) bool {
		return !m(n)
	}
}

// Closest walks up from n (inclusive) and returns the first ancestor matched.
func Closest(n *html.Node, match Matcher) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if match(cur) {
			return cur
		}
	}
	return nil
}

// Contains reports whether n is root or one of its descendants.
func Contains(root, n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == root {
			return true
		}
	}
	return false
}
