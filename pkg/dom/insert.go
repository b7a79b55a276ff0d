package dom

import "golang.org/x/net/html"

// Position selects where Insert places a node relative to its target.
type Position string

const (
	// Inside appends the node as the target's last child. It is the default.
	Inside Position = "inside"
	// Prepend inserts the node as the target's first child.
	Prepend Position = "before"
	// After inserts the node as the target's next sibling.
	After Position = "after"
	// Last appends the node as the target's last child.
	Last Position = "last"
)

// Insert attaches node relative to target. An unknown position behaves like
// Inside. After requires target to have a parent; a detached target falls
// back to Inside.
func Insert(node, target *html.Node, pos Position) {
	if node == nil || target == nil {
		return
	}
	if node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
	switch pos {
	case Prepend:
		if target.FirstChild != nil {
			target.InsertBefore(node, target.FirstChild)
			return
		}
		target.AppendChild(node)
	case After:
		if target.Parent == nil {
			target.AppendChild(node)
			return
		}
		target.Parent.InsertBefore(node, target.NextSibling)
	default:
		target.AppendChild(node)
	}
}

// InsertBefore places node immediately before ref, which must be attached.
func InsertBefore(node, ref *html.Node) {
	if node == nil || ref == nil || ref.Parent == nil {
		return
	}
	if node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
	ref.Parent.InsertBefore(node, ref)
}

// Remove detaches n from its parent.
func Remove(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Empty removes every child of n.
func Empty(n *html.Node) {
	if n == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}
