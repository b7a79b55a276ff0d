package autoform

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/controls"
	"github.com/goliatone/go-autoform/pkg/dom"
)

// AddNewElement appends one more instance of the field called name.
func (n *Node) AddNewElement(name string) error {
	err := n.addInstance(name)
	n.rt.queue.drain()
	return err
}

// RemoveElement removes the instance at index of a repeated field. The last
// remaining instance is never removed.
func (n *Node) RemoveElement(name string, index int) error {
	instances := n.instances(name)
	if index < 0 || index >= len(instances) {
		return fmt.Errorf("autoform: remove %q[%d] from %q: %w", name, index, n.id, ErrUnknownNode)
	}
	if len(instances) == 1 {
		return fmt.Errorf("autoform: remove %q from %q: %w", name, n.id, ErrLastInstance)
	}
	n.removeInstance(instances[index])
	n.rt.queue.drain()
	return nil
}

func (n *Node) removeInstance(root *html.Node) {
	hosts := dom.In(root).All(dom.Tag(controls.HostTag))
	for _, host := range hosts {
		if child, ok := n.byHost[host]; ok {
			n.dropChild(child)
		}
	}
	n.rt.forget(root)
	dom.Remove(root)
}

// Dispatch delivers event to the listeners bound on target, as a user
// interaction would.
func (n *Node) Dispatch(target *html.Node, event string) error {
	_, err := n.rt.events.Dispatch(target, event)
	n.rt.queue.drain()
	return err
}

// SetValue types value into control and fires its bound events.
func (n *Node) SetValue(control *html.Node, value string) error {
	switch {
	case dom.IsElement(control, controls.FileTag):
		n.rt.cfg.files.Control(control).SetValue(value)
	case dom.IsCheckable(control):
		return fmt.Errorf("autoform: set value on %s control %q: use SetChecked", dom.InputType(control), dom.GetAttr(control, "name"))
	default:
		if !dom.SetValue(control, value) {
			return fmt.Errorf("autoform: %q has no option %q", dom.GetAttr(control, "name"), value)
		}
	}
	return n.fireBound(control)
}

// SetChecked toggles a radio or checkbox and fires its bound events.
func (n *Node) SetChecked(control *html.Node, checked bool) error {
	if !dom.IsCheckable(control) {
		return fmt.Errorf("autoform: %q is not checkable", dom.GetAttr(control, "name"))
	}
	dom.SetChecked(control.Parent, control, checked)
	return n.fireBound(control)
}

func (n *Node) fireBound(control *html.Node) error {
	for _, event := range []string{controls.EventChange, controls.EventBlur} {
		if !n.rt.events.Has(control, event) {
			continue
		}
		if _, err := n.rt.events.Dispatch(control, event); err != nil {
			n.rt.queue.drain()
			return err
		}
	}
	n.rt.queue.drain()
	return nil
}
