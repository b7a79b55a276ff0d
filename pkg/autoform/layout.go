package autoform

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/controls"
	"github.com/goliatone/go-autoform/pkg/dom"
	"github.com/goliatone/go-autoform/pkg/schema"
)

// layout empties the container, emits one fieldset per group and places
// every field of the universe into its container.
func (n *Node) layout() error {
	dom.Empty(n.container)
	clear(n.addButtons)
	clear(n.issued)

	d := n.descriptor
	for _, group := range d.Groups {
		legend := dom.Element("legend")
		if group.Anonymous() {
			dom.SetAttr(legend, "hidden", "")
		}
		dom.SetText(legend, d.GroupLabel(group.Key))
		fieldset := dom.Element("fieldset", "id", group.ElementID(), "name", group.ElementID())
		fieldset.AppendChild(legend)
		dom.Insert(fieldset, n.container, dom.Inside)
	}

	for _, name := range d.Universe() {
		tag, card, skip, err := n.resolveField(name)
		if err != nil {
			return err
		}
		if skip {
			n.logger().Debug("skipping field without type or cardinality",
				zap.String("model", n.model),
				zap.String("field", name),
			)
			continue
		}
		if err := n.placeField(name, tag, card); err != nil {
			return err
		}
	}
	return nil
}

// resolveField applies the cardinality rules: a field with neither type nor
// cardinality is skipped, a typed field without cardinality is fatal and a
// field with cardinality but no type renders as text.
func (n *Node) resolveField(name string) (schema.TypeTag, schema.Cardinality, bool, error) {
	d := n.descriptor
	tag, hasType := d.Type(name)
	card, hasCard := d.Cardinality(name)
	switch {
	case !hasCard && !hasType:
		return "", "", true, nil
	case !hasCard:
		return "", "", false, fmt.Errorf("autoform: model %q field %q: %w", n.model, name, ErrMissingCardinality)
	case !card.Valid():
		return "", "", false, fmt.Errorf("autoform: model %q field %q cardinality %q: %w", n.model, name, card, ErrUnknownCardinality)
	case !hasType:
		tag = schema.TypeTag(schema.KindText)
	}
	return tag, card, false, nil
}

// fieldContainer returns the fieldset of the last group claiming name, or
// the form itself.
func (n *Node) fieldContainer(name string) *html.Node {
	if group, ok := n.descriptor.GroupOf(name); ok {
		if fieldset := n.scope().ByID(group.ElementID()); fieldset != nil {
			return fieldset
		}
	}
	return n.container
}

// placeField inserts the first instance of a field during layout.
func (n *Node) placeField(name string, tag schema.TypeTag, card schema.Cardinality) error {
	container := n.fieldContainer(name)
	switch card {
	case schema.Single:
		field, err := n.buildField(name, tag)
		if err != nil {
			return err
		}
		dom.Insert(field.Root, container, dom.Inside)
		n.wire(field)
	case schema.Multiple:
		wrapper := dom.Element("div", "id", n.newID(controls.MultiplePrefix, name))
		dom.Insert(wrapper, container, dom.Inside)
		field, err := n.buildField(name, tag)
		if err != nil {
			return err
		}
		dom.Insert(field.Root, wrapper, dom.Inside)
		n.wire(field)
		if field.Kind != schema.KindHidden && n.addButtons[name] == 0 {
			n.addButton(name, wrapper)
		}
	default:
		return fmt.Errorf("autoform: model %q field %q cardinality %q: %w", n.model, name, card, ErrUnknownCardinality)
	}
	return nil
}

// addInstance appends one more instance of a field: into its repeatable
// container for multiple fields, into its resolved container otherwise.
func (n *Node) addInstance(name string) error {
	if n.state != StateRendered {
		return fmt.Errorf("autoform: add %q to %q: %w", name, n.id, ErrNotRendered)
	}
	tag, card, skip, err := n.resolveField(name)
	if err != nil {
		return err
	}
	if skip {
		return fmt.Errorf("autoform: add %q to model %q: %w", name, n.model, ErrUnknownNode)
	}
	if card == schema.Single {
		return n.placeField(name, tag, card)
	}

	wrapper := n.scope().First(dom.And(dom.Tag("div"), idStem(controls.MultiplePrefix+"-"+name+"-")))
	if wrapper == nil {
		return n.placeField(name, tag, card)
	}
	field, err := n.buildField(name, tag)
	if err != nil {
		return err
	}
	dom.Insert(field.Root, wrapper, dom.Last)
	n.wire(field)
	return nil
}

func (n *Node) buildField(name string, tag schema.TypeTag) (controls.Field, error) {
	field, err := n.rt.cfg.controls.Build(controls.Context{
		Bundle:      n.rt.bundle,
		Descriptor:  n.descriptor,
		Field:       name,
		Tag:         tag,
		ContainerID: n.id,
		Level:       n.level,
		Chrome:      n.rt.cfg.chrome,
		Logger:      n.logger(),
		NewID:       n.newID,
	})
	if err != nil {
		return controls.Field{}, fmt.Errorf("autoform: model %q: %w", n.model, err)
	}
	dom.SetAttr(field.Root, controls.FieldAttr, name)
	return field, nil
}

func (n *Node) addButton(name string, wrapper *html.Node) {
	chrome := n.rt.cfg.chrome
	btn := dom.Element("button",
		"id", controls.AddPrefix+"-"+name,
		"name", "addButton",
		"title", "Add new "+name,
		"class", chrome.Button,
		"tabindex", "0",
		"type", "button",
	)
	dom.SetText(btn, chrome.AddText)
	dom.Insert(btn, wrapper, dom.After)
	n.addButtons[name]++
	n.rt.events.On(btn, controls.EventClick, func(dom.Event) error {
		return n.addInstance(name)
	})
}

// wire binds the field's listeners and spawns the nested form of model
// fields.
func (n *Node) wire(field controls.Field) {
	for _, binding := range field.Bindings {
		n.rt.events.On(binding.Control, binding.Event, func(ev dom.Event) error {
			n.onFieldEvent(ev.Target)
			return nil
		})
	}
	if field.Host != nil {
		n.spawn(field)
	}
}

func (n *Node) onFieldEvent(target *html.Node) {
	name := dom.GetAttr(target, "name")
	switch {
	case dom.IsCheckable(target):
		n.working[name] = checkedValue(checkGroup(target))
	case dom.IsElement(target, controls.FileTag):
		n.working[name] = n.fileValue(target)
	default:
		n.working[name] = dom.Value(target)
	}
	n.rt.bus.Publish(FieldUpdated{NodeID: n.id, Types: n.descriptor.FieldTypes, Target: target})
}

// spawn creates the nested node for a model field. The child receives the
// bundle when its readiness notification reaches the one-shot listener
// registered here.
func (n *Node) spawn(field controls.Field) {
	child := n.rt.newNode(n, field.Host, field.Model, n.level+1)
	n.children = append(n.children, child)
	n.byHost[field.Host] = child
	n.rt.pending[child.id] = struct{}{}

	child.readySub = Once(n.rt.bus, func(e ComponentReady) bool { return e.ID == child.id }, func(ComponentReady) {
		delete(n.rt.pending, child.id)
		if err := child.setSchema(n.rt.bundle); err != nil {
			child.err = err
			n.logger().Warn("nested form failed to render",
				zap.String("id", child.id),
				zap.String("model", child.model),
				zap.Error(err),
			)
			n.rt.bus.Publish(NodeFailed{ID: child.id, Err: err})
		}
	})
	child.connect()
}

// instances returns the roots of every instance of name in document order.
func (n *Node) instances(name string) []*html.Node {
	return n.scope().All(dom.AttrEquals(controls.FieldAttr, name))
}

// childNamed returns the first nested node whose host is named name.
func (n *Node) childNamed(name string) *Node {
	for _, host := range n.scope().All(dom.And(dom.Tag(controls.HostTag), dom.AttrEquals("name", name))) {
		if child, ok := n.byHost[host]; ok {
			return child
		}
	}
	return nil
}
