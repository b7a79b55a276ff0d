package autoform

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/controls"
	"github.com/goliatone/go-autoform/pkg/dom"
	"github.com/goliatone/go-autoform/pkg/filecontrol"
	"github.com/goliatone/go-autoform/pkg/schema"
)

var errListWithoutName = errors.New("autoform: list value needs a field name")

// filler collects fill errors. Errors raised after the call returned, by a
// nested form that became ready late, are published as NodeFailed.
type filler struct {
	rt     *runtime
	errs   []error
	closed bool
}

func (f *filler) fail(node *Node, err error) {
	if f.closed {
		f.rt.bus.Publish(NodeFailed{ID: node.id, Err: err})
		return
	}
	f.errs = append(f.errs, err)
}

func (f *filler) close() error {
	f.closed = true
	return errors.Join(f.errs...)
}

// FillDataValues pushes value into the form. An object fills the nested form
// called name when there is one, otherwise each key of target. A list makes
// the number of instances of name match its length and fills them in order.
// A scalar fills the first control called name. target defaults to n.
func (n *Node) FillDataValues(name string, value any, target *Node) error {
	if target == nil {
		target = n
	}
	f := &filler{rt: n.rt}
	target.fill(name, value, f)
	n.rt.queue.drain()
	return f.close()
}

// Fill routes value to the node with id anywhere in the tree.
func (n *Node) Fill(id string, value any) error {
	target, ok := n.rt.nodes[id]
	if !ok {
		return fmt.Errorf("autoform: fill %q: %w", id, ErrUnknownNode)
	}
	return n.FillDataValues("", value, target)
}

func (n *Node) fill(name string, value any, f *filler) {
	if n.singleFile(name) {
		n.fillScalar(name, value, f)
		return
	}
	if obj, ok := asObject(value); ok {
		if name != "" {
			if child := n.childNamed(name); child != nil {
				child.whenRendered(func() { child.fillObject(obj, f) })
				return
			}
		}
		n.fillObject(obj, f)
		return
	}
	if list, ok := asList(value); ok {
		if name == "" {
			f.fail(n, errListWithoutName)
			return
		}
		n.fillList(name, list, f)
		return
	}
	if name == "" {
		f.fail(n, fmt.Errorf("autoform: fill scalar %v: %w", value, errListWithoutName))
		return
	}
	n.fillScalar(name, value, f)
}

func (n *Node) fillObject(obj map[string]any, f *filler) {
	keys := lo.Keys(obj)
	slices.Sort(keys)
	for _, key := range keys {
		n.fill(key, obj[key], f)
	}
}

func (n *Node) fillList(name string, list []any, f *filler) {
	if n.descriptor == nil {
		f.fail(n, fmt.Errorf("autoform: fill %q on %q: %w", name, n.id, ErrNotRendered))
		return
	}
	card, _ := n.descriptor.Cardinality(name)
	tag, _ := n.descriptor.Type(name)

	if card != schema.Multiple {
		if tag.Kind() == schema.KindCheckbox {
			n.checkListed(name, list)
			return
		}
		n.logger().Debug("list value for single field, using first element",
			zap.String("model", n.model),
			zap.String("field", name),
		)
		var first any
		if len(list) > 0 {
			first = list[0]
		}
		n.fill(name, first, f)
		return
	}

	instances := n.instances(name)
	if len(instances) == 0 {
		n.logger().Debug("unknown fill key", zap.String("model", n.model), zap.String("field", name))
		return
	}
	for len(instances) < len(list) {
		if err := n.addInstance(name); err != nil {
			f.fail(n, err)
			return
		}
		instances = n.instances(name)
	}
	for len(instances) > max(len(list), 1) {
		last := instances[len(instances)-1]
		n.removeInstance(last)
		instances = instances[:len(instances)-1]
	}
	if len(list) == 0 {
		n.fillInstance(instances[0], name, nil, f)
		return
	}
	for i, item := range list {
		n.fillInstance(instances[i], name, item, f)
	}
}

// fillInstance fills one repeated instance rooted at root.
func (n *Node) fillInstance(root *html.Node, name string, item any, f *filler) {
	if dom.IsElement(root, "fieldset") {
		host := dom.In(root).First(dom.Tag(controls.HostTag))
		child, ok := n.byHost[host]
		if !ok {
			f.fail(n, fmt.Errorf("autoform: fill %q: nested form missing: %w", name, ErrUnknownNode))
			return
		}
		obj, isObj := asObject(item)
		if item != nil && !isObj {
			f.fail(n, fmt.Errorf("autoform: fill %q: want object, got %T", name, item))
			return
		}
		child.whenRendered(func() { child.fillObject(obj, f) })
		return
	}
	ctls := n.controlsNamed(name, root)
	if len(ctls) == 0 {
		return
	}
	n.fillControls(ctls, item, f)
}

func (n *Node) fillScalar(name string, value any, f *filler) {
	instances := n.instances(name)
	if len(instances) == 0 {
		n.logger().Debug("unknown fill key", zap.String("model", n.model), zap.String("field", name))
		return
	}
	ctls := n.controlsNamed(name, instances[0])
	if len(ctls) == 0 {
		n.logger().Debug("field has no value controls", zap.String("model", n.model), zap.String("field", name))
		return
	}
	n.fillControls(ctls, value, f)
}

// controlsNamed returns the value-bearing controls called name inside root,
// root included.
func (n *Node) controlsNamed(name string, root *html.Node) []*html.Node {
	match := dom.And(dom.Tag("input", "select", "textarea", controls.FileTag), dom.AttrEquals("name", name))
	var out []*html.Node
	if match(root) {
		out = append(out, root)
	}
	q := dom.Scoped(root, dom.Tag(controls.HostTag))
	return append(out, q.All(match)...)
}

func (n *Node) fillControls(ctls []*html.Node, value any, f *filler) {
	first := ctls[0]
	switch {
	case dom.IsElement(first, controls.FileTag):
		if err := filecontrol.Apply(n.rt.cfg.files.Control(first), value); err != nil {
			f.fail(n, fmt.Errorf("autoform: fill file %q: %w", dom.GetAttr(first, "name"), err))
		}
	case dom.IsCheckable(first):
		group := checkGroup(first)
		if list, ok := asList(value); ok {
			setChecked(group, lo.Map(list, func(v any, _ int) string { return scalarString(v) }))
			return
		}
		if b, ok := value.(bool); ok && !hasOption(group, strconv.FormatBool(b)) {
			if b {
				dom.SetChecked(first.Parent, first, true)
			} else {
				setChecked(group, nil)
			}
			return
		}
		setChecked(group, []string{scalarString(value)})
	default:
		s := scalarString(value)
		if !dom.SetValue(first, s) {
			n.logger().Debug("no option matches fill value",
				zap.String("model", n.model),
				zap.String("field", dom.GetAttr(first, "name")),
				zap.String("value", s),
			)
		}
	}
}

func (n *Node) checkListed(name string, list []any) {
	instances := n.instances(name)
	if len(instances) == 0 {
		return
	}
	ctls := n.controlsNamed(name, instances[0])
	if len(ctls) == 0 {
		return
	}
	setChecked(checkGroup(ctls[0]), lo.Map(list, func(v any, _ int) string { return scalarString(v) }))
}

func setChecked(group []*html.Node, values []string) {
	for _, el := range group {
		dom.SetChecked(el.Parent, el, slices.Contains(values, dom.GetAttr(el, "value")))
	}
}

func hasOption(group []*html.Node, value string) bool {
	return slices.ContainsFunc(group, func(el *html.Node) bool { return dom.GetAttr(el, "value") == value })
}

// ApplyValues fills the form from submitted form values. Dotted keys address
// nested forms by host name. Keys with several values fill repeated
// instances.
func (n *Node) ApplyValues(values url.Values) error {
	f := &filler{rt: n.rt}
	n.applyValues(values, f)
	n.rt.queue.drain()
	return f.close()
}

func (n *Node) applyValues(values url.Values, f *filler) {
	nested := map[string]url.Values{}
	keys := lo.Keys(values)
	slices.Sort(keys)
	for _, key := range keys {
		if head, rest, ok := strings.Cut(key, "."); ok {
			if nested[head] == nil {
				nested[head] = url.Values{}
			}
			nested[head][rest] = values[key]
			continue
		}
		vals := values[key]
		if len(vals) == 1 && !n.repeated(key) {
			n.fill(key, vals[0], f)
			continue
		}
		n.fill(key, lo.Map(vals, func(v string, _ int) any { return v }), f)
	}

	heads := lo.Keys(nested)
	slices.Sort(heads)
	for _, head := range heads {
		child := n.childNamed(head)
		if child == nil {
			n.logger().Debug("unknown nested form in submitted values", zap.String("model", n.model), zap.String("field", head))
			continue
		}
		sub := nested[head]
		child.whenRendered(func() { child.applyValues(sub, f) })
	}
}

// singleFile reports whether name is a single file field, whose payload may
// arrive as a byte list or an index-keyed object.
func (n *Node) singleFile(name string) bool {
	if name == "" || n.descriptor == nil {
		return false
	}
	tag, _ := n.descriptor.Type(name)
	return tag.Kind() == schema.KindFile && !n.repeated(name)
}

func (n *Node) repeated(name string) bool {
	if n.descriptor == nil {
		return false
	}
	card, _ := n.descriptor.Cardinality(name)
	return card == schema.Multiple
}

func asObject(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

// asList accepts any slice except byte slices, which are file payloads.
func asList(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil, []byte, filecontrol.Payload:
		return nil, false
	case []any:
		return v, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}
