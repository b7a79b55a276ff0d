package autoform

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/controls"
	"github.com/goliatone/go-autoform/pkg/dom"
	"github.com/goliatone/go-autoform/pkg/filecontrol"
	"github.com/goliatone/go-autoform/pkg/schema"
	"github.com/goliatone/go-autoform/pkg/validation"
)

// State is the lifecycle stage of a node.
type State int

const (
	// StateUnbound nodes have no schema.
	StateUnbound State = iota
	// StateBound nodes resolved their descriptor but have no markup.
	StateBound
	// StateRendered nodes laid out their fields and carry a validator.
	StateRendered
)

func (s State) String() string {
	switch s {
	case StateBound:
		return "bound"
	case StateRendered:
		return "rendered"
	default:
		return "unbound"
	}
}

// Node is one form bound to one model at one nesting level.
type Node struct {
	rt     *runtime
	parent *Node

	id       string
	name     string
	model    string
	level    int
	autoSave bool

	host      *html.Node
	container *html.Node

	state      State
	descriptor *schema.Descriptor
	working    map[string]any
	validator  validation.Validator
	theme      *theme.Selection
	err        error

	children   []*Node
	byHost     map[*html.Node]*Node
	addButtons map[string]int
	issued     map[string]int

	readySub Subscription
	waiters  []Subscription
}

// New creates a root node and its host element. The node renders once
// SetSchema is called.
func New(opts ...Option) *Node {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.id == "" {
		cfg.id = controls.HostTag + "-" + uuid.NewString()
	}

	sel, themeErr := cfg.resolveTheme()
	if themeErr != nil {
		cfg.logger.Warn("theme selection failed, using default chrome",
			zap.String("theme", cfg.themeName),
			zap.String("variant", cfg.themeVariant),
			zap.Error(themeErr),
		)
	}
	if cfg.controls == nil {
		cfg.controls = controls.Default()
	}
	if cfg.files == nil {
		cfg.files = filecontrol.NewStore()
	}
	if cfg.validator == nil {
		cfg.validator = validation.NewFactory(validation.WithInvalidClass(cfg.chrome.Invalid))
	}

	rt := newRuntime(cfg)
	host := dom.Element(controls.HostTag,
		"name", cfg.name,
		"model-name", cfg.model,
		"id", cfg.id,
		"level", strconv.Itoa(cfg.level),
	)
	n := rt.newNode(nil, host, cfg.model, cfg.level)
	n.autoSave = cfg.autoSave
	n.theme = sel
	return n
}

// newNode wires a node onto its host and registers it with the runtime.
func (rt *runtime) newNode(parent *Node, host *html.Node, model string, level int) *Node {
	n := &Node{
		rt:         rt,
		parent:     parent,
		id:         dom.GetAttr(host, "id"),
		name:       dom.GetAttr(host, "name"),
		model:      model,
		level:      level,
		host:       host,
		working:    map[string]any{},
		byHost:     make(map[*html.Node]*Node),
		addButtons: make(map[string]int),
		issued:     make(map[string]int),
	}
	if parent != nil {
		n.autoSave = parent.autoSave
		n.theme = parent.theme
	}
	n.attachShadow()
	rt.nodes[n.id] = n
	return n
}

func (n *Node) attachShadow() {
	shadow := dom.Element("template", "shadowrootmode", "open")
	n.container = dom.Element("form",
		"id", "form-"+n.id,
		"class", n.rt.cfg.chrome.Form,
		"data-validate", "true",
		"data-checkrealtime", "true",
	)
	shadow.AppendChild(n.container)
	n.host.AppendChild(shadow)
}

// Connect schedules the readiness notification and settles the queue.
func (n *Node) Connect() {
	n.connect()
	n.rt.queue.drain()
}

func (n *Node) connect() {
	n.rt.queue.push(func() {
		n.rt.elements.WhenDefined(controls.FileTag, func() {
			n.rt.bus.Publish(ComponentReady{ID: n.id, Component: ComponentName, Node: n})
			// No-op when already draining; settles late definitions.
			n.rt.queue.drain()
		})
	})
}

// SetSchema binds the node's model in bundle, lays out its fields and
// attaches the validator. Nested forms render before it returns unless their
// readiness is still pending.
func (n *Node) SetSchema(bundle *schema.Bundle) error {
	if n.parent == nil {
		n.rt.bundle = bundle
	}
	err := n.setSchema(bundle)
	n.rt.queue.drain()
	return err
}

func (n *Node) setSchema(bundle *schema.Bundle) error {
	if bundle == nil {
		return fmt.Errorf("autoform: set schema %q: no bundle: %w", n.model, ErrUnusableSchema)
	}
	d, ok := bundle.ResolveDescriptor(n.model)
	if !ok {
		return fmt.Errorf("autoform: set schema: model %q not found: %w", n.model, ErrUnusableSchema)
	}
	if !d.Usable() {
		return fmt.Errorf("autoform: set schema: model %q declares no field or model types: %w", n.model, ErrUnusableSchema)
	}
	if n.rt.cfg.strict {
		if err := n.lint(bundle); err != nil {
			return fmt.Errorf("autoform: set schema %q: %w", n.model, err)
		}
	}

	n.descriptor = d
	n.state = StateBound
	n.dropChildren()
	n.rt.forget(n.container)

	if err := n.layout(); err != nil {
		n.dropChildren()
		n.rt.forget(n.container)
		dom.Empty(n.container)
		n.err = err
		return err
	}

	n.validator = n.rt.cfg.validator(func(el *html.Node) {
		n.rt.bus.Publish(FieldUpdated{NodeID: n.id, Types: d.FieldTypes, Target: el})
	}, n.container)

	if n.level == 0 {
		n.addSaveButton()
	}
	n.state = StateRendered
	n.err = nil
	n.rt.cfg.logger.Debug("form rendered",
		zap.String("id", n.id),
		zap.String("model", n.model),
		zap.Int("level", n.level),
	)
	return nil
}

func (n *Node) lint(bundle *schema.Bundle) error {
	var own schema.Issues
	for _, issue := range schema.Lint(bundle) {
		if issue.Model == n.model {
			own = append(own, issue)
		}
	}
	return own.Err()
}

func (n *Node) addSaveButton() {
	chrome := n.rt.cfg.chrome
	btn := dom.Element("button",
		"type", "button",
		"name", "saveButton",
		"title", chrome.SaveText,
		"class", chrome.Button,
		"tabindex", "0",
	)
	dom.SetText(btn, chrome.SaveText)
	dom.Insert(btn, n.container, dom.Last)
	n.rt.events.On(btn, controls.EventClick, func(dom.Event) error {
		n.SaveForm()
		return nil
	})
}

// scope queries the node's own fields without entering nested forms.
func (n *Node) scope() dom.Query {
	return dom.Scoped(n.container, dom.Tag(controls.HostTag))
}

// newID returns "<prefix>-<name>-<n>" with n one past the highest index
// already present in the form or issued for a subtree under construction.
func (n *Node) newID(prefix, name string) string {
	stem := prefix + "-" + name + "-"
	next := n.issued[stem]
	for _, el := range n.scope().All(idStem(stem)) {
		idx, _ := strconv.Atoi(strings.TrimPrefix(dom.GetAttr(el, "id"), stem))
		next = max(next, idx+1)
	}
	n.issued[stem] = next + 1
	return stem + strconv.Itoa(next)
}

// idStem matches ids made of stem followed by digits only.
func idStem(stem string) dom.Matcher {
	return func(el *html.Node) bool {
		rest, ok := strings.CutPrefix(dom.GetAttr(el, "id"), stem)
		if !ok || rest == "" {
			return false
		}
		_, err := strconv.Atoi(rest)
		return err == nil
	}
}

func (n *Node) dropChildren() {
	for _, child := range slices.Clone(n.children) {
		n.dropChild(child)
	}
}

func (n *Node) dropChild(child *Node) {
	child.dropChildren()
	child.readySub.Unsubscribe()
	for _, sub := range child.waiters {
		sub.Unsubscribe()
	}
	child.waiters = nil
	delete(n.rt.nodes, child.id)
	delete(n.rt.pending, child.id)
	delete(n.byHost, child.host)
	n.children = slices.DeleteFunc(n.children, func(c *Node) bool { return c == child })
}

// whenRendered runs fn once the node is rendered.
func (n *Node) whenRendered(fn func()) {
	if n.state == StateRendered {
		fn()
		return
	}
	sub := Once(n.rt.bus, func(e ComponentReady) bool { return e.ID == n.id }, func(ComponentReady) {
		if n.state == StateRendered {
			fn()
		}
	})
	n.waiters = append(n.waiters, sub)
}

// ID returns the node id, which is also the host element id.
func (n *Node) ID() string { return n.id }

// Name returns the display name.
func (n *Node) Name() string { return n.name }

// Model returns the bound model name.
func (n *Node) Model() string { return n.model }

// Level returns the nesting level, 0 for the root.
func (n *Node) Level() int { return n.level }

// AutoSave returns the stored auto-save flag.
func (n *Node) AutoSave() bool { return n.autoSave }

// State returns the lifecycle stage.
func (n *Node) State() State { return n.state }

// Host returns the <json-autoform> element.
func (n *Node) Host() *html.Node { return n.host }

// Container returns the <form> element inside the shadow template.
func (n *Node) Container() *html.Node { return n.container }

// Descriptor returns the bound descriptor, nil before SetSchema.
func (n *Node) Descriptor() *schema.Descriptor { return n.descriptor }

// Bundle returns the bundle shared by the tree.
func (n *Node) Bundle() *schema.Bundle { return n.rt.bundle }

// Bus returns the tree-wide notification bus.
func (n *Node) Bus() *Bus { return n.rt.bus }

// Elements returns the custom element registry of the tree.
func (n *Node) Elements() *Elements { return n.rt.elements }

// Theme returns the resolved theme selection, if any.
func (n *Node) Theme() *theme.Selection { return n.theme }

// Chrome returns the class hooks in effect.
func (n *Node) Chrome() controls.Chrome { return n.rt.cfg.chrome }

// Validator returns the attached validator, nil before rendering.
func (n *Node) Validator() validation.Validator { return n.validator }

// Parent returns the enclosing node, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Root returns the root of the tree.
func (n *Node) Root() *Node {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// WorkingValue returns a copy of the incrementally maintained value.
func (n *Node) WorkingValue() map[string]any {
	return maps.Clone(n.working)
}

// Children returns the nested nodes in creation order.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// Find returns the node with id anywhere in the tree.
func (n *Node) Find(id string) (*Node, bool) {
	node, ok := n.rt.nodes[id]
	return node, ok
}

// Pending returns the ids of nested nodes still waiting for readiness.
func (n *Node) Pending() []string {
	return n.rt.pendingIDs()
}

// Err returns the render errors of the node and its descendants.
func (n *Node) Err() error {
	errs := []error{n.err}
	for _, child := range n.children {
		errs = append(errs, child.Err())
	}
	return errors.Join(errs...)
}

func (n *Node) logger() *zap.Logger {
	return n.rt.cfg.logger
}
