// Package controls is the field factory: it maps a field's kind onto the
// markup of one form control subtree.
package controls

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/dom"
	"github.com/goliatone/go-autoform/pkg/schema"
)

// Builder produces the subtree for one field instance.
type Builder func(ctx Context) (Field, error)

// Context carries everything a builder needs about the field being built.
type Context struct {
	Bundle      *schema.Bundle
	Descriptor  *schema.Descriptor
	Field       string
	Tag         schema.TypeTag
	ContainerID string
	Level       int
	Chrome      Chrome
	Logger      *zap.Logger
	// NewID returns "<prefix>-<name>-<n>" where n counts the ids already
	// issued for that prefix and name in the owning form.
	NewID func(prefix, name string) string
}

// Rules returns the validation rules declared for the field.
func (c Context) Rules() schema.Rules {
	if c.Descriptor == nil {
		return nil
	}
	return c.Descriptor.Rules(c.Field)
}

// Label returns the field caption.
func (c Context) Label(name string) string {
	if c.Descriptor == nil {
		return name
	}
	return c.Descriptor.Label(name)
}

func (c Context) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Binding asks the owning form to listen for Event on Control.
type Binding struct {
	Control *html.Node
	Event   string
}

// Field is a built field instance.
type Field struct {
	// Root is the node inserted into the form: a layer div, a fieldset for
	// nested models or a bare hidden input.
	Root *html.Node
	// Controls lists the value-bearing elements in document order.
	Controls []*html.Node
	// Bindings lists the listeners the form must attach.
	Bindings []Binding
	// Host is the nested form host for model kinds.
	Host *html.Node
	// Model is the model name the nested host renders.
	Model string
	// Kind is the kind that produced the field after fallbacks.
	Kind schema.Kind
}

// Registry maps kinds to builders. Kinds without a builder use the fallback.
type Registry struct {
	mu       sync.RWMutex
	builders map[schema.Kind]Builder
	fallback Builder
}

// New creates an empty registry whose fallback is the text input builder.
func New() *Registry {
	return &Registry{
		builders: make(map[schema.Kind]Builder),
		fallback: buildInput,
	}
}

// Default returns a registry with every built-in builder registered.
func Default() *Registry {
	reg := New()
	reg.MustRegister(schema.KindNumber, buildInput)
	reg.MustRegister(schema.KindText, buildInput)
	reg.MustRegister(schema.KindPassword, buildInput)
	reg.MustRegister(schema.KindURL, buildInput)
	reg.MustRegister(schema.KindTextarea, buildTextarea)
	reg.MustRegister(schema.KindFile, buildFile)
	reg.MustRegister(schema.KindRadio, buildRadio)
	reg.MustRegister(schema.KindCheckbox, buildCheckbox)
	reg.MustRegister(schema.KindSelect, buildSelect)
	reg.MustRegister(schema.KindDatalist, buildDatalist)
	reg.MustRegister(schema.KindModel, buildModel)
	reg.MustRegister(schema.KindHidden, buildHidden)
	return reg
}

// Clone returns a copy of the registry to allow isolated overrides.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cloned := New()
	cloned.fallback = r.fallback
	for kind, b := range r.builders {
		cloned.builders[kind] = b
	}
	return cloned
}

// Register associates a builder with a kind, replacing any existing one.
func (r *Registry) Register(kind schema.Kind, b Builder) error {
	if kind == schema.KindUnknown {
		return fmt.Errorf("controls: kind is required")
	}
	if b == nil {
		return fmt.Errorf("controls: builder for %q is nil", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[kind] = b
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Registry) MustRegister(kind schema.Kind, b Builder) {
	if err := r.Register(kind, b); err != nil {
		panic(err)
	}
}

// SetFallback replaces the builder used for unrecognised kinds.
func (r *Registry) SetFallback(b Builder) {
	if b == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = b
}

// Kinds returns the registered kinds sorted by name.
func (r *Registry) Kinds() []schema.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]schema.Kind, 0, len(r.builders))
	for kind := range r.builders {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// Build dispatches on the field's kind and decorates the result with its help
// text. Unrecognised kinds take the fallback arm.
func (r *Registry) Build(ctx Context) (Field, error) {
	kind := ctx.Tag.Kind()

	r.mu.RLock()
	builder, ok := r.builders[kind]
	fallback := r.fallback
	r.mu.RUnlock()

	if !ok {
		ctx.logger().Debug("unrecognised field kind, using fallback",
			zap.String("field", ctx.Field),
			zap.String("kind", ctx.Tag.Name()),
		)
		builder = fallback
	}

	field, err := builder(ctx)
	if err != nil {
		return Field{}, fmt.Errorf("controls: build %q: %w", ctx.Field, err)
	}
	if field.Root == nil {
		return Field{}, fmt.Errorf("controls: build %q: builder returned no markup", ctx.Field)
	}
	if field.Kind == schema.KindUnknown {
		field.Kind = kind
	}
	if field.Kind != schema.KindHidden {
		attachInfo(ctx, field.Root)
	}
	return field, nil
}

// attachInfo inserts the help tooltip before the field caption.
func attachInfo(ctx Context, root *html.Node) {
	if ctx.Descriptor == nil {
		return
	}
	info, ok := ctx.Descriptor.Info[ctx.Field]
	if !ok || SanitizeText(info) == "" {
		return
	}
	tooltip := dom.Element("div", "class", ctx.Chrome.Info)
	text := dom.Element("div", "class", ctx.Chrome.InfoText)
	appendRichText(text, info)
	tooltip.AppendChild(text)

	for c := root.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case dom.IsElement(c, "label"):
			dom.InsertBefore(tooltip, c)
			return
		case dom.IsElement(c, "legend"):
			dom.Insert(tooltip, c, dom.After)
			return
		}
	}
	root.AppendChild(tooltip)
}
