package controls

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/dom"
	"github.com/goliatone/go-autoform/pkg/schema"
)

func newLayer(ctx Context) *html.Node {
	return dom.Element("div",
		"id", ctx.NewID(LayerPrefix, ctx.Field),
		"class", ctx.Chrome.Layer,
	)
}

func newLabel(ctx Context, text, forID string, classes ...string) *html.Node {
	label := dom.Element("label", "for", forID)
	dom.AddClass(label, ctx.Chrome.Label)
	dom.AddClass(label, classes...)
	appendRichText(label, text)
	return label
}

func controlID(ctx Context) string {
	return ctx.NewID(ctx.ContainerID, ctx.Field)
}

// resolveOptions returns the choice list for the field, degrading to a single
// option equal to the field name.
func resolveOptions(ctx Context) ([]string, bool) {
	if ref := ctx.Tag.Reference(); ref != "" && ctx.Bundle != nil {
		if options, ok := ctx.Bundle.Options(ref); ok {
			return options, true
		}
	}
	ctx.logger().Debug("unresolved option reference",
		zap.String("field", ctx.Field),
		zap.String("reference", ctx.Tag.Reference()),
	)
	return []string{ctx.Field}, false
}

func buildInput(ctx Context) (Field, error) {
	inputType := string(ctx.Tag.Kind())
	switch ctx.Tag.Kind() {
	case schema.KindNumber, schema.KindText, schema.KindPassword, schema.KindURL:
	default:
		inputType = string(schema.KindText)
	}

	id := controlID(ctx)
	input := dom.Element("input",
		"type", inputType,
		"name", ctx.Field,
		"id", id,
		"value", "",
		"class", ctx.Chrome.Control,
	)
	if ctx.Tag.Kind() == schema.KindUnknown && ctx.Tag.Name() != "" {
		dom.SetAttr(input, "data-type", ctx.Tag.Name())
	}
	ApplyRules(input, ctx.Rules())

	root := dom.Append(newLayer(ctx), newLabel(ctx, ctx.Label(ctx.Field), id), input)
	return Field{
		Root:     root,
		Controls: []*html.Node{input},
		Bindings: []Binding{{Control: input, Event: EventBlur}},
		Kind:     schema.Kind(inputType),
	}, nil
}

func buildTextarea(ctx Context) (Field, error) {
	id := controlID(ctx)
	textarea := dom.Element("textarea",
		"class", ctx.Chrome.Control,
		"name", ctx.Field,
		"id", id,
		"rows", "5",
		"style", "max-height: 8rem",
	)
	ApplyRules(textarea, ctx.Rules())

	root := dom.Append(newLayer(ctx), newLabel(ctx, ctx.Label(ctx.Field), id), textarea)
	return Field{
		Root:     root,
		Controls: []*html.Node{textarea},
		Bindings: []Binding{{Control: textarea, Event: EventChange}},
		Kind:     schema.KindTextarea,
	}, nil
}

func buildRadio(ctx Context) (Field, error) {
	return buildChoices(ctx, "radio")
}

func buildCheckbox(ctx Context) (Field, error) {
	return buildChoices(ctx, "checkbox")
}

// buildChoices renders one radio or checkbox per option, all named after the
// field and valued with the option.
func buildChoices(ctx Context, inputType string) (Field, error) {
	options, resolved := resolveOptions(ctx)
	root := newLayer(ctx)
	caption := newLabel(ctx, ctx.Label(ctx.Field), "")
	root.AppendChild(caption)

	field := Field{Root: root, Kind: schema.Kind(inputType)}
	for i, option := range options {
		id := controlID(ctx)
		control := dom.Element("input",
			"type", inputType,
			"class", ctx.Chrome.Check,
			"name", ctx.Field,
			"value", option,
			"id", id,
		)
		if inputType == "radio" {
			dom.SetAttr(control, "style", fmt.Sprintf("grid-row: %d / %d", i+2, i+2))
		}
		ApplyRules(control, ctx.Rules())
		root.AppendChild(control)
		if resolved {
			root.AppendChild(newLabel(ctx, ctx.Label(option), id, ctx.Chrome.CheckLabel))
		}
		if i == 0 {
			dom.SetAttr(caption, "for", id)
		}
		field.Controls = append(field.Controls, control)
		field.Bindings = append(field.Bindings, Binding{Control: control, Event: EventBlur})
	}
	return field, nil
}

func buildSelect(ctx Context) (Field, error) {
	id := controlID(ctx)
	sel := dom.Element("select",
		"name", ctx.Field,
		"id", id,
		"class", ctx.Chrome.Control,
	)
	ApplyRules(sel, ctx.Rules())

	options, _ := resolveOptions(ctx)
	sel.AppendChild(dom.Append(dom.Element("option", "value", ""), dom.Text(ctx.Chrome.SelectPlaceholder)))
	for _, option := range options {
		sel.AppendChild(dom.Append(dom.Element("option", "value", option), dom.Text(option)))
	}

	root := dom.Append(newLayer(ctx), newLabel(ctx, ctx.Label(ctx.Field), id), sel)
	return Field{
		Root:     root,
		Controls: []*html.Node{sel},
		Bindings: []Binding{{Control: sel, Event: EventChange}},
		Kind:     schema.KindSelect,
	}, nil
}

// buildDatalist renders a free text input suggesting the options and
// constrained to them by pattern.
func buildDatalist(ctx Context) (Field, error) {
	id := controlID(ctx)
	listID := ctx.Field + "-datalist"
	input := dom.Element("input",
		"name", ctx.Field,
		"id", id,
		"value", "",
		"class", ctx.Chrome.Control,
		"list", listID,
	)
	ApplyRules(input, ctx.Rules())

	options, _ := resolveOptions(ctx)
	list := dom.Element("datalist", "id", listID)
	for _, option := range options {
		list.AppendChild(dom.Append(dom.Element("option", "value", option), dom.Text(option)))
	}
	dom.SetAttr(input, "pattern", strings.Join(options, "|"))

	root := dom.Append(newLayer(ctx), newLabel(ctx, ctx.Label(ctx.Field), id), input, list)
	return Field{
		Root:     root,
		Controls: []*html.Node{input},
		Bindings: []Binding{{Control: input, Event: EventChange}},
		Kind:     schema.KindDatalist,
	}, nil
}

// buildFile renders the rich file control element. Required-ness and allowed
// extensions are surfaced as attributes the control reads.
func buildFile(ctx Context) (Field, error) {
	id := controlID(ctx)
	file := dom.Element(FileTag,
		"id", id,
		"name", ctx.Field,
		"show-thumbnail", "true",
	)
	for _, rule := range ctx.Rules() {
		switch rule.Name {
		case "required":
			dom.SetAttr(file, "data-required", rule.Value)
		case "tovalidate":
			dom.SetAttr(file, "allowed-extensions", strings.TrimPrefix(rule.Value, "file:"))
		}
	}

	root := dom.Append(newLayer(ctx), newLabel(ctx, ctx.Label(ctx.Field), id), file)
	return Field{
		Root:     root,
		Controls: []*html.Node{file},
		Bindings: []Binding{{Control: file, Event: EventChange}},
		Kind:     schema.KindFile,
	}, nil
}

func buildHidden(ctx Context) (Field, error) {
	input := dom.Element("input",
		"type", "hidden",
		"name", ctx.Field,
		"id", controlID(ctx),
	)
	return Field{
		Root:     input,
		Controls: []*html.Node{input},
		Kind:     schema.KindHidden,
	}, nil
}

// buildModel renders a fieldset holding the host of a nested form. The nested
// form receives its schema once it signals readiness. Unresolvable models
// degrade to a text input.
func buildModel(ctx Context) (Field, error) {
	model, _, ok := ctx.Bundle.NestedModel(ctx.Field, ctx.Tag)
	if !ok {
		ctx.logger().Debug("unresolved nested model, rendering text input",
			zap.String("field", ctx.Field),
			zap.String("reference", ctx.Tag.Reference()),
		)
		fallback := ctx
		fallback.Tag = schema.TypeTag(schema.KindText)
		return buildInput(fallback)
	}

	hostID := controlID(ctx)
	fieldset := dom.Element("fieldset",
		"id", ctx.NewID(ModelPrefix, ctx.Field),
		"name", ctx.Field,
	)
	fieldset.AppendChild(dom.Append(dom.Element("legend"), dom.Text(ctx.Descriptor.GroupLabel(ctx.Field))))

	host := dom.Element(HostTag,
		"name", ctx.Field,
		"model-name", model,
		"id", hostID,
		"level", fmt.Sprint(ctx.Level+1),
	)
	fieldset.AppendChild(host)

	return Field{
		Root:  fieldset,
		Host:  host,
		Model: model,
		Kind:  schema.KindModel,
	}, nil
}
