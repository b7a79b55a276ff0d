package openapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/goliatone/go-autoform/pkg/schema"
)

const (
	extKind  = "x-autoform-kind"
	extGroup = "x-autoform-group"
	extLabel = "x-autoform-label"

	// OptionsNamespace holds the option lists derived from enums.
	OptionsNamespace = "options"
)

var (
	// ErrNoSchemas is returned when nothing in the document maps to a model.
	ErrNoSchemas = errors.New("openapi: document has no object schemas")
	// ErrUnknownSchema is returned when a requested component is missing.
	ErrUnknownSchema = errors.New("openapi: unknown schema")
)

// Option configures an Importer.
type Option func(*Importer)

// WithSchemas limits the import to the named component schemas. Schemas they
// reference are still imported.
func WithSchemas(names ...string) Option {
	return func(im *Importer) {
		im.schemas = append(im.schemas, names...)
	}
}

// WithOperations also imports the request body of every POST, PUT and PATCH
// operation as a model named by its operationId.
func WithOperations() Option {
	return func(im *Importer) {
		im.operations = true
	}
}

// WithValidation validates the document before importing it.
func WithValidation() Option {
	return func(im *Importer) {
		im.validate = true
	}
}

// WithExternalRefs allows references to other files.
func WithExternalRefs() Option {
	return func(im *Importer) {
		im.externalRefs = true
	}
}

// WithLogger sets the logger used for skipped schemas.
func WithLogger(logger *zap.Logger) Option {
	return func(im *Importer) {
		if logger != nil {
			im.logger = logger
		}
	}
}

// Importer converts OpenAPI documents into bundles.
type Importer struct {
	schemas      []string
	operations   bool
	validate     bool
	externalRefs bool
	logger       *zap.Logger
}

// New constructs an Importer.
func New(opts ...Option) *Importer {
	im := &Importer{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(im)
		}
	}
	return im
}

// Import converts raw with a default Importer configured by opts.
func Import(ctx context.Context, raw []byte, opts ...Option) (*schema.Bundle, error) {
	return New(opts...).Import(ctx, raw)
}

// ImportDocument converts a loaded document, naming its location in errors.
func (im *Importer) ImportDocument(ctx context.Context, doc schema.Document) (*schema.Bundle, error) {
	bundle, err := im.Import(ctx, doc.Raw())
	if err != nil && doc.Location() != "" {
		return nil, fmt.Errorf("openapi: import %s: %w", doc.Location(), err)
	}
	return bundle, err
}

// Import converts an OpenAPI 3 document (JSON or YAML).
func (im *Importer) Import(ctx context.Context, raw []byte) (*schema.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, schema.ErrEmptyDocument
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = im.externalRefs
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if im.validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}

	c := newConverter(doc, raw, im.logger)
	components := componentSchemas(doc)
	names := im.schemas
	if len(names) == 0 {
		names = c.order.keys([]string{"components", "schemas"}, lo.Keys(components))
	}
	for _, name := range names {
		ref, ok := components[name]
		if !ok || ref == nil || ref.Value == nil {
			return nil, fmt.Errorf("%w %q", ErrUnknownSchema, name)
		}
		if !isObject(ref.Value) {
			im.logger.Debug("skipping non-object schema", zap.String("schema", name))
			continue
		}
		c.model(name, ref.Value, componentPath(name))
	}
	if im.operations {
		if err := c.operations(ctx); err != nil {
			return nil, err
		}
	}

	if len(c.bundle.Models()) == 0 {
		return nil, ErrNoSchemas
	}
	c.finish()
	return c.bundle, nil
}

// Detect reports whether raw looks like an OpenAPI or Swagger document.
func Detect(raw []byte) bool {
	order := newKeyOrder(raw)
	if order.root == nil {
		return false
	}
	return order.lookup([]string{"openapi"}) != nil || order.lookup([]string{"swagger"}) != nil
}

func componentSchemas(doc *openapi3.T) openapi3.Schemas {
	if doc.Components == nil {
		return nil
	}
	return doc.Components.Schemas
}

type converter struct {
	doc     *openapi3.T
	order   keyOrder
	logger  *zap.Logger
	bundle  *schema.Bundle
	options *schema.Ordered[*schema.Entry]
	seen    map[string]bool
}

func newConverter(doc *openapi3.T, raw []byte, logger *zap.Logger) *converter {
	return &converter{
		doc:     doc,
		order:   newKeyOrder(raw),
		logger:  logger,
		bundle:  schema.NewBundle(),
		options: schema.NewOrdered[*schema.Entry](),
		seen:    make(map[string]bool),
	}
}

func (c *converter) finish() {
	if c.options.Len() == 0 {
		return
	}
	if slices.Contains(c.bundle.Models(), OptionsNamespace) {
		c.logger.Warn("schema named like the options namespace is shadowed", zap.String("schema", OptionsNamespace))
	}
	c.bundle.Set(OptionsNamespace, schema.NamespaceEntry(c.options))
}

// model emits one descriptor. It is registered before its fields are
// converted so recursive references terminate.
func (c *converter) model(name string, s *openapi3.Schema, path []string) {
	if c.seen[name] {
		return
	}
	c.seen[name] = true

	d := &schema.Descriptor{
		Name:        name,
		FieldTypes:  schema.NewOrdered[schema.TypeTag](),
		ModelTypes:  schema.NewOrdered[schema.Cardinality](),
		Labels:      map[string]string{},
		Info:        map[string]string{},
		Validations: map[string]schema.Rules{},
	}
	c.bundle.Set(name, schema.DescriptorEntry(d))

	props, required := c.properties(s, path)
	groups := schema.NewOrdered[[]string]()
	for _, p := range props {
		tag, card, rules := c.field(name, p.name, p.ref, p.path)
		d.FieldTypes.Set(p.name, tag)
		d.ModelTypes.Set(p.name, card)

		if v := p.ref.Value; v != nil {
			label := extString(v.Extensions, extLabel)
			if label == "" {
				label = v.Title
			}
			if label != "" {
				d.Labels[p.name] = label
			}
			if v.Description != "" {
				d.Info[p.name] = v.Description
			}
			if group := extString(v.Extensions, extGroup); group != "" {
				members, _ := groups.Get(group)
				groups.Set(group, append(members, p.name))
			}
		}
		if slices.Contains(required, p.name) {
			rules = append(schema.Rules{{Name: "required", Value: "true"}}, rules...)
		}
		if len(rules) > 0 {
			d.Validations[p.name] = rules
		}
	}
	for _, key := range groups.Keys() {
		members, _ := groups.Get(key)
		d.Groups = append(d.Groups, schema.Group{Key: key, Fields: members})
	}
}

type property struct {
	name string
	ref  *openapi3.SchemaRef
	path []string
}

// properties flattens own and allOf properties. The first declaration of a
// name wins.
func (c *converter) properties(s *openapi3.Schema, path []string) ([]property, []string) {
	var out []property
	required := slices.Clone(s.Required)

	propsPath := appendPath(path, "properties")
	for _, name := range c.order.keys(propsPath, lo.Keys(s.Properties)) {
		if ref := s.Properties[name]; ref != nil {
			out = append(out, property{name: name, ref: ref, path: appendPath(propsPath, name)})
		}
	}
	for i, part := range s.AllOf {
		if part == nil || part.Value == nil {
			continue
		}
		partPath := appendPath(path, "allOf", strconv.Itoa(i))
		if part.Ref != "" {
			partPath = refPath(part.Ref)
		}
		more, req := c.properties(part.Value, partPath)
		for _, p := range more {
			if !slices.ContainsFunc(out, func(q property) bool { return q.name == p.name }) {
				out = append(out, p)
			}
		}
		required = append(required, req...)
	}
	return out, required
}

// field maps one property to its type tag, cardinality and rules.
func (c *converter) field(model, prop string, ref *openapi3.SchemaRef, path []string) (schema.TypeTag, schema.Cardinality, schema.Rules) {
	if ref == nil || ref.Value == nil {
		c.logger.Debug("unresolved property schema, using text",
			zap.String("model", model),
			zap.String("field", prop),
		)
		return tag(schema.KindText, ""), schema.Single, nil
	}
	s := ref.Value
	override := schema.Kind(strings.ToLower(extString(s.Extensions, extKind)))
	rules := constraintRules(s)
	typ := firstSchemaType(s.Type)

	switch {
	case typ == "array" || s.Items != nil:
		items := s.Items
		if items != nil && items.Value != nil && len(items.Value.Enum) > 0 {
			return tag(or(override, schema.KindCheckbox), c.optionList(model, prop, items.Value.Enum)), schema.Single, rules
		}
		itemTag, _, itemRules := c.field(model, prop, items, appendPath(path, "items"))
		return itemTag, schema.Multiple, itemRules
	case ref.Ref != "" && isObject(s):
		target := refName(ref.Ref)
		c.model(target, s, refPath(ref.Ref))
		return tag(schema.KindModel, target), schema.Single, nil
	case isObject(s):
		target := model + "_" + prop
		c.model(target, s, path)
		return tag(schema.KindModel, target), schema.Single, nil
	case len(s.Enum) > 0:
		return tag(or(override, schema.KindSelect), c.optionList(model, prop, s.Enum)), schema.Single, rules
	case typ == "boolean":
		return tag(or(override, schema.KindRadio), c.optionList(model, prop, []any{"true", "false"})), schema.Single, rules
	}

	kind := schema.KindText
	switch {
	case s.ReadOnly:
		kind = schema.KindHidden
	case typ == "integer" || typ == "number":
		kind = schema.KindNumber
	case s.Format == "password":
		kind = schema.KindPassword
	case s.Format == "uri" || s.Format == "url":
		kind = schema.KindURL
	case s.Format == "binary" || s.Format == "byte":
		kind = schema.KindFile
	}
	return tag(or(override, kind), ""), schema.Single, rules
}

func (c *converter) optionList(model, prop string, enum []any) string {
	key := model + "_" + prop
	values := lo.Map(enum, func(v any, _ int) string { return fmt.Sprint(v) })
	c.options.Set(key, schema.OptionsEntry(values...))
	return OptionsNamespace + "/" + key
}

// operations imports request bodies of write operations.
func (c *converter) operations(ctx context.Context) error {
	if c.doc.Paths == nil {
		return nil
	}
	items := c.doc.Paths.Map()
	for _, p := range c.order.keys([]string{"paths"}, lo.Keys(items)) {
		if err := ctx.Err(); err != nil {
			return err
		}
		item := items[p]
		if item == nil {
			continue
		}
		for _, entry := range []struct {
			method string
			op     *openapi3.Operation
		}{{"post", item.Post}, {"put", item.Put}, {"patch", item.Patch}} {
			if entry.op == nil || entry.op.RequestBody == nil || entry.op.RequestBody.Value == nil {
				continue
			}
			ref, mediaType := requestSchema(entry.op.RequestBody.Value.Content)
			if ref == nil || ref.Value == nil || !isObject(ref.Value) {
				continue
			}
			name := entry.op.OperationID
			if name == "" {
				name = operationName(entry.method, p)
			}
			path := []string{"paths", p, entry.method, "requestBody", "content", mediaType, "schema"}
			if ref.Ref != "" {
				path = refPath(ref.Ref)
			}
			c.model(name, ref.Value, path)
		}
	}
	return nil
}

func requestSchema(content openapi3.Content) (*openapi3.SchemaRef, string) {
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt != nil {
			return mt.Schema, mediaType
		}
	}
	for _, mediaType := range slices.Sorted(maps.Keys(content)) {
		if mt := content[mediaType]; mt != nil {
			return mt.Schema, mediaType
		}
	}
	return nil, ""
}

var nonWord = regexp.MustCompile(`[^A-Za-z0-9]+`)

func operationName(method, path string) string {
	return method + "_" + strings.Trim(nonWord.ReplaceAllString(path, "_"), "_")
}

func constraintRules(s *openapi3.Schema) schema.Rules {
	var rules schema.Rules
	if s.MinLength > 0 {
		rules = append(rules, schema.Rule{Name: "minlength", Value: strconv.FormatUint(s.MinLength, 10)})
	}
	if s.MaxLength != nil {
		rules = append(rules, schema.Rule{Name: "maxlength", Value: strconv.FormatUint(*s.MaxLength, 10)})
	}
	if s.Min != nil {
		rules = append(rules, schema.Rule{Name: "min", Value: strconv.FormatFloat(*s.Min, 'f', -1, 64)})
	}
	if s.Max != nil {
		rules = append(rules, schema.Rule{Name: "max", Value: strconv.FormatFloat(*s.Max, 'f', -1, 64)})
	}
	if s.Pattern != "" {
		rules = append(rules, schema.Rule{Name: "pattern", Value: s.Pattern})
	}
	switch s.Format {
	case "email":
		rules = append(rules, schema.Rule{Name: "tovalidate", Value: "email"})
	case "uri", "url":
		rules = append(rules, schema.Rule{Name: "tovalidate", Value: "url"})
	}
	if s.Example != nil {
		rules = append(rules, schema.Rule{Name: "placeholder", Value: fmt.Sprint(s.Example)})
	}
	return rules
}

func isObject(s *openapi3.Schema) bool {
	return firstSchemaType(s.Type) == "object" || len(s.Properties) > 0 || len(s.AllOf) > 0
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func tag(kind schema.Kind, ref string) schema.TypeTag {
	if ref == "" {
		return schema.TypeTag(kind)
	}
	return schema.TypeTag(string(kind) + ":" + ref)
}

func or(override, fallback schema.Kind) schema.Kind {
	if override != "" {
		return override
	}
	return fallback
}

func extString(ext map[string]any, key string) string {
	if v, ok := ext[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func componentPath(name string) []string {
	return []string{"components", "schemas", name}
}

// refPath turns a local JSON pointer into path segments.
func refPath(ref string) []string {
	_, pointer, _ := strings.Cut(ref, "#")
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return nil
	}
	segments := strings.Split(pointer, "/")
	for i, segment := range segments {
		segments[i] = strings.NewReplacer("~1", "/", "~0", "~").Replace(segment)
	}
	return segments
}

func refName(ref string) string {
	segments := refPath(ref)
	if len(segments) == 0 {
		return ref
	}
	return segments[len(segments)-1]
}

func appendPath(path []string, segments ...string) []string {
	return append(slices.Clone(path), segments...)
}
