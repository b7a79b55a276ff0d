package schema

import (
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// Kind is the control category of a field.
type Kind string

const (
	KindUnknown  Kind = ""
	KindNumber   Kind = "number"
	KindText     Kind = "text"
	KindPassword Kind = "password"
	KindURL      Kind = "url"
	KindTextarea Kind = "textarea"
	KindFile     Kind = "file"
	KindCheckbox Kind = "checkbox"
	KindRadio    Kind = "radio"
	KindSelect   Kind = "select"
	KindDatalist Kind = "datalist"
	KindModel    Kind = "model"
	KindHidden   Kind = "hidden"
)

var knownKinds = map[Kind]struct{}{
	KindNumber: {}, KindText: {}, KindPassword: {}, KindURL: {}, KindTextarea: {},
	KindFile: {}, KindCheckbox: {}, KindRadio: {}, KindSelect: {}, KindDatalist: {},
	KindModel: {}, KindHidden: {},
}

// Kinds lists every recognised kind.
func Kinds() []Kind {
	return []Kind{
		KindNumber, KindText, KindPassword, KindURL, KindTextarea, KindFile,
		KindCheckbox, KindRadio, KindSelect, KindDatalist, KindModel, KindHidden,
	}
}

// TypeTag is a field type declaration of the form "<kind>" or
// "<kind>:<referencePath>".
type TypeTag string

// Name returns the raw kind segment, recognised or not.
func (t TypeTag) Name() string {
	name, _, _ := strings.Cut(string(t), ":")
	return strings.TrimSpace(name)
}

// Kind returns the recognised kind or KindUnknown.
func (t TypeTag) Kind() Kind {
	k := Kind(strings.ToLower(t.Name()))
	if _, ok := knownKinds[k]; ok {
		return k
	}
	return KindUnknown
}

// Reference returns the part after the first colon.
func (t TypeTag) Reference() string {
	_, ref, _ := strings.Cut(string(t), ":")
	return strings.TrimSpace(ref)
}

// Cardinality states whether a field holds one value or a repeatable list.
type Cardinality string

const (
	Single   Cardinality = "single"
	Multiple Cardinality = "multiple"
)

// Valid reports whether c is a recognised cardinality.
func (c Cardinality) Valid() bool {
	return c == Single || c == Multiple
}

// Rule is one validation rule. Values are kept in their literal text form.
type Rule struct {
	Name  string
	Value string
}

// Rules is an ordered rule set for one field.
type Rules []Rule

// Get returns the value of the named rule.
func (r Rules) Get(name string) (string, bool) {
	for _, rule := range r {
		if rule.Name == name {
			return rule.Value, true
		}
	}
	return "", false
}

// Required reports whether a truthy required rule is present.
func (r Rules) Required() bool {
	v, ok := r.Get("required")
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "false", "0", "no", "off":
		return false
	}
	return true
}

// Group is one entry of a descriptor's grouping declarations.
type Group struct {
	Key    string
	Fields []string
}

// Anonymous reports whether the group key is positional (starts with a digit).
// Anonymous groups structure fields without a visible caption.
func (g Group) Anonymous() bool {
	for _, r := range g.Key {
		return unicode.IsDigit(r)
	}
	return false
}

// ElementID returns the id used for the group's fieldset. Positional keys are
// prefixed so the id never starts with a digit.
func (g Group) ElementID() string {
	if g.Anonymous() {
		return "_" + g.Key
	}
	return g.Key
}

// Has reports whether the group claims field.
func (g Group) Has(field string) bool {
	return lo.Contains(g.Fields, field)
}

// Descriptor is the metadata bundle for one model name.
type Descriptor struct {
	Name        string
	FieldTypes  *Ordered[TypeTag]
	ModelTypes  *Ordered[Cardinality]
	Labels      map[string]string
	Info        map[string]string
	Groups      []Group
	Validations map[string]Rules
}

// Usable reports whether the descriptor declares field types or model types.
func (d *Descriptor) Usable() bool {
	return d != nil && (d.FieldTypes != nil || d.ModelTypes != nil)
}

// Type returns the declared type tag for field.
func (d *Descriptor) Type(field string) (TypeTag, bool) {
	return d.FieldTypes.Get(field)
}

// Cardinality returns the declared cardinality for field.
func (d *Descriptor) Cardinality(field string) (Cardinality, bool) {
	return d.ModelTypes.Get(field)
}

// Label returns the schema label or the field name with underscores replaced
// by spaces.
func (d *Descriptor) Label(field string) string {
	if label, ok := d.Labels[field]; ok && strings.TrimSpace(label) != "" {
		return label
	}
	return strings.ReplaceAll(field, "_", " ")
}

// GroupLabel returns the caption for a group fieldset.
func (d *Descriptor) GroupLabel(key string) string {
	if label, ok := d.Labels[key]; ok && strings.TrimSpace(label) != "" {
		return strings.ReplaceAll(label, "_", " ")
	}
	return strings.ReplaceAll(key, "_", " ")
}

// Rules returns the validation rules of field.
func (d *Descriptor) Rules(field string) Rules {
	return d.Validations[field]
}

// GroupOf returns the group that owns field. When several groups claim the
// same field the last one in document order wins.
func (d *Descriptor) GroupOf(field string) (Group, bool) {
	var (
		found Group
		ok    bool
	)
	for _, g := range d.Groups {
		if g.Has(field) {
			found, ok = g, true
		}
	}
	return found, ok
}

// Universe returns every grouped field followed by every declared field type,
// without duplicates, in document order.
func (d *Descriptor) Universe() []string {
	var names []string
	for _, g := range d.Groups {
		names = append(names, g.Fields...)
	}
	names = append(names, d.FieldTypes.Keys()...)
	return lo.Uniq(names)
}

// FieldNames returns the declared field types in document order, falling back
// to the model types when no field types are declared.
func (d *Descriptor) FieldNames() []string {
	if d.FieldTypes != nil {
		return d.FieldTypes.Keys()
	}
	return d.ModelTypes.Keys()
}
