package schema

import (
	"fmt"
	"math"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// descriptorCUE is the structural contract of one descriptor entry.
const descriptorCUE = `
#Rules: [string]: bool | number | string

#Descriptor: {
	"__fieldTypes__"?: [string]: string
	"__modelTypes__"?: [string]: "single" | "multiple"
	"__labels__"?: [string]: string
	"__info__"?: [string]: string
	"__groups__"?: [string]: [...string]
	"__validations__"?: [string]: #Rules
}
`

// ValidateCUE checks every descriptor of the bundle against the structural
// contract expressed in CUE. It reports the first failing descriptor.
func ValidateCUE(b *Bundle) error {
	ctx := cuecontext.New()
	compiled := ctx.CompileString(descriptorCUE)
	if err := compiled.Err(); err != nil {
		return fmt.Errorf("schema: compile cue contract: %w", err)
	}
	def := compiled.LookupPath(cue.ParsePath("#Descriptor"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("schema: lookup cue contract: %w", err)
	}

	descriptors := b.Descriptors()
	for _, path := range descriptors.Keys() {
		d, _ := descriptors.Get(path)
		value := ctx.Encode(descriptorValue(d))
		if err := value.Err(); err != nil {
			return fmt.Errorf("schema: encode %s: %w", path, err)
		}
		if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidBundle, path, err)
		}
	}
	return nil
}

// descriptorValue rebuilds the document form of a descriptor. Rule values are
// typed back so the contract can tell booleans and numbers apart.
func descriptorValue(d *Descriptor) map[string]any {
	out := map[string]any{}
	if d.FieldTypes != nil {
		m := make(map[string]any, d.FieldTypes.Len())
		for _, k := range d.FieldTypes.Keys() {
			v, _ := d.FieldTypes.Get(k)
			m[k] = string(v)
		}
		out[keyFieldTypes] = m
	}
	if d.ModelTypes != nil {
		m := make(map[string]any, d.ModelTypes.Len())
		for _, k := range d.ModelTypes.Keys() {
			v, _ := d.ModelTypes.Get(k)
			m[k] = string(v)
		}
		out[keyModelTypes] = m
	}
	if len(d.Labels) > 0 {
		out[keyLabels] = d.Labels
	}
	if len(d.Info) > 0 {
		out[keyInfo] = d.Info
	}
	if len(d.Groups) > 0 {
		m := make(map[string]any, len(d.Groups))
		for _, g := range d.Groups {
			fields := g.Fields
			if fields == nil {
				fields = []string{}
			}
			m[g.Key] = fields
		}
		out[keyGroups] = m
	}
	if len(d.Validations) > 0 {
		m := make(map[string]any, len(d.Validations))
		for field, rules := range d.Validations {
			set := make(map[string]any, len(rules))
			for _, r := range rules {
				set[r.Name] = typedRuleValue(r.Value)
			}
			m[field] = set
		}
		out[keyValidations] = m
	}
	return out
}

func typedRuleValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return raw
}
