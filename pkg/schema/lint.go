package schema

import (
	"fmt"
	"strings"
)

// Severity ranks lint findings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Lint issue codes.
const (
	CodeUnusableModel       = "unusable-model"
	CodeMissingCardinality  = "missing-cardinality"
	CodeUnknownCardinality  = "unknown-cardinality"
	CodeUnknownKind         = "unknown-kind"
	CodeUnresolvedReference = "unresolved-reference"
	CodeDuplicateGroup      = "duplicate-group-member"
	CodeDanglingGroup       = "dangling-group-member"
)

// Issue is one lint finding.
type Issue struct {
	Model    string
	Field    string
	Code     string
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	subject := i.Model
	if i.Field != "" {
		subject += "." + i.Field
	}
	return fmt.Sprintf("%s %s: %s: %s", i.Severity, subject, i.Code, i.Message)
}

// Issues is a list of lint findings.
type Issues []Issue

// Errors returns the error-severity subset.
func (is Issues) Errors() Issues {
	var out Issues
	for _, issue := range is {
		if issue.Severity == SeverityError {
			out = append(out, issue)
		}
	}
	return out
}

// Err returns nil when no error-severity issue is present, otherwise an error
// wrapping ErrInvalidBundle that lists them.
func (is Issues) Err() error {
	errs := is.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, 0, len(errs))
	for _, issue := range errs {
		lines = append(lines, issue.String())
	}
	return fmt.Errorf("%w:\n  %s", ErrInvalidBundle, strings.Join(lines, "\n  "))
}

// Lint inspects every descriptor of the bundle for authoring mistakes. Errors
// are cases a form refuses to render; warnings are cases it renders in a
// degraded way.
func Lint(b *Bundle) Issues {
	var issues Issues
	descriptors := b.Descriptors()
	for _, path := range descriptors.Keys() {
		d, _ := descriptors.Get(path)
		issues = append(issues, lintDescriptor(b, path, d)...)
	}
	return issues
}

func lintDescriptor(b *Bundle, model string, d *Descriptor) Issues {
	var issues Issues
	add := func(field, code string, sev Severity, format string, args ...any) {
		issues = append(issues, Issue{
			Model:    model,
			Field:    field,
			Code:     code,
			Severity: sev,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if !d.Usable() {
		add("", CodeUnusableModel, SeverityError, "neither %s nor %s declared", keyFieldTypes, keyModelTypes)
		return issues
	}

	for _, field := range d.FieldTypes.Keys() {
		tag, _ := d.Type(field)
		if !d.ModelTypes.Has(field) {
			add(field, CodeMissingCardinality, SeverityError, "no %s entry", keyModelTypes)
		}
		switch tag.Kind() {
		case KindUnknown:
			add(field, CodeUnknownKind, SeverityWarning, "kind %q renders as text", tag.Name())
		case KindRadio, KindCheckbox, KindSelect, KindDatalist:
			if _, ok := b.Options(tag.Reference()); !ok {
				add(field, CodeUnresolvedReference, SeverityWarning, "options %q not found", tag.Reference())
			}
		case KindModel:
			if _, _, ok := b.NestedModel(field, tag); !ok {
				add(field, CodeUnresolvedReference, SeverityWarning, "model %q not found", tag.Reference())
			}
		}
	}

	for _, field := range d.ModelTypes.Keys() {
		card, _ := d.Cardinality(field)
		if !card.Valid() {
			add(field, CodeUnknownCardinality, SeverityError, "cardinality %q", string(card))
		}
	}

	owners := map[string][]string{}
	var order []string
	for _, g := range d.Groups {
		for _, field := range g.Fields {
			if _, seen := owners[field]; !seen {
				order = append(order, field)
			}
			owners[field] = append(owners[field], g.Key)
		}
	}
	for _, field := range order {
		if groups := owners[field]; len(groups) > 1 {
			add(field, CodeDuplicateGroup, SeverityError, "claimed by groups %s; %q wins", strings.Join(groups, ", "), groups[len(groups)-1])
		}
		if !d.FieldTypes.Has(field) && !d.ModelTypes.Has(field) {
			add(field, CodeDanglingGroup, SeverityWarning, "grouped field has no type and no cardinality")
		}
	}
	return issues
}
