// Package validation provides the default field validation collaborator used
// by forms. A validator is bound to a DOM scope and checks required fields
// and declared rules against the live control values.
package validation

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/dom"
)

// Validator is the contract forms consume.
type Validator interface {
	NoEmptyFields() bool
	ValidateFields() bool
}

// Factory builds a validator bound to scope. update is invoked with every
// control whose validity state changed.
type Factory func(update func(*html.Node), scope *html.Node) Validator

// Issue describes one failing control.
type Issue struct {
	Field   string `json:"field"`
	ID      string `json:"id,omitempty"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result captures the outcome of the last checks.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Option configures the default validator.
type Option func(*FormValidator)

// WithInvalidClass sets the class toggled on failing controls.
func WithInvalidClass(class string) Option {
	return func(v *FormValidator) {
		if strings.TrimSpace(class) != "" {
			v.invalidClass = strings.TrimSpace(class)
		}
	}
}

// WithCheck registers or replaces a semantic check used by the tovalidate
// rule.
func WithCheck(name string, check Check) Option {
	return func(v *FormValidator) {
		if name != "" && check != nil {
			v.checks[name] = check
		}
	}
}

// NewFactory returns a Factory producing FormValidators.
func NewFactory(opts ...Option) Factory {
	return func(update func(*html.Node), scope *html.Node) Validator {
		return New(update, scope, opts...)
	}
}

// FormValidator is the default Validator.
type FormValidator struct {
	scope        *html.Node
	update       func(*html.Node)
	invalidClass string
	checks       map[string]Check
	// Each check replaces only its own failures, so a save that runs both
	// reports both.
	missing []Issue
	invalid []Issue
}

// New binds a validator to scope.
func New(update func(*html.Node), scope *html.Node, opts ...Option) *FormValidator {
	v := &FormValidator{
		scope:        scope,
		update:       update,
		invalidClass: "is-invalid",
		checks:       defaultChecks(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Issues returns the failures found by the latest NoEmptyFields and
// ValidateFields runs, required-field failures first.
func (v *FormValidator) Issues() []Issue {
	out := make([]Issue, 0, len(v.missing)+len(v.invalid))
	out = append(out, v.missing...)
	return append(out, v.invalid...)
}

// Result returns Issues as a Result.
func (v *FormValidator) Result() Result {
	issues := v.Issues()
	return Result{Valid: len(issues) == 0, Issues: issues}
}

// NoEmptyFields reports whether every required control holds a value.
// Radio and checkbox groups are satisfied by one checked member.
func (v *FormValidator) NoEmptyFields() bool {
	v.missing = nil
	ok := true
	seenGroups := map[*html.Node]map[string]bool{}

	for _, control := range v.controls() {
		if !isRequired(control) {
			continue
		}
		filled := false
		if dom.IsCheckable(control) {
			parent := control.Parent
			name := dom.GetAttr(control, "name")
			if seenGroups[parent][name] {
				continue
			}
			if seenGroups[parent] == nil {
				seenGroups[parent] = map[string]bool{}
			}
			seenGroups[parent][name] = true
			filled = groupChecked(parent, name)
		} else {
			filled = hasValue(control)
		}
		v.mark(control, filled)
		if !filled {
			ok = false
			v.missing = append(v.missing, issueFor(control, "required", "value is required"))
		}
	}
	return ok
}

// ValidateFields reports whether every non-empty control satisfies its
// declared rules.
func (v *FormValidator) ValidateFields() bool {
	v.invalid = nil
	ok := true
	for _, control := range v.controls() {
		if dom.IsCheckable(control) {
			continue
		}
		value := controlValue(control)
		if strings.TrimSpace(value) == "" {
			continue
		}
		rule, msg := v.firstFailure(control, value)
		v.mark(control, rule == "")
		if rule != "" {
			ok = false
			v.invalid = append(v.invalid, issueFor(control, rule, msg))
		}
	}
	return ok
}

func (v *FormValidator) controls() []*html.Node {
	return dom.In(v.scope).All(dom.Tag("input", "select", "textarea", "rich-inputfile"))
}

func (v *FormValidator) mark(control *html.Node, valid bool) {
	before := dom.HasClass(control, v.invalidClass)
	if valid {
		if before {
			dom.RemoveClass(control, v.invalidClass)
		}
	} else {
		dom.AddClass(control, v.invalidClass)
	}
	if before == valid && v.update != nil {
		v.update(control)
	}
}

func isRequired(control *html.Node) bool {
	if dom.HasAttr(control, "required") {
		return true
	}
	value, ok := dom.Attr(control, "data-required")
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "false", "0", "no", "off":
		return false
	}
	return true
}

func hasValue(control *html.Node) bool {
	if control.Data == "rich-inputfile" && dom.GetAttr(control, "data-has-file") == "true" {
		return true
	}
	return strings.TrimSpace(controlValue(control)) != ""
}

func controlValue(control *html.Node) string {
	return dom.Value(control)
}

func groupChecked(parent *html.Node, name string) bool {
	if parent == nil {
		return false
	}
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsCheckable(c) && dom.GetAttr(c, "name") == name && dom.Checked(c) {
			return true
		}
	}
	return false
}

func issueFor(control *html.Node, rule, msg string) Issue {
	return Issue{
		Field:   dom.GetAttr(control, "name"),
		ID:      dom.GetAttr(control, "id"),
		Rule:    rule,
		Message: msg,
	}
}
