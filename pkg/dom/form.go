package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// InputType returns the lower-cased type of an input, defaulting to "text".
func InputType(n *html.Node) string {
	t := strings.ToLower(strings.TrimSpace(GetAttr(n, "type")))
	if t == "" {
		return "text"
	}
	return t
}

// IsCheckable reports whether n is a radio or checkbox input.
func IsCheckable(n *html.Node) bool {
	if !IsElement(n, "input") {
		return false
	}
	t := InputType(n)
	return t == "radio" || t == "checkbox"
}

// Value returns the current value of a form control using browser semantics:
// inputs read the value attribute, textareas their text and selects the
// selected option (the first option when none is selected).
func Value(n *html.Node) string {
	switch {
	case IsElement(n, "textarea"):
		return TextContent(n)
	case IsElement(n, "select"):
		options := In(n).All(Tag("option"))
		for _, opt := range options {
			if HasAttr(opt, "selected") {
				return OptionValue(opt)
			}
		}
		if len(options) > 0 {
			return OptionValue(options[0])
		}
		return ""
	default:
		return GetAttr(n, "value")
	}
}

// SetValue writes a value into a form control. Selects mark the matching
// option as selected and clear the others; it reports false when no option
// matches.
func SetValue(n *html.Node, value string) bool {
	switch {
	case IsElement(n, "textarea"):
		SetText(n, value)
		return true
	case IsElement(n, "select"):
		matched := false
		for _, opt := range In(n).All(Tag("option")) {
			if !matched && OptionValue(opt) == value {
				SetAttr(opt, "selected", "")
				matched = true
				continue
			}
			RemoveAttr(opt, "selected")
		}
		return matched
	default:
		SetAttr(n, "value", value)
		return true
	}
}

// OptionValue returns the value attribute of an option or its text.
func OptionValue(opt *html.Node) string {
	if v, ok := Attr(opt, "value"); ok {
		return v
	}
	return strings.TrimSpace(TextContent(opt))
}

// Checked reports the checked state of a radio or checkbox.
func Checked(n *html.Node) bool {
	return HasAttr(n, "checked")
}

// SetChecked toggles the checked state. Checking a radio unchecks the other
// radios sharing its name inside scope.
func SetChecked(scope, n *html.Node, checked bool) {
	if !checked {
		RemoveAttr(n, "checked")
		return
	}
	if InputType(n) == "radio" && scope != nil {
		name := GetAttr(n, "name")
		for _, other := range In(scope).All(And(Tag("input"), AttrEquals("type", "radio"), AttrEquals("name", name))) {
			if other != n {
				RemoveAttr(other, "checked")
			}
		}
	}
	SetAttr(n, "checked", "")
}
