package controls

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/dom"
	"github.com/goliatone/go-autoform/pkg/schema"
)

// constraintAttributes are rule names written as native attributes. Every
// other rule becomes a data attribute.
var constraintAttributes = map[string]struct{}{
	"maxlength":   {},
	"minlength":   {},
	"size":        {},
	"max":         {},
	"min":         {},
	"step":        {},
	"pattern":     {},
	"placeholder": {},
}

// IsConstraintAttribute reports whether rule maps to a native attribute.
func IsConstraintAttribute(rule string) bool {
	_, ok := constraintAttributes[strings.ToLower(rule)]
	return ok
}

// ApplyRules writes rules onto a control.
func ApplyRules(n *html.Node, rules schema.Rules) {
	for _, rule := range rules {
		if IsConstraintAttribute(rule.Name) {
			dom.SetAttr(n, strings.ToLower(rule.Name), rule.Value)
			continue
		}
		dom.SetAttr(n, DataAttribute(rule.Name), rule.Value)
	}
}

// DataAttribute converts a rule name into its data attribute name, turning
// camelCase into kebab-case.
func DataAttribute(name string) string {
	var b strings.Builder
	b.WriteString("data-")
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
