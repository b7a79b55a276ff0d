package controls

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/dom"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// textSanitizer allows inline formatting in labels and help text.
func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "u", "small", "code", "br", "span", "sup", "sub")
		policy.AllowAttrs("class").OnElements("span")
		textPolicy = policy
	})
	return textPolicy
}

// SanitizeText strips disallowed markup from schema-authored text.
func SanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(textSanitizer().Sanitize(trimmed))
}

// appendRichText sanitises raw and appends it to parent, parsing inline
// markup into nodes when present.
func appendRichText(parent *html.Node, raw string) {
	clean := SanitizeText(raw)
	if clean == "" {
		return
	}
	if !strings.ContainsRune(clean, '<') && !strings.ContainsRune(clean, '&') {
		parent.AppendChild(dom.Text(clean))
		return
	}
	nodes, err := html.ParseFragment(strings.NewReader(clean), parent)
	if err != nil {
		parent.AppendChild(dom.Text(html.UnescapeString(clean)))
		return
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
}
