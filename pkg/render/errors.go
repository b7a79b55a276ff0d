package render

import (
	"errors"
	"slices"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/goliatone/go-autoform/pkg/autoform"
)

// ErrUnknownRenderer is returned when a registry lookup fails.
var ErrUnknownRenderer = errors.New("render: unknown renderer")

// ErrorMapping splits server feedback into field messages and form messages.
// Field keys are canonical dotted paths resolved against the rendered tree.
// An index after a name selects one instance of a repeated field or nested
// model ("lines.1.sku").
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors appends extras to existing and returns the trimmed,
// de-duplicated result in first-seen order.
func MergeFormErrors(existing []string, extras ...string) []string {
	return cleanMessages(append(slices.Clone(existing), extras...))
}

// MapErrorPayload resolves each payload key against form. Keys may be
// dotted, bracketed or JSON pointers, optionally under a request envelope
// such as "/body". Keys that name no field become form messages.
func MapErrorPayload(form *autoform.Node, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}

	keys := lo.Keys(payload)
	sort.Strings(keys)
	for _, key := range keys {
		messages := cleanMessages(payload[key])
		if len(messages) == 0 {
			continue
		}
		segments := splitPath(key)
		if form == nil || isFormKey(segments) {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		loc, ok := locate(form, dropEnvelope(form, segments))
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		path := loc.String()
		mapping.Fields[path] = cleanMessages(append(mapping.Fields[path], messages...))
	}
	mapping.Form = cleanMessages(mapping.Form)
	return mapping
}

func cleanMessages(messages []string) []string {
	out := lo.Uniq(lo.Compact(lo.Map(messages, func(m string, _ int) string {
		return strings.TrimSpace(m)
	})))
	if len(out) == 0 {
		return nil
	}
	return out
}

var pointerUnescape = strings.NewReplacer("~1", "/", "~0", "~")

// splitPath accepts "a.b", "a[0].b", "/a/0/b" and "$.a.b".
func splitPath(raw string) []string {
	raw = strings.TrimLeft(strings.TrimSpace(raw), "#$./")
	raw = strings.NewReplacer("[", ".", "]", "").Replace(raw)
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '.' || r == '/'
	})
	for i, part := range parts {
		parts[i] = pointerUnescape.Replace(part)
	}
	return parts
}

var formKeys = []string{"form", "_form", "__all__", "base", "non_field_errors", "non-field-errors"}

func isFormKey(segments []string) bool {
	return len(segments) == 0 ||
		(len(segments) == 1 && slices.Contains(formKeys, strings.ToLower(segments[0])))
}

var envelopeKeys = []string{"body", "request", "payload", "data", "attributes", "params"}

// dropEnvelope strips leading request wrappers unless the form declares a
// field with that name.
func dropEnvelope(form *autoform.Node, segments []string) []string {
	fields := form.Descriptor().Universe()
	for len(segments) > 1 && slices.Contains(envelopeKeys, strings.ToLower(segments[0])) &&
		!slices.Contains(fields, segments[0]) {
		segments = segments[1:]
	}
	return segments
}
