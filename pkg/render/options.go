package render

import theme "github.com/goliatone/go-theme"

// RenderOptions describe per-request data that renderers apply to the form
// tree before serialising it.
type RenderOptions struct {
	// Title is used by renderers that emit a complete document.
	Title string
	// Values pre-populates the form through FillDataValues. Nested forms are
	// addressed by nested objects, repeated fields by lists.
	Values map[string]any
	// Errors surfaces server-side validation feedback keyed by field path
	// ("address.city", "lines.1.sku"). Unknown paths become form-level
	// messages.
	Errors map[string][]string
	// FormErrors are listed at the top of the root form after any unmapped
	// Errors.
	FormErrors []string
	// Hidden adds hidden inputs, such as a CSRF token, to the root form.
	Hidden map[string]string
	// Theme carries the resolved theme for renderers that emit CSS variables
	// or asset links.
	Theme *theme.RendererConfig
}
