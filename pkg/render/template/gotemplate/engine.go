// Package gotemplate builds github.com/goliatone/go-template engines with the
// filters the autoform page templates rely on.
package gotemplate

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/flosch/pongo2/v6"
	gotmpl "github.com/goliatone/go-template"

	"github.com/goliatone/go-autoform/pkg/render/template"
)

var _ template.TemplateRenderer = (*gotmpl.Engine)(nil)

// New constructs a go-template engine. Filters registers first so callers can
// override any of them with gotmpl.WithTemplateFunc.
func New(options ...gotmpl.Option) (*gotmpl.Engine, error) {
	all := append([]gotmpl.Option{gotmpl.WithTemplateFunc(Filters())}, options...)
	engine, err := gotmpl.NewRenderer(all...)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: %w", err)
	}
	return engine, nil
}

// Filters returns the pongo2 filters added on top of go-template's defaults.
func Filters() map[string]any {
	return map[string]any{
		"cssvars": filterCSSVars,
		"tojson":  filterToJSON,
	}
}

// filterCSSVars renders a map of custom properties as an inline style body,
// sorted by name. Keys without the leading "--" get it added.
func filterCSSVars(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	vars := map[string]string{}
	switch m := in.Interface().(type) {
	case map[string]string:
		vars = m
	case map[string]any:
		for k, v := range m {
			vars[k] = fmt.Sprint(v)
		}
	case nil:
	default:
		return nil, &pongo2.Error{Sender: "filter:cssvars", OrigError: fmt.Errorf("unsupported input %T", m)}
	}

	var b strings.Builder
	for _, key := range slices.Sorted(maps.Keys(vars)) {
		name := strings.TrimSpace(key)
		if name == "" {
			continue
		}
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(name + ": " + strings.TrimSpace(vars[key]) + ";")
	}
	return pongo2.AsSafeValue(b.String()), nil
}

func filterToJSON(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	raw, err := json.Marshal(in.Interface())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:tojson", OrigError: err}
	}
	return pongo2.AsSafeValue(string(raw)), nil
}
