package autoform

import (
	"maps"
	"path"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// SelectionTokens merges the manifest tokens with the selected variant's.
func SelectionTokens(sel *theme.Selection) map[string]string {
	tokens := map[string]string{}
	if sel == nil || sel.Manifest == nil {
		return tokens
	}
	maps.Copy(tokens, sel.Manifest.Tokens)
	if variant, ok := sel.Manifest.Variants[sel.Variant]; ok {
		maps.Copy(tokens, variant.Tokens)
	}
	return tokens
}

// RendererTheme flattens a selection into the configuration page renderers
// consume. Partials start from fallbacks and are overridden by the manifest
// templates and then the variant's. Every token becomes a "--" CSS variable.
// Asset keys resolve against the manifest prefix, variant files first.
func RendererTheme(sel *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if sel == nil || sel.Manifest == nil {
		return nil
	}
	manifest := sel.Manifest
	variant := manifest.Variants[sel.Variant]

	partials := maps.Clone(fallbacks)
	if partials == nil {
		partials = map[string]string{}
	}
	maps.Copy(partials, manifest.Templates)
	maps.Copy(partials, variant.Templates)

	tokens := SelectionTokens(sel)
	vars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		vars["--"+strings.TrimPrefix(key, "--")] = value
	}

	prefix := manifest.Assets.Prefix
	if variant.Assets.Prefix != "" {
		prefix = variant.Assets.Prefix
	}
	files := maps.Clone(manifest.Assets.Files)
	if files == nil {
		files = map[string]string{}
	}
	maps.Copy(files, variant.Assets.Files)

	return &theme.RendererConfig{
		Theme:    sel.Theme,
		Variant:  sel.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  vars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if strings.Contains(file, "://") || strings.HasPrefix(file, "/") || prefix == "" {
				return file
			}
			return path.Join(prefix, file)
		},
	}
}

func (c *config) resolveTheme() (*theme.Selection, error) {
	if c.themeSelector == nil {
		return nil, nil
	}
	sel, err := c.themeSelector.Select(c.themeName, c.themeVariant)
	if err != nil {
		return nil, err
	}
	c.chrome = c.chrome.WithTokens(SelectionTokens(sel))
	return sel, nil
}
