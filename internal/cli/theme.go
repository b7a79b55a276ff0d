package cli

import (
	"encoding/json"
	"fmt"
	"os"

	theme "github.com/goliatone/go-theme"
	"github.com/tailscale/hujson"
)

// manifestSelector serves a single manifest loaded from disk.
type manifestSelector struct {
	manifest *theme.Manifest
}

func (s manifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if name != "" && name != s.manifest.Name {
		return nil, fmt.Errorf("theme %q not loaded (have %q)", name, s.manifest.Name)
	}
	if variant != "" {
		if _, ok := s.manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("theme %q has no variant %q", s.manifest.Name, variant)
		}
	}
	return &theme.Selection{Theme: s.manifest.Name, Variant: variant, Manifest: s.manifest}, nil
}

// loadThemeSelector reads a JSON theme manifest and registers it to check it.
func loadThemeSelector(path string) (theme.ThemeSelector, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme: %w", err)
	}
	raw, err = hujson.Standardize(raw)
	if err != nil {
		return nil, fmt.Errorf("parse theme %s: %w", path, err)
	}
	manifest := &theme.Manifest{}
	if err := json.Unmarshal(raw, manifest); err != nil {
		return nil, fmt.Errorf("decode theme %s: %w", path, err)
	}
	if err := theme.NewRegistry().Register(manifest); err != nil {
		return nil, fmt.Errorf("register theme %s: %w", path, err)
	}
	return manifestSelector{manifest: manifest}, nil
}
