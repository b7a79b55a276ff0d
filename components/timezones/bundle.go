package timezones

import (
	"fmt"

	"github.com/goliatone/go-autoform/pkg/schema"
)

// DefaultKey is the bundle key Install uses when none is given.
const DefaultKey = "timezones"

// AllKey names the list holding every zone.
const AllKey = "all"

// Namespace builds the option namespace for zones.
func Namespace(zones []string) *schema.Entry {
	children := schema.NewOrdered[*schema.Entry]()
	children.Set(AllKey, schema.OptionsEntry(zones...))
	keys, grouped := Regions(zones)
	for _, region := range keys {
		children.Set(region, schema.OptionsEntry(grouped[region]...))
	}
	return schema.NamespaceEntry(children)
}

// Install adds the default zones to bundle under key (DefaultKey when
// empty). An existing model with that key is an error.
func Install(bundle *schema.Bundle, key string) error {
	if bundle == nil {
		return fmt.Errorf("timezones: bundle is nil")
	}
	if key == "" {
		key = DefaultKey
	}
	if entry, ok := bundle.Entry(key); ok && entry.Kind() == schema.EntryDescriptor {
		return fmt.Errorf("timezones: bundle key %q is a model", key)
	}
	zones, err := DefaultZones()
	if err != nil {
		return fmt.Errorf("timezones: load zones: %w", err)
	}
	bundle.Set(key, Namespace(zones))
	return nil
}
