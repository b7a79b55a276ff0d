package timezones

import (
	"slices"
	"strings"
)

// Option is one JSON search result.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Search returns at most limit zones containing query, case-insensitively.
// Prefix matches sort first. An empty query matches nothing unless
// emptyTop is set, in which case the first zones are returned.
func Search(zones []string, query string, limit int, emptyTop bool) []string {
	if limit <= 0 {
		return nil
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		if !emptyTop {
			return nil
		}
		return slices.Clone(zones[:min(limit, len(zones))])
	}

	var prefix, contains []string
	for _, zone := range zones {
		lower := strings.ToLower(zone)
		switch {
		case strings.HasPrefix(lower, query):
			prefix = append(prefix, zone)
		case strings.Contains(lower, query):
			contains = append(contains, zone)
		}
	}
	slices.Sort(prefix)
	slices.Sort(contains)
	matches := append(prefix, contains...)
	return matches[:min(limit, len(matches))]
}

// SearchOptions is Search with results shaped as options.
func SearchOptions(zones []string, query string, limit int, emptyTop bool) []Option {
	results := Search(zones, query, limit, emptyTop)
	out := make([]Option, 0, len(results))
	for _, zone := range results {
		out = append(out, Option{Value: zone, Label: strings.ReplaceAll(zone, "_", " ")})
	}
	return out
}
