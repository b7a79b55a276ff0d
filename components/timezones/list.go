package timezones

import (
	"bufio"
	"embed"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

//go:embed data/iana_timezones.txt
var dataFS embed.FS

const defaultListPath = "data/iana_timezones.txt"

// UTC is the zone without a region.
const UTC = "UTC"

var loadDefault = sync.OnceValues(func() ([]string, error) {
	f, err := dataFS.Open(defaultListPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return LoadZones(f)
})

// DefaultZones returns the embedded zone list, sorted.
func DefaultZones() ([]string, error) {
	zones, err := loadDefault()
	if err != nil {
		return nil, err
	}
	return slices.Clone(zones), nil
}

// LoadZones reads one identifier per line. Blank lines and "#" comments are
// skipped, duplicates dropped and the result sorted.
func LoadZones(r io.Reader) ([]string, error) {
	if r == nil {
		return nil, errors.New("timezones: missing reader")
	}
	var zones []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		zones = append(zones, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	zones = lo.Uniq(zones)
	slices.Sort(zones)
	return zones, nil
}

// Region returns the area segment of a zone, "UTC" for region-less zones.
func Region(zone string) string {
	region, _, ok := strings.Cut(zone, "/")
	if !ok {
		return UTC
	}
	return region
}

// Regions groups zones by Region, keeping the input order inside a region.
// The returned keys are sorted.
func Regions(zones []string) ([]string, map[string][]string) {
	grouped := lo.GroupBy(zones, Region)
	keys := lo.Keys(grouped)
	slices.Sort(keys)
	return keys, grouped
}
