package timezones

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type config struct {
	searchParam  string
	limitParam   string
	defaultLimit int
	maxLimit     int
	emptyTop     bool
	zones        []string
}

// HandlerOption configures Handler.
type HandlerOption func(*config)

// WithSearchParam renames the query parameter ("q").
func WithSearchParam(name string) HandlerOption {
	return func(c *config) {
		if name != "" {
			c.searchParam = name
		}
	}
}

// WithLimits sets the default and maximum result counts (50 and 200).
func WithLimits(defaultLimit, maxLimit int) HandlerOption {
	return func(c *config) {
		if defaultLimit > 0 {
			c.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			c.maxLimit = maxLimit
		}
	}
}

// WithEmptySearchTop answers an empty query with the first zones.
func WithEmptySearchTop() HandlerOption {
	return func(c *config) {
		c.emptyTop = true
	}
}

// WithZones replaces the embedded zone list.
func WithZones(zones []string) HandlerOption {
	return func(c *config) {
		c.zones = append([]string(nil), zones...)
	}
}

type optionsResponse struct {
	Data []Option `json:"data"`
}

// Handler answers GET and HEAD requests with {"data": [{value, label}]}.
func Handler(opts ...HandlerOption) http.Handler {
	cfg := config{searchParam: "q", limitParam: "limit", defaultLimit: 50, maxLimit: 200}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		zones := cfg.zones
		if zones == nil {
			loaded, err := DefaultZones()
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			zones = loaded
		}

		limit, err := strconv.Atoi(r.URL.Query().Get(cfg.limitParam))
		if err != nil || limit <= 0 {
			limit = cfg.defaultLimit
		}
		limit = min(limit, cfg.maxLimit)
		results := SearchOptions(zones, r.URL.Query().Get(cfg.searchParam), limit, cfg.emptyTop)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_ = json.NewEncoder(w).Encode(optionsResponse{Data: results})
	})
}
