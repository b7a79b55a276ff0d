package autoform

import (
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-autoform/pkg/controls"
	"github.com/goliatone/go-autoform/pkg/filecontrol"
	"github.com/goliatone/go-autoform/pkg/validation"
)

// Option configures a root Node.
type Option func(*config)

type config struct {
	id       string
	name     string
	model    string
	level    int
	autoSave bool

	logger    *zap.Logger
	controls  *controls.Registry
	chrome    controls.Chrome
	validator validation.Factory
	files     filecontrol.Factory
	elements  *Elements
	strict    bool

	themeSelector theme.ThemeSelector
	themeName     string
	themeVariant  string
}

func defaultConfig() config {
	return config{
		logger: zap.NewNop(),
		chrome: controls.DefaultChrome(),
	}
}

// WithModel selects the descriptor the node renders.
func WithModel(model string) Option {
	return func(c *config) {
		c.model = model
	}
}

// WithName sets the display name reported by the host element.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithID overrides the generated node id.
func WithID(id string) Option {
	return func(c *config) {
		if id != "" {
			c.id = id
		}
	}
}

// WithLevel sets the nesting level of the root. Level 0 forms get the Save
// button.
func WithLevel(level int) Option {
	return func(c *config) {
		if level >= 0 {
			c.level = level
		}
	}
}

// WithAutoSave stores the auto-save flag. It does not trigger saves.
func WithAutoSave(enabled bool) Option {
	return func(c *config) {
		c.autoSave = enabled
	}
}

// WithLogger injects the logger used for degraded paths.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithControls replaces the field factory registry.
func WithControls(reg *controls.Registry) Option {
	return func(c *config) {
		if reg != nil {
			c.controls = reg
		}
	}
}

// WithChrome replaces the class hooks applied to generated markup.
func WithChrome(chrome controls.Chrome) Option {
	return func(c *config) {
		c.chrome = chrome
	}
}

// WithValidator replaces the validation collaborator.
func WithValidator(factory validation.Factory) Option {
	return func(c *config) {
		if factory != nil {
			c.validator = factory
		}
	}
}

// WithFileControls replaces the rich file control collaborator.
func WithFileControls(factory filecontrol.Factory) Option {
	return func(c *config) {
		if factory != nil {
			c.files = factory
		}
	}
}

// WithElements shares a custom element registry. Nested forms wait for the
// file control element to be defined in it before signalling readiness.
func WithElements(elements *Elements) Option {
	return func(c *config) {
		if elements != nil {
			c.elements = elements
		}
	}
}

// WithStrictSchema makes schema lint errors fatal for the bound model.
func WithStrictSchema() Option {
	return func(c *config) {
		c.strict = true
	}
}

// WithTheme resolves a theme selection whose tokens override the chrome.
func WithTheme(selector theme.ThemeSelector, name, variant string) Option {
	return func(c *config) {
		c.themeSelector = selector
		c.themeName = name
		c.themeVariant = variant
	}
}
