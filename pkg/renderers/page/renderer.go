package page

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	gotmpl "github.com/goliatone/go-template"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-autoform/pkg/autoform"
	"github.com/goliatone/go-autoform/pkg/dom"
	"github.com/goliatone/go-autoform/pkg/render"
	rendertemplate "github.com/goliatone/go-autoform/pkg/render/template"
	"github.com/goliatone/go-autoform/pkg/render/template/gotemplate"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	assetPrefix      string
	lang             string
	fragment         bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide templates/page.tpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(dir string) Option {
	return func(cfg *config) {
		if dir == "" {
			return
		}
		cfg.templateFS = os.DirFS(dir)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithAssetPrefix sets the URL prefix the bundled stylesheet is served from.
func WithAssetPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.assetPrefix = strings.TrimSpace(prefix)
	}
}

// WithLang sets the document language, "en" by default.
func WithLang(lang string) Option {
	return func(cfg *config) {
		if lang = strings.TrimSpace(lang); lang != "" {
			cfg.lang = lang
		}
	}
}

// Renderer serialises a rendered form tree, either wrapped in a complete
// HTML document or as a bare fragment.
type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	assetPrefix string
	fragment    bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the document renderer.
func New(options ...Option) (*Renderer, error) {
	return build(config{}, options)
}

// NewFragment constructs a renderer that emits only the host element, for
// hosts that embed the form in their own layout.
func NewFragment(options ...Option) (*Renderer, error) {
	return build(config{fragment: true}, options)
}

func build(cfg config, options []Option) (*Renderer, error) {
	cfg.templateFS = TemplatesFS()
	cfg.assetPrefix = "/assets"
	cfg.lang = "en"
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil && !cfg.fragment {
		engine, err := gotemplate.New(
			gotmpl.WithFS(cfg.templateFS),
			gotmpl.WithExtension(".tpl"),
			gotmpl.WithGlobalData(map[string]any{"lang": cfg.lang}),
		)
		if err != nil {
			return nil, fmt.Errorf("page renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:   renderer,
		assetPrefix: cfg.assetPrefix,
		fragment:    cfg.fragment,
	}, nil
}

func (r *Renderer) Name() string {
	if r.fragment {
		return "fragment"
	}
	return "page"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, form *autoform.Node, options render.RenderOptions) ([]byte, error) {
	if err := render.Prepare(ctx, form, options); err != nil {
		return nil, fmt.Errorf("%s renderer: %w", r.Name(), err)
	}
	markup, err := dom.Render(form.Host())
	if err != nil {
		return nil, fmt.Errorf("%s renderer: serialise form: %w", r.Name(), err)
	}
	if r.fragment {
		return []byte(markup), nil
	}
	if r.templates == nil {
		return nil, fmt.Errorf("page renderer: template renderer is nil")
	}

	layout := defaultLayout
	if options.Theme != nil {
		if partial := strings.TrimSpace(options.Theme.Partials[PartialLayout]); partial != "" {
			layout = partial
		}
	}

	result, err := r.templates.RenderTemplate(layout, map[string]any{
		"title": pageTitle(form, options.Title),
		"model": form.Model(),
		"form":  markup,
		"assets": map[string]string{
			"stylesheet": r.stylesheetURL(options.Theme),
		},
		"theme": themeContext(options.Theme),
	})
	if err != nil {
		return nil, fmt.Errorf("page renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) stylesheetURL(cfg *theme.RendererConfig) string {
	if cfg != nil && cfg.AssetURL != nil {
		if resolved := strings.TrimSpace(cfg.AssetURL(AssetStylesheet)); resolved != "" {
			return resolved
		}
	}
	if r.assetPrefix == "" {
		return StylesheetName
	}
	return path.Join(r.assetPrefix, StylesheetName)
}

func pageTitle(form *autoform.Node, title string) string {
	if title = strings.TrimSpace(title); title != "" {
		return title
	}
	if form.Name() != "" {
		return form.Name()
	}
	return form.Model()
}

func themeContext(cfg *theme.RendererConfig) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	return map[string]any{
		"name":     cfg.Theme,
		"variant":  cfg.Variant,
		"tokens":   cfg.Tokens,
		"css_vars": cfg.CSSVars,
	}
}
