// Package autoform is the entry point for callers that want HTML from a
// schema bundle without wiring the form, loader and renderer themselves.
package autoform

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	form "github.com/goliatone/go-autoform/pkg/autoform"
	"github.com/goliatone/go-autoform/pkg/openapi"
	"github.com/goliatone/go-autoform/pkg/render"
	"github.com/goliatone/go-autoform/pkg/renderers/page"
	"github.com/goliatone/go-autoform/pkg/schema"
)

// RenderOptions describes per-request values, errors and hidden inputs.
type RenderOptions = render.RenderOptions

// Option configures GenerateHTML.
type Option func(*generator)

type generator struct {
	loader   *schema.Loader
	renderer render.Renderer
	form     []form.Option
	render   RenderOptions
	logger   *zap.Logger
}

// WithLoader replaces the default bundle loader.
func WithLoader(loader *schema.Loader) Option {
	return func(g *generator) {
		if loader != nil {
			g.loader = loader
		}
	}
}

// WithRenderer replaces the full page renderer.
func WithRenderer(renderer render.Renderer) Option {
	return func(g *generator) {
		if renderer != nil {
			g.renderer = renderer
		}
	}
}

// WithFormOptions forwards options to the form tree.
func WithFormOptions(opts ...form.Option) Option {
	return func(g *generator) {
		g.form = append(g.form, opts...)
	}
}

// WithRenderOptions sets the per-request render options.
func WithRenderOptions(opts RenderOptions) Option {
	return func(g *generator) {
		g.render = opts
	}
}

// WithLogger sets the logger shared by the loader, importer and form.
func WithLogger(logger *zap.Logger) Option {
	return func(g *generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// GenerateHTML loads src, renders model and serialises it with the page
// renderer unless WithRenderer says otherwise. OpenAPI documents are
// imported first.
func GenerateHTML(ctx context.Context, src schema.Source, model string, options ...Option) ([]byte, error) {
	g := newGenerator(options)
	bundle, err := LoadBundle(ctx, g.loader, src, g.logger)
	if err != nil {
		return nil, err
	}
	return g.generate(ctx, bundle, model)
}

// GenerateHTMLFromBundle renders model from an already decoded bundle.
func GenerateHTMLFromBundle(ctx context.Context, bundle *schema.Bundle, model string, options ...Option) ([]byte, error) {
	return newGenerator(options).generate(ctx, bundle, model)
}

// LoadBundle reads src and decodes it as a bundle, or imports it when it is
// an OpenAPI document.
func LoadBundle(ctx context.Context, loader *schema.Loader, src schema.Source, logger *zap.Logger) (*schema.Bundle, error) {
	if loader == nil {
		loader = schema.NewLoader()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	doc, err := loader.Read(ctx, src)
	if err != nil {
		return nil, err
	}
	if openapi.Detect(doc.Raw()) {
		logger.Debug("importing openapi document", zap.String("location", doc.Location()))
		return openapi.New(openapi.WithLogger(logger)).ImportDocument(ctx, doc)
	}
	return loader.Load(ctx, src)
}

func newGenerator(options []Option) *generator {
	g := &generator{logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	if g.loader == nil {
		g.loader = schema.NewLoader()
	}
	return g
}

func (g *generator) generate(ctx context.Context, bundle *schema.Bundle, model string) ([]byte, error) {
	renderer := g.renderer
	if renderer == nil {
		full, err := page.New()
		if err != nil {
			return nil, fmt.Errorf("autoform: page renderer: %w", err)
		}
		renderer = full
	}

	opts := append([]form.Option{form.WithModel(model), form.WithLogger(g.logger)}, g.form...)
	root := form.New(opts...)
	if err := root.SetSchema(bundle); err != nil {
		return nil, err
	}
	renderOpts := g.render
	if renderOpts.Theme == nil {
		renderOpts.Theme = form.RendererTheme(root.Theme(), nil)
	}
	return renderer.Render(ctx, root, renderOpts)
}
