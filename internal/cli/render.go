package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/goliatone/go-autoform/pkg/autoform"
	"github.com/goliatone/go-autoform/pkg/render"
	"github.com/goliatone/go-autoform/pkg/renderers/page"
)

// RenderCmd returns the render command.
func RenderCmd(cfg Config) *Command {
	flags := flag.NewFlagSet("render", flag.ContinueOnError)
	bindCommon(flags, &cfg)
	flags.StringVar(&cfg.Theme, "theme", cfg.Theme, "theme manifest (JSON) (env "+EnvTheme+")")
	flags.StringVar(&cfg.Variant, "variant", cfg.Variant, "theme variant")
	rendererName := flags.StringP("renderer", "r", "page", "page or fragment")
	valuesPath := flags.String("values", "", "JSON values to prefill, - for stdin")
	title := flags.String("title", "", "page title")
	assetPrefix := flags.String("asset-prefix", "", "URL prefix of the bundled stylesheet")
	output := flags.StringP("output", "o", "", "output file (stdout if empty)")
	strict := flags.Bool("strict", false, "refuse bundles with lint errors")

	return &Command{
		Flags: flags,
		Usage: "render [flags]",
		Short: "Render a model as HTML",
		Long:  "Render a model of a schema bundle (or OpenAPI document) as a full page or a form fragment.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			s, err := newSession(cfg, o, *strict)
			if err != nil {
				return err
			}
			registry, err := htmlRenderers(*assetPrefix)
			if err != nil {
				return err
			}
			renderer, err := registry.Get(*rendererName)
			if err != nil {
				return err
			}
			values, err := readValues(o, *valuesPath)
			if err != nil {
				return err
			}
			form, err := s.form(ctx)
			if err != nil {
				return err
			}
			out, err := renderer.Render(ctx, form, render.RenderOptions{
				Title:  *title,
				Values: values,
				Theme:  autoform.RendererTheme(form.Theme(), nil),
			})
			if err != nil {
				return err
			}
			return writeOutput(o, *output, out)
		},
	}
}

func htmlRenderers(assetPrefix string) (*render.Registry, error) {
	registry := render.NewRegistry()
	full, err := page.New(page.WithAssetPrefix(assetPrefix))
	if err != nil {
		return nil, fmt.Errorf("page renderer: %w", err)
	}
	fragment, err := page.NewFragment()
	if err != nil {
		return nil, fmt.Errorf("fragment renderer: %w", err)
	}
	if err := registry.Register(full); err != nil {
		return nil, err
	}
	if err := registry.Register(fragment); err != nil {
		return nil, err
	}
	return registry, nil
}
