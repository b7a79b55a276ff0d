package page_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/autoform"
	"github.com/goliatone/go-autoform/pkg/dom"
	"github.com/goliatone/go-autoform/pkg/render"
	"github.com/goliatone/go-autoform/pkg/renderers/page"
	"github.com/goliatone/go-autoform/pkg/schema"
)

const contactSchema = `{
  "contact": {
    "__fieldTypes__": {"name": "text", "email": "email", "address": "model:address"},
    "__modelTypes__": {"name": "single", "email": "single", "address": "single"},
    "__labels__": {"name": "Full name"}
  },
  "address": {
    "__fieldTypes__": {"city": "text"},
    "__modelTypes__": {"city": "single"}
  }
}`

func newContactForm(t *testing.T) *autoform.Node {
	t.Helper()
	form := autoform.New(autoform.WithModel("contact"), autoform.WithName("Contact"), autoform.WithID("contact"))
	require.NoError(t, form.SetSchema(schema.MustDecode([]byte(contactSchema))))
	return form
}

func parse(t *testing.T, out []byte) *html.Node {
	t.Helper()
	doc, err := html.Parse(bytes.NewReader(out))
	require.NoError(t, err)
	return doc
}

func acmeTheme() *theme.RendererConfig {
	return &theme.RendererConfig{
		Theme:   "acme",
		Variant: "dark",
		Tokens:  map[string]string{"brand": "#654321"},
		CSSVars: map[string]string{"--brand": "#654321"},
		AssetURL: func(key string) string {
			if key == page.AssetStylesheet {
				return "/themes/acme/theme.css"
			}
			return ""
		},
	}
}

func TestRendererEmitsDocument(t *testing.T) {
	renderer, err := page.New()
	require.NoError(t, err)
	require.Equal(t, "page", renderer.Name())
	require.Equal(t, "text/html; charset=utf-8", renderer.ContentType())

	out, err := renderer.Render(context.Background(), newContactForm(t), render.RenderOptions{
		Values: map[string]any{"name": "Ada", "address": map[string]any{"city": "London"}},
		Hidden: map[string]string{"_csrf": "t0k3n"},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), "<!DOCTYPE html>"))

	doc := parse(t, out)
	q := dom.In(doc)
	require.Equal(t, "Contact", dom.TextContent(q.First(dom.Tag("title"))))
	require.Equal(t, "/assets/autoform.css", dom.GetAttr(q.First(dom.Tag("link")), "href"))
	require.Nil(t, q.ByID("autoform-theme"), "no theme style without a theme")

	host := q.ByID("contact")
	require.NotNil(t, host)
	require.Equal(t, "json-autoform", host.Data)
	require.Equal(t, "Ada", dom.GetAttr(q.First(dom.AttrEquals("name", "name")), "value"))
	require.Equal(t, "London", dom.GetAttr(q.First(dom.AttrEquals("name", "city")), "value"))
	require.Equal(t, "t0k3n", dom.GetAttr(q.First(dom.AttrEquals("name", "_csrf")), "value"))
}

func TestRendererAppliesTheme(t *testing.T) {
	renderer, err := page.New()
	require.NoError(t, err)

	out, err := renderer.Render(context.Background(), newContactForm(t), render.RenderOptions{
		Title: "New contact",
		Theme: acmeTheme(),
	})
	require.NoError(t, err)

	doc := parse(t, out)
	q := dom.In(doc)
	require.Equal(t, "New contact", dom.TextContent(q.First(dom.Tag("title"))))
	require.Equal(t, "/themes/acme/theme.css", dom.GetAttr(q.First(dom.Tag("link")), "href"))
	require.Contains(t, dom.TextContent(q.ByID("autoform-theme")), "--brand: #654321;")

	body := q.First(dom.Tag("body"))
	require.Equal(t, "acme", dom.GetAttr(body, "data-theme"))
	require.Equal(t, "dark", dom.GetAttr(body, "data-theme-variant"))
	require.Contains(t, dom.TextContent(q.ByID("autoform-theme-data")), `"name":"acme"`)
}

func TestRendererSurfacesErrors(t *testing.T) {
	renderer, err := page.New()
	require.NoError(t, err)

	out, err := renderer.Render(context.Background(), newContactForm(t), render.RenderOptions{
		Errors: map[string][]string{"email": {"Email is required"}, "form": {"Try again"}},
	})
	require.NoError(t, err)

	q := dom.In(parse(t, out))
	email := q.First(dom.AttrEquals("name", "email"))
	require.Equal(t, "true", dom.GetAttr(email, "aria-invalid"))
	require.Contains(t, string(out), "Email is required")
	require.Contains(t, string(out), "Try again")
}

func TestFragmentRendererEmitsHostOnly(t *testing.T) {
	renderer, err := page.NewFragment()
	require.NoError(t, err)
	require.Equal(t, "fragment", renderer.Name())

	out, err := renderer.Render(context.Background(), newContactForm(t), render.RenderOptions{})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), `<json-autoform name="Contact" model-name="contact" id="contact"`), string(out))
	require.NotContains(t, string(out), "<html")
}

func TestRendererThemeLayoutPartial(t *testing.T) {
	files := fstest.MapFS{
		"templates/page.tpl":   {Data: []byte("default")},
		"themes/acme/page.tpl": {Data: []byte(`<section data-title="{{ title }}">{{ form|safe }}</section>`)},
	}
	renderer, err := page.New(page.WithTemplatesFS(files))
	require.NoError(t, err)

	cfg := acmeTheme()
	cfg.Partials = map[string]string{page.PartialLayout: "themes/acme/page.tpl"}
	out, err := renderer.Render(context.Background(), newContactForm(t), render.RenderOptions{Theme: cfg})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), `<section data-title="Contact"><json-autoform`), string(out))
}

func TestRendererRequiresRenderedForm(t *testing.T) {
	renderer, err := page.New()
	require.NoError(t, err)

	_, err = renderer.Render(context.Background(), autoform.New(autoform.WithModel("contact")), render.RenderOptions{})
	require.True(t, errors.Is(err, autoform.ErrNotRendered), "error = %v", err)
}

func TestAssetsFSServesStylesheet(t *testing.T) {
	data, err := fs.ReadFile(page.AssetsFS(), page.StylesheetName)
	require.NoError(t, err)
	require.Contains(t, string(data), "json-autoform")
}

func TestRendererDocumentLanguage(t *testing.T) {
	for _, tc := range []struct {
		name    string
		options []page.Option
		want    string
	}{
		{name: "default", want: "en"},
		{name: "configured", options: []page.Option{page.WithLang("nb")}, want: "nb"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			renderer, err := page.New(tc.options...)
			require.NoError(t, err)

			out, err := renderer.Render(context.Background(), newContactForm(t), render.RenderOptions{})
			require.NoError(t, err)
			require.Equal(t, tc.want, dom.GetAttr(dom.In(parse(t, out)).First(dom.Tag("html")), "lang"))
		})
	}
}
