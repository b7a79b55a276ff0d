package render_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-autoform/pkg/autoform"
	"github.com/goliatone/go-autoform/pkg/dom"
	"github.com/goliatone/go-autoform/pkg/render"
	"github.com/goliatone/go-autoform/pkg/schema"
)

const ownerSchema = `{
  "item": {
    "__fieldTypes__": {"name": "text", "tags": "text", "owner": "model:owner"},
    "__modelTypes__": {"name": "single", "tags": "multiple", "owner": "single"}
  },
  "owner": {
    "__fieldTypes__": {"email": "text", "phone": "text"},
    "__modelTypes__": {"email": "single", "phone": "single"}
  }
}`

func newItemForm(t *testing.T) *autoform.Node {
	t.Helper()
	form := autoform.New(autoform.WithModel("item"), autoform.WithID("item"))
	if err := form.SetSchema(schema.MustDecode([]byte(ownerSchema))); err != nil {
		t.Fatalf("set schema: %v", err)
	}
	return form
}

type stubRenderer struct{ name string }

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(context.Context, *autoform.Node, render.RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistryDefaultsToFirstRenderer(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(stubRenderer{name: "page"})
	registry.MustRegister(stubRenderer{name: "fragment"})

	if err := registry.Register(stubRenderer{name: "page"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	got, err := registry.Get("")
	if err != nil || got.Name() != "page" {
		t.Fatalf("default renderer = %v, %v", got, err)
	}
	if err := registry.SetDefault("fragment"); err != nil {
		t.Fatalf("set default: %v", err)
	}
	if got := registry.MustGet("").Name(); got != "fragment" {
		t.Fatalf("default after SetDefault = %q", got)
	}
	if _, err := registry.Get("pdf"); !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("error = %v, want ErrUnknownRenderer", err)
	}
	if diff := cmp.Diff([]string{"fragment", "page"}, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestMapErrorPayloadResolvesRequestPaths(t *testing.T) {
	form := newItemForm(t)

	payload := map[string][]string{
		"/body/name":                 {"Name is required"},
		"body.owner.email":           {"Email invalid"},
		"$.body.tags[0]":             {"Tags must be unique"},
		"request.payload.owner":      {"Owner missing"},
		"non_field_errors":           {"Form level error"},
		"body/owner/phone/~1number":  {"Phone malformed"},
		"request/body/unknown-field": {"Should fall back to form errors"},
		"":                           {"Unscoped form error"},
	}

	mapped := render.MapErrorPayload(form, payload)

	wantFields := map[string][]string{
		"name":        {"Name is required"},
		"owner.email": {"Email invalid"},
		"tags.0":      {"Tags must be unique"},
		"owner":       {"Owner missing"},
		"owner.phone": {"Phone malformed"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

const orderSchema = `{
  "order": {
    "__fieldTypes__": {"ref": "text", "lines": "model:line"},
    "__modelTypes__": {"ref": "single", "lines": "multiple"}
  },
  "line": {
    "__fieldTypes__": {"sku": "text", "qty": "text"},
    "__modelTypes__": {"sku": "single", "qty": "single"}
  }
}`

func newOrderForm(t *testing.T) *autoform.Node {
	t.Helper()
	form := autoform.New(autoform.WithModel("order"), autoform.WithID("order"))
	if err := form.SetSchema(schema.MustDecode([]byte(orderSchema))); err != nil {
		t.Fatalf("set schema: %v", err)
	}
	return form
}

func TestErrorsTargetRepeatedModelInstance(t *testing.T) {
	form := newOrderForm(t)

	err := render.Prepare(context.Background(), form, render.RenderOptions{
		Values: map[string]any{
			"ref": "A-1",
			"lines": []any{
				map[string]any{"sku": "lamp", "qty": "1"},
				map[string]any{"sku": "", "qty": "2"},
			},
		},
		Errors: map[string][]string{
			"/body/lines/1/sku": {"SKU is required"},
			"lines[7].sku":      {"Stale line"},
		},
	})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	lines := form.Children()
	if len(lines) != 2 {
		t.Fatalf("line instances = %d, want 2", len(lines))
	}
	first := dom.In(lines[0].Container()).First(dom.AttrEquals("name", "sku"))
	second := dom.In(lines[1].Container()).First(dom.AttrEquals("name", "sku"))
	if dom.HasClass(first, "is-invalid") {
		t.Fatalf("first line flagged invalid")
	}
	if !dom.HasClass(second, "is-invalid") || dom.GetAttr(second, "aria-invalid") != "true" {
		t.Fatalf("second line not flagged invalid: %s", dom.MustRender(second))
	}
	if got := dom.TextContent(second.NextSibling); got != "SKU is required" {
		t.Fatalf("second line feedback = %q", got)
	}

	mapped := render.MapErrorPayload(form, map[string][]string{"/body/lines/1/sku": {"x"}})
	if _, ok := mapped.Fields["lines.1.sku"]; !ok {
		t.Fatalf("fields = %v, want lines.1.sku", mapped.Fields)
	}
	if !strings.Contains(dom.MustRender(form.Container()), "Stale line") {
		t.Fatalf("out of range instance error not listed at form level")
	}
}

func TestPrepareMergesFormErrors(t *testing.T) {
	form := newItemForm(t)

	err := render.Prepare(context.Background(), form, render.RenderOptions{
		Errors:     map[string][]string{"__all__": {"Try again"}},
		FormErrors: []string{" Try again ", "Please fix the highlighted fields."},
	})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	banner := form.Container().FirstChild
	if !dom.HasClass(banner, "form-errors") {
		t.Fatalf("first child is not the form error list: %s", dom.MustRender(banner))
	}
	if got, want := dom.TextContent(banner), "Try again Please fix the highlighted fields."; got != want {
		t.Fatalf("form errors = %q, want %q", got, want)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestPrepareFillsValuesHiddenAndErrors(t *testing.T) {
	form := newItemForm(t)

	err := render.Prepare(context.Background(), form, render.RenderOptions{
		Values: map[string]any{
			"name":  "Lamp",
			"tags":  []any{"a", "b"},
			"owner": map[string]any{"email": "ada@example.com"},
		},
		Hidden: render.MergeHiddenFields(nil, render.CSRFToken("_csrf", "t0k3n")),
		Errors: map[string][]string{
			"owner.phone": {"Phone is required"},
			"form":        {"Try again"},
		},
	})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	want := map[string]any{
		"name":  "Lamp",
		"tags":  []any{"a", "b"},
		"owner": map[string]any{"email": "ada@example.com", "phone": ""},
	}
	if diff := cmp.Diff(want, form.GetFormData()); diff != "" {
		t.Fatalf("form data mismatch (-want +got):\n%s", diff)
	}

	csrf := form.Container().FirstChild
	if dom.GetAttr(csrf, "name") != "_csrf" || dom.GetAttr(csrf, "value") != "t0k3n" {
		t.Fatalf("hidden submission input not first in form: %s", dom.MustRender(csrf))
	}

	owner := form.Children()[0]
	phone := dom.In(owner.Container()).First(dom.AttrEquals("name", "phone"))
	if !dom.HasClass(phone, "is-invalid") {
		t.Fatalf("phone not flagged invalid")
	}
	if got := dom.TextContent(phone.NextSibling); got != "Phone is required" {
		t.Fatalf("phone feedback = %q", got)
	}
	if !strings.Contains(dom.MustRender(form.Container()), "Try again") {
		t.Fatalf("form-level error missing")
	}
}

func TestPrepareRequiresRenderedForm(t *testing.T) {
	form := autoform.New(autoform.WithModel("item"))
	err := render.Prepare(context.Background(), form, render.RenderOptions{})
	if !errors.Is(err, autoform.ErrNotRendered) {
		t.Fatalf("error = %v, want ErrNotRendered", err)
	}
}
