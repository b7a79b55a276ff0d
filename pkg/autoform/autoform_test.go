package autoform

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/controls"
	"github.com/goliatone/go-autoform/pkg/dom"
	"github.com/goliatone/go-autoform/pkg/filecontrol"
	"github.com/goliatone/go-autoform/pkg/schema"
	"github.com/goliatone/go-autoform/pkg/validation"
)

const profileSchema = `{
  "genders": ["male", "female"],
  "hobbies": ["chess", "go", "piano"],
  "profile": {
    "__fieldTypes__": {
      "name": "text",
      "age": "number",
      "gender": "radio:genders",
      "hobbies": "checkbox:hobbies",
      "tags": "text",
      "address": "model:address",
      "secret": "hidden"
    },
    "__modelTypes__": {
      "name": "single",
      "age": "single",
      "gender": "single",
      "hobbies": "single",
      "tags": "multiple",
      "address": "single",
      "secret": "single"
    },
    "__labels__": {"name": "Full name"},
    "__groups__": {"personal": ["name", "age"]},
    "__validations__": {"name": {"required": true}}
  },
  "address": {
    "__fieldTypes__": {"street": "text", "city": "text"},
    "__modelTypes__": {"street": "single", "city": "single"}
  }
}`

func newProfile(t *testing.T, opts ...Option) *Node {
	t.Helper()
	opts = append([]Option{WithModel("profile"), WithID("root")}, opts...)
	root := New(opts...)
	if err := root.SetSchema(schema.MustDecode([]byte(profileSchema))); err != nil {
		t.Fatalf("set schema: %v", err)
	}
	return root
}

func named(n *Node, name string) []*html.Node {
	return n.scope().All(dom.And(dom.Tag("input", "select", "textarea"), dom.AttrEquals("name", name)))
}

func emptyProfile() map[string]any {
	return map[string]any{
		"name":    "",
		"age":     "",
		"gender":  "",
		"hobbies": "",
		"tags":    "",
		"secret":  "",
		"address": map[string]any{"street": "", "city": ""},
	}
}

func TestSetSchemaRendersTree(t *testing.T) {
	root := newProfile(t)

	if root.State() != StateRendered {
		t.Fatalf("state = %s, want rendered", root.State())
	}
	if got := root.Pending(); len(got) != 0 {
		t.Fatalf("pending = %v, want none", got)
	}
	if got := dom.GetAttr(root.Container(), "id"); got != "form-root" {
		t.Fatalf("form id = %q", got)
	}

	children := root.Children()
	if len(children) != 1 {
		t.Fatalf("children = %d, want 1", len(children))
	}
	child := children[0]
	if child.ID() != "root-address-0" || child.Model() != "address" || child.Level() != 1 {
		t.Fatalf("unexpected child id=%q model=%q level=%d", child.ID(), child.Model(), child.Level())
	}
	if child.State() != StateRendered {
		t.Fatalf("child state = %s", child.State())
	}
	if found, ok := root.Find(child.ID()); !ok || found != child {
		t.Fatalf("find child failed")
	}

	if dom.In(root.Container()).First(dom.AttrEquals("name", "saveButton")) == nil {
		t.Fatalf("root form has no save button")
	}
	if dom.In(child.Container()).First(dom.AttrEquals("name", "saveButton")) != nil {
		t.Fatalf("nested form must not carry a save button")
	}
}

func TestSetSchemaFatalCases(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		want   error
	}{
		{
			name:   "missing model types",
			schema: `{"m": {"__fieldTypes__": {"a": "text"}}}`,
			want:   ErrMissingCardinality,
		},
		{
			name:   "no types at all",
			schema: `{"m": {"__labels__": {"a": "A"}}}`,
			want:   ErrUnusableSchema,
		},
		{
			name:   "absent model",
			schema: `{"other": {"__fieldTypes__": {}}}`,
			want:   ErrUnusableSchema,
		},
		{
			name:   "unknown cardinality",
			schema: `{"m": {"__fieldTypes__": {"a": "text"}, "__modelTypes__": {"a": "many"}}}`,
			want:   ErrUnknownCardinality,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := New(WithModel("m"))
			err := root.SetSchema(schema.MustDecode([]byte(tt.schema)))
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if root.State() == StateRendered {
				t.Fatalf("failed node must not be rendered")
			}
			if root.Container().FirstChild != nil {
				t.Fatalf("failed node left markup behind")
			}
		})
	}
}

func TestEmptyTypeMapsAreUsable(t *testing.T) {
	root := New(WithModel("m"))
	if err := root.SetSchema(schema.MustDecode([]byte(`{"m": {"__fieldTypes__": {}}}`))); err != nil {
		t.Fatalf("set schema: %v", err)
	}
	if diff := cmp.Diff(map[string]any{}, root.GetFormData()); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestGetFormDataInitialAndIdempotent(t *testing.T) {
	root := newProfile(t)

	first := root.GetFormData()
	if diff := cmp.Diff(emptyProfile(), first); diff != "" {
		t.Fatalf("initial data mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, root.GetFormData()); diff != "" {
		t.Fatalf("second read differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first, root.WorkingValue()); diff != "" {
		t.Fatalf("working value not replaced by read (-want +got):\n%s", diff)
	}
}

func TestFillRoundTrip(t *testing.T) {
	root := newProfile(t)
	in := map[string]any{
		"name":    "Ada",
		"age":     "36",
		"gender":  "female",
		"hobbies": []any{"chess", "piano"},
		"tags":    []any{"a", "b", "c"},
		"secret":  "s3",
		"address": map[string]any{"street": "Main", "city": "Oslo"},
	}

	if err := root.FillDataValues("", in, nil); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if diff := cmp.Diff(in, root.GetFormData()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	shrunk := map[string]any{"tags": []any{"z"}}
	if err := root.FillDataValues("", shrunk, nil); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if got := root.GetFormData()["tags"]; got != "z" {
		t.Fatalf("tags after shrink = %#v, want \"z\"", got)
	}
	if got := len(root.instances("tags")); got != 1 {
		t.Fatalf("instances after shrink = %d, want 1", got)
	}
}

func TestFillErrors(t *testing.T) {
	root := newProfile(t)

	if err := root.FillDataValues("", []any{"a"}, nil); !errors.Is(err, errListWithoutName) {
		t.Fatalf("error = %v, want list without name", err)
	}
	if err := root.Fill("missing", map[string]any{}); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("error = %v, want ErrUnknownNode", err)
	}
	if err := root.FillDataValues("", map[string]any{"unknown": "x"}, nil); err != nil {
		t.Fatalf("unknown keys must be ignored, got %v", err)
	}
}

func TestFillByNodeID(t *testing.T) {
	root := newProfile(t)

	if err := root.Fill("root-address-0", map[string]any{"city": "Lima"}); err != nil {
		t.Fatalf("fill: %v", err)
	}
	address := root.GetFormData()["address"].(map[string]any)
	if address["city"] != "Lima" {
		t.Fatalf("city = %#v", address["city"])
	}
}

func TestRepeatedNamesAccumulate(t *testing.T) {
	root := newProfile(t)

	for range 2 {
		if err := root.AddNewElement("tags"); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	for i, value := range []string{"a", "b", "c"} {
		if err := root.SetValue(named(root, "tags")[i], value); err != nil {
			t.Fatalf("set value: %v", err)
		}
	}
	if diff := cmp.Diff([]any{"a", "b", "c"}, root.GetFormData()["tags"]); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupsClaimTheirFields(t *testing.T) {
	bundle := schema.MustDecode([]byte(`{"m": {
	  "__fieldTypes__": {"f1": "text", "f2": "text", "f3": "text"},
	  "__modelTypes__": {"f1": "single", "f2": "single", "f3": "single"},
	  "__groups__": {"g1": ["f1", "f2"], "2": []}
	}}`))
	root := New(WithModel("m"))
	if err := root.SetSchema(bundle); err != nil {
		t.Fatalf("set schema: %v", err)
	}

	fieldset := root.scope().ByID("g1")
	if fieldset == nil {
		t.Fatalf("group fieldset missing")
	}
	for _, name := range []string{"f1", "f2"} {
		if got := dom.Closest(named(root, name)[0], dom.Tag("fieldset")); got != fieldset {
			t.Fatalf("%s is not inside g1", name)
		}
	}
	f3 := named(root, "f3")[0]
	if dom.Closest(f3, dom.Tag("fieldset")) != nil {
		t.Fatalf("f3 must live in the root container")
	}
	if f3.Parent.Parent != root.Container() {
		t.Fatalf("f3 layer is not a direct child of the form")
	}

	anonymous := root.scope().ByID("_2")
	if anonymous == nil {
		t.Fatalf("anonymous group fieldset missing")
	}
	legend := dom.In(anonymous).First(dom.Tag("legend"))
	if !dom.HasAttr(legend, "hidden") {
		t.Fatalf("anonymous legend must be hidden")
	}
}

func TestAddNewElementNeverDuplicatesButton(t *testing.T) {
	root := newProfile(t)
	buttons := func() int {
		return len(root.scope().All(dom.ID(controls.AddPrefix + "-tags")))
	}

	before := len(named(root, "tags"))
	if err := root.AddNewElement("tags"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := len(named(root, "tags")); got != before+1 {
		t.Fatalf("controls = %d, want %d", got, before+1)
	}
	if buttons() != 1 {
		t.Fatalf("add buttons = %d, want 1", buttons())
	}

	btn := root.scope().ByID(controls.AddPrefix + "-tags")
	if err := root.Dispatch(btn, controls.EventClick); err != nil {
		t.Fatalf("click: %v", err)
	}
	if got := len(named(root, "tags")); got != before+2 {
		t.Fatalf("controls after click = %d, want %d", got, before+2)
	}
	if buttons() != 1 {
		t.Fatalf("add buttons after click = %d, want 1", buttons())
	}

	ids := map[string]bool{}
	for _, el := range named(root, "tags") {
		id := dom.GetAttr(el, "id")
		if ids[id] {
			t.Fatalf("duplicate id %q", id)
		}
		ids[id] = true
	}
}

func TestRemoveElement(t *testing.T) {
	root := newProfile(t)
	if err := root.FillDataValues("tags", []any{"a", "b", "c"}, nil); err != nil {
		t.Fatalf("fill: %v", err)
	}

	if err := root.RemoveElement("tags", 1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if diff := cmp.Diff([]any{"a", "c"}, root.GetFormData()["tags"]); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if err := root.RemoveElement("tags", 5); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("error = %v, want ErrUnknownNode", err)
	}
	if err := root.RemoveElement("tags", 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := root.RemoveElement("tags", 0); !errors.Is(err, ErrLastInstance) {
		t.Fatalf("error = %v, want ErrLastInstance", err)
	}

	if err := root.AddNewElement("tags"); err != nil {
		t.Fatalf("add: %v", err)
	}
	ids := map[string]bool{}
	for _, el := range named(root, "tags") {
		ids[dom.GetAttr(el, "id")] = true
	}
	if len(ids) != 2 {
		t.Fatalf("ids after re-add = %v, want two distinct", ids)
	}
}

func TestSaveForm(t *testing.T) {
	root := newProfile(t)
	var saved []SaveRequested
	On(root.Bus(), func(e SaveRequested) { saved = append(saved, e) })

	if root.SaveForm() {
		t.Fatalf("save must fail while the required name is empty")
	}
	if len(saved) != 0 {
		t.Fatalf("save emitted %d events for an invalid form", len(saved))
	}
	if !dom.HasClass(named(root, "name")[0], "is-invalid") {
		t.Fatalf("empty required field not flagged")
	}

	if err := root.SetValue(named(root, "name")[0], "Ada"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if !root.SaveForm() {
		t.Fatalf("save failed on a valid form")
	}
	if len(saved) != 1 {
		t.Fatalf("save emitted %d events, want 1", len(saved))
	}
	if saved[0].ID != "root" || saved[0].Data["name"] != "Ada" {
		t.Fatalf("unexpected save payload %+v", saved[0])
	}

	btn := dom.In(root.Container()).First(dom.AttrEquals("name", "saveButton"))
	if err := root.Dispatch(btn, controls.EventClick); err != nil {
		t.Fatalf("click save: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("save button emitted %d events in total, want 2", len(saved))
	}

	if root.Children()[0].SaveForm() {
		t.Fatalf("nested forms must not save")
	}
}

func TestFieldUpdatedNotifications(t *testing.T) {
	root := newProfile(t)
	var updates []FieldUpdated
	On(root.Bus(), func(e FieldUpdated) { updates = append(updates, e) })

	name := named(root, "name")[0]
	if err := root.SetValue(name, "Grace"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if len(updates) != 1 || updates[0].NodeID != "root" || updates[0].Target != name {
		t.Fatalf("unexpected updates %+v", updates)
	}
	if got := root.WorkingValue()["name"]; got != "Grace" {
		t.Fatalf("working name = %#v", got)
	}

	female := named(root, "gender")[1]
	if err := root.SetChecked(female, true); err != nil {
		t.Fatalf("set checked: %v", err)
	}
	if got := root.WorkingValue()["gender"]; got != "female" {
		t.Fatalf("working gender = %#v", got)
	}
}

func TestPendingHandshake(t *testing.T) {
	elements := NewElements()
	root := newProfile(t, WithElements(elements))

	child := root.Children()[0]
	if diff := cmp.Diff([]string{child.ID()}, root.Pending()); diff != "" {
		t.Fatalf("pending mismatch (-want +got):\n%s", diff)
	}
	if child.State() != StateUnbound {
		t.Fatalf("child state = %s, want unbound", child.State())
	}
	if got := root.GetFormData()["address"]; !cmp.Equal(got, map[string]any{}) {
		t.Fatalf("pending child data = %#v, want empty object", got)
	}

	if err := root.FillDataValues("address", map[string]any{"street": "Main"}, nil); err != nil {
		t.Fatalf("deferred fill: %v", err)
	}

	var ready []string
	On(root.Bus(), func(e ComponentReady) { ready = append(ready, e.ID) })
	elements.Define(controls.FileTag)

	if got := root.Pending(); len(got) != 0 {
		t.Fatalf("pending after define = %v", got)
	}
	if diff := cmp.Diff([]string{child.ID()}, ready); diff != "" {
		t.Fatalf("ready mismatch (-want +got):\n%s", diff)
	}
	address := root.GetFormData()["address"].(map[string]any)
	if address["street"] != "Main" {
		t.Fatalf("deferred fill lost: %#v", address)
	}
}

func TestNestedFailureLeavesParentRendered(t *testing.T) {
	bundle := schema.MustDecode([]byte(`{
	  "outer": {
	    "__fieldTypes__": {"title": "text", "inner": "model:inner"},
	    "__modelTypes__": {"title": "single", "inner": "single"}
	  },
	  "inner": {"__labels__": {"x": "X"}}
	}`))
	root := New(WithModel("outer"))
	var failed []NodeFailed
	On(root.Bus(), func(e NodeFailed) { failed = append(failed, e) })

	if err := root.SetSchema(bundle); err != nil {
		t.Fatalf("set schema: %v", err)
	}
	if root.State() != StateRendered {
		t.Fatalf("parent state = %s", root.State())
	}
	if len(failed) != 1 || !errors.Is(failed[0].Err, ErrUnusableSchema) {
		t.Fatalf("unexpected failures %+v", failed)
	}
	if !errors.Is(root.Err(), ErrUnusableSchema) {
		t.Fatalf("root error = %v", root.Err())
	}
}

func TestApplyValues(t *testing.T) {
	root := newProfile(t)
	values := url.Values{
		"name":         {"Ada"},
		"tags":         {"x", "y"},
		"hobbies":      {"go"},
		"address.city": {"Oslo"},
	}
	if err := root.ApplyValues(values); err != nil {
		t.Fatalf("apply: %v", err)
	}

	data := root.GetFormData()
	if data["name"] != "Ada" || data["hobbies"] != "go" {
		t.Fatalf("unexpected data %#v", data)
	}
	if diff := cmp.Diff([]any{"x", "y"}, data["tags"]); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if data["address"].(map[string]any)["city"] != "Oslo" {
		t.Fatalf("nested city missing: %#v", data["address"])
	}
}

func TestStrictSchema(t *testing.T) {
	raw := []byte(`{"m": {
	  "__fieldTypes__": {"a": "text"},
	  "__modelTypes__": {"a": "single"},
	  "__groups__": {"g1": ["a"], "g2": ["a"]}
	}}`)

	lenient := New(WithModel("m"))
	if err := lenient.SetSchema(schema.MustDecode(raw)); err != nil {
		t.Fatalf("lenient set schema: %v", err)
	}
	input := named(lenient, "a")[0]
	if got := dom.Closest(input, dom.Tag("fieldset")); dom.GetAttr(got, "id") != "g2" {
		t.Fatalf("last group must win, got %q", dom.GetAttr(got, "id"))
	}

	strict := New(WithModel("m"), WithStrictSchema())
	if err := strict.SetSchema(schema.MustDecode(raw)); !errors.Is(err, schema.ErrInvalidBundle) {
		t.Fatalf("strict error = %v, want ErrInvalidBundle", err)
	}
}

const orderSchema = `{
  "order": {
    "__fieldTypes__": {"ref": "text", "lines": "model:line"},
    "__modelTypes__": {"ref": "single", "lines": "multiple"}
  },
  "line": {
    "__fieldTypes__": {"sku": "text", "qty": "number", "meta": "model:meta"},
    "__modelTypes__": {"sku": "single", "qty": "single", "meta": "single"}
  },
  "meta": {
    "__fieldTypes__": {"note": "text"},
    "__modelTypes__": {"note": "single"}
  }
}`

func newOrder(t *testing.T, opts ...Option) *Node {
	t.Helper()
	root := New(append([]Option{WithModel("order"), WithID("order")}, opts...)...)
	if err := root.SetSchema(schema.MustDecode([]byte(orderSchema))); err != nil {
		t.Fatalf("set schema: %v", err)
	}
	return root
}

func orderLine(sku, qty, note string) map[string]any {
	return map[string]any{"sku": sku, "qty": qty, "meta": map[string]any{"note": note}}
}

func TestRepeatedNestedModelRoundTrip(t *testing.T) {
	root := newOrder(t)
	in := map[string]any{
		"ref":   "A-1",
		"lines": []any{orderLine("x", "1", "first"), orderLine("y", "2", "second")},
	}

	if err := root.FillDataValues("", in, nil); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if diff := cmp.Diff(in, root.GetFormData()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got := len(root.instances("lines")); got != 2 {
		t.Fatalf("line instances = %d, want 2", got)
	}

	if err := root.FillDataValues("", map[string]any{"lines": []any{orderLine("z", "3", "only")}}, nil); err != nil {
		t.Fatalf("shrink: %v", err)
	}
	if diff := cmp.Diff(orderLine("z", "3", "only"), root.GetFormData()["lines"]); diff != "" {
		t.Fatalf("shrunk lines mismatch (-want +got):\n%s", diff)
	}
}

func TestRepeatedNestedModelWhilePending(t *testing.T) {
	elements := NewElements()
	root := newOrder(t, WithElements(elements))

	in := []any{orderLine("x", "1", "first"), orderLine("y", "2", "second")}
	if err := root.FillDataValues("lines", in, nil); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if err := root.AddNewElement("lines"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := len(root.Pending()); got != 3 {
		t.Fatalf("pending = %v, want three line forms", root.Pending())
	}

	elements.Define(controls.FileTag)

	if got := root.Pending(); len(got) != 0 {
		t.Fatalf("pending after define = %v", got)
	}
	want := append(in, orderLine("", "", ""))
	if diff := cmp.Diff(want, root.GetFormData()["lines"]); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveFormRejectsRuleFailures(t *testing.T) {
	bundle := schema.MustDecode([]byte(`{"contact": {
	  "__fieldTypes__": {"email": "text"},
	  "__modelTypes__": {"email": "single"},
	  "__validations__": {"email": {"required": true, "tovalidate": "email"}}
	}}`))
	root := New(WithModel("contact"))
	if err := root.SetSchema(bundle); err != nil {
		t.Fatalf("set schema: %v", err)
	}
	var saved []SaveRequested
	On(root.Bus(), func(e SaveRequested) { saved = append(saved, e) })

	email := named(root, "email")[0]
	if err := root.SetValue(email, "ada@"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if root.SaveForm() {
		t.Fatalf("save must fail when a rule fails")
	}
	if len(saved) != 0 {
		t.Fatalf("save emitted %d events for an invalid value", len(saved))
	}
	if !dom.HasClass(email, "is-invalid") {
		t.Fatalf("invalid value not flagged")
	}
	v, ok := root.Validator().(*validation.FormValidator)
	if !ok {
		t.Fatalf("validator = %T", root.Validator())
	}
	if issues := v.Issues(); len(issues) != 1 || issues[0].Rule != "tovalidate" {
		t.Fatalf("issues = %+v", issues)
	}

	if err := root.SetValue(email, "ada@example.com"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if !root.SaveForm() || len(saved) != 1 {
		t.Fatalf("save failed on a valid value, events = %d", len(saved))
	}
}

func TestFilePayloadSurvivesJSON(t *testing.T) {
	root := New(WithModel("upload"))
	if err := root.SetSchema(schema.MustDecode([]byte(`{"upload": {
	  "__fieldTypes__": {"doc": "file"},
	  "__modelTypes__": {"doc": "single"}
	}}`))); err != nil {
		t.Fatalf("set schema: %v", err)
	}

	if err := root.FillDataValues("", map[string]any{"doc": "base64:aGVsbG8="}, nil); err != nil {
		t.Fatalf("fill: %v", err)
	}
	first := root.GetFormData()
	if diff := cmp.Diff(filecontrol.Payload("hello"), first["doc"]); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	raw, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := root.FillDataValues("", decoded, nil); err != nil {
		t.Fatalf("refill: %v", err)
	}
	if diff := cmp.Diff(first, root.GetFormData()); diff != "" {
		t.Fatalf("refilled data mismatch (-want +got):\n%s", diff)
	}
}

func TestSharedElementsReleaseWaiters(t *testing.T) {
	shared := NewElements()
	forms := []*Node{newProfile(t, WithElements(shared)), newProfile(t, WithElements(shared))}
	if got := len(shared.waiting[controls.FileTag]); got != 2 {
		t.Fatalf("waiters = %d, want one per pending nested form", got)
	}

	shared.Define(controls.FileTag)
	if len(shared.waiting) != 0 {
		t.Fatalf("waiters kept after define: %v", shared.waiting)
	}
	for _, form := range forms {
		if got := form.Pending(); len(got) != 0 {
			t.Fatalf("form %s still pending %v", form.ID(), got)
		}
		if form.Children()[0].State() != StateRendered {
			t.Fatalf("nested form of %s not rendered", form.ID())
		}
	}

	late := newProfile(t, WithElements(shared))
	if len(shared.waiting) != 0 || len(late.Pending()) != 0 {
		t.Fatalf("defined registry must not keep waiters")
	}
}
