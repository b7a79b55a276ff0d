package dom

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

func ids(nodes []*html.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, GetAttr(n, "id"))
	}
	return out
}

func TestElementAttributesAndClasses(t *testing.T) {
	n := Element("INPUT", "type", "text", "name", "title", "required")

	if n.Data != "input" {
		t.Fatalf("expected lower-cased tag, got %q", n.Data)
	}
	if got := GetAttr(n, "name"); got != "title" {
		t.Fatalf("name attr: got %q", got)
	}
	if !HasAttr(n, "required") {
		t.Fatalf("expected dangling key to be set as empty attribute")
	}

	AddClass(n, "form-control", "is-invalid form-control")
	if diff := cmp.Diff([]string{"form-control", "is-invalid"}, Classes(n)); diff != "" {
		t.Fatalf("classes mismatch (-want +got):\n%s", diff)
	}

	RemoveAttr(n, "required")
	if HasAttr(n, "required") {
		t.Fatalf("expected attribute removal")
	}
}

func TestScopedQueryStopsAtBoundary(t *testing.T) {
	root := Element("form", "id", "root")
	outer := Element("input", "id", "a")
	host := Element("json-autoform", "id", "child")
	inner := Element("input", "id", "b")
	Append(host, inner)
	Append(root, outer, host, Element("input", "id", "c"))

	all := In(root).All(Tag("input"))
	if diff := cmp.Diff([]string{"a", "b", "c"}, ids(all)); diff != "" {
		t.Fatalf("unbounded query mismatch (-want +got):\n%s", diff)
	}

	scoped := Scoped(root, Tag("json-autoform")).All(Tag("input", "json-autoform"))
	if diff := cmp.Diff([]string{"a", "child", "c"}, ids(scoped)); diff != "" {
		t.Fatalf("scoped query mismatch (-want +got):\n%s", diff)
	}

	if got := In(root).ByID("b"); got != inner {
		t.Fatalf("ByID returned %v", got)
	}
	if Closest(inner, Tag("json-autoform")) != host {
		t.Fatalf("expected Closest to find host")
	}
}

func TestInsertPositions(t *testing.T) {
	container := Element("div", "id", "c")
	first := Element("p", "id", "first")
	Insert(first, container, Inside)
	Insert(Element("p", "id", "top"), container, Prepend)
	Insert(Element("p", "id", "next"), first, After)
	Insert(Element("p", "id", "end"), container, Last)

	got := ids(In(container).All(Tag("p")))
	want := []string{"top", "first", "next", "end"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("insert order mismatch (-want +got):\n%s", diff)
	}

	Remove(first)
	Empty(container)
	if container.FirstChild != nil {
		t.Fatalf("expected container to be empty")
	}
}

func TestControlValues(t *testing.T) {
	input := Element("input", "type", "text", "name", "a", "value", "")
	SetValue(input, "hello")
	if got := Value(input); got != "hello" {
		t.Fatalf("input value: got %q", got)
	}

	textarea := Element("textarea", "name", "b")
	SetValue(textarea, "line one")
	if got := Value(textarea); got != "line one" {
		t.Fatalf("textarea value: got %q", got)
	}

	sel := Element("select", "name", "c")
	Append(sel,
		Append(Element("option", "value", ""), Text("Pick")),
		Append(Element("option", "value", "x"), Text("X")),
		Append(Element("option"), Text(" y ")),
	)
	if got := Value(sel); got != "" {
		t.Fatalf("default select value: got %q", got)
	}
	if !SetValue(sel, "y") {
		t.Fatalf("expected option y to match")
	}
	if got := Value(sel); got != "y" {
		t.Fatalf("select value: got %q", got)
	}
	if SetValue(sel, "missing") {
		t.Fatalf("expected unmatched option to report false")
	}

	out := MustRender(sel)
	if strings.Contains(out, "selected") {
		t.Fatalf("expected no selected option after unmatched set, got %s", out)
	}
}

func TestSetCheckedRadioGroup(t *testing.T) {
	form := Element("form")
	r1 := Element("input", "type", "radio", "name", "r", "value", "1")
	r2 := Element("input", "type", "radio", "name", "r", "value", "2")
	other := Element("input", "type", "radio", "name", "s", "value", "3")
	Append(form, r1, r2, other)

	SetChecked(form, r1, true)
	SetChecked(form, other, true)
	SetChecked(form, r2, true)

	if Checked(r1) || !Checked(r2) || !Checked(other) {
		t.Fatalf("unexpected checked states r1=%v r2=%v other=%v", Checked(r1), Checked(r2), Checked(other))
	}
	if !IsCheckable(r1) || IsCheckable(Element("input")) {
		t.Fatalf("IsCheckable mismatch")
	}
}

func TestEventsDispatchAndForget(t *testing.T) {
	events := NewEvents()
	parent := Element("div")
	button := Element("button")
	Append(parent, button)

	var seen []string
	events.On(button, "click", func(e Event) error {
		seen = append(seen, e.Type+":"+e.Target.Data)
		return nil
	})
	events.On(button, "click", func(Event) error {
		seen = append(seen, "second")
		return nil
	})

	ran, err := events.Dispatch(button, "click")
	if err != nil || !ran {
		t.Fatalf("dispatch: ran=%v err=%v", ran, err)
	}
	if diff := cmp.Diff([]string{"click:button", "second"}, seen); diff != "" {
		t.Fatalf("listener order mismatch (-want +got):\n%s", diff)
	}

	events.Forget(parent)
	if events.Has(button, "click") || events.Len() != 0 {
		t.Fatalf("expected listeners to be forgotten")
	}
	ran, _ = events.Dispatch(button, "click")
	if ran {
		t.Fatalf("expected no listener after Forget")
	}
}
