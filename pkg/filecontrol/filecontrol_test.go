package filecontrol

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-autoform/pkg/dom"
)

func TestStoreReusesControlPerElement(t *testing.T) {
	store := NewStore()
	el := dom.Element(TagName, "name", "doc")

	first := store.Control(el)
	if store.Control(el) != first {
		t.Fatalf("expected the same control for the same element")
	}
	store.Forget(dom.Append(dom.Element("div"), el))
	if store.Control(el) == first {
		t.Fatalf("expected a fresh control after Forget")
	}
}

func TestApplyAndRead(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  any
	}{
		{"reference", "cv.pdf", "cv.pdf"},
		{"bytes", []byte{1, 2}, Payload{1, 2}},
		{"payload", Payload("hi"), Payload("hi")},
		{"number list", []any{float64(104), float64(105)}, Payload("hi")},
		{"index object", map[string]any{"1": float64(105), "0": float64(104)}, Payload("hi")},
		{"base64", "base64:aGk=", Payload("hi")},
		{"nil clears", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			el := dom.Element(TagName)
			c := NewStore().Control(el)
			if err := Apply(c, tc.value); err != nil {
				t.Fatalf("apply: %v", err)
			}
			if diff := cmp.Diff(tc.want, Read(c)); diff != "" {
				t.Fatalf("read mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAttributesMirrorState(t *testing.T) {
	el := dom.Element(TagName)
	c := NewStore().Control(el)

	c.SetBytes([]byte("abc"))
	if dom.GetAttr(el, "data-has-file") != "true" || dom.GetAttr(el, "data-size") != "3" {
		t.Fatalf("payload not mirrored: %s", dom.MustRender(el))
	}
	c.SetValue("")
	if dom.HasAttr(el, "data-has-file") || c.Bytes() != nil {
		t.Fatalf("expected cleared state: %s", dom.MustRender(el))
	}
}

func TestApplyRejectsBadPayloads(t *testing.T) {
	c := NewStore().Control(dom.Element(TagName))
	for _, value := range []any{[]any{float64(300)}, map[string]any{"x": float64(1)}, 42} {
		if err := Apply(c, value); err == nil {
			t.Fatalf("expected error for %#v", value)
		}
	}
}

func TestPayloadSurvivesJSON(t *testing.T) {
	c := NewStore().Control(dom.Element(TagName))
	if err := Apply(c, "base64:aGVsbG8="); err != nil {
		t.Fatalf("apply: %v", err)
	}

	raw, err := json.Marshal(map[string]any{"doc": Read(c)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(raw), `{"doc":"base64:aGVsbG8="}`; got != want {
		t.Fatalf("json = %s, want %s", got, want)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	again := NewStore().Control(dom.Element(TagName))
	if err := Apply(again, decoded["doc"]); err != nil {
		t.Fatalf("reapply: %v", err)
	}
	if diff := cmp.Diff(Payload("hello"), Read(again)); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if again.Value() != "" {
		t.Fatalf("payload must not become a file reference, got %q", again.Value())
	}
}

func TestPayloadUnmarshal(t *testing.T) {
	for _, raw := range []string{`"base64:aGk="`, `"aGk="`} {
		var p Payload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if string(p) != "hi" {
			t.Fatalf("unmarshal %s = %q", raw, p)
		}
	}
	var p Payload
	if err := json.Unmarshal([]byte(`"not base64!"`), &p); err == nil {
		t.Fatalf("expected an error for invalid base64")
	}
}
