package timezones

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-autoform/pkg/autoform"
	"github.com/goliatone/go-autoform/pkg/schema"
)

func TestLoadZonesSkipsCommentsAndDuplicates(t *testing.T) {
	zones, err := LoadZones(strings.NewReader("# header\nEurope/Paris\n\nAmerica/Lima\nEurope/Paris\n  UTC  \n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"America/Lima", "Europe/Paris", "UTC"}, zones); diff != "" {
		t.Fatalf("zones mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultZonesAreSortedCopies(t *testing.T) {
	zones, err := DefaultZones()
	if err != nil {
		t.Fatalf("default zones: %v", err)
	}
	if len(zones) == 0 || zones[0] != "Africa/Abidjan" {
		t.Fatalf("unexpected first zone: %v", zones[:1])
	}
	zones[0] = "mutated"
	again, _ := DefaultZones()
	if again[0] == "mutated" {
		t.Fatalf("DefaultZones shares its backing slice")
	}
}

func TestSearch(t *testing.T) {
	zones := []string{"America/Lima", "Asia/Tokyo", "Europe/Lisbon", "Europe/London", "Limbo/Lim"}

	if got := Search(zones, "", 10, false); got != nil {
		t.Fatalf("empty query = %v", got)
	}
	if diff := cmp.Diff([]string{"America/Lima", "Asia/Tokyo"}, Search(zones, " ", 2, true)); diff != "" {
		t.Fatalf("empty top mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Limbo/Lim", "America/Lima"}, Search(zones, "LIM", 10, false)); diff != "" {
		t.Fatalf("prefix ordering mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Europe/Lisbon"}, Search(zones, "europe/l", 1, false)); diff != "" {
		t.Fatalf("limit mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler(t *testing.T) {
	h := Handler(WithZones([]string{"Europe/London", "Europe/Lisbon", "America/New_York"}), WithLimits(1, 2))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?q=new&limit=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Data []Option `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]Option{{Value: "America/New_York", Label: "America/New York"}}, body.Data); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?q=europe", nil))
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || len(body.Data) != 1 {
		t.Fatalf("default limit not applied: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") == "" {
		t.Fatalf("post status = %d allow %q", rec.Code, rec.Header().Get("Allow"))
	}
}

func TestInstallResolvesInForms(t *testing.T) {
	bundle := schema.MustDecode([]byte(`{
  "meeting": {
    "__fieldTypes__": {"zone": "select:timezones/Europe"},
    "__modelTypes__": {"zone": "single"}
  }
}`))
	if err := Install(bundle, ""); err != nil {
		t.Fatalf("install: %v", err)
	}
	europe, ok := bundle.Options("timezones/Europe")
	if !ok || len(europe) == 0 || Region(europe[0]) != "Europe" {
		t.Fatalf("europe options = %v, %v", europe, ok)
	}
	if utc, _ := bundle.Options("timezones/UTC"); !cmp.Equal(utc, []string{"UTC"}) {
		t.Fatalf("utc options = %v", utc)
	}

	form := autoform.New(autoform.WithModel("meeting"))
	if err := form.SetSchema(bundle); err != nil {
		t.Fatalf("set schema: %v", err)
	}
	if err := form.FillDataValues("", map[string]any{"zone": "Europe/Lisbon"}, nil); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if got := form.GetFormData()["zone"]; got != "Europe/Lisbon" {
		t.Fatalf("zone = %#v", got)
	}

	if err := Install(bundle, "meeting"); err == nil {
		t.Fatalf("expected error when the key is a model")
	}
}
