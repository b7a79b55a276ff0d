package openapi

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-autoform/pkg/autoform"
	"github.com/goliatone/go-autoform/pkg/schema"
)

func loadPetstore(t *testing.T) []byte {
	t.Helper()
	raw, err := os.ReadFile("testdata/petstore.yaml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return raw
}

func TestImportComponentSchemas(t *testing.T) {
	bundle, err := Import(context.Background(), loadPetstore(t))
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	wantModels := []string{"Pet", "Category", "Pet_owner", "Adopted"}
	if diff := cmp.Diff(wantModels, bundle.Models()); diff != "" {
		t.Fatalf("models mismatch (-want +got):\n%s", diff)
	}

	pet, ok := bundle.Descriptor("Pet")
	if !ok {
		t.Fatalf("Pet descriptor missing")
	}
	wantOrder := []string{"id", "name", "tag", "status", "vaccinated", "photoUrls", "category", "owner", "notes"}
	if diff := cmp.Diff(wantOrder, pet.FieldTypes.Keys()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	wantTags := map[string]schema.TypeTag{
		"id":         "hidden",
		"name":       "text",
		"tag":        "select:options/Pet_tag",
		"status":     "radio:options/Pet_status",
		"vaccinated": "radio:options/Pet_vaccinated",
		"photoUrls":  "url",
		"category":   "model:Category",
		"owner":      "model:Pet_owner",
		"notes":      "textarea",
	}
	for field, want := range wantTags {
		if got, _ := pet.FieldTypes.Get(field); got != want {
			t.Errorf("%s tag = %q, want %q", field, got, want)
		}
	}
	if card, _ := pet.ModelTypes.Get("photoUrls"); card != schema.Multiple {
		t.Errorf("photoUrls cardinality = %q", card)
	}

	wantRules := schema.Rules{
		{Name: "required", Value: "true"},
		{Name: "minlength", Value: "1"},
		{Name: "maxlength", Value: "64"},
		{Name: "placeholder", Value: "Rex"},
	}
	if diff := cmp.Diff(wantRules, pet.Validations["name"]); diff != "" {
		t.Errorf("name rules mismatch (-want +got):\n%s", diff)
	}
	if got := pet.Labels["name"]; got != "Pet name" {
		t.Errorf("name label = %q", got)
	}
	if got := pet.Info["status"]; got != "Availability in the store" {
		t.Errorf("status info = %q", got)
	}
	if diff := cmp.Diff([]schema.Group{{Key: "basics", Fields: []string{"name", "tag"}}}, pet.Groups); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}

	options, ok := bundle.Options("options/Pet_status")
	if !ok {
		t.Fatalf("status options missing")
	}
	if diff := cmp.Diff([]string{"available", "pending", "sold"}, options); diff != "" {
		t.Errorf("status options mismatch (-want +got):\n%s", diff)
	}

	owner, _ := bundle.Descriptor("Pet_owner")
	if diff := cmp.Diff(schema.Rules{{Name: "tovalidate", Value: "email"}}, owner.Validations["email"]); diff != "" {
		t.Errorf("owner email rules mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(schema.Rules{{Name: "min", Value: "18"}}, owner.Validations["age"]); diff != "" {
		t.Errorf("owner age rules mismatch (-want +got):\n%s", diff)
	}

	adopted, _ := bundle.Descriptor("Adopted")
	if diff := cmp.Diff([]string{"name", "adoptedAt"}, adopted.FieldTypes.Keys()); diff != "" {
		t.Errorf("allOf fields mismatch (-want +got):\n%s", diff)
	}
	if !adopted.Validations["adoptedAt"].Required() {
		t.Errorf("allOf required not merged")
	}
}

func TestImportOperations(t *testing.T) {
	bundle, err := New(WithOperations(), WithSchemas("Category")).Import(context.Background(), loadPetstore(t))
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	want := []string{"Category", "createPet", "createPet_owner", "patch_pets_petId_status"}
	if diff := cmp.Diff(want, bundle.Models()); diff != "" {
		t.Fatalf("models mismatch (-want +got):\n%s", diff)
	}

	patch, _ := bundle.Descriptor("patch_pets_petId_status")
	if got, _ := patch.FieldTypes.Get("status"); got != "select:options/patch_pets_petId_status_status" {
		t.Errorf("status tag = %q", got)
	}
	if v, _ := patch.Validations["reason"].Get("maxlength"); v != "140" {
		t.Errorf("reason maxlength = %q", v)
	}
}

func TestImportErrors(t *testing.T) {
	ctx := context.Background()

	if _, err := Import(ctx, nil); !errors.Is(err, schema.ErrEmptyDocument) {
		t.Errorf("empty error = %v", err)
	}
	if _, err := Import(ctx, loadPetstore(t), WithSchemas("Missing")); !errors.Is(err, ErrUnknownSchema) {
		t.Errorf("unknown schema error = %v", err)
	}

	noObjects := []byte(`{"openapi":"3.0.3","info":{"title":"x","version":"1"},"paths":{},"components":{"schemas":{"Name":{"type":"string"}}}}`)
	if _, err := Import(ctx, noObjects); !errors.Is(err, ErrNoSchemas) {
		t.Errorf("no schemas error = %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := Import(cancelled, loadPetstore(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled error = %v", err)
	}
}

func TestDetect(t *testing.T) {
	if !Detect(loadPetstore(t)) {
		t.Errorf("petstore not detected")
	}
	if Detect([]byte(`{"profile": {"__fieldTypes__": {"name": "text"}}}`)) {
		t.Errorf("form bundle detected as openapi")
	}
}

func TestImportedBundleRendersForm(t *testing.T) {
	bundle, err := Import(context.Background(), loadPetstore(t))
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	form := autoform.New(autoform.WithModel("Pet"), autoform.WithID("pet"))
	if err := form.SetSchema(bundle); err != nil {
		t.Fatalf("set schema: %v", err)
	}
	if err := form.FillDataValues("", map[string]any{
		"name":     "Rex",
		"category": map[string]any{"name": "Dogs"},
	}, nil); err != nil {
		t.Fatalf("fill: %v", err)
	}

	data := form.GetFormData()
	if got := data["name"]; got != "Rex" {
		t.Errorf("name = %#v", got)
	}
	category, ok := data["category"].(map[string]any)
	if !ok || category["name"] != "Dogs" {
		t.Errorf("category = %#v", data["category"])
	}
}
