package plan

import (
	"path/filepath"
	"testing"

	"github.com/modelkit/odoogen/generator/render"
	"github.com/modelkit/odoogen/schema"
)

func testModel() schema.ModelDescriptor {
	return schema.ModelDescriptor{
		ModelName:         "res.partner",
		PrimaryLabelField: "name",
		Fields: []schema.FieldDescriptor{
			{Name: "name", Label: "Name", Semantic: schema.TypeText, Widget: schema.WidgetInput, Required: true},
			{Name: "email", Label: "Email", Semantic: schema.TypeText, Widget: schema.WidgetInput},
			{Name: "active", Label: "Active", Semantic: schema.TypeBoolean, Widget: schema.WidgetCheckbox},
		},
	}
}

func TestTargetPath(t *testing.T) {
	tests := []struct {
		kind  render.Kind
		field string
		want  string
	}{
		{render.KindTypes, "", "out/res.partner.types.ts"},
		{render.KindList, "", "out/res.partner.list.tsx"},
		{render.KindForm, "", "out/res.partner.form.tsx"},
		{render.KindField, "company_id", "out/res.partner.fields.company_id.tsx"},
	}
	for _, tt := range tests {
		got := TargetPath("out", "res.partner", tt.kind, tt.field)
		if got != filepath.FromSlash(tt.want) {
			t.Errorf("TargetPath(%s, %q) = %q, want %q", tt.kind, tt.field, got, tt.want)
		}
	}
}

func TestPlanScalarModelHasThreeArtifacts(t *testing.T) {
	r, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	artifacts, diags := Plan(testModel(), r, "out")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(artifacts) != 3 {
		t.Fatalf("got %d artifacts, want 3 (types, list, form)", len(artifacts))
	}

	kinds := map[render.Kind]bool{}
	for _, art := range artifacts {
		kinds[art.Kind] = true
		if art.Content == "" {
			t.Errorf("%s artifact has empty content", art.Kind)
		}
		if art.Fingerprint != Fingerprint(art.Content) {
			t.Errorf("%s artifact fingerprint does not match its content", art.Kind)
		}
	}
	for _, kind := range []render.Kind{render.KindTypes, render.KindList, render.KindForm} {
		if !kinds[kind] {
			t.Errorf("missing %s artifact", kind)
		}
	}
}

func TestPlanAddsFieldArtifacts(t *testing.T) {
	r, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	desc := testModel()
	desc.Fields = append(desc.Fields,
		schema.FieldDescriptor{
			Name: "company_id", Label: "Company", Semantic: schema.TypeRelationSingle,
			Widget: schema.WidgetCombobox, RelationTarget: "res.company",
		},
		schema.FieldDescriptor{
			Name: "state", Label: "State", Semantic: schema.TypeEnum, Widget: schema.WidgetSelect,
			EnumOptions: []schema.EnumOption{{Value: "draft", Label: "Draft"}},
		},
	)

	artifacts, diags := Plan(desc, r, "out")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(artifacts) != 5 {
		t.Fatalf("got %d artifacts, want 5 (3 model + 2 field)", len(artifacts))
	}

	fieldPaths := map[string]bool{}
	for _, art := range artifacts {
		if art.Kind == render.KindField {
			fieldPaths[art.TargetPath] = true
		}
	}
	for _, want := range []string{
		filepath.FromSlash("out/res.partner.fields.company_id.tsx"),
		filepath.FromSlash("out/res.partner.fields.state.tsx"),
	} {
		if !fieldPaths[want] {
			t.Errorf("missing field artifact %s", want)
		}
	}
}

func TestPlanFingerprintStableAcrossRuns(t *testing.T) {
	r, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	first, _ := Plan(testModel(), r, "out")
	second, _ := Plan(testModel(), r, "out")
	if len(first) != len(second) {
		t.Fatalf("plan sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Fingerprint != second[i].Fingerprint {
			t.Errorf("fingerprint of %s drifted between identical runs", first[i].TargetPath)
		}
	}
}

func TestPlanFingerprintChangesWithSchema(t *testing.T) {
	r, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	base, _ := Plan(testModel(), r, "out")
	grown := testModel()
	grown.Fields = append(grown.Fields, schema.FieldDescriptor{
		Name: "phone", Label: "Phone", Semantic: schema.TypeText, Widget: schema.WidgetInput,
	})
	after, _ := Plan(grown, r, "out")

	if base[0].Fingerprint == after[0].Fingerprint {
		t.Error("types fingerprint must change when a field is added")
	}
}
