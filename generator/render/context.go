package render

import (
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/modelkit/odoogen/schema"
)

// fieldView is the template-facing projection of one field descriptor. All
// target-language fragments (TypeScript types, cell and control expressions)
// are precomputed here so the templates stay declarative and deterministic.
type fieldView struct {
	desc  schema.FieldDescriptor
	model schema.ModelDescriptor
	label string
}

func (r *Renderer) newFieldView(model schema.ModelDescriptor, desc schema.FieldDescriptor) fieldView {
	return fieldView{
		desc:  desc,
		model: model,
		label: r.policy.Sanitize(desc.Label),
	}
}

func (v fieldView) typeName() string { return pascalCase(v.model.ModelName) }

func (v fieldView) propName() string { return pascalCase(v.desc.Name) }

func (v fieldView) enumTypeName() string {
	return v.typeName() + v.propName()
}

func (v fieldView) componentName() string {
	return v.typeName() + v.propName() + "Field"
}

func (v fieldView) fileBase() string {
	return v.model.ModelName + ".fields." + v.desc.Name
}

func (v fieldView) optionsConst() string {
	return constCase(v.model.ModelName) + "_" + constCase(v.desc.Name) + "_OPTIONS"
}

// enumUnion renders the TypeScript union of an enum field's values, or
// "string" when the server reported no options.
func (v fieldView) enumUnion() string {
	if len(v.desc.EnumOptions) == 0 {
		return "string"
	}
	parts := make([]string, 0, len(v.desc.EnumOptions))
	for _, opt := range v.desc.EnumOptions {
		parts = append(parts, fmt.Sprintf("%q", opt.Value))
	}
	return strings.Join(parts, " | ")
}

// tsType maps the semantic type to its TypeScript counterpart.
func (v fieldView) tsType() string {
	switch v.desc.Semantic {
	case schema.TypeInteger, schema.TypeDecimal:
		return "number"
	case schema.TypeBoolean:
		return "boolean"
	case schema.TypeEnum:
		return v.enumTypeName()
	case schema.TypeRelationSingle:
		return "RelationRef"
	case schema.TypeRelationMany, schema.TypeRelationManyEmbedded:
		return "readonly number[]"
	}
	// text, longText, dateOnly, dateTime all travel as strings.
	return "string"
}

// listCell renders the table cell expression for the list artifact.
func (v fieldView) listCell() string {
	access := "record." + v.desc.Name
	switch v.desc.Semantic {
	case schema.TypeBoolean:
		return fmt.Sprintf(`{%s ? "yes" : "no"}`, access)
	case schema.TypeRelationSingle:
		return fmt.Sprintf(`{%s?.[1] ?? ""}`, access)
	case schema.TypeRelationMany, schema.TypeRelationManyEmbedded:
		return fmt.Sprintf(`{%s?.length ?? 0}`, access)
	}
	return fmt.Sprintf(`{%s ?? ""}`, access)
}

// formControl renders the editing control expression for the form artifact.
// Read-only fields are always disabled; everything else follows the form's
// readonly prop.
func (v fieldView) formControl() string {
	name := v.desc.Name
	disabled := "disabled={props.readonly}"
	if v.desc.Readonly {
		disabled = "disabled"
	}

	switch v.desc.Widget {
	case schema.WidgetTextarea:
		return fmt.Sprintf(`<textarea value={props.value.%s ?? ""} onChange={(e) => set({ %s: e.target.value })} %s />`, name, name, disabled)
	case schema.WidgetNumberInput:
		return fmt.Sprintf(`<input type="number" value={props.value.%s ?? ""} onChange={(e) => set({ %s: Number(e.target.value) })} %s />`, name, name, disabled)
	case schema.WidgetCheckbox:
		return fmt.Sprintf(`<input type="checkbox" checked={props.value.%s ?? false} onChange={(e) => set({ %s: e.target.checked })} %s />`, name, name, disabled)
	case schema.WidgetDatePicker:
		return fmt.Sprintf(`<input type="date" value={props.value.%s ?? ""} onChange={(e) => set({ %s: e.target.value })} %s />`, name, name, disabled)
	case schema.WidgetDatetimePicker:
		return fmt.Sprintf(`<input type="datetime-local" value={props.value.%s ?? ""} onChange={(e) => set({ %s: e.target.value })} %s />`, name, name, disabled)
	case schema.WidgetSelect, schema.WidgetCombobox, schema.WidgetMultiSelect, schema.WidgetEmbeddedTable:
		return fmt.Sprintf(`<%s value={props.value.%s} onChange={(%s) => set({ %s })} %s />`, v.componentName(), name, name, name, disabled)
	}
	return fmt.Sprintf(`<input type="text" value={props.value.%s ?? ""} onChange={(e) => set({ %s: e.target.value })} %s />`, name, name, disabled)
}

func (v fieldView) toMap() map[string]any {
	options := make([]map[string]any, 0, len(v.desc.EnumOptions))
	for _, opt := range v.desc.EnumOptions {
		options = append(options, map[string]any{
			"value": opt.Value,
			"label": opt.Label,
		})
	}
	return map[string]any{
		"name":           v.desc.Name,
		"label":          v.label,
		"semantic":       string(v.desc.Semantic),
		"widget":         string(v.desc.Widget),
		"required":       v.desc.Required,
		"readonly":       v.desc.Readonly,
		"relationTarget": v.desc.RelationTarget,
		"options":        options,
		"isEnum":         v.desc.Semantic == schema.TypeEnum,
		"propName":       v.propName(),
		"componentName":  v.componentName(),
		"fileBase":       v.fileBase(),
		"optionsConst":   v.optionsConst(),
		"enumTypeName":   v.enumTypeName(),
		"enumUnion":      v.enumUnion(),
		"tsType":         v.tsType(),
		"listCell":       v.listCell(),
		"formControl":    v.formControl(),
	}
}

// buildContext assembles the pongo2 context for one artifact. Everything the
// templates see is ordered data; no map is ever iterated inside a template.
func (r *Renderer) buildContext(desc schema.ModelDescriptor, kind Kind, fieldName string) (pongo2.Context, error) {
	fields := make([]map[string]any, 0, len(desc.Fields))
	subcomponents := make([]map[string]any, 0)
	var fieldCtx map[string]any

	for _, fd := range desc.Fields {
		view := r.newFieldView(desc, fd)
		m := view.toMap()
		fields = append(fields, m)
		if fd.NeedsSubcomponent() {
			subcomponents = append(subcomponents, m)
		}
		if fd.Name == fieldName {
			fieldCtx = m
		}
	}

	if kind == KindField && fieldCtx == nil {
		return nil, fmt.Errorf("render: model %s has no field %q", desc.ModelName, fieldName)
	}

	return pongo2.Context{
		"model": map[string]any{
			"name":         desc.ModelName,
			"typeName":     pascalCase(desc.ModelName),
			"constName":    constCase(desc.ModelName),
			"slug":         slugCase(desc.ModelName),
			"primaryLabel": desc.PrimaryLabelField,
		},
		"fields":        fields,
		"subcomponents": subcomponents,
		"field":         fieldCtx,
		"artifact":      string(kind),
		"version":       TemplateVersion,
	}, nil
}

// newSanitizer returns the policy applied to server-supplied labels before
// they are embedded in source text.
func newSanitizer() *bluemonday.Policy {
	return bluemonday.StrictPolicy()
}
