package schema

import (
	"github.com/modelkit/odoogen/diagnostics"
	"github.com/modelkit/odoogen/odoo"
)

// Normalize assembles the field metadata of one model into a ModelDescriptor.
// Field order is the arrival order; the server-declared order is assumed to
// be meaningful and is never re-sorted. Duplicate names keep the first
// declaration and drop later ones with a diagnostic. Empty input is valid
// and yields an empty, well-formed descriptor.
func Normalize(modelName string, metas []odoo.FieldMetadata) (ModelDescriptor, []diagnostics.Diagnostic) {
	var diags []diagnostics.Diagnostic

	desc := ModelDescriptor{ModelName: modelName}
	seen := make(map[string]struct{}, len(metas))

	for _, meta := range metas {
		if _, dup := seen[meta.Name]; dup {
			diags = append(diags, diagnostics.NewFieldCollision(modelName, meta.Name))
			continue
		}
		seen[meta.Name] = struct{}{}

		field, fieldDiags := Map(meta)
		for i := range fieldDiags {
			fieldDiags[i].Model = modelName
		}
		diags = append(diags, fieldDiags...)
		desc.Fields = append(desc.Fields, field)
	}

	desc.PrimaryLabelField = primaryLabelField(desc.Fields)
	return desc, diags
}

// primaryLabelField picks the field used as the record's display label: the
// first text field named "name", else the first required text field, else
// the first field of the model.
func primaryLabelField(fields []FieldDescriptor) string {
	for _, f := range fields {
		if f.Semantic == TypeText && f.Name == "name" {
			return f.Name
		}
	}
	for _, f := range fields {
		if f.Semantic == TypeText && f.Required {
			return f.Name
		}
	}
	if len(fields) > 0 {
		return fields[0].Name
	}
	return ""
}
