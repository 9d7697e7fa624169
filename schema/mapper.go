package schema

import (
	"github.com/modelkit/odoogen/diagnostics"
	"github.com/modelkit/odoogen/odoo"
)

// relational raw types that must carry a relation target.
var relationRawTypes = map[string]SemanticType{
	"many2one":  TypeRelationSingle,
	"one2many":  TypeRelationManyEmbedded,
	"many2many": TypeRelationMany,
}

// semanticFor is the canonical rawType -> semanticType table. It is total:
// anything outside the table maps to text, with ok=false so the caller can
// record a diagnostic.
func semanticFor(rawType string) (SemanticType, bool) {
	switch rawType {
	case "char":
		return TypeText, true
	case "text":
		return TypeLongText, true
	case "integer":
		return TypeInteger, true
	case "float":
		return TypeDecimal, true
	case "boolean":
		return TypeBoolean, true
	case "selection":
		return TypeEnum, true
	case "many2one":
		return TypeRelationSingle, true
	case "one2many":
		return TypeRelationManyEmbedded, true
	case "many2many":
		return TypeRelationMany, true
	case "date":
		return TypeDateOnly, true
	case "datetime":
		return TypeDateTime, true
	}
	return TypeText, false
}

// WidgetFor returns the UI widget class for a semantic type.
func WidgetFor(semantic SemanticType) WidgetClass {
	switch semantic {
	case TypeLongText:
		return WidgetTextarea
	case TypeInteger, TypeDecimal:
		return WidgetNumberInput
	case TypeBoolean:
		return WidgetCheckbox
	case TypeEnum:
		return WidgetSelect
	case TypeRelationSingle:
		return WidgetCombobox
	case TypeRelationManyEmbedded:
		return WidgetEmbeddedTable
	case TypeRelationMany:
		return WidgetMultiSelect
	case TypeDateOnly:
		return WidgetDatePicker
	case TypeDateTime:
		return WidgetDatetimePicker
	}
	return WidgetInput
}

// Map derives the canonical field descriptor from one raw metadata record.
// It is pure and total: unknown raw types degrade to a text input and a
// relation field without a target degrades to a read-only text placeholder,
// each with a non-fatal diagnostic. Map never fails.
func Map(meta odoo.FieldMetadata) (FieldDescriptor, []diagnostics.Diagnostic) {
	var diags []diagnostics.Diagnostic

	semantic, known := semanticFor(meta.RawType)
	if !known {
		diags = append(diags, diagnostics.NewUnknownType(meta.Name, meta.RawType))
	}

	desc := FieldDescriptor{
		Name:     meta.Name,
		Label:    meta.Label,
		Semantic: semantic,
		Required: meta.Required,
		Readonly: meta.Readonly || meta.Computed,
	}
	if desc.Label == "" {
		desc.Label = meta.Name
	}

	if _, isRelation := relationRawTypes[meta.RawType]; isRelation {
		if meta.RelationTarget == "" {
			diags = append(diags, diagnostics.NewMissingRelationTarget(meta.Name, meta.RawType))
			desc.Semantic = TypeText
			desc.Readonly = true
		} else {
			desc.RelationTarget = meta.RelationTarget
		}
	}

	if desc.Semantic == TypeEnum {
		for _, opt := range meta.SelectionOptions {
			desc.EnumOptions = append(desc.EnumOptions, EnumOption{Value: opt.Value, Label: opt.Label})
		}
	}

	desc.Widget = WidgetFor(desc.Semantic)
	return desc, diags
}
