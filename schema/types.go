// Package schema turns raw field metadata from the schema server into the
// generator's canonical descriptors: a semantic type per field, a UI widget
// class per semantic type, and an ordered, collision-free model descriptor.
package schema

// SemanticType is the generator's internal, target-language-agnostic
// classification of a field's data shape.
type SemanticType string

const (
	TypeText                 SemanticType = "text"
	TypeLongText             SemanticType = "longText"
	TypeInteger              SemanticType = "integer"
	TypeDecimal              SemanticType = "decimal"
	TypeBoolean              SemanticType = "boolean"
	TypeEnum                 SemanticType = "enum"
	TypeDateOnly             SemanticType = "dateOnly"
	TypeDateTime             SemanticType = "dateTime"
	TypeRelationSingle       SemanticType = "relationSingle"
	TypeRelationMany         SemanticType = "relationMany"
	TypeRelationManyEmbedded SemanticType = "relationManyEmbedded"
)

// WidgetClass is the UI control family chosen to edit a semantic type. It is
// a pure function of the semantic type, never of field names or labels.
type WidgetClass string

const (
	WidgetInput          WidgetClass = "input"
	WidgetTextarea       WidgetClass = "textarea"
	WidgetNumberInput    WidgetClass = "number-input"
	WidgetCheckbox       WidgetClass = "checkbox"
	WidgetSelect         WidgetClass = "select"
	WidgetCombobox       WidgetClass = "combobox"
	WidgetEmbeddedTable  WidgetClass = "embedded-table"
	WidgetMultiSelect    WidgetClass = "multi-select"
	WidgetDatePicker     WidgetClass = "date-picker"
	WidgetDatetimePicker WidgetClass = "datetime-picker"
)

// EnumOption is one (value, label) pair of an enum field, in declared order.
type EnumOption struct {
	Value string
	Label string
}

// FieldDescriptor is the canonical, derived description of one field. It is
// a pure function of a single FieldMetadata record.
type FieldDescriptor struct {
	Name           string
	Label          string
	Semantic       SemanticType
	Widget         WidgetClass
	Required       bool
	Readonly       bool
	EnumOptions    []EnumOption
	RelationTarget string
}

// Relational reports whether the field points at another model.
func (f FieldDescriptor) Relational() bool {
	switch f.Semantic {
	case TypeRelationSingle, TypeRelationMany, TypeRelationManyEmbedded:
		return true
	}
	return false
}

// NeedsSubcomponent reports whether the field's widget requires auxiliary
// data (option lists or related-record lookup) and therefore warrants a
// dedicated generated module.
func (f FieldDescriptor) NeedsSubcomponent() bool {
	return f.Semantic == TypeEnum || f.Relational()
}

// ModelDescriptor assembles the field descriptors of one model in the order
// the server declared them. Field names are unique within a descriptor.
type ModelDescriptor struct {
	ModelName         string
	Fields            []FieldDescriptor
	PrimaryLabelField string
}
