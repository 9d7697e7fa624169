// Package diagnostics accumulates per-unit generation problems so that one
// bad field, artifact, or model never aborts its siblings. Callers collect
// diagnostics as they go and decide at the end of the batch whether the run
// failed.
package diagnostics

import (
	"fmt"
	"strings"
)

// Kind classifies a diagnostic. Fatal kinds make the overall run exit
// non-zero; the rest are degradations that generation recovered from.
type Kind string

const (
	// SchemaInconsistency marks malformed or missing metadata for one field,
	// e.g. a relation field without a relation target.
	SchemaInconsistency Kind = "schema-inconsistency"

	// UnknownType marks a raw schema type absent from the canonical mapping
	// table; the field degrades to a plain text input.
	UnknownType Kind = "unknown-type"

	// FieldCollision marks a duplicate field name within one model; the
	// later declaration is dropped.
	FieldCollision Kind = "field-collision"

	// Unauthorized marks a schema server rejection for one model.
	Unauthorized Kind = "unauthorized"

	// Unreachable marks a schema server connectivity failure for one model.
	Unreachable Kind = "unreachable"

	// ConflictPreserved marks a generated file whose custom-region markers
	// were removed or corrupted; the file was left untouched.
	ConflictPreserved Kind = "conflict-preserved"

	// TemplateFault marks a renderer failure for one artifact.
	TemplateFault Kind = "template-fault"

	// TemplateVersionSkew marks a manifest entry written by a newer template
	// version than this binary carries.
	TemplateVersionSkew Kind = "template-version-skew"

	// WriteFailed marks a filesystem error while writing one artifact.
	WriteFailed Kind = "write-failed"
)

// Fatal reports whether a diagnostic of this kind should fail the batch.
func (k Kind) Fatal() bool {
	switch k {
	case Unauthorized, Unreachable, ConflictPreserved, TemplateFault, WriteFailed:
		return true
	}
	return false
}

// Diagnostic names exactly one degraded or skipped unit of work: the model it
// belongs to, the field or artifact path involved, and the reason.
type Diagnostic struct {
	Kind    Kind
	Model   string
	Field   string
	Path    string
	Message string
}

// String renders the diagnostic as a single summary line.
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", d.Kind)
	if d.Model != "" {
		fmt.Fprintf(&b, " model=%s", d.Model)
	}
	if d.Field != "" {
		fmt.Fprintf(&b, " field=%s", d.Field)
	}
	if d.Path != "" {
		fmt.Fprintf(&b, " path=%s", d.Path)
	}
	fmt.Fprintf(&b, ": %s", d.Message)
	return b.String()
}

// NewUnknownType reports a raw type outside the canonical mapping table.
func NewUnknownType(field, rawType string) Diagnostic {
	return Diagnostic{
		Kind:    UnknownType,
		Field:   field,
		Message: fmt.Sprintf("unknown raw type %q, degraded to text input", rawType),
	}
}

// NewMissingRelationTarget reports a relation field without a target model.
func NewMissingRelationTarget(field, rawType string) Diagnostic {
	return Diagnostic{
		Kind:    SchemaInconsistency,
		Field:   field,
		Message: fmt.Sprintf("relation field of type %q has no relation target, degraded to read-only text", rawType),
	}
}

// NewFieldCollision reports a duplicate field declaration.
func NewFieldCollision(model, field string) Diagnostic {
	return Diagnostic{
		Kind:    FieldCollision,
		Model:   model,
		Field:   field,
		Message: "duplicate field declaration dropped",
	}
}

// NewFetchFailure classifies a schema client failure for one model.
func NewFetchFailure(kind Kind, model string, err error) Diagnostic {
	return Diagnostic{
		Kind:    kind,
		Model:   model,
		Message: err.Error(),
	}
}

// NewConflictPreserved reports a hand-edited generated file that was skipped.
func NewConflictPreserved(model, path, reason string) Diagnostic {
	return Diagnostic{
		Kind:    ConflictPreserved,
		Model:   model,
		Path:    path,
		Message: reason,
	}
}

// NewTemplateFault reports a renderer failure for one artifact.
func NewTemplateFault(model, artifact string, err error) Diagnostic {
	return Diagnostic{
		Kind:    TemplateFault,
		Model:   model,
		Path:    artifact,
		Message: err.Error(),
	}
}

// NewTemplateVersionSkew reports a manifest entry from a newer generator.
func NewTemplateVersionSkew(path, manifestVersion, binaryVersion string) Diagnostic {
	return Diagnostic{
		Kind:    TemplateVersionSkew,
		Path:    path,
		Message: fmt.Sprintf("manifest entry written by template version %s, this binary carries %s", manifestVersion, binaryVersion),
	}
}

// NewWriteFailed reports a filesystem failure for one artifact.
func NewWriteFailed(model, path string, err error) Diagnostic {
	return Diagnostic{
		Kind:    WriteFailed,
		Model:   model,
		Path:    path,
		Message: err.Error(),
	}
}
