// Package plan decides which artifacts a model needs and fingerprints their
// rendered content. Planning delegates rendering to the renderer and hashes
// the result; it never touches the filesystem, so fingerprinting can never
// force a write.
package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"

	"github.com/modelkit/odoogen/diagnostics"
	"github.com/modelkit/odoogen/generator/render"
	"github.com/modelkit/odoogen/schema"
)

// Artifact is one planned output file: rendered content, its fingerprint,
// and the target path it belongs to.
type Artifact struct {
	Model       string
	Field       string
	Kind        render.Kind
	TargetPath  string
	Content     string
	Fingerprint string
}

// Fingerprint hashes rendered content. It is a pure function of the model
// descriptor, the artifact kind, and the template version, so two runs
// against an unchanged schema produce identical fingerprints.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// TargetPath returns the stable output path for one artifact.
func TargetPath(outDir, model string, kind render.Kind, field string) string {
	name := model + "." + string(kind)
	if kind == render.KindField {
		name = model + ".fields." + field
	}
	return filepath.Join(outDir, name+kind.Ext())
}

// Plan renders and fingerprints every artifact of one model: a type
// definition, a list view, a form, and one field sub-component per enum or
// relation field. A renderer failure costs only that artifact; the rest of
// the model still plans.
func Plan(desc schema.ModelDescriptor, r *render.Renderer, outDir string) ([]Artifact, []diagnostics.Diagnostic) {
	var artifacts []Artifact
	var diags []diagnostics.Diagnostic

	add := func(kind render.Kind, field string) {
		content, err := r.Render(desc, kind, field)
		if err != nil {
			diags = append(diags, diagnostics.NewTemplateFault(desc.ModelName, TargetPath(outDir, desc.ModelName, kind, field), err))
			return
		}
		artifacts = append(artifacts, Artifact{
			Model:       desc.ModelName,
			Field:       field,
			Kind:        kind,
			TargetPath:  TargetPath(outDir, desc.ModelName, kind, field),
			Content:     content,
			Fingerprint: Fingerprint(content),
		})
	}

	add(render.KindTypes, "")
	add(render.KindList, "")
	add(render.KindForm, "")
	for _, field := range desc.Fields {
		if field.NeedsSubcomponent() {
			add(render.KindField, field.Name)
		}
	}
	return artifacts, diags
}
