// Package render turns model descriptors into TypeScript source artifacts.
// Rendering is pure and deterministic: an identical descriptor and artifact
// kind always produce byte-identical output, which is what makes content
// fingerprints stable across runs.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/modelkit/odoogen/schema"
)

//go:embed templates/*.tpl
var templatesFS embed.FS

// TemplateVersion tags every generated file and manifest entry. Bump it when
// template output changes so downstream drift detection sees the change.
const TemplateVersion = "1.2.0"

// Kind names one artifact family produced per model.
type Kind string

const (
	KindTypes Kind = "types"
	KindList  Kind = "list"
	KindForm  Kind = "form"
	KindField Kind = "field"
)

// Ext returns the file extension for the artifact kind.
func (k Kind) Ext() string {
	if k == KindTypes {
		return ".ts"
	}
	return ".tsx"
}

// Renderer renders artifacts from a fixed set of embedded templates.
type Renderer struct {
	templates map[Kind]*pongo2.Template
	policy    *bluemonday.Policy
}

// New loads and parses the embedded templates.
func New() (*Renderer, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("render: open embedded templates: %w", err)
	}
	set := pongo2.NewSet("odoogen", pongo2.NewFSLoader(sub))

	templates := make(map[Kind]*pongo2.Template, 4)
	for _, kind := range []Kind{KindTypes, KindList, KindForm, KindField} {
		tpl, err := set.FromFile(string(kind) + ".tpl")
		if err != nil {
			return nil, fmt.Errorf("render: parse template %s: %w", kind, err)
		}
		templates[kind] = tpl
	}

	return &Renderer{
		templates: templates,
		policy:    newSanitizer(),
	}, nil
}

// Render produces the source text for one artifact. fieldName is required
// for KindField and ignored otherwise.
func (r *Renderer) Render(desc schema.ModelDescriptor, kind Kind, fieldName string) (string, error) {
	tpl, ok := r.templates[kind]
	if !ok {
		return "", fmt.Errorf("render: unknown artifact kind %q", kind)
	}

	ctx, err := r.buildContext(desc, kind, fieldName)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("render: execute %s template for %s: %w", kind, desc.ModelName, err)
	}
	return buf.String(), nil
}
