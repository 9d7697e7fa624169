// Package write is the only component that touches persistent state. It
// compares rendered output against what is on disk, preserves user-owned
// custom regions, and writes only on real change, recording every write in
// the generation manifest.
package write

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/modelkit/odoogen/diagnostics"
	"github.com/modelkit/odoogen/generator/plan"
	"github.com/modelkit/odoogen/generator/render"
	"github.com/modelkit/odoogen/internal/debug"
)

// Result is the terminal state of one artifact write. There are no retries
// within a run; a failed unit is reported and the operator re-runs.
type Result string

const (
	Created           Result = "created"
	Updated           Result = "updated"
	Unchanged         Result = "unchanged"
	ConflictPreserved Result = "conflict-preserved"
)

// Writer applies planned artifacts to the target tree. Each target path is
// owned by exactly one artifact, so writes to a path never race; the shared
// manifest does its own locking.
type Writer struct {
	fs       afero.Fs
	manifest *Manifest
}

// NewWriter creates a writer over the given filesystem and manifest.
func NewWriter(fs afero.Fs, manifest *Manifest) *Writer {
	return &Writer{fs: fs, manifest: manifest}
}

// Write reconciles one artifact with the file at its target path.
//
// The splice-and-compare discipline: extract the custom regions of the
// existing file, splice them into the fresh render, and compare the result
// byte-for-byte against what is on disk. Identical means nothing to do; a
// difference the splice explains means regenerate around the user's regions;
// a difference the splice cannot explain means a hand-edited generated file,
// which is preserved untouched.
func (w *Writer) Write(art plan.Artifact) (Result, []diagnostics.Diagnostic, error) {
	var diags []diagnostics.Diagnostic

	if entry, ok := w.manifest.Lookup(art.TargetPath); ok {
		diags = append(diags, w.manifest.CheckVersion(art.TargetPath, entry)...)
	}

	exists, err := afero.Exists(w.fs, art.TargetPath)
	if err != nil {
		return ConflictPreserved, diags, fmt.Errorf("writer: stat %s: %w", art.TargetPath, err)
	}

	if !exists {
		if err := w.writeFile(art.TargetPath, art.Content); err != nil {
			return ConflictPreserved, diags, err
		}
		w.record(art)
		debug.Debug("Artifact created", "path", art.TargetPath)
		return Created, diags, nil
	}

	existingBytes, err := afero.ReadFile(w.fs, art.TargetPath)
	if err != nil {
		return ConflictPreserved, diags, fmt.Errorf("writer: read %s: %w", art.TargetPath, err)
	}
	existing := string(existingBytes)

	if !hasGeneratedHeader(existing) {
		diags = append(diags, diagnostics.NewConflictPreserved(art.Model, art.TargetPath,
			"file exists but carries no generated-file header"))
		return ConflictPreserved, diags, nil
	}

	regions, err := extractRegions(existing)
	if err != nil {
		diags = append(diags, diagnostics.NewConflictPreserved(art.Model, art.TargetPath,
			fmt.Sprintf("custom-region markers corrupted: %v", err)))
		return ConflictPreserved, diags, nil
	}

	spliced, err := splice(art.Content, regions)
	if err != nil {
		diags = append(diags, diagnostics.NewConflictPreserved(art.Model, art.TargetPath, err.Error()))
		return ConflictPreserved, diags, nil
	}

	if spliced == existing {
		w.record(art)
		debug.Debug("Artifact unchanged", "path", art.TargetPath)
		return Unchanged, diags, nil
	}

	// The spliced render differs from disk. If the render itself matches the
	// manifest fingerprint, nothing regenerated changed since the last run,
	// so the difference must be a hand edit outside the custom regions.
	if entry, ok := w.manifest.Lookup(art.TargetPath); ok && entry.Fingerprint == art.Fingerprint {
		diags = append(diags, diagnostics.NewConflictPreserved(art.Model, art.TargetPath,
			"generated code was edited outside custom regions"))
		return ConflictPreserved, diags, nil
	}

	if err := w.writeFile(art.TargetPath, spliced); err != nil {
		return ConflictPreserved, diags, err
	}
	w.record(art)
	debug.Debug("Artifact updated", "path", art.TargetPath)
	return Updated, diags, nil
}

// writeFile writes content in one call so a cancelled run never leaves a
// half-written file behind.
func (w *Writer) writeFile(path, content string) error {
	if err := w.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("writer: create dir for %s: %w", path, err)
	}
	if err := afero.WriteFile(w.fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writer: write %s: %w", path, err)
	}
	return nil
}

// record stores the pristine render fingerprint, not the spliced file's:
// the fingerprint is a pure function of descriptor, kind, and template
// version, independent of whatever lives in the custom regions.
func (w *Writer) record(art plan.Artifact) {
	w.manifest.Record(art.TargetPath, Entry{
		Fingerprint:     art.Fingerprint,
		TemplateVersion: render.TemplateVersion,
		Model:           art.Model,
		Artifact:        string(art.Kind),
	})
}
