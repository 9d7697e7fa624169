package generator

import (
	"context"
	"sort"

	"github.com/spf13/afero"

	"github.com/modelkit/odoogen/diagnostics"
	"github.com/modelkit/odoogen/generator/plan"
	"github.com/modelkit/odoogen/generator/write"
	"github.com/modelkit/odoogen/schema"
	"github.com/modelkit/odoogen/schema/selector"
)

// DriftState classifies one target path when a fresh render is compared
// against the generation manifest.
type DriftState string

const (
	// DriftNone means the fresh fingerprint matches the manifest.
	DriftNone DriftState = "up-to-date"
	// DriftChanged means the schema or templates changed since last write.
	DriftChanged DriftState = "changed"
	// DriftNew means the artifact has no manifest entry yet.
	DriftNew DriftState = "new"
	// DriftMissing means the manifest lists a file that is gone from disk.
	DriftMissing DriftState = "missing"
)

// DriftEntry is the comparison outcome for one target path.
type DriftEntry struct {
	Path  string
	Model string
	State DriftState
}

// DriftReport is the outcome of comparing a fresh render of every requested
// model against the manifest, without writing anything.
type DriftReport struct {
	Entries     []DriftEntry
	Diagnostics []diagnostics.Diagnostic
}

// Dirty reports whether any entry deviates from the manifest.
func (r DriftReport) Dirty() bool {
	for _, e := range r.Entries {
		if e.State != DriftNone {
			return true
		}
	}
	return false
}

// CheckDrift fetches and renders every selected model and compares artifact
// fingerprints against the manifest. Nothing is written; this is the
// read-only half of the idempotence guarantee, usable between runs.
func (r *Runner) CheckDrift(ctx context.Context, selectors []selector.Selector) (DriftReport, error) {
	manifest, err := write.LoadManifest(r.opts.Fs, r.opts.OutputDir)
	if err != nil {
		return DriftReport{}, err
	}

	var report DriftReport
	planned := make(map[string]struct{})

	for _, sel := range selectors {
		if ctx.Err() != nil {
			break
		}

		fetchCtx, cancel := context.WithTimeout(ctx, r.opts.FetchTimeout)
		metas, err := r.fetcher.FetchModelSchema(fetchCtx, sel.Model)
		cancel()
		if err != nil {
			report.Diagnostics = append(report.Diagnostics,
				diagnostics.NewFetchFailure(diagnostics.Unreachable, sel.Model, err))
			continue
		}

		desc, diags := schema.Normalize(sel.Model, sel.Apply(metas))
		report.Diagnostics = append(report.Diagnostics, diags...)

		artifacts, planDiags := plan.Plan(desc, r.renderer, r.opts.OutputDir)
		report.Diagnostics = append(report.Diagnostics, planDiags...)

		for _, art := range artifacts {
			planned[art.TargetPath] = struct{}{}
			state := DriftNew
			if entry, ok := manifest.Lookup(art.TargetPath); ok {
				if entry.Fingerprint == art.Fingerprint {
					state = DriftNone
				} else {
					state = DriftChanged
				}
			}
			report.Entries = append(report.Entries, DriftEntry{
				Path:  art.TargetPath,
				Model: art.Model,
				State: state,
			})
		}
	}

	// Manifest entries whose files vanished from the target tree.
	for _, path := range manifest.Paths() {
		if _, ok := planned[path]; ok {
			continue
		}
		if exists, _ := afero.Exists(r.opts.Fs, path); !exists {
			entry, _ := manifest.Lookup(path)
			report.Entries = append(report.Entries, DriftEntry{
				Path:  path,
				Model: entry.Model,
				State: DriftMissing,
			})
		}
	}

	sort.Slice(report.Entries, func(i, j int) bool {
		return report.Entries[i].Path < report.Entries[j].Path
	})
	return report, nil
}
