// Package generator runs the model-to-artifact pipeline as a batch: fetch
// schema, map and normalize, plan, render, write. Models are independent
// units of work processed concurrently; no failure in one model ever aborts
// a sibling.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/modelkit/odoogen/diagnostics"
	"github.com/modelkit/odoogen/generator/plan"
	"github.com/modelkit/odoogen/generator/render"
	"github.com/modelkit/odoogen/generator/write"
	"github.com/modelkit/odoogen/internal/debug"
	"github.com/modelkit/odoogen/odoo"
	"github.com/modelkit/odoogen/schema"
	"github.com/modelkit/odoogen/schema/selector"
)

// SchemaFetcher is the capability the runner needs from the schema server.
// The concrete client is passed in explicitly, never read from ambient state.
type SchemaFetcher interface {
	FetchModelSchema(ctx context.Context, model string) ([]odoo.FieldMetadata, error)
}

// Options configures a batch run.
type Options struct {
	OutputDir    string
	Concurrency  int
	FetchTimeout time.Duration
	Fs           afero.Fs
}

func (o *Options) withDefaults() {
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 30 * time.Second
	}
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.OutputDir == "" {
		o.OutputDir = "./generated"
	}
}

// ModelResult summarizes one model's generation.
type ModelResult struct {
	Model       string
	Skipped     bool
	Counts      map[write.Result]int
	Diagnostics []diagnostics.Diagnostic
}

// Line renders the human-readable per-model summary line.
func (m ModelResult) Line() string {
	if m.Skipped {
		return fmt.Sprintf("%s: skipped (%d diagnostics)", m.Model, len(m.Diagnostics))
	}
	return fmt.Sprintf("%s: %d created, %d updated, %d unchanged, %d conflicts, %d diagnostics",
		m.Model,
		m.Counts[write.Created],
		m.Counts[write.Updated],
		m.Counts[write.Unchanged],
		m.Counts[write.ConflictPreserved],
		len(m.Diagnostics))
}

// Summary aggregates a whole batch run, one entry per requested model in
// request order.
type Summary struct {
	Models []ModelResult
}

// Diagnostics collects every diagnostic of the run in model order.
func (s Summary) Diagnostics() *diagnostics.Collection {
	all := diagnostics.NewCollection()
	for _, m := range s.Models {
		all.PushAll(m.Diagnostics)
	}
	return all
}

// Failed reports whether the run should exit non-zero.
func (s Summary) Failed() bool {
	return s.Diagnostics().HasFatal()
}

// Runner owns one batch invocation. Each invocation is a fresh batch job;
// the only cross-run state is the manifest and the target files themselves.
type Runner struct {
	fetcher  SchemaFetcher
	renderer *render.Renderer
	opts     Options
}

// NewRunner builds a runner around an explicit schema-fetching capability.
func NewRunner(fetcher SchemaFetcher, opts Options) (*Runner, error) {
	if fetcher == nil {
		return nil, errors.New("generator: fetcher is required")
	}
	renderer, err := render.New()
	if err != nil {
		return nil, err
	}
	opts.withDefaults()
	return &Runner{fetcher: fetcher, renderer: renderer, opts: opts}, nil
}

// Run generates artifacts for every selector. Models run concurrently under
// a bounded worker limit; a stalled or failed fetch for one model never
// stalls the others. After cancellation no new model is started, but
// in-flight writes run to completion.
func (r *Runner) Run(ctx context.Context, selectors []selector.Selector) (Summary, error) {
	manifest, err := write.LoadManifest(r.opts.Fs, r.opts.OutputDir)
	if err != nil {
		return Summary{}, err
	}
	writer := write.NewWriter(r.opts.Fs, manifest)

	summary := Summary{Models: make([]ModelResult, len(selectors))}

	g := &errgroup.Group{}
	g.SetLimit(r.opts.Concurrency)
	for i, sel := range selectors {
		if ctx.Err() != nil {
			summary.Models[i] = ModelResult{Model: sel.Model, Skipped: true}
			continue
		}
		g.Go(func() error {
			summary.Models[i] = r.runModel(ctx, sel, writer)
			return nil
		})
	}
	// Workers never return errors; failures are per-unit diagnostics.
	_ = g.Wait()

	if err := manifest.Save(r.opts.Fs); err != nil {
		return summary, err
	}
	return summary, nil
}

// runModel executes the pipeline for one model. Every degradation lands in
// the result's diagnostics; the returned result is always well-formed.
func (r *Runner) runModel(ctx context.Context, sel selector.Selector, writer *write.Writer) ModelResult {
	result := ModelResult{
		Model:  sel.Model,
		Counts: make(map[write.Result]int),
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.opts.FetchTimeout)
	defer cancel()

	metas, err := r.fetcher.FetchModelSchema(fetchCtx, sel.Model)
	if err != nil {
		kind := diagnostics.Unreachable
		if errors.Is(err, odoo.ErrUnauthorized) {
			kind = diagnostics.Unauthorized
		}
		result.Skipped = true
		result.Diagnostics = append(result.Diagnostics, diagnostics.NewFetchFailure(kind, sel.Model, err))
		return result
	}

	desc, diags := schema.Normalize(sel.Model, sel.Apply(metas))
	result.Diagnostics = append(result.Diagnostics, diags...)

	artifacts, planDiags := plan.Plan(desc, r.renderer, r.opts.OutputDir)
	result.Diagnostics = append(result.Diagnostics, planDiags...)

	for _, art := range artifacts {
		res, writeDiags, err := writer.Write(art)
		result.Diagnostics = append(result.Diagnostics, writeDiags...)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, diagnostics.NewWriteFailed(art.Model, art.TargetPath, err))
			continue
		}
		result.Counts[res]++
	}

	debug.Debug("Model generated",
		"model", sel.Model,
		"created", result.Counts[write.Created],
		"updated", result.Counts[write.Updated],
		"unchanged", result.Counts[write.Unchanged],
		"conflicts", result.Counts[write.ConflictPreserved])
	return result
}
