package generator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/modelkit/odoogen/diagnostics"
	"github.com/modelkit/odoogen/generator/write"
	"github.com/modelkit/odoogen/odoo"
	"github.com/modelkit/odoogen/schema/selector"
)

// fakeFetcher serves canned schemas and failures per model.
type fakeFetcher struct {
	schemas map[string][]odoo.FieldMetadata
	errs    map[string]error
}

func (f *fakeFetcher) FetchModelSchema(ctx context.Context, model string) ([]odoo.FieldMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.errs[model]; ok {
		return nil, err
	}
	metas, ok := f.schemas[model]
	if !ok {
		return nil, odoo.ErrUnreachable
	}
	return metas, nil
}

func partnerSchema() []odoo.FieldMetadata {
	return []odoo.FieldMetadata{
		{Name: "name", RawType: "char", Label: "Name", Required: true},
		{Name: "email", RawType: "char", Label: "Email"},
		{Name: "active", RawType: "boolean", Label: "Active"},
	}
}

func newTestRunner(t *testing.T, fetcher *fakeFetcher, fs afero.Fs) *Runner {
	t.Helper()
	runner, err := NewRunner(fetcher, Options{OutputDir: "out", Fs: fs})
	require.NoError(t, err)
	return runner
}

func mustSelectors(t *testing.T, exprs ...string) []selector.Selector {
	t.Helper()
	sels, err := selector.ParseAll(exprs)
	require.NoError(t, err)
	return sels
}

func TestRunCreatesAllArtifacts(t *testing.T) {
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{schemas: map[string][]odoo.FieldMetadata{"res.partner": partnerSchema()}}
	runner := newTestRunner(t, fetcher, fs)

	summary, err := runner.Run(context.Background(), mustSelectors(t, "res.partner"))
	require.NoError(t, err)
	require.False(t, summary.Failed())
	require.Len(t, summary.Models, 1)

	result := summary.Models[0]
	require.False(t, result.Skipped)
	require.Equal(t, 3, result.Counts[write.Created], "types, list, and form artifacts")
	require.Empty(t, result.Diagnostics)

	for _, name := range []string{
		"res.partner.types.ts",
		"res.partner.list.tsx",
		"res.partner.form.tsx",
		write.ManifestName,
	} {
		exists, err := afero.Exists(fs, filepath.Join("out", name))
		require.NoError(t, err)
		require.True(t, exists, "missing %s", name)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{schemas: map[string][]odoo.FieldMetadata{"res.partner": partnerSchema()}}

	_, err := newTestRunner(t, fetcher, fs).Run(context.Background(), mustSelectors(t, "res.partner"))
	require.NoError(t, err)

	// A fresh runner reloads the manifest from disk, like a second invocation.
	summary, err := newTestRunner(t, fetcher, fs).Run(context.Background(), mustSelectors(t, "res.partner"))
	require.NoError(t, err)

	result := summary.Models[0]
	require.Equal(t, 0, result.Counts[write.Created])
	require.Equal(t, 0, result.Counts[write.Updated])
	require.Equal(t, 3, result.Counts[write.Unchanged])
}

func TestRunSchemaGrowthUpdatesAndCreates(t *testing.T) {
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{schemas: map[string][]odoo.FieldMetadata{"res.partner": partnerSchema()}}

	_, err := newTestRunner(t, fetcher, fs).Run(context.Background(), mustSelectors(t, "res.partner"))
	require.NoError(t, err)

	fetcher.schemas["res.partner"] = append(partnerSchema(), odoo.FieldMetadata{
		Name: "company_id", RawType: "many2one", Label: "Company", RelationTarget: "res.company",
	})

	summary, err := newTestRunner(t, fetcher, fs).Run(context.Background(), mustSelectors(t, "res.partner"))
	require.NoError(t, err)

	result := summary.Models[0]
	require.Equal(t, 3, result.Counts[write.Updated], "types, list, and form reflect the new field")
	require.Equal(t, 1, result.Counts[write.Created], "the combobox subcomponent is new")

	exists, err := afero.Exists(fs, filepath.Join("out", "res.partner.fields.company_id.tsx"))
	require.NoError(t, err)
	require.True(t, exists)
}

func TestRunUnauthorizedModelDoesNotAbortSiblings(t *testing.T) {
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{
		schemas: map[string][]odoo.FieldMetadata{"res.partner": partnerSchema()},
		errs:    map[string]error{"ir.secret": odoo.ErrUnauthorized},
	}
	runner := newTestRunner(t, fetcher, fs)

	summary, err := runner.Run(context.Background(), mustSelectors(t, "ir.secret", "res.partner"))
	require.NoError(t, err)
	require.Len(t, summary.Models, 2)

	skipped := summary.Models[0]
	require.Equal(t, "ir.secret", skipped.Model)
	require.True(t, skipped.Skipped)
	require.Len(t, skipped.Diagnostics, 1)
	require.Equal(t, diagnostics.Unauthorized, skipped.Diagnostics[0].Kind)

	sibling := summary.Models[1]
	require.False(t, sibling.Skipped)
	require.Equal(t, 3, sibling.Counts[write.Created])

	require.True(t, summary.Failed(), "an unauthorized model fails the batch")
}

func TestRunUnknownTypeDegradesWithoutFailing(t *testing.T) {
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{schemas: map[string][]odoo.FieldMetadata{
		"account.move": {
			{Name: "name", RawType: "char", Label: "Name"},
			{Name: "amount", RawType: "monetary", Label: "Amount"},
		},
	}}
	runner := newTestRunner(t, fetcher, fs)

	summary, err := runner.Run(context.Background(), mustSelectors(t, "account.move"))
	require.NoError(t, err)
	require.False(t, summary.Failed(), "an unknown raw type is a degradation, not a failure")

	result := summary.Models[0]
	require.Equal(t, 3, result.Counts[write.Created])
	require.Len(t, result.Diagnostics, 1)
	require.Equal(t, diagnostics.UnknownType, result.Diagnostics[0].Kind)

	types, err := afero.ReadFile(fs, filepath.Join("out", "account.move.types.ts"))
	require.NoError(t, err)
	require.Contains(t, string(types), "readonly amount?: string;", "unknown type degrades to text")
}

func TestRunAppliesFieldSelector(t *testing.T) {
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{schemas: map[string][]odoo.FieldMetadata{"res.partner": partnerSchema()}}
	runner := newTestRunner(t, fetcher, fs)

	_, err := runner.Run(context.Background(), mustSelectors(t, "res.partner[name,-email]"))
	require.NoError(t, err)

	types, err := afero.ReadFile(fs, filepath.Join("out", "res.partner.types.ts"))
	require.NoError(t, err)
	require.Contains(t, string(types), "readonly name: string;")
	require.NotContains(t, string(types), "email")
	require.NotContains(t, string(types), "active")
}

func TestRunCancelledContextSkipsModels(t *testing.T) {
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{schemas: map[string][]odoo.FieldMetadata{"res.partner": partnerSchema()}}
	runner := newTestRunner(t, fetcher, fs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := runner.Run(ctx, mustSelectors(t, "res.partner"))
	require.NoError(t, err)
	require.True(t, summary.Models[0].Skipped)

	exists, _ := afero.Exists(fs, filepath.Join("out", "res.partner.types.ts"))
	require.False(t, exists, "no artifact work after cancellation")
}

func TestCheckDrift(t *testing.T) {
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{schemas: map[string][]odoo.FieldMetadata{"res.partner": partnerSchema()}}
	sels := mustSelectors(t, "res.partner")

	runner := newTestRunner(t, fetcher, fs)

	// Before any run everything is new.
	report, err := runner.CheckDrift(context.Background(), sels)
	require.NoError(t, err)
	require.True(t, report.Dirty())
	for _, entry := range report.Entries {
		require.Equal(t, DriftNew, entry.State)
	}

	_, err = runner.Run(context.Background(), sels)
	require.NoError(t, err)

	// Fresh generation: clean.
	report, err = newTestRunner(t, fetcher, fs).CheckDrift(context.Background(), sels)
	require.NoError(t, err)
	require.False(t, report.Dirty())
	require.Len(t, report.Entries, 3)

	// Schema change: the affected artifacts drift.
	fetcher.schemas["res.partner"] = append(partnerSchema(), odoo.FieldMetadata{
		Name: "phone", RawType: "char", Label: "Phone",
	})
	report, err = newTestRunner(t, fetcher, fs).CheckDrift(context.Background(), sels)
	require.NoError(t, err)
	require.True(t, report.Dirty())
	for _, entry := range report.Entries {
		require.Equal(t, DriftChanged, entry.State)
	}
}

func TestCheckDriftReportsMissingFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{schemas: map[string][]odoo.FieldMetadata{"res.partner": partnerSchema()}}
	sels := mustSelectors(t, "res.partner")

	_, err := newTestRunner(t, fetcher, fs).Run(context.Background(), sels)
	require.NoError(t, err)

	// The manifest remembers the form artifact, but the model is no longer
	// requested and its file is gone.
	require.NoError(t, fs.Remove(filepath.Join("out", "res.partner.form.tsx")))

	report, err := newTestRunner(t, fetcher, fs).CheckDrift(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, report.Dirty())

	var missing []string
	for _, entry := range report.Entries {
		if entry.State == DriftMissing {
			missing = append(missing, entry.Path)
		}
	}
	require.Equal(t, []string{filepath.Join("out", "res.partner.form.tsx")}, missing)
}

func TestModelResultLine(t *testing.T) {
	line := ModelResult{
		Model:  "res.partner",
		Counts: map[write.Result]int{write.Created: 2, write.Unchanged: 1},
	}.Line()
	require.Equal(t, "res.partner: 2 created, 0 updated, 1 unchanged, 0 conflicts, 0 diagnostics", line)

	skipped := ModelResult{Model: "ir.secret", Skipped: true, Diagnostics: []diagnostics.Diagnostic{{}}}.Line()
	require.Equal(t, "ir.secret: skipped (1 diagnostics)", skipped)
}
