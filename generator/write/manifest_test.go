package write

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/modelkit/odoogen/diagnostics"
	"github.com/modelkit/odoogen/generator/render"
)

func TestManifestMissingFileIsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()

	m, err := LoadManifest(fs, "out")
	require.NoError(t, err)
	require.Empty(t, m.Paths())
}

func TestManifestRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()

	m, err := LoadManifest(fs, "out")
	require.NoError(t, err)

	entry := Entry{
		Fingerprint:     "abc123",
		TemplateVersion: render.TemplateVersion,
		Model:           "res.partner",
		Artifact:        "types",
	}
	m.Record("out/res.partner.types.ts", entry)
	require.NoError(t, m.Save(fs))

	reloaded, err := LoadManifest(fs, "out")
	require.NoError(t, err)

	got, ok := reloaded.Lookup("out/res.partner.types.ts")
	require.True(t, ok)
	require.Equal(t, entry, got)
	require.Equal(t, []string{"out/res.partner.types.ts"}, reloaded.Paths())
}

func TestManifestCorruptFileFailsLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "out/"+ManifestName, []byte("{not yaml: ["), 0o644))

	_, err := LoadManifest(fs, "out")
	require.Error(t, err)
}

func TestManifestPathsSorted(t *testing.T) {
	fs := afero.NewMemMapFs()
	m, err := LoadManifest(fs, "out")
	require.NoError(t, err)

	m.Record("out/b.ts", Entry{})
	m.Record("out/a.ts", Entry{})
	m.Record("out/c.ts", Entry{})
	require.Equal(t, []string{"out/a.ts", "out/b.ts", "out/c.ts"}, m.Paths())
}

func TestCheckVersion(t *testing.T) {
	m := &Manifest{entries: map[string]Entry{}}

	// Same version: no skew.
	require.Empty(t, m.CheckVersion("p", Entry{TemplateVersion: render.TemplateVersion}))

	// Older manifest entry: regeneration handles it, no warning.
	require.Empty(t, m.CheckVersion("p", Entry{TemplateVersion: "0.1.0"}))

	// Entry written by a newer generator: warn but proceed.
	diags := m.CheckVersion("p", Entry{TemplateVersion: "99.0.0"})
	require.Len(t, diags, 1)
	require.Equal(t, diagnostics.TemplateVersionSkew, diags[0].Kind)
	require.False(t, diags[0].Kind.Fatal())

	// Pre-manifest entries and garbage versions are tolerated.
	require.Empty(t, m.CheckVersion("p", Entry{}))
	require.Empty(t, m.CheckVersion("p", Entry{TemplateVersion: "not-a-version"}))
}
