package write

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	goversion "github.com/hashicorp/go-version"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/modelkit/odoogen/diagnostics"
	"github.com/modelkit/odoogen/generator/render"
)

// ManifestName is the manifest file kept next to the generated artifacts.
const ManifestName = ".odoogen-manifest.yaml"

// Entry records what was last written to one target path.
type Entry struct {
	Fingerprint     string `yaml:"fingerprint"`
	TemplateVersion string `yaml:"templateVersion"`
	Model           string `yaml:"model"`
	Artifact        string `yaml:"artifact"`
}

type manifestFile struct {
	Version   int              `yaml:"version"`
	Artifacts map[string]Entry `yaml:"artifacts"`
}

// Manifest maps target paths to their last-written fingerprints. Entries are
// created on first write and updated on every write; they are never removed
// automatically, so stale entries survive until an operator clears them.
type Manifest struct {
	mu      sync.Mutex
	path    string
	entries map[string]Entry
}

// LoadManifest reads the manifest under outDir, or returns an empty one if
// the file does not exist yet.
func LoadManifest(fs afero.Fs, outDir string) (*Manifest, error) {
	m := &Manifest{
		path:    filepath.Join(outDir, ManifestName),
		entries: make(map[string]Entry),
	}

	data, err := afero.ReadFile(fs, m.path)
	if err != nil {
		if exists, _ := afero.Exists(fs, m.path); !exists {
			return m, nil
		}
		return nil, fmt.Errorf("manifest: read %s: %w", m.path, err)
	}

	var file manifestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", m.path, err)
	}
	if file.Artifacts != nil {
		m.entries = file.Artifacts
	}
	return m, nil
}

// Lookup returns the recorded entry for a target path.
func (m *Manifest) Lookup(path string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[path]
	return entry, ok
}

// Record stores the entry for a target path.
func (m *Manifest) Record(path string, entry Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[path] = entry
}

// Paths returns every recorded target path, sorted.
func (m *Manifest) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.entries))
	for path := range m.entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Save writes the manifest back to disk.
func (m *Manifest) Save(fs afero.Fs) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := yaml.Marshal(manifestFile{Version: 1, Artifacts: m.entries})
	if err != nil {
		return fmt.Errorf("manifest: encode: %w", err)
	}
	if err := fs.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("manifest: create output dir: %w", err)
	}
	if err := afero.WriteFile(fs, m.path, data, 0o644); err != nil {
		return fmt.Errorf("manifest: write %s: %w", m.path, err)
	}
	return nil
}

// CheckVersion compares an entry's template version against the version this
// binary carries. An entry from a newer generator yields a warning
// diagnostic; generation still proceeds.
func (m *Manifest) CheckVersion(path string, entry Entry) []diagnostics.Diagnostic {
	if entry.TemplateVersion == "" {
		return nil
	}
	recorded, err := goversion.NewVersion(entry.TemplateVersion)
	if err != nil {
		return nil
	}
	current, err := goversion.NewVersion(render.TemplateVersion)
	if err != nil {
		return nil
	}
	if recorded.GreaterThan(current) {
		return []diagnostics.Diagnostic{
			diagnostics.NewTemplateVersionSkew(path, entry.TemplateVersion, render.TemplateVersion),
		}
	}
	return nil
}
