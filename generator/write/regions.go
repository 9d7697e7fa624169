package write

import (
	"fmt"
	"strings"
)

// Custom-region markers. Everything between a begin/end pair belongs to the
// user and survives regeneration; everything else is owned by the generator.
const (
	regionBeginPrefix = "// odoogen:custom-begin "
	regionEndPrefix   = "// odoogen:custom-end "
	generatedHeader   = "// Code generated by odoogen."
)

// region is one delimited custom span: the marker name and the raw lines
// between the markers (markers excluded).
type region struct {
	name  string
	lines []string
}

// extractRegions scans content for custom regions. It fails on anything the
// splice step could not reconcile: unbalanced markers, nested regions,
// mismatched names, or duplicates.
func extractRegions(content string) ([]region, error) {
	var regions []region
	seen := make(map[string]struct{})

	var open *region
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, regionBeginPrefix):
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, regionBeginPrefix))
			if open != nil {
				return nil, fmt.Errorf("custom region %q opened inside region %q", name, open.name)
			}
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("duplicate custom region %q", name)
			}
			seen[name] = struct{}{}
			open = &region{name: name}
		case strings.HasPrefix(trimmed, regionEndPrefix):
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, regionEndPrefix))
			if open == nil {
				return nil, fmt.Errorf("custom region %q closed but never opened", name)
			}
			if name != open.name {
				return nil, fmt.Errorf("custom region %q closed by end marker %q", open.name, name)
			}
			regions = append(regions, *open)
			open = nil
		default:
			if open != nil {
				open.lines = append(open.lines, line)
			}
		}
	}
	if open != nil {
		return nil, fmt.Errorf("custom region %q is never closed", open.name)
	}
	return regions, nil
}

// splice replaces the (empty by default) custom regions of freshly rendered
// content with the region bodies extracted from the existing file. Region
// names present on disk must all exist in the new render; an orphaned region
// would silently lose user content, so it is an error.
func splice(rendered string, existing []region) (string, error) {
	bodies := make(map[string][]string, len(existing))
	for _, reg := range existing {
		bodies[reg.name] = reg.lines
	}

	var out []string
	var openName string
	matched := make(map[string]struct{})

	for _, line := range strings.Split(rendered, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, regionBeginPrefix):
			openName = strings.TrimSpace(strings.TrimPrefix(trimmed, regionBeginPrefix))
			out = append(out, line)
			if body, ok := bodies[openName]; ok {
				matched[openName] = struct{}{}
				out = append(out, body...)
			}
		case strings.HasPrefix(trimmed, regionEndPrefix):
			openName = ""
			out = append(out, line)
		default:
			// Default region bodies of the fresh render are dropped; the
			// existing bodies already replaced them above.
			if openName == "" {
				out = append(out, line)
			} else if _, ok := bodies[openName]; !ok {
				out = append(out, line)
			}
		}
	}

	for _, reg := range existing {
		if _, ok := matched[reg.name]; !ok && len(reg.lines) > 0 {
			return "", fmt.Errorf("custom region %q exists on disk but not in the regenerated file", reg.name)
		}
	}
	return strings.Join(out, "\n"), nil
}

// hasGeneratedHeader reports whether content starts with the generated-file
// marker. Files without it were never written by the generator.
func hasGeneratedHeader(content string) bool {
	return strings.HasPrefix(strings.TrimLeft(content, "\n"), generatedHeader)
}
