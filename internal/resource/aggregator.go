package resource

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"changelogagg/internal/apperrors"
	"changelogagg/internal/artifact"
)

// ProjectDirs is the current module's build layout.
type ProjectDirs struct {
	Output     string // Main output directory (e.g. target/classes)
	TestOutput string // Test output directory (e.g. target/test-classes)
}

// ordered returns the directories in search order: main, then test.
func (p ProjectDirs) ordered() []string {
	return []string{p.Output, p.TestOutput}
}

// Aggregator merges artifact and project resources into one sequence.
type Aggregator struct {
	locator *Locator
	names   []string
}

// NewAggregator creates an aggregator searching for names in the given order.
// Blank names are dropped; at least one name must remain.
func NewAggregator(locator *Locator, names []string) (*Aggregator, error) {
	if locator == nil {
		locator = NewLocator()
	}
	kept := make([]string, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) != "" {
			kept = append(kept, name)
		}
	}
	if len(kept) == 0 {
		return nil, apperrors.Configuration("resourceNames", "at least one changelog resource name is required")
	}
	return &Aggregator{locator: locator, names: kept}, nil
}

// Names returns the configured candidate names.
func (a *Aggregator) Names() []string {
	return append([]string(nil), a.names...)
}

// Aggregate discovers resources from the artifacts (in the resolver's order)
// followed by the project directories. The artifact order is never re-sorted.
// An empty result is valid; any malformed locator aborts the whole call.
func (a *Aggregator) Aggregate(ctx context.Context, refs []artifact.Ref, dirs ProjectDirs) ([]Discovered, error) {
	var out []Discovered

	for _, ref := range refs {
		if !ref.Eligible() {
			slog.DebugContext(ctx, "Skipping ineligible artifact", "artifact", ref.String(), "resolved", ref.Resolved)
			continue
		}
		found, err := a.locator.Locate(ref.File, a.names)
		if err != nil {
			return nil, err
		}
		for _, d := range found {
			d.Source = ref.String()
			out = append(out, d)
		}
	}

	for _, dir := range dirs.ordered() {
		found, err := a.project(dir)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}

	for i := range out {
		out[i].Position = i
	}

	slog.DebugContext(ctx, "Aggregated changelog resources", "artifacts", len(refs), "resources", len(out))
	return out, nil
}

// project checks one build output directory for each candidate name.
func (a *Aggregator) project(dir string) ([]Discovered, error) {
	if dir == "" {
		return nil, nil
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, nil
	}

	scope := DirScope{Root: dir}
	var found []Discovered
	for _, name := range a.names {
		u, err := scope.Resource(name)
		if err != nil {
			return nil, err
		}
		if u == nil {
			continue
		}
		found = append(found, Discovered{
			URL:    u,
			Name:   name,
			Origin: OriginProject,
			Source: dir,
		})
	}
	return found, nil
}
