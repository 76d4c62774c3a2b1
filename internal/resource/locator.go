package resource

import (
	"log/slog"
	"os"
)

// Locator finds candidate names inside one artifact container at a time.
// Each call opens its own scope rooted at that container and releases it
// before returning; no lookup state is shared between calls.
type Locator struct {
	// Fallback is consulted for a name only when the container lacks it.
	// It is never consulted first and never modified. Nil disables it.
	Fallback Scope
}

// NewLocator creates a locator without a fallback scope.
func NewLocator() *Locator {
	return &Locator{}
}

// Locate reports which names resolve inside the container at path, in the
// order given. A missing, unreadable, or non-archive container yields an
// empty result; only malformed locators produce an error.
func (l *Locator) Locate(container string, names []string) ([]Discovered, error) {
	scope, closeScope := l.open(container)
	if scope == nil {
		return nil, nil
	}
	defer closeScope()

	var found []Discovered
	for _, name := range names {
		u, err := scope.Resource(name)
		if err != nil {
			return nil, err
		}
		if u == nil && l.Fallback != nil {
			u, err = l.Fallback.Resource(name)
			if err != nil {
				return nil, err
			}
		}
		if u == nil {
			continue
		}
		found = append(found, Discovered{
			URL:    u,
			Name:   name,
			Origin: OriginArtifact,
			Source: container,
		})
	}
	return found, nil
}

// open returns a scope for the container and its release function.
func (l *Locator) open(container string) (Scope, func()) {
	info, err := os.Stat(container)
	if err != nil {
		slog.Debug("Artifact container not accessible", "path", container, "error", err)
		return nil, nil
	}
	if info.IsDir() {
		return DirScope{Root: container}, func() {}
	}

	archive, err := OpenArchive(container)
	if err != nil {
		slog.Debug("Artifact container is not a readable archive", "path", container, "error", err)
		return nil, nil
	}
	return archive, func() {
		if err := archive.Close(); err != nil {
			slog.Warn("Failed to close artifact archive", "path", container, "error", err)
		}
	}
}
