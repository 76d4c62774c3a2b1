// Package resource discovers changelog fragments inside dependency artifacts
// and the current module's build output, in a deterministic order.
package resource

import (
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// DefaultName is the conventional location of a module's changelog fragment.
const DefaultName = "META-INF/liquibase/changelog.xml"

// Origin tags where a discovered resource came from.
type Origin string

const (
	OriginArtifact Origin = "artifact"
	OriginProject  Origin = "project"
)

// Discovered is one dereferenceable changelog fragment.
type Discovered struct {
	URL      *url.URL
	Name     string // Candidate name that matched
	Origin   Origin
	Source   string // Artifact coordinates or project directory
	Position int    // Index in the final ordered sequence
}

// String returns the absolute locator of the fragment.
func (d Discovered) String() string {
	if d.URL == nil {
		return ""
	}
	return d.URL.String()
}

// cleanName normalizes a candidate name to a slash-separated relative path.
// Names that would escape their scope report ok=false.
func cleanName(name string) (string, bool) {
	name = strings.TrimSpace(filepath.ToSlash(name))
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "", false
	}
	name = path.Clean(name)
	if !fs.ValidPath(name) || name == "." {
		return "", false
	}
	return name, true
}

// fileURL converts a filesystem path into an absolute file: URL.
func fileURL(p string) (*url.URL, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, err
	}
	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return &url.URL{Scheme: "file", Path: slashed}, nil
}
