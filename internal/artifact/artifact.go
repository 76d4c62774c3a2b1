// Package artifact describes the resolved dependency artifacts handed to the
// aggregator by the build's dependency resolver.
package artifact

import (
	"os"
	"strings"
)

// Ref identifies one resolved dependency. The resolver owns it; the
// aggregator only reads it. Order within a []Ref is significant.
type Ref struct {
	ID       string `json:"id" yaml:"id" toml:"id"`                   // Coordinates, e.g. "org.example:schema:1.0"
	File     string `json:"file" yaml:"file" toml:"file"`             // Archive or directory holding the artifact's contents
	Resolved bool   `json:"resolved" yaml:"resolved" toml:"resolved"` // Whether the resolver fetched the artifact
}

// String returns the coordinates, falling back to the file path.
func (r Ref) String() string {
	if r.ID != "" {
		return r.ID
	}
	return r.File
}

// Eligible reports whether the artifact may be searched for resources:
// it must be resolved and its file must be readable.
func (r Ref) Eligible() bool {
	if !r.Resolved || strings.TrimSpace(r.File) == "" {
		return false
	}
	f, err := os.Open(r.File)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
