// Package output owns the lifecycle of the aggregate changelog file.
package output

import (
	"bufio"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"changelogagg/internal/apperrors"
)

// TempPattern names engine-generated changelog files.
const TempPattern = "changelog*.tmp.xml"

// Ownership records who is responsible for an output file.
type Ownership int

const (
	// Persistent files were supplied by the caller and are never removed.
	Persistent Ownership = iota
	// Ephemeral files were generated here and are removed by Close.
	Ephemeral
)

func (o Ownership) String() string {
	if o == Ephemeral {
		return "ephemeral"
	}
	return "persistent"
}

// File is the materialized aggregate changelog.
type File struct {
	Path      string
	Ownership Ownership
}

// Materializer resolves and writes the aggregate changelog file.
// Ephemeral files it creates live until Close.
type Materializer struct {
	tempDir string // Directory for ephemeral files; "" uses os.TempDir
	file    *File
}

// NewMaterializer creates a materializer. An empty path means an ephemeral
// file will be generated on first Resolve.
func NewMaterializer(path string) *Materializer {
	m := &Materializer{}
	if path != "" {
		m.file = &File{Path: path, Ownership: Persistent}
	}
	return m
}

// SetPath makes path the caller-owned output file. A previously generated
// ephemeral file is released first.
func (m *Materializer) SetPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return apperrors.Configuration("output", "output path is required")
	}
	m.release()
	m.file = &File{Path: path, Ownership: Persistent}
	return nil
}

// SetTempDir sets the directory used for ephemeral files.
func (m *Materializer) SetTempDir(dir string) {
	m.tempDir = dir
}

// Resolve returns the output file, creating a uniquely named ephemeral file
// when no path was supplied. Repeated calls return the same file.
func (m *Materializer) Resolve() (*File, error) {
	if m.file != nil {
		return m.file, nil
	}

	f, err := os.CreateTemp(m.tempDir, TempPattern)
	if err != nil {
		return nil, apperrors.IO("output.createTemp", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		slog.Warn("Failed to close temporary changelog file", "path", path, "error", err)
	}

	m.file = &File{Path: path, Ownership: Ephemeral}
	slog.Debug("Generated ephemeral changelog file", "path", path)
	return m.file, nil
}

// EnsureParent creates the file's parent directories. Failure is logged
// only; a subsequent Write reports the real error.
func (m *Materializer) EnsureParent(f *File) {
	if f == nil {
		return
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("Failed to create changelog directory", "path", dir, "error", err)
	}
}

// Write truncates the file and replaces its contents with text. The file
// handle is released on every path; a close failure after a successful
// write is still reported.
func (m *Materializer) Write(f *File, text string) (err error) {
	if f == nil || f.Path == "" {
		return apperrors.State("output path is not resolved")
	}

	out, err := os.OpenFile(f.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return apperrors.IO("output.open", err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil {
			if err == nil {
				err = apperrors.IO("output.close", closeErr)
				return
			}
			slog.Warn("Failed to close changelog file", "path", f.Path, "error", closeErr)
		}
	}()

	w := bufio.NewWriter(out)
	if _, err := w.WriteString(text); err != nil {
		return apperrors.IO("output.write", err)
	}
	if err := w.Flush(); err != nil {
		return apperrors.IO("output.flush", err)
	}

	slog.Debug("Wrote changelog file", "bytes", len(text), "path", f.Path, "ownership", f.Ownership.String())
	return nil
}

// Close removes an ephemeral file. Persistent files are left alone.
func (m *Materializer) Close() error {
	m.release()
	return nil
}

func (m *Materializer) release() {
	if m.file == nil || m.file.Ownership != Ephemeral {
		return
	}
	if err := os.Remove(m.file.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to remove ephemeral changelog file", "path", m.file.Path, "error", err)
	}
	m.file = nil
}
