package resource

import (
	"archive/zip"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"changelogagg/internal/apperrors"
)

// Scope resolves resource names to locators. Resource returns (nil, nil)
// when the name is absent; errors are reserved for malformed locators.
type Scope interface {
	Resource(name string) (*url.URL, error)
}

// ArchiveScope looks resources up inside a single zip/jar container.
type ArchiveScope struct {
	zr   *zip.ReadCloser
	base string // "jar:file:///...!/" prefix
}

// OpenArchive opens the container at path. The caller must Close it.
func OpenArchive(path string) (*ArchiveScope, error) {
	u, err := fileURL(path)
	if err != nil {
		return nil, apperrors.Discovery("resource.openArchive", err)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	return &ArchiveScope{zr: zr, base: "jar:" + u.String() + "!/"}, nil
}

// Resource implements Scope.
func (s *ArchiveScope) Resource(name string) (*url.URL, error) {
	clean, ok := cleanName(name)
	if !ok {
		return nil, nil
	}
	info, err := fs.Stat(s.zr, clean)
	if err != nil || info.IsDir() {
		return nil, nil
	}
	u, err := url.Parse(s.base + (&url.URL{Path: clean}).EscapedPath())
	if err != nil {
		return nil, apperrors.Discovery("resource.archiveURL", err)
	}
	return u, nil
}

// Close releases the container handle.
func (s *ArchiveScope) Close() error {
	return s.zr.Close()
}

// DirScope looks resources up as regular files below a directory.
type DirScope struct {
	Root string
}

// Resource implements Scope.
func (s DirScope) Resource(name string) (*url.URL, error) {
	clean, ok := cleanName(name)
	if !ok || s.Root == "" {
		return nil, nil
	}
	full := filepath.Join(s.Root, filepath.FromSlash(clean))
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return nil, nil
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, nil
	}
	_ = f.Close()

	u, err := fileURL(full)
	if err != nil {
		return nil, apperrors.Discovery("resource.fileURL", fmt.Errorf("%s: %w", full, err))
	}
	return u, nil
}
