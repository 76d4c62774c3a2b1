// Package testutil provides fixture builders for artifact and build-output trees.
package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// WriteJar creates a zip container at path holding the given entries
// (slash-separated name -> content). Entries are written in sorted order.
func WriteJar(tb testing.TB, path string, entries map[string]string) string {
	tb.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("failed to create jar directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("failed to create jar: %v", err)
	}
	defer f.Close()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			tb.Fatalf("failed to add jar entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(entries[name])); err != nil {
			tb.Fatalf("failed to write jar entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("failed to finish jar: %v", err)
	}
	return path
}

// WriteFile writes content to root/name, creating parent directories.
func WriteFile(tb testing.TB, root, name, content string) string {
	tb.Helper()

	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("failed to write file: %v", err)
	}
	return path
}
