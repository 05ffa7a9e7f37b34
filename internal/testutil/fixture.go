// Package testutil provides temp-repo fixture construction and golden-file
// comparison shared across the test suites of internal/graphbuilder and
// internal/tokenize.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteRepo materializes files (repo-relative path -> content) under a fresh
// temp directory and returns its root. Intermediate directories are created
// as needed.
func WriteRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}
