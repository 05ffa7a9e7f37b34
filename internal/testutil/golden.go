package testutil

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

// updateGolden controls whether golden files should be updated.
// Use: go test ./... -run TestGolden -update
var updateGolden = flag.Bool("update", false, "update golden files")

// ShouldUpdate returns true if golden files should be updated.
func ShouldUpdate() bool {
	return *updateGolden
}

// CompareGolden marshals got as indented JSON and compares it against the
// golden file at testdata/<name>.golden.json relative to the calling
// package's directory, failing with a diff on mismatch. With -update it
// rewrites the golden file instead of comparing.
func CompareGolden(t *testing.T, dir, name string, got any) {
	t.Helper()

	data, err := json.MarshalIndent(got, "", "  ")
	if err != nil {
		t.Fatalf("marshaling golden data: %v", err)
	}
	data = append(data, '\n')

	goldenPath := filepath.Join(dir, "testdata", name+".golden.json")

	if *updateGolden {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
			t.Fatalf("creating testdata dir: %v", err)
		}
		if err := os.WriteFile(goldenPath, data, 0o644); err != nil {
			t.Fatalf("writing golden file: %v", err)
		}
		t.Logf("updated golden: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file missing: %s\n\ngot:\n%s\n\nrun with -update to create it", goldenPath, data)
		}
		t.Fatalf("reading golden file: %v", err)
	}

	if !bytes.Equal(bytes.TrimSpace(expected), bytes.TrimSpace(data)) {
		t.Fatalf("golden mismatch for %s:\n--- expected ---\n%s\n--- got ---\n%s", name, expected, data)
	}
}
