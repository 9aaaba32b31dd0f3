// Package testutil provides shared test helpers: golden file comparison and
// fake host and formatter capabilities.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Update is a flag that, when set, regenerates golden files from current output.
// Usage: go test ./... -update
var Update = flag.Bool("update", false, "update golden files")

// TransformFunc turns one golden input into its expected output.
type TransformFunc func(input string) (string, error)

// RunGolden runs a single golden file test in dir. It reads input<ext>,
// applies fn, and compares against expected<ext>.
func RunGolden(t *testing.T, dir, ext string, fn TransformFunc) {
	t.Helper()

	inputPath := filepath.Join(dir, "input"+ext)
	expectedPath := filepath.Join(dir, "expected"+ext)

	inputBytes, err := os.ReadFile(inputPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", inputPath, err)
	}

	actual, err := fn(string(inputBytes))
	if err != nil {
		t.Fatalf("transform %s: %v", dir, err)
	}

	if *Update {
		if err := os.WriteFile(expectedPath, []byte(actual), 0o644); err != nil {
			t.Fatalf("failed to update golden file %s: %v", expectedPath, err)
		}
		t.Logf("updated golden file: %s", expectedPath)
		return
	}

	expectedBytes, err := os.ReadFile(expectedPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", expectedPath, err)
	}

	if diff := cmp.Diff(string(expectedBytes), actual); diff != "" {
		t.Errorf("output mismatch for %s (-expected +actual):\n%s", dir, diff)
	}
}

// RunGoldenDir runs RunGolden for every subdirectory of testdataDir.
func RunGoldenDir(t *testing.T, testdataDir, ext string, fn TransformFunc) {
	t.Helper()

	entries, err := os.ReadDir(testdataDir)
	if err != nil {
		t.Fatalf("failed to read testdata dir %s: %v", testdataDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		t.Run(entry.Name(), func(t *testing.T) {
			RunGolden(t, filepath.Join(testdataDir, entry.Name()), ext, fn)
		})
	}
}
