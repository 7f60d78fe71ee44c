package testsupport

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path, and its parent directories, holding size filler
// bytes. Sizes below one are written as one byte.
func WriteFile(t testing.TB, path string, size int) {
	t.Helper()
	writeFile(t, path, bytes.Repeat([]byte{'x'}, max(size, 1)), 0o644)
}

// WriteExecutable writes a shell script to path and marks it executable.
func WriteExecutable(t testing.TB, path, script string) {
	t.Helper()
	writeFile(t, path, []byte("#!/bin/sh\n"+script), 0o755)
}

// WriteFragments creates {prefix}_{i}.{ext} in dir for each index and
// returns their paths. Each file holds FragmentMarker(prefix, i) so tests can
// assert concatenation order from the output bytes.
func WriteFragments(t testing.TB, dir, prefix, ext string, indices ...int) []string {
	t.Helper()
	paths := make([]string, len(indices))
	for n, i := range indices {
		paths[n] = filepath.Join(dir, fmt.Sprintf("%s_%d.%s", prefix, i, ext))
		writeFile(t, paths[n], []byte(FragmentMarker(prefix, i)), 0o644)
	}
	return paths
}

// FragmentMarker is the content WriteFragments stores for one fragment.
func FragmentMarker(prefix string, index int) string {
	return fmt.Sprintf("%s-%d;", prefix, index)
}

func writeFile(t testing.TB, path string, data []byte, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
