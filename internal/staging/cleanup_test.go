package staging

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chunkmux/internal/logging"
)

// leftover creates base/name backdated by age and returns its path.
func leftover(t *testing.T, base, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(base, name)
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	backdate(t, path, age)
	return path
}

func backdate(t *testing.T, path string, age time.Duration) {
	t.Helper()
	when := time.Now().Add(-age)
	if err := os.Chtimes(path, when, when); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func TestCleanStaleSweepsOnlyExpiredWorkspaces(t *testing.T) {
	base := t.TempDir()
	expired := leftover(t, base, WorkspacePrefix+"killed", 3*time.Hour)
	fresh := leftover(t, base, WorkspacePrefix+"running", 0)
	foreign := leftover(t, base, "captures", 72*time.Hour)
	file := filepath.Join(base, WorkspacePrefix+"notes.txt")
	if err := os.WriteFile(file, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	backdate(t, file, 3*time.Hour)

	result := CleanStale(context.Background(), base, time.Hour, logging.NewNop())

	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Removed) != 1 || result.Removed[0] != expired {
		t.Fatalf("expected only %s removed, got %v", expired, result.Removed)
	}
	if exists(expired) {
		t.Fatal("expired workspace still on disk")
	}
	for _, kept := range []string{fresh, foreign, file} {
		if !exists(kept) {
			t.Fatalf("%s should have been left alone", kept)
		}
	}
}

func TestCleanStaleStopsWhenCancelled(t *testing.T) {
	base := t.TempDir()
	expired := leftover(t, base, WorkspacePrefix+"killed", 3*time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := CleanStale(ctx, base, time.Hour, logging.NewNop())
	if len(result.Removed) != 0 || !exists(expired) {
		t.Fatalf("cancelled sweep removed %v", result.Removed)
	}
}

func TestCleanStaleToleratesMissingBase(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	for _, base := range []string{"", "   ", filepath.Join(t.TempDir(), "gone")} {
		result := CleanStale(context.Background(), base, time.Hour, nil)
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Fatalf("base %q: expected empty result, got %+v", base, result)
		}
	}
}

func TestListDirectoriesReportsSizeOldestFirst(t *testing.T) {
	base := t.TempDir()
	newer := leftover(t, base, WorkspacePrefix+"b", time.Minute)
	if err := os.MkdirAll(filepath.Join(newer, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(newer, "nested", "video_concatenated.webm"), []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}
	backdate(t, newer, time.Minute)
	older := leftover(t, base, WorkspacePrefix+"a", time.Hour)
	leftover(t, base, "unrelated", 2*time.Hour)

	dirs, err := ListDirectories(base)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 2 {
		t.Fatalf("expected 2 workspaces, got %+v", dirs)
	}
	if dirs[0].Path != older || dirs[1].Path != newer {
		t.Fatalf("unexpected order: %s, %s", dirs[0].Path, dirs[1].Path)
	}
	if dirs[0].Size != 0 || dirs[1].Size != 5 {
		t.Fatalf("unexpected sizes %d, %d", dirs[0].Size, dirs[1].Size)
	}
	if dirs[1].Name != WorkspacePrefix+"b" {
		t.Fatalf("unexpected name %q", dirs[1].Name)
	}
}

func TestListDirectoriesMissingBase(t *testing.T) {
	dirs, err := ListDirectories(filepath.Join(t.TempDir(), "gone"))
	if err != nil || dirs != nil {
		t.Fatalf("expected nil, nil; got %v, %v", dirs, err)
	}
}

func TestEmptyWorkDirScansTempDir(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	ws, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ws.Close()
	if filepath.Dir(ws.Dir()) != tmp {
		t.Fatalf("expected workspace under %s, got %s", tmp, ws.Dir())
	}

	dirs, err := ListDirectories("")
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 1 || dirs[0].Path != ws.Dir() {
		t.Fatalf("expected the open workspace to be listed, got %v", dirs)
	}
}
