package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"chunkmux/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestRecordAndRecentNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	runs := []history.Run{
		{ID: "a", StartedAt: base, FinishedAt: base.Add(time.Minute), State: "done", VideoPath: "/out/a.mp4", VideoFragments: 3},
		{ID: "b", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour + time.Second), State: "failed", Error: "no video fragments"},
		{ID: "c", StartedAt: base.Add(2 * time.Hour), FinishedAt: base.Add(2*time.Hour + 90*time.Second), State: "done", VideoPath: "/out/c.mp4", AudioPath: "/out/c.wav", SubtitlesEmbedded: true, AudioMissing: 2},
	}
	for _, run := range runs {
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record %s: %v", run.ID, err)
		}
	}

	got, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if !got[0].SubtitlesEmbedded || got[0].AudioMissing != 2 || got[0].AudioPath != "/out/c.wav" {
		t.Fatalf("fields not round-tripped: %+v", got[0])
	}
	if got[0].Duration() != 90*time.Second {
		t.Fatalf("unexpected duration %v", got[0].Duration())
	}
	if got[1].Succeeded() {
		t.Fatal("failed run must not report success")
	}
}

func TestRecordReplacesExistingRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.Record(ctx, history.Run{ID: "x", StartedAt: now, FinishedAt: now, State: "failed"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Record(ctx, history.Run{ID: "x", StartedAt: now, FinishedAt: now, State: "done", VideoPath: "/v.mp4"}); err != nil {
		t.Fatal(err)
	}
	run, err := store.Get(ctx, "x")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.State != "done" || run.VideoPath != "/v.mp4" {
		t.Fatalf("expected replacement, got %+v", run)
	}
}

func TestGetMissingRun(t *testing.T) {
	store := openStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestRecordRequiresID(t *testing.T) {
	store := openStore(t)
	if err := store.Record(context.Background(), history.Run{}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()
	store, err := history.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Record(ctx, history.Run{ID: "keep", StartedAt: time.Now(), FinishedAt: time.Now(), State: "done"}); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened, err := history.Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(ctx, "keep"); err != nil {
		t.Fatalf("run lost after reopen: %v", err)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "last_run.json")
	run := history.Run{
		ID:         "r1",
		StartedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		FinishedAt: time.Date(2026, 1, 2, 3, 5, 5, 0, time.UTC),
		State:      "done",
		VideoPath:  "/out/final.mp4",
	}
	if err := history.WriteManifest(path, run); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	run.State = "failed"
	if err := history.WriteManifest(path, run); err != nil {
		t.Fatalf("overwrite manifest: %v", err)
	}

	got, err := history.ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if got.ID != "r1" || got.State != "failed" || !got.StartedAt.Equal(run.StartedAt) {
		t.Fatalf("unexpected manifest %+v", got)
	}
}
