package staging

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"chunkmux/internal/logging"
)

// DirInfo describes a workspace directory found on disk.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// CleanStaleResult lists what CleanStale removed and what it could not.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// ListDirectories returns the workspaces under workDir, oldest first. An
// empty workDir means the system temp directory, matching Open.
func ListDirectories(workDir string) ([]DirInfo, error) {
	return scan(resolveBase(workDir), true)
}

// CleanStale removes workspaces under workDir last modified before maxAge
// ago. These are left behind only when a run is killed before its deferred
// cleanup runs. Only names carrying WorkspacePrefix are touched, so a shared
// temp directory is safe to scan.
func CleanStale(ctx context.Context, workDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	var result CleanStaleResult
	base := resolveBase(workDir)

	dirs, err := scan(base, false)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: base, Error: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, dir := range dirs {
		if ctx.Err() != nil {
			break
		}
		if !dir.ModTime.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(dir.Path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir.Path, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale workspace", "workspace_cleanup_failed",
				logging.String("path", dir.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.work_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dir.Path)
		if logger != nil {
			logger.Info("removed stale workspace",
				logging.String("path", dir.Path),
				logging.Duration("age", time.Since(dir.ModTime).Round(time.Second)),
				logging.String(logging.FieldEventType, "workspace_cleanup"),
			)
		}
	}
	return result
}

func resolveBase(workDir string) string {
	if trimmed := strings.TrimSpace(workDir); trimmed != "" {
		return trimmed
	}
	return os.TempDir()
}

func scan(base string, withSize bool) ([]DirInfo, error) {
	entries, err := os.ReadDir(base)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), WorkspacePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dir := DirInfo{
			Name:    entry.Name(),
			Path:    filepath.Join(base, entry.Name()),
			ModTime: info.ModTime(),
		}
		if withSize {
			dir.Size = dirSize(dir.Path)
		}
		dirs = append(dirs, dir)
	}
	slices.SortFunc(dirs, func(a, b DirInfo) int { return a.ModTime.Compare(b.ModTime) })
	return dirs, nil
}

// dirSize sums regular file sizes below path, skipping unreadable entries.
func dirSize(path string) int64 {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size
}
