package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// WorkspacePrefix names every scratch directory created by Open.
const WorkspacePrefix = "chunkmux-"

// Workspace is a scoped scratch directory. It is not safe to reuse after Close.
type Workspace struct {
	dir  string
	once sync.Once
	err  error
}

// Open creates a new unique workspace under baseDir. An empty baseDir uses
// the system temp directory.
func Open(baseDir string) (*Workspace, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	dir, err := os.MkdirTemp(baseDir, WorkspacePrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace root.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path joins name onto the workspace root.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Close removes the workspace and everything in it. Subsequent calls return
// the result of the first.
func (w *Workspace) Close() error {
	if w == nil {
		return nil
	}
	w.once.Do(func() {
		w.err = os.RemoveAll(w.dir)
	})
	return w.err
}
