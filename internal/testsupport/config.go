package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"chunkmux/internal/config"
)

// Option adjusts a config built by NewConfig.
type Option func(t testing.TB, cfg *config.Config)

// NewConfig returns the default config rooted in a fresh temp directory.
// Both chunk directories exist and are empty. Output, state, and log
// directories are left for EnsureDirectories or the code under test.
// Verification and history are off unless an option turns them on.
func NewConfig(t testing.TB, opts ...Option) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths = config.Paths{
		VideoChunksDir: filepath.Join(base, "chunks", "video"),
		AudioChunksDir: filepath.Join(base, "chunks", "audio"),
		VideoOutputDir: filepath.Join(base, "output", "video"),
		AudioOutputDir: filepath.Join(base, "output", "audio"),
		WorkDir:        filepath.Join(base, "work"),
		StateDir:       filepath.Join(base, "state"),
		LogDir:         filepath.Join(base, "logs"),
	}
	cfg.Output.VerifyOutput = false
	cfg.History.Enabled = false

	for _, dir := range []string{cfg.Paths.VideoChunksDir, cfg.Paths.AudioChunksDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	for _, opt := range opts {
		opt(t, &cfg)
	}
	return &cfg
}

// BaseDir is the temp directory NewConfig rooted cfg in.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// WithHistory turns on the run ledger.
func WithHistory() Option {
	return func(_ testing.TB, cfg *config.Config) {
		cfg.History.Enabled = true
	}
}

// WithStubbedBinaries puts no-op executables named after each tool, ffmpeg
// and ffprobe by default, first on PATH.
func WithStubbedBinaries(names ...string) Option {
	if len(names) == 0 {
		names = []string{"ffmpeg", "ffprobe"}
	}
	return func(t testing.TB, cfg *config.Config) {
		bin := filepath.Join(BaseDir(cfg), "bin")
		for _, name := range names {
			WriteExecutable(t, filepath.Join(bin, name), "exit 0\n")
		}
		t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
