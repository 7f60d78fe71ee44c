package chunks

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"chunkmux/internal/config"
	"chunkmux/internal/logging"
)

// Naming describes how fragment files are named.
type Naming struct {
	VideoPrefix string
	AudioPrefix string
	Extension   string
}

// NamingFromConfig extracts the fragment naming convention.
func NamingFromConfig(cfg *config.Config) Naming {
	if cfg == nil {
		return Naming{VideoPrefix: "video", AudioPrefix: "audio", Extension: "webm"}
	}
	return Naming{
		VideoPrefix: cfg.Chunks.VideoPrefix,
		AudioPrefix: cfg.Chunks.AudioPrefix,
		Extension:   cfg.Chunks.Extension,
	}
}

// Prefix returns the file name prefix for kind.
func (n Naming) Prefix(kind Kind) string {
	if kind == KindAudio {
		return n.AudioPrefix
	}
	return n.VideoPrefix
}

// FileName returns the fragment file name for kind and index.
func (n Naming) FileName(kind Kind, index int) string {
	ext := strings.TrimPrefix(n.Extension, ".")
	return fmt.Sprintf("%s_%d.%s", n.Prefix(kind), index, ext)
}

// Locator scans a directory for numbered fragments.
type Locator struct {
	naming   Naming
	maxIndex int
	logger   *slog.Logger
}

// NewLocator constructs a locator probing indices in [0, maxIndex).
func NewLocator(naming Naming, maxIndex int, logger *slog.Logger) *Locator {
	return &Locator{
		naming:   naming,
		maxIndex: maxIndex,
		logger:   logging.NewComponentLogger(logger, "locator"),
	}
}

// NewLocatorFromConfig wires a Locator to the configured convention.
func NewLocatorFromConfig(cfg *config.Config, logger *slog.Logger) *Locator {
	maxIndex := 0
	if cfg != nil {
		maxIndex = cfg.Chunks.MaxIndex
	}
	return NewLocator(NamingFromConfig(cfg), maxIndex, logger)
}

// Locate returns every existing fragment of kind under dir. A missing or
// unreadable directory yields an empty sequence; the scan never fails.
// Fragments are collected in ascending index order.
func (l *Locator) Locate(dir string, kind Kind) Sequence {
	seq := Sequence{Kind: kind, Dir: dir, MaxIndex: l.maxIndex}
	if strings.TrimSpace(dir) == "" {
		return seq
	}
	for i := 0; i < l.maxIndex; i++ {
		path := filepath.Join(dir, l.naming.FileName(kind, i))
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		seq.Fragments = append(seq.Fragments, Fragment{Index: i, Path: path})
	}

	if l.logger != nil {
		l.logger.Debug("fragment scan complete",
			logging.String("kind", string(kind)),
			logging.String("dir", dir),
			logging.Int("found", seq.Len()),
		)
	}
	return seq
}
