package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input, output, and scratch directory configuration.
type Paths struct {
	VideoChunksDir string `toml:"video_chunks_dir"`
	AudioChunksDir string `toml:"audio_chunks_dir"`
	VideoOutputDir string `toml:"video_output_dir"`
	AudioOutputDir string `toml:"audio_output_dir"`
	WorkDir        string `toml:"work_dir"`
	StateDir       string `toml:"state_dir"`
	LogDir         string `toml:"log_dir"`
}

// Chunks describes the fragment naming convention and scan bound.
type Chunks struct {
	MaxIndex    int    `toml:"max_index"`
	Extension   string `toml:"extension"`
	VideoPrefix string `toml:"video_prefix"`
	AudioPrefix string `toml:"audio_prefix"`
}

// Encoding contains the fixed external tool and codec choices.
type Encoding struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	VideoCodec    string `toml:"video_codec"`
	VideoPreset   string `toml:"video_preset"`
	VideoCRF      int    `toml:"video_crf"`
	AudioCodec    string `toml:"audio_codec"`
	AudioBitrate  string `toml:"audio_bitrate"`
	WAVCodec      string `toml:"wav_codec"`
	WAVSampleRate int    `toml:"wav_sample_rate"`
	OutputFormat  string `toml:"output_format"`
}

// Subtitles contains soft caption track settings.
type Subtitles struct {
	Language string `toml:"language"`
	Codec    string `toml:"codec"`
}

// Output controls final artifact naming and verification.
type Output struct {
	TimestampLayout string `toml:"timestamp_layout"`
	VerifyOutput    bool   `toml:"verify_output"`
}

// Workspace controls scratch directory housekeeping.
type Workspace struct {
	StaleAfterHours int `toml:"stale_after_hours"`
}

// History controls the persistent run ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Metrics controls the node-exporter textfile output.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for chunkmux.
//
// Configuration sections by subsystem:
//   - Paths: chunk inputs, final outputs, scratch and state directories
//   - Chunks: fragment naming convention and index scan bound
//   - Encoding: ffmpeg/ffprobe binaries and fixed codec choices
//   - Subtitles: soft caption codec and language tag
//   - Output: timestamp naming and post-mux verification
//   - Workspace: stale scratch directory cleanup
//   - History: sqlite run ledger
//   - Metrics: prometheus textfile export
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Chunks    Chunks    `toml:"chunks"`
	Encoding  Encoding  `toml:"encoding"`
	Subtitles Subtitles `toml:"subtitles"`
	Output    Output    `toml:"output"`
	Workspace Workspace `toml:"workspace"`
	History   History   `toml:"history"`
	Metrics   Metrics   `toml:"metrics"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/chunkmux/config.toml")
}

// Load reads the configuration at path, or the first of
// ~/.config/chunkmux/config.toml and ./chunkmux.toml when path is empty.
// Missing files are not an error: defaults apply and found is false. The
// returned resolved path is where the file was, or would be, read from.
func Load(path string) (cfg *Config, resolved string, found bool, err error) {
	resolved, found, err = locate(path)
	if err != nil {
		return nil, "", false, err
	}

	loaded := Default()
	if found {
		if err := decodeFile(resolved, &loaded); err != nil {
			return nil, "", false, err
		}
	}
	if err := loaded.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := loaded.Validate(); err != nil {
		return nil, "", false, err
	}
	return &loaded, resolved, found, nil
}

func decodeFile(path string, into *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func locate(path string) (string, bool, error) {
	var candidates []string
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		candidates = []string{expanded}
	} else {
		home, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		local, err := filepath.Abs("chunkmux.toml")
		if err != nil {
			return "", false, err
		}
		candidates = []string{home, local}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}
	return candidates[0], false, nil
}

// ApplyOverrides replaces path settings with non-empty command line values and
// re-runs normalization and validation.
func (c *Config) ApplyOverrides(p Paths) error {
	set := func(dst *string, value string) {
		if strings.TrimSpace(value) != "" {
			*dst = value
		}
	}
	set(&c.Paths.VideoChunksDir, p.VideoChunksDir)
	set(&c.Paths.AudioChunksDir, p.AudioChunksDir)
	set(&c.Paths.VideoOutputDir, p.VideoOutputDir)
	set(&c.Paths.AudioOutputDir, p.AudioOutputDir)
	set(&c.Paths.WorkDir, p.WorkDir)
	set(&c.Paths.StateDir, p.StateDir)
	set(&c.Paths.LogDir, p.LogDir)
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

// EnsureDirectories creates the output, state, and log directories. Chunk
// input directories are never created; their absence is reported by preflight.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.VideoOutputDir, c.Paths.AudioOutputDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.WorkDir) != "" {
		if err := os.MkdirAll(c.Paths.WorkDir, 0o755); err != nil {
			return fmt.Errorf("create work directory %q: %w", c.Paths.WorkDir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for every media step.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Encoding.FFmpegBinary); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

// FFprobeBinary returns the ffprobe executable name used for output verification.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Encoding.FFprobeBinary); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// HistoryPath returns the sqlite run ledger location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the single-run lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "chunkmux.lock")
}

// ManifestPath returns the location of the last run manifest.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.Paths.StateDir, "last_run.json")
}

// ExpandPath resolves a leading ~ against the home directory and returns
// an absolute, cleaned path. The empty string passes through unchanged.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = home + value[1:]
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", value, err)
	}
	return abs, nil
}

// CreateSample writes the annotated default configuration to path,
// creating its parent directory.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
