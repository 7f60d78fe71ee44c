package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateChunks(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	required := map[string]string{
		"paths.video_chunks_dir": c.Paths.VideoChunksDir,
		"paths.audio_chunks_dir": c.Paths.AudioChunksDir,
		"paths.video_output_dir": c.Paths.VideoOutputDir,
		"paths.audio_output_dir": c.Paths.AudioOutputDir,
		"paths.state_dir":        c.Paths.StateDir,
	}
	for _, key := range []string{
		"paths.video_chunks_dir",
		"paths.audio_chunks_dir",
		"paths.video_output_dir",
		"paths.audio_output_dir",
		"paths.state_dir",
	} {
		if strings.TrimSpace(required[key]) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}

func (c *Config) validateChunks() error {
	if c.Chunks.MaxIndex <= 0 {
		return errors.New("chunks.max_index must be positive")
	}
	if c.Chunks.MaxIndex > maxSupportedChunkMaxIndex {
		return fmt.Errorf("chunks.max_index must not exceed %d", maxSupportedChunkMaxIndex)
	}
	if strings.ContainsAny(c.Chunks.VideoPrefix+c.Chunks.AudioPrefix+c.Chunks.Extension, `/\`) {
		return errors.New("chunks prefixes and extension must not contain path separators")
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if c.Encoding.VideoCRF < 0 || c.Encoding.VideoCRF > 51 {
		return errors.New("encoding.video_crf must be between 0 and 51")
	}
	if c.Encoding.WAVSampleRate <= 0 {
		return errors.New("encoding.wav_sample_rate must be positive")
	}
	for key, value := range map[string]string{
		"encoding.video_codec":   c.Encoding.VideoCodec,
		"encoding.video_preset":  c.Encoding.VideoPreset,
		"encoding.audio_codec":   c.Encoding.AudioCodec,
		"encoding.wav_codec":     c.Encoding.WAVCodec,
		"encoding.output_format": c.Encoding.OutputFormat,
		"subtitles.codec":        c.Subtitles.Codec,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	if c.Subtitles.Codec == "mov_text" && !movTextContainers[c.Encoding.OutputFormat] {
		return fmt.Errorf("subtitles.codec mov_text requires an mp4 or mov container, not %q (use srt or ass for mkv)", c.Encoding.OutputFormat)
	}
	return nil
}

// movTextContainers are the output formats ffmpeg can write a mov_text
// track into.
var movTextContainers = map[string]bool{"mp4": true, "m4v": true, "mov": true}

func (c *Config) validateOutput() error {
	layout := c.Output.TimestampLayout
	if strings.ContainsAny(layout, `/\`) {
		return errors.New("output.timestamp_layout must not contain path separators")
	}
	// A layout without any reference-time element would produce the same
	// name for every run.
	if time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC).Format(layout) == layout {
		return fmt.Errorf("output.timestamp_layout %q contains no time fields", layout)
	}
	if c.Workspace.StaleAfterHours < 0 {
		return errors.New("workspace.stale_after_hours must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
