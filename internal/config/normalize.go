package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeChunks()
	c.normalizeEncoding()
	c.normalizeSubtitles()
	c.normalizeLogging()
	return c.normalizeMetrics()
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key   string
		value *string
	}{
		{"paths.video_chunks_dir", &c.Paths.VideoChunksDir},
		{"paths.audio_chunks_dir", &c.Paths.AudioChunksDir},
		{"paths.video_output_dir", &c.Paths.VideoOutputDir},
		{"paths.audio_output_dir", &c.Paths.AudioOutputDir},
		{"paths.work_dir", &c.Paths.WorkDir},
		{"paths.state_dir", &c.Paths.StateDir},
		{"paths.log_dir", &c.Paths.LogDir},
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeChunks() {
	c.Chunks.Extension = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Chunks.Extension)), ".")
	if c.Chunks.Extension == "" {
		c.Chunks.Extension = defaultChunkExtension
	}
	c.Chunks.VideoPrefix = strings.TrimSpace(c.Chunks.VideoPrefix)
	if c.Chunks.VideoPrefix == "" {
		c.Chunks.VideoPrefix = defaultVideoPrefix
	}
	c.Chunks.AudioPrefix = strings.TrimSpace(c.Chunks.AudioPrefix)
	if c.Chunks.AudioPrefix == "" {
		c.Chunks.AudioPrefix = defaultAudioPrefix
	}
	if c.Chunks.MaxIndex == 0 {
		c.Chunks.MaxIndex = defaultMaxIndex
	}
}

func (c *Config) normalizeEncoding() {
	c.Encoding.FFmpegBinary = strings.TrimSpace(c.Encoding.FFmpegBinary)
	if value, ok := os.LookupEnv("CHUNKMUX_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Encoding.FFmpegBinary = strings.TrimSpace(value)
	}
	if c.Encoding.FFmpegBinary == "" {
		c.Encoding.FFmpegBinary = defaultFFmpegBinary
	}
	c.Encoding.FFprobeBinary = strings.TrimSpace(c.Encoding.FFprobeBinary)
	if value, ok := os.LookupEnv("CHUNKMUX_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Encoding.FFprobeBinary = strings.TrimSpace(value)
	}
	if c.Encoding.FFprobeBinary == "" {
		c.Encoding.FFprobeBinary = defaultFFprobeBinary
	}
	c.Encoding.OutputFormat = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Encoding.OutputFormat)), ".")
	if c.Encoding.OutputFormat == "" {
		c.Encoding.OutputFormat = defaultOutputFormat
	}
	c.Encoding.AudioBitrate = strings.TrimSpace(c.Encoding.AudioBitrate)
	if c.Encoding.AudioBitrate == "" {
		c.Encoding.AudioBitrate = defaultAudioBitrate
	}
}

func (c *Config) normalizeSubtitles() {
	c.Subtitles.Language = strings.ToLower(strings.TrimSpace(c.Subtitles.Language))
	if c.Subtitles.Language == "" {
		c.Subtitles.Language = defaultSubtitleLanguage
	}
	c.Subtitles.Codec = strings.TrimSpace(c.Subtitles.Codec)
	if c.Subtitles.Codec == "" {
		c.Subtitles.Codec = defaultSubtitleCodec
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Output.TimestampLayout) == "" {
		c.Output.TimestampLayout = defaultTimestampLayout
	}
}

func (c *Config) normalizeMetrics() error {
	textfile := strings.TrimSpace(c.Metrics.Textfile)
	if textfile == "" {
		c.Metrics.Textfile = ""
		return nil
	}
	expanded, err := expandPath(textfile)
	if err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	c.Metrics.Textfile = expanded
	return nil
}
