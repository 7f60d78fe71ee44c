package config

const (
	defaultVideoChunksDir     = "~/.local/share/chunkmux/chunks/video"
	defaultAudioChunksDir     = "~/.local/share/chunkmux/chunks/audio"
	defaultVideoOutputDir     = "~/.local/share/chunkmux/output/video"
	defaultAudioOutputDir     = "~/.local/share/chunkmux/output/audio"
	defaultStateDir           = "~/.local/share/chunkmux/state"
	defaultLogDir             = "~/.local/share/chunkmux/logs"
	defaultMaxIndex           = 1000
	defaultChunkExtension     = "webm"
	defaultVideoPrefix        = "video"
	defaultAudioPrefix        = "audio"
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultVideoCodec         = "libx264"
	defaultVideoPreset        = "medium"
	defaultVideoCRF           = 23
	defaultAudioCodec         = "aac"
	defaultAudioBitrate       = "128k"
	defaultWAVCodec           = "pcm_s16le"
	defaultWAVSampleRate      = 44100
	defaultOutputFormat       = "mp4"
	defaultSubtitleLanguage   = "en"
	defaultSubtitleCodec      = "mov_text"
	defaultTimestampLayout    = "2006-01-02_15-04-05"
	defaultStaleAfterHours    = 24
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	maxSupportedChunkMaxIndex = 1_000_000
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			VideoChunksDir: defaultVideoChunksDir,
			AudioChunksDir: defaultAudioChunksDir,
			VideoOutputDir: defaultVideoOutputDir,
			AudioOutputDir: defaultAudioOutputDir,
			StateDir:       defaultStateDir,
			LogDir:         defaultLogDir,
		},
		Chunks: Chunks{
			MaxIndex:    defaultMaxIndex,
			Extension:   defaultChunkExtension,
			VideoPrefix: defaultVideoPrefix,
			AudioPrefix: defaultAudioPrefix,
		},
		Encoding: Encoding{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			VideoCodec:    defaultVideoCodec,
			VideoPreset:   defaultVideoPreset,
			VideoCRF:      defaultVideoCRF,
			AudioCodec:    defaultAudioCodec,
			AudioBitrate:  defaultAudioBitrate,
			WAVCodec:      defaultWAVCodec,
			WAVSampleRate: defaultWAVSampleRate,
			OutputFormat:  defaultOutputFormat,
		},
		Subtitles: Subtitles{
			Language: defaultSubtitleLanguage,
			Codec:    defaultSubtitleCodec,
		},
		Output: Output{
			TimestampLayout: defaultTimestampLayout,
			VerifyOutput:    true,
		},
		Workspace: Workspace{
			StaleAfterHours: defaultStaleAfterHours,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
