package encoding

import (
	"context"
	"log/slog"
	"strings"

	"chunkmux/internal/fileutil"
	"chunkmux/internal/logging"
	"chunkmux/internal/media/ffmpeg"
)

// TranscodeCommand converts input to PCM WAV at the profile sample rate.
func TranscodeCommand(binary string, profile Profile, input, output string) ffmpeg.CommandSpec {
	return ffmpeg.NewCommand(
		"transcode audio to wav",
		binary,
		"-hide_banner", "-nostdin", "-y",
		"-i", input,
		"-acodec", profile.WAVCodec,
		"-ar", profile.sampleRate(),
		output,
	)
}

// AudioTranscoder converts the concatenated audio stream to WAV.
type AudioTranscoder struct {
	runner  ffmpeg.Runner
	binary  string
	profile Profile
	logger  *slog.Logger
}

// NewAudioTranscoder constructs a transcoder.
func NewAudioTranscoder(runner ffmpeg.Runner, binary string, profile Profile, logger *slog.Logger) *AudioTranscoder {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &AudioTranscoder{
		runner:  runner,
		binary:  binary,
		profile: profile,
		logger:  logging.NewComponentLogger(logger, "transcoder"),
	}
}

// Transcode writes output from input. It reports false when the tool exits
// non-zero, in which case any partial output has been removed.
func (a *AudioTranscoder) Transcode(ctx context.Context, input, output string) (bool, error) {
	logger := logging.WithContext(ctx, a.logger)
	result, err := a.runner.Execute(ctx, TranscodeCommand(a.binary, a.profile, input, output))
	if err != nil {
		_ = fileutil.RemoveIfExists(output)
		return false, err
	}
	if !result.Succeeded {
		_ = fileutil.RemoveIfExists(output)
		logging.ErrorWithContext(logger, "audio transcode failed", "audio_transcode_failed",
			logging.String("input", input),
			logging.Int("exit_code", result.ExitCode),
			logging.String("output_tail", result.Tail(6)),
		)
		return false, nil
	}
	logger.Info("audio transcoded",
		logging.String("output", output),
		logging.Bytes("size", fileutil.FileSize(output)),
	)
	return true, nil
}
