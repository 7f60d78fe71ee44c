package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"chunkmux/internal/logging"
	"chunkmux/internal/media/ffprobe"
)

// Prober inspects a media file. ffprobe.Inspect bound to a binary satisfies it.
type Prober func(ctx context.Context, path string) (ffprobe.Result, error)

// NewFFprobeProber returns a Prober that runs the given ffprobe binary.
func NewFFprobeProber(binary string) Prober {
	return func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, binary, path)
	}
}

// Verification summarizes a post-mux inspection. Problems are reported as
// warnings; they never change the run outcome.
type Verification struct {
	DurationSeconds float64
	VideoStreams    int
	AudioStreams    int
	SubtitleStreams int
	Warnings        []string
}

// verifyOutput checks that the final container has the streams the run
// intended to put there.
func verifyOutput(ctx context.Context, probe Prober, logger *slog.Logger, outcome Outcome, subtitleLanguage string) *Verification {
	result, err := probe(ctx, outcome.VideoPath)
	if err != nil {
		logging.WarnWithContext(logger, "output verification failed", "verify_failed",
			logging.String("path", outcome.VideoPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that ffprobe is installed"),
			logging.String(logging.FieldImpact, "output was produced but not inspected"),
		)
		return &Verification{Warnings: []string{fmt.Sprintf("ffprobe failed: %v", err)}}
	}

	v := &Verification{
		DurationSeconds: result.DurationSeconds(),
		VideoStreams:    result.Count(ffprobe.KindVideo),
		AudioStreams:    result.Count(ffprobe.KindAudio),
		SubtitleStreams: result.Count(ffprobe.KindSubtitle),
	}
	if v.VideoStreams == 0 {
		v.Warnings = append(v.Warnings, "no video stream in output")
	}
	if outcome.AudioMuxed && v.AudioStreams == 0 {
		v.Warnings = append(v.Warnings, "audio was muxed but no audio stream is present")
	}
	if outcome.SubtitlesEmbedded {
		if v.SubtitleStreams == 0 {
			v.Warnings = append(v.Warnings, "subtitles were muxed but no subtitle stream is present")
		} else if subtitleLanguage != "" && !slices.Contains(result.Languages(ffprobe.KindSubtitle), subtitleLanguage) {
			v.Warnings = append(v.Warnings, fmt.Sprintf("subtitle stream is not tagged %q", subtitleLanguage))
		}
	}
	if math.IsNaN(v.DurationSeconds) || v.DurationSeconds <= 0 {
		v.Warnings = append(v.Warnings, "output reports no duration")
	}

	for _, w := range v.Warnings {
		logging.WarnWithContext(logger, "output verification warning", "verify_warning",
			logging.String("path", outcome.VideoPath),
			logging.String("problem", w),
			logging.String(logging.FieldErrorHint, "inspect the output with ffprobe"),
			logging.String(logging.FieldImpact, "output may not play as expected"),
		)
	}
	if len(v.Warnings) == 0 {
		logger.Info("output verified",
			logging.Float64("duration_seconds", v.DurationSeconds),
			logging.Int("video_streams", v.VideoStreams),
			logging.Int("audio_streams", v.AudioStreams),
			logging.Int("subtitle_streams", v.SubtitleStreams),
		)
	}
	return v
}
