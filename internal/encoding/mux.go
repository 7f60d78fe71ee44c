package encoding

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"chunkmux/internal/fileutil"
	"chunkmux/internal/logging"
	"chunkmux/internal/media/ffmpeg"
)

// MuxRequest describes the inputs of one mux invocation.
type MuxRequest struct {
	VideoPath    string
	AudioPath    string // optional repaired audio stream; empty produces a video-only output
	SubtitlePath string // optional SRT; ignored when the file does not exist
	OutputPath   string
}

// MuxResult reports what went into the final container.
type MuxResult struct {
	Succeeded         bool
	OutputPath        string
	AudioIncluded     bool
	SubtitlesEmbedded bool
}

// MuxCommand builds the final encode argv. Every input is declared before any
// output option; the video is always input 0, audio (when present) input 1 and
// subtitles the last input. A subtitle is included only when includeSubtitle
// is set, so a missing file yields the same argv as no subtitle at all.
func MuxCommand(binary string, profile Profile, req MuxRequest, includeSubtitle bool) ffmpeg.CommandSpec {
	hasAudio := strings.TrimSpace(req.AudioPath) != ""

	args := []string{binary, "-hide_banner", "-nostdin", "-y", "-i", req.VideoPath}
	if hasAudio {
		args = append(args, "-i", req.AudioPath)
	}
	subtitleInput := -1
	if includeSubtitle {
		subtitleInput = 1
		if hasAudio {
			subtitleInput = 2
		}
		args = append(args, "-i", req.SubtitlePath)
	}

	args = append(args, "-map", "0:v:0")
	if hasAudio {
		args = append(args, "-map", "1:a:0")
	}
	if subtitleInput >= 0 {
		args = append(args, "-map", strconv.Itoa(subtitleInput)+":s:0")
	}

	args = append(args,
		"-c:v", profile.VideoCodec,
		"-preset", profile.VideoPreset,
		"-crf", profile.crf(),
	)
	if hasAudio {
		args = append(args, "-c:a", profile.AudioCodec, "-b:a", profile.AudioBitrate)
	}
	if subtitleInput >= 0 {
		args = append(args,
			"-c:s", profile.SubtitleCodec,
			"-metadata:s:s:0", "language="+profile.SubtitleLanguage,
		)
		if profile.SubtitleTitle != "" {
			args = append(args, "-metadata:s:s:0", "title="+profile.SubtitleTitle)
		}
	}
	args = append(args, "-shortest", "-avoid_negative_ts", "make_zero", req.OutputPath)

	return ffmpeg.NewCommand("mux final video", args...)
}

// Muxer produces the final H.264/AAC container.
type Muxer struct {
	runner  ffmpeg.Runner
	binary  string
	profile Profile
	logger  *slog.Logger
}

// NewMuxer constructs a muxer.
func NewMuxer(runner ffmpeg.Runner, binary string, profile Profile, logger *slog.Logger) *Muxer {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Muxer{
		runner:  runner,
		binary:  binary,
		profile: profile,
		logger:  logging.NewComponentLogger(logger, "muxer"),
	}
}

// Mux runs the final encode. The subtitle path is checked at call time; when
// it is not a regular file the command is built exactly as if none had been
// requested.
func (m *Muxer) Mux(ctx context.Context, req MuxRequest) (MuxResult, error) {
	logger := logging.WithContext(ctx, m.logger)
	includeSubtitle := strings.TrimSpace(req.SubtitlePath) != "" && fileutil.IsRegularFile(req.SubtitlePath)
	if strings.TrimSpace(req.SubtitlePath) != "" && !includeSubtitle {
		logging.WarnWithContext(logger, "subtitle file not usable; muxing without captions", "subtitles_missing",
			logging.String("subtitle_path", req.SubtitlePath),
			logging.String(logging.FieldErrorHint, "check the --subtitles path"),
			logging.String(logging.FieldImpact, "output has no caption track"),
		)
	}

	result := MuxResult{
		OutputPath:    req.OutputPath,
		AudioIncluded: strings.TrimSpace(req.AudioPath) != "",
	}

	logger.Debug("muxing final video",
		logging.String("video", req.VideoPath),
		logging.Bool("with_audio", result.AudioIncluded),
		logging.Bool("with_subtitles", includeSubtitle),
		logging.String("subtitle_language", m.profile.SubtitleLanguage),
	)

	run, err := m.runner.Execute(ctx, MuxCommand(m.binary, m.profile, req, includeSubtitle))
	if err != nil {
		_ = fileutil.RemoveIfExists(req.OutputPath)
		return MuxResult{OutputPath: req.OutputPath}, err
	}
	if !run.Succeeded {
		_ = fileutil.RemoveIfExists(req.OutputPath)
		logging.ErrorWithContext(logger, "mux failed", "mux_failed",
			logging.Int("exit_code", run.ExitCode),
			logging.String("output_tail", run.Tail(6)),
		)
		return MuxResult{OutputPath: req.OutputPath}, nil
	}

	result.Succeeded = true
	result.SubtitlesEmbedded = includeSubtitle
	logger.Info("final video muxed",
		logging.String("output", req.OutputPath),
		logging.Bool("with_audio", result.AudioIncluded),
		logging.Bool("with_subtitles", result.SubtitlesEmbedded),
	)
	return result, nil
}
