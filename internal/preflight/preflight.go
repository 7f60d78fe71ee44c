package preflight

import (
	"context"
	"fmt"
	"strings"

	"chunkmux/internal/config"
	"chunkmux/internal/deps"
	"chunkmux/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryReadable("Video chunks", cfg.Paths.VideoChunksDir))
	audio := CheckDirectoryReadable("Audio chunks", cfg.Paths.AudioChunksDir)
	audio.Optional = true
	results = append(results, audio)

	results = append(results,
		CheckDirectoryAccess("Video output", cfg.Paths.VideoOutputDir),
		CheckDirectoryAccess("Audio output", cfg.Paths.AudioOutputDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	)
	if strings.TrimSpace(cfg.Paths.WorkDir) != "" {
		results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	}

	for _, status := range CheckSystemDeps(ctx, cfg) {
		results = append(results, fromStatus(status))
	}
	return results
}

// CheckSystemDeps evaluates the external binaries for the given config.
// ffprobe is only required when post-mux verification is enabled.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for repair, transcode and mux",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Used to verify the muxed output",
			Optional:    !cfg.Output.VerifyOutput,
		},
	}
	return deps.CheckBinaries(requirements)
}

// CheckSubtitleFile reports whether an explicitly requested subtitle file is
// readable. A missing file never blocks a run; the mux proceeds without
// captions.
func CheckSubtitleFile(path string) Result {
	result := CheckFileReadable("Subtitles", path)
	result.Optional = true
	return result
}

// Failures returns the required checks that did not pass.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err converts required failures into a single configuration error, or nil.
func Err(results []Result) error {
	failed := Failures(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "", strings.Join(parts, "; "), nil)
}

func fromStatus(status deps.Status) Result {
	detail := status.Path
	if !status.Available {
		detail = status.Detail
	}
	return Result{
		Name:     status.Name,
		Passed:   status.Available,
		Optional: status.Optional,
		Detail:   detail,
	}
}
