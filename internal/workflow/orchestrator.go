package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"chunkmux/internal/assembly"
	"chunkmux/internal/chunks"
	"chunkmux/internal/config"
	"chunkmux/internal/encoding"
	"chunkmux/internal/fileutil"
	"chunkmux/internal/logging"
	"chunkmux/internal/media/ffmpeg"
	"chunkmux/internal/services"
	"chunkmux/internal/staging"
)

// maxLoggedGaps caps how many missing indices are listed in one log record.
const maxLoggedGaps = 20

// Observer receives per-step measurements. metrics.Recorder implements it.
type Observer interface {
	ObserveSequence(kind string, found, missing int)
	ObserveStep(step string, ok bool, elapsed time.Duration)
}

// Options carries optional collaborators.
type Options struct {
	Logger   *slog.Logger
	Observer Observer
	// Prober, when set, inspects the final video after a successful mux.
	Prober Prober
	// Progress receives a byte progress bar while fragments are joined.
	Progress io.Writer
	// Now overrides the clock used for the run timestamp.
	Now func() time.Time
}

// Request is the per-run input.
type Request struct {
	// RunID correlates logs, history and metrics; generated when empty.
	RunID string
	// SubtitlePath is an optional SRT file to embed as a soft caption track.
	SubtitlePath string
}

// Orchestrator sequences one reassembly run.
type Orchestrator struct {
	cfg        *config.Config
	logger     *slog.Logger
	locator    *chunks.Locator
	concat     *assembly.Concatenator
	transcoder *encoding.AudioTranscoder
	muxer      *encoding.Muxer
	profile    encoding.Profile
	observer   Observer
	prober     Prober
	now        func() time.Time
}

// New wires an orchestrator. Every external command goes through runner.
func New(cfg *config.Config, runner ffmpeg.Runner, opts Options) *Orchestrator {
	logger := logging.NewComponentLogger(opts.Logger, "workflow")
	profile := encoding.ProfileFromConfig(cfg)
	binary := cfg.FFmpegBinary()

	var concatOpts []assembly.Option
	if opts.Progress != nil {
		concatOpts = append(concatOpts, assembly.WithProgress(opts.Progress))
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		cfg:        cfg,
		logger:     logger,
		locator:    chunks.NewLocatorFromConfig(cfg, opts.Logger),
		concat:     assembly.NewConcatenator(runner, binary, opts.Logger, concatOpts...),
		transcoder: encoding.NewAudioTranscoder(runner, binary, profile, opts.Logger),
		muxer:      encoding.NewMuxer(runner, binary, profile, opts.Logger),
		profile:    profile,
		observer:   opts.Observer,
		prober:     opts.Prober,
		now:        now,
	}
}

type stepResult int

const (
	stepSucceeded stepResult = iota
	stepFailed
	stepSkipped
)

// run holds the mutable state of a single execution.
type run struct {
	o       *Orchestrator
	req     Request
	logger  *slog.Logger
	ws      *staging.Workspace
	names   OutputNames
	outcome *Outcome

	video chunks.Sequence
	audio chunks.Sequence
	// Repaired intermediates inside the workspace; empty when absent.
	videoStream string
	audioStream string
}

// Run executes the state machine to a terminal state. The returned Outcome is
// always populated; the error is non-nil only for environment failures.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Outcome, error) {
	if strings.TrimSpace(req.RunID) == "" {
		req.RunID = uuid.NewString()
	}
	ctx = services.WithRunID(ctx, req.RunID)
	logger := logging.WithContext(ctx, o.logger)

	outcome := &Outcome{RunID: req.RunID, State: StateScanning, StartedAt: o.now()}
	fail := func(err error) (Outcome, error) {
		outcome.State = StateFailed
		outcome.FailureReason = err.Error()
		outcome.FinishedAt = o.now()
		return *outcome, err
	}

	for _, dir := range []string{o.cfg.Paths.VideoOutputDir, o.cfg.Paths.AudioOutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail(services.Wrap(services.ErrConfiguration, "workflow", "prepare outputs", dir, err))
		}
	}

	ws, err := staging.Open(o.cfg.Paths.WorkDir)
	if err != nil {
		return fail(services.Wrap(services.ErrConfiguration, "workflow", "open workspace", "", err))
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			logging.WarnWithContext(logger, "failed to remove workspace", "workspace_cleanup_failed",
				logging.String("path", ws.Dir()),
				logging.Error(cerr),
				logging.String(logging.FieldImpact, "intermediates left on disk until stale cleanup"),
			)
		}
	}()

	r := &run{
		o:       o,
		req:     req,
		logger:  logger,
		ws:      ws,
		outcome: outcome,
		names: ResolveOutputNames(
			o.cfg.Paths.VideoOutputDir,
			o.cfg.Paths.AudioOutputDir,
			o.cfg.Output.TimestampLayout,
			o.cfg.Encoding.OutputFormat,
			outcome.StartedAt,
		),
	}
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("workspace", ws.Dir()),
		logging.String("video_output", r.names.Video),
	)

	state := StateScanning
	for !state.Terminal() {
		outcome.State = state
		stepCtx := services.WithStage(ctx, string(state))
		started := time.Now()
		result, err := r.execute(stepCtx, state)
		elapsed := time.Since(started)

		outcome.Steps = append(outcome.Steps, Step{
			State:     state,
			Succeeded: result == stepSucceeded,
			Skipped:   result == stepSkipped,
			Elapsed:   elapsed,
		})
		if o.observer != nil {
			o.observer.ObserveStep(string(state), result == stepSucceeded, elapsed)
		}
		if err != nil {
			logging.ErrorWithContext(logging.WithContext(stepCtx, o.logger), "step aborted", "step_aborted",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that ffmpeg is installed and runnable"),
			)
			return fail(err)
		}

		next := Next(state, result == stepSucceeded)
		logger.Debug("state transition",
			logging.String("from", string(state)),
			logging.String("to", string(next)),
			logging.Duration("elapsed", elapsed),
		)
		state = next
	}

	outcome.State = state
	outcome.FinishedAt = o.now()
	if state == StateDone && o.prober != nil && o.cfg.Output.VerifyOutput {
		outcome.Verification = verifyOutput(ctx, o.prober, logger, *outcome, o.profile.SubtitleLanguage)
	}

	logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("state", string(outcome.State)),
		logging.String("video", outcome.VideoPath),
		logging.String("audio", outcome.AudioPath),
		logging.Duration("elapsed", outcome.Elapsed()),
	)
	return *outcome, nil
}

func (r *run) execute(ctx context.Context, state State) (stepResult, error) {
	switch state {
	case StateScanning:
		return r.scan(ctx), nil
	case StateConcatenatingVideo:
		return r.concatVideo(ctx)
	case StateConcatenatingAudio:
		return r.concatAudio(ctx)
	case StateTranscodingAudio:
		return r.transcodeAudio(ctx)
	case StateMuxing:
		return r.mux(ctx)
	default:
		return stepFailed, fmt.Errorf("workflow: no handler for state %q", state)
	}
}

func (r *run) scan(ctx context.Context) stepResult {
	logger := logging.WithContext(ctx, r.o.logger)
	paths := r.o.cfg.Paths

	r.video = r.o.locator.Locate(paths.VideoChunksDir, chunks.KindVideo)
	r.audio = r.o.locator.Locate(paths.AudioChunksDir, chunks.KindAudio)
	r.outcome.VideoFragments = r.video.Len()
	r.outcome.AudioFragments = r.audio.Len()
	r.outcome.VideoMissing = r.video.Missing()
	r.outcome.AudioMissing = r.audio.Missing()

	for _, seq := range []chunks.Sequence{r.video, r.audio} {
		r.reportSequence(logger, seq)
	}

	if r.video.Empty() {
		r.outcome.FailureReason = "no video fragments found in " + paths.VideoChunksDir
		logging.ErrorWithContext(logger, "no video fragments found", "no_video_fragments",
			logging.String("dir", paths.VideoChunksDir),
			logging.String(logging.FieldErrorHint, "check paths.video_chunks_dir and the fragment naming"),
		)
		return stepFailed
	}
	if r.audio.Empty() {
		logger.Info("no audio fragments found; producing video-only output",
			logging.String("dir", paths.AudioChunksDir),
		)
	}
	return stepSucceeded
}

func (r *run) reportSequence(logger *slog.Logger, seq chunks.Sequence) {
	missing := seq.Missing()
	if r.o.observer != nil {
		r.o.observer.ObserveSequence(string(seq.Kind), seq.Len(), len(missing))
	}
	logger.Info("fragments located",
		logging.String("kind", string(seq.Kind)),
		logging.Int("found", seq.Len()),
		logging.Int("highest_index", seq.Highest()),
	)
	if len(missing) > 0 {
		listed := missing
		if len(listed) > maxLoggedGaps {
			listed = listed[:maxLoggedGaps]
		}
		logging.WarnWithContext(logger, "fragment index gaps detected", "fragment_gaps",
			logging.String("kind", string(seq.Kind)),
			logging.Int("expected", seq.Highest()+1),
			logging.Int("found", seq.Len()),
			logging.Any("missing", listed),
			logging.String(logging.FieldErrorHint, "check the capture pipeline for dropped fragments"),
			logging.String(logging.FieldImpact, "output skips the missing segments"),
		)
	}
	if seq.Truncated() {
		logging.WarnWithContext(logger, "fragment scan reached max_index", "fragment_scan_truncated",
			logging.String("kind", string(seq.Kind)),
			logging.Int("max_index", seq.MaxIndex),
			logging.String(logging.FieldErrorHint, "raise chunks.max_index if the capture is longer"),
			logging.String(logging.FieldImpact, "fragments beyond the bound are ignored"),
		)
	}
}

func (r *run) intermediate(kind chunks.Kind, seq chunks.Sequence) string {
	ext := seq.Extension()
	if ext == "" {
		ext = "." + strings.TrimPrefix(r.o.cfg.Chunks.Extension, ".")
	}
	return r.ws.Path(string(kind) + "_concatenated" + ext)
}

func (r *run) concatVideo(ctx context.Context) (stepResult, error) {
	target := r.intermediate(chunks.KindVideo, r.video)
	res, err := r.o.concat.Concatenate(ctx, r.video, target)
	if err != nil {
		return stepFailed, err
	}
	if !res.Succeeded {
		r.outcome.FailureReason = "video concatenation failed"
		return stepFailed, nil
	}
	r.videoStream = target
	return stepSucceeded, nil
}

func (r *run) concatAudio(ctx context.Context) (stepResult, error) {
	if r.audio.Empty() {
		return stepSkipped, nil
	}
	target := r.intermediate(chunks.KindAudio, r.audio)
	res, err := r.o.concat.Concatenate(ctx, r.audio, target)
	if err != nil {
		return stepFailed, err
	}
	if !res.Succeeded {
		logging.WarnWithContext(logging.WithContext(ctx, r.o.logger), "audio concatenation failed; continuing without audio", "audio_degraded",
			logging.Int("fragments", r.audio.Len()),
			logging.String(logging.FieldErrorHint, "inspect the audio fragments"),
			logging.String(logging.FieldImpact, "output is video-only and no wav is written"),
		)
		return stepFailed, nil
	}
	r.audioStream = target
	return stepSucceeded, nil
}

func (r *run) transcodeAudio(ctx context.Context) (stepResult, error) {
	if r.audioStream == "" {
		return stepSkipped, nil
	}
	ok, err := r.o.transcoder.Transcode(ctx, r.audioStream, r.names.Audio)
	if err != nil {
		return stepFailed, err
	}
	if !ok {
		logging.WarnWithContext(logging.WithContext(ctx, r.o.logger), "wav transcode failed; muxing repaired audio anyway", "wav_degraded",
			logging.String(logging.FieldImpact, "no standalone wav for this run"),
		)
		return stepFailed, nil
	}
	r.outcome.AudioPath = r.names.Audio
	return stepSucceeded, nil
}

func (r *run) mux(ctx context.Context) (stepResult, error) {
	res, err := r.o.muxer.Mux(ctx, encoding.MuxRequest{
		VideoPath:    r.videoStream,
		AudioPath:    r.audioStream,
		SubtitlePath: r.req.SubtitlePath,
		OutputPath:   r.names.Video,
	})
	if err != nil {
		return stepFailed, err
	}
	if !res.Succeeded {
		r.outcome.FailureReason = "mux failed"
		return stepFailed, nil
	}
	r.outcome.VideoPath = res.OutputPath
	r.outcome.AudioMuxed = res.AudioIncluded
	r.outcome.SubtitlesEmbedded = res.SubtitlesEmbedded
	r.outcome.OutputBytes = fileutil.FileSize(res.OutputPath)
	return stepSucceeded, nil
}
