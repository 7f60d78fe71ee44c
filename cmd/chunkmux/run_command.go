package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"chunkmux/internal/config"
	"chunkmux/internal/history"
	"chunkmux/internal/logging"
	"chunkmux/internal/media/ffmpeg"
	"chunkmux/internal/metrics"
	"chunkmux/internal/preflight"
	"chunkmux/internal/runlock"
	"chunkmux/internal/services"
	"chunkmux/internal/staging"
	"chunkmux/internal/workflow"
)

// errNoVideo marks a run that finished without producing a final video.
var errNoVideo = errors.New("no video produced")

type runFlags struct {
	subtitles  string
	overrides  config.Paths
	noProgress bool
}

func newRunCommand(a *app) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reassemble captured fragments into the final video and audio",
		Long: "Concatenate the indexed video and audio fragments, repair their timestamps,\n" +
			"write a standalone WAV, and mux everything (plus optional subtitles) into one\n" +
			"timestamped container. Audio and caption problems degrade the output; missing\n" +
			"video fails the run.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runReassembly(cmd, cfg, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.subtitles, "subtitles", "s", "", "SRT file to embed as a soft caption track")
	f.StringVar(&flags.overrides.VideoChunksDir, "video-chunks", "", "Directory holding video fragments")
	f.StringVar(&flags.overrides.AudioChunksDir, "audio-chunks", "", "Directory holding audio fragments")
	f.StringVar(&flags.overrides.VideoOutputDir, "video-output", "", "Directory for the final video")
	f.StringVar(&flags.overrides.AudioOutputDir, "audio-output", "", "Directory for the standalone WAV")
	f.StringVar(&flags.overrides.WorkDir, "work-dir", "", "Parent directory for the scratch workspace")
	f.BoolVar(&flags.noProgress, "no-progress", false, "Disable the concatenation progress bar")
	return cmd
}

func runReassembly(cmd *cobra.Command, cfg *config.Config, flags runFlags) error {
	if err := cfg.ApplyOverrides(flags.overrides); err != nil {
		return fmt.Errorf("apply overrides: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	runID := uuid.NewString()
	logger, err := logging.NewFromConfig(cfg, runID)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release run lock", logging.Error(err))
		}
	}()

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}

	if hours := cfg.Workspace.StaleAfterHours; hours > 0 {
		staging.CleanStale(runCtx, cfg.Paths.WorkDir, time.Duration(hours)*time.Hour, logger)
	}

	subtitles := strings.TrimSpace(flags.subtitles)
	if subtitles != "" {
		if expanded, err := config.ExpandPath(subtitles); err == nil {
			subtitles = expanded
		}
	}
	if err := runPreflight(runCtx, cfg, subtitles, logger); err != nil {
		return err
	}

	recorder := metrics.New()
	opts := workflow.Options{Logger: logger, Observer: recorder}
	if !flags.noProgress && isTerminal(cmd.ErrOrStderr()) {
		opts.Progress = cmd.ErrOrStderr()
	}
	if cfg.Output.VerifyOutput {
		opts.Prober = workflow.NewFFprobeProber(cfg.FFprobeBinary())
	}

	orchestrator := workflow.New(cfg, ffmpeg.NewExecRunner(logger), opts)
	outcome, runErr := orchestrator.Run(runCtx, workflow.Request{RunID: runID, SubtitlePath: subtitles})

	// Bookkeeping uses a fresh context so an interrupted run is still recorded.
	persistRun(context.WithoutCancel(runCtx), cfg, logger, recorder, outcome)

	fmt.Fprint(cmd.OutOrStdout(), renderRunSummary(cmd.OutOrStdout(), outcome))

	if runErr != nil {
		return runErr
	}
	if !outcome.HasVideo() {
		reason := outcome.FailureReason
		if reason == "" {
			reason = string(outcome.State)
		}
		return fmt.Errorf("run %s: %w: %s", outcome.RunID, errNoVideo, reason)
	}
	return nil
}

func runPreflight(ctx context.Context, cfg *config.Config, subtitles string, logger *slog.Logger) error {
	results := preflight.RunAll(ctx, cfg)
	if subtitles != "" {
		results = append(results, preflight.CheckSubtitleFile(subtitles))
	}
	for _, r := range results {
		if r.Passed || !r.Optional {
			continue
		}
		logging.WarnWithContext(logger, "optional preflight check failed", "preflight_optional_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldImpact, "run continues with reduced output"),
		)
	}
	if err := preflight.Err(results); err != nil {
		logging.ErrorWithContext(logger, "preflight failed", "preflight_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run `chunkmux check` for details"),
		)
		return err
	}
	return nil
}

// persistRun writes the ledger entry, manifest, and metrics textfile. Each is
// best effort; failures are logged and never change the run result.
func persistRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, recorder *metrics.Recorder, outcome workflow.Outcome) {
	run := outcome.HistoryRun()

	if cfg.History.Enabled {
		if err := recordHistory(ctx, cfg.HistoryPath(), run); err != nil {
			logging.WarnWithContext(logger, "failed to record run history", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run missing from `chunkmux history`"),
			)
		}
	}

	if err := history.WriteManifest(cfg.ManifestPath(), run); err != nil {
		logging.WarnWithContext(logger, "failed to write run manifest", "manifest_write_failed",
			logging.String("path", cfg.ManifestPath()),
			logging.Error(err),
		)
	}

	recorder.ObserveRun(metrics.RunSummary{
		Video:       outcome.HasVideo(),
		Audio:       outcome.HasAudio(),
		Subtitles:   outcome.SubtitlesEmbedded,
		OutputBytes: outcome.OutputBytes,
		Elapsed:     outcome.Elapsed(),
		Finished:    outcome.FinishedAt,
	})
	if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logging.WarnWithContext(logger, "failed to write metrics textfile", "metrics_write_failed",
			logging.String("path", cfg.Metrics.Textfile),
			logging.Error(err),
		)
	}
}

func recordHistory(ctx context.Context, path string, run history.Run) error {
	store, err := history.Open(ctx, path)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "history", "open", path, err)
	}
	defer store.Close()
	return store.Record(ctx, run)
}
