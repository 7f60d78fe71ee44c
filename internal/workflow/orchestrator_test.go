package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"chunkmux/internal/config"
	"chunkmux/internal/logging"
	"chunkmux/internal/media/ffprobe"
	"chunkmux/internal/services"
	"chunkmux/internal/testsupport"
	"chunkmux/internal/workflow"
)

type recordingObserver struct {
	mu        sync.Mutex
	sequences map[string][2]int
	steps     []string
}

func (r *recordingObserver) ObserveSequence(kind string, found, missing int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sequences == nil {
		r.sequences = make(map[string][2]int)
	}
	r.sequences[kind] = [2]int{found, missing}
}

func (r *recordingObserver) ObserveStep(step string, ok bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	suffix := ":ok"
	if !ok {
		suffix = ":fail"
	}
	r.steps = append(r.steps, step+suffix)
}

func newOrchestrator(cfg *config.Config, runner *testsupport.FakeRunner, opts workflow.Options) *workflow.Orchestrator {
	opts.Logger = logging.NewNop()
	if opts.Now == nil {
		opts.Now = func() time.Time { return testStart }
	}
	return workflow.New(cfg, runner, opts)
}

func readString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func assertWorkspaceRemoved(t *testing.T, cfg *config.Config) {
	t.Helper()
	if left := listDir(t, cfg.Paths.WorkDir); len(left) != 0 {
		t.Fatalf("expected work dir to be empty, found %v", left)
	}
}

func markers(prefix string, indices ...int) string {
	var b strings.Builder
	for _, i := range indices {
		b.WriteString(testsupport.FragmentMarker(prefix, i))
	}
	return b.String()
}

func TestRunProducesVideoAndAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFragments(t, cfg.Paths.VideoChunksDir, "video", "webm", 0, 1, 2)
	testsupport.WriteFragments(t, cfg.Paths.AudioChunksDir, "audio", "webm", 0, 1)
	runner := &testsupport.FakeRunner{}
	observer := &recordingObserver{}

	outcome, err := newOrchestrator(cfg, runner, workflow.Options{Observer: observer}).
		Run(context.Background(), workflow.Request{RunID: "run-1"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.State != workflow.StateDone {
		t.Fatalf("expected done, got %s (%s)", outcome.State, outcome.FailureReason)
	}
	if outcome.RunID != "run-1" {
		t.Fatalf("unexpected run id %q", outcome.RunID)
	}

	wantVideo := filepath.Join(cfg.Paths.VideoOutputDir, "output_2026-03-14_09-26-53.mp4")
	wantAudio := filepath.Join(cfg.Paths.AudioOutputDir, "audio_2026-03-14_09-26-53.wav")
	if outcome.VideoPath != wantVideo {
		t.Fatalf("unexpected video path %q", outcome.VideoPath)
	}
	if outcome.AudioPath != wantAudio {
		t.Fatalf("unexpected audio path %q", outcome.AudioPath)
	}
	if !outcome.AudioMuxed {
		t.Fatal("expected audio to be muxed")
	}

	// The fake runner writes the concatenation of its inputs, so the final
	// container shows fragment order and which streams reached the mux.
	if got, want := readString(t, wantVideo), markers("video", 0, 1, 2)+markers("audio", 0, 1); got != want {
		t.Fatalf("unexpected mux content %q, want %q", got, want)
	}
	if got, want := readString(t, wantAudio), markers("audio", 0, 1); got != want {
		t.Fatalf("unexpected wav content %q, want %q", got, want)
	}
	if outcome.OutputBytes != int64(len(markers("video", 0, 1, 2)+markers("audio", 0, 1))) {
		t.Fatalf("unexpected output bytes %d", outcome.OutputBytes)
	}

	wantDescriptions := []string{
		"repair concatenated video",
		"repair concatenated audio",
		"transcode audio to wav",
		"mux final video",
	}
	if got := runner.Descriptions(); !slices.Equal(got, wantDescriptions) {
		t.Fatalf("unexpected command sequence %v", got)
	}
	wantSteps := []string{"scanning:ok", "concatenating_video:ok", "concatenating_audio:ok", "transcoding_audio:ok", "muxing:ok"}
	if !slices.Equal(observer.steps, wantSteps) {
		t.Fatalf("unexpected observed steps %v", observer.steps)
	}
	if observer.sequences["video"] != [2]int{3, 0} || observer.sequences["audio"] != [2]int{2, 0} {
		t.Fatalf("unexpected observed sequences %v", observer.sequences)
	}
	assertWorkspaceRemoved(t, cfg)
}

func TestRunVideoOnlyLeavesSingleOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFragments(t, cfg.Paths.VideoChunksDir, "video", "webm", 0, 1, 2)
	runner := &testsupport.FakeRunner{}

	outcome, err := newOrchestrator(cfg, runner, workflow.Options{}).Run(context.Background(), workflow.Request{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.State != workflow.StateDone || !outcome.HasVideo() || outcome.HasAudio() {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if outcome.RunID == "" {
		t.Fatal("expected generated run id")
	}
	if outcome.AudioMuxed {
		t.Fatal("audio must not be muxed without fragments")
	}
	if files := listDir(t, cfg.Paths.VideoOutputDir); len(files) != 1 {
		t.Fatalf("expected exactly one video output, found %v", files)
	}
	if files := listDir(t, cfg.Paths.AudioOutputDir); len(files) != 0 {
		t.Fatalf("expected no audio output, found %v", files)
	}
	if got := readString(t, outcome.VideoPath); got != markers("video", 0, 1, 2) {
		t.Fatalf("unexpected video content %q", got)
	}

	var skipped bool
	for _, step := range outcome.Steps {
		if step.State == workflow.StateConcatenatingAudio {
			skipped = step.Skipped
		}
		if step.State == workflow.StateTranscodingAudio {
			t.Fatal("transcoding must not run without audio")
		}
	}
	if !skipped {
		t.Fatal("expected audio concatenation to be recorded as skipped")
	}
	assertWorkspaceRemoved(t, cfg)
}

func TestRunFailsWithoutVideo(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFragments(t, cfg.Paths.AudioChunksDir, "audio", "webm", 0, 1)
	runner := &testsupport.FakeRunner{}

	outcome, err := newOrchestrator(cfg, runner, workflow.Options{}).Run(context.Background(), workflow.Request{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.State != workflow.StateFailed {
		t.Fatalf("expected failed, got %s", outcome.State)
	}
	if outcome.HasVideo() || outcome.HasAudio() {
		t.Fatalf("expected no artifacts, got %+v", outcome)
	}
	if !strings.Contains(outcome.FailureReason, "no video fragments") {
		t.Fatalf("unexpected failure reason %q", outcome.FailureReason)
	}
	if cmds := runner.Commands(); len(cmds) != 0 {
		t.Fatalf("expected no commands, got %v", runner.Descriptions())
	}
	assertWorkspaceRemoved(t, cfg)
}

func TestRunAudioConcatFailureMuxesVideoOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFragments(t, cfg.Paths.VideoChunksDir, "video", "webm", 0, 1)
	testsupport.WriteFragments(t, cfg.Paths.AudioChunksDir, "audio", "webm", 0, 1)
	runner := &testsupport.FakeRunner{FailWhen: []string{"repair concatenated audio"}, PartialOnFailure: true}

	outcome, err := newOrchestrator(cfg, runner, workflow.Options{}).Run(context.Background(), workflow.Request{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.State != workflow.StateDone || outcome.HasAudio() || outcome.AudioMuxed {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if got := readString(t, outcome.VideoPath); got != markers("video", 0, 1) {
		t.Fatalf("expected video-only mux, got %q", got)
	}
	if slices.Contains(runner.Descriptions(), "transcode audio to wav") {
		t.Fatal("transcode must not run after audio concatenation failed")
	}
	assertWorkspaceRemoved(t, cfg)
}

func TestRunTranscodeFailureStillMuxesAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFragments(t, cfg.Paths.VideoChunksDir, "video", "webm", 0)
	testsupport.WriteFragments(t, cfg.Paths.AudioChunksDir, "audio", "webm", 0)
	runner := &testsupport.FakeRunner{FailWhen: []string{"transcode"}}

	outcome, err := newOrchestrator(cfg, runner, workflow.Options{}).Run(context.Background(), workflow.Request{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.State != workflow.StateDone {
		t.Fatalf("expected done, got %s", outcome.State)
	}
	if outcome.HasAudio() {
		t.Fatalf("expected no wav, got %q", outcome.AudioPath)
	}
	if !outcome.AudioMuxed {
		t.Fatal("repaired audio should still be muxed")
	}
	if got := readString(t, outcome.VideoPath); got != markers("video", 0)+markers("audio", 0) {
		t.Fatalf("unexpected mux content %q", got)
	}
	if files := listDir(t, cfg.Paths.AudioOutputDir); len(files) != 0 {
		t.Fatalf("expected empty audio dir, found %v", files)
	}
	assertWorkspaceRemoved(t, cfg)
}

func TestRunMuxFailureKeepsAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFragments(t, cfg.Paths.VideoChunksDir, "video", "webm", 0)
	testsupport.WriteFragments(t, cfg.Paths.AudioChunksDir, "audio", "webm", 0)
	runner := &testsupport.FakeRunner{FailWhen: []string{"mux"}, PartialOnFailure: true}

	outcome, err := newOrchestrator(cfg, runner, workflow.Options{}).Run(context.Background(), workflow.Request{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.State != workflow.StateFailed {
		t.Fatalf("expected failed, got %s", outcome.State)
	}
	if outcome.HasVideo() {
		t.Fatalf("expected no video, got %q", outcome.VideoPath)
	}
	if !outcome.HasAudio() {
		t.Fatal("expected wav to survive a mux failure")
	}
	if files := listDir(t, cfg.Paths.VideoOutputDir); len(files) != 0 {
		t.Fatalf("expected partial mux output to be removed, found %v", files)
	}
	assertWorkspaceRemoved(t, cfg)
}

func TestRunVideoConcatFailureAborts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFragments(t, cfg.Paths.VideoChunksDir, "video", "webm", 0)
	testsupport.WriteFragments(t, cfg.Paths.AudioChunksDir, "audio", "webm", 0)
	runner := &testsupport.FakeRunner{FailWhen: []string{"repair concatenated video"}}

	outcome, err := newOrchestrator(cfg, runner, workflow.Options{}).Run(context.Background(), workflow.Request{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.State != workflow.StateFailed || outcome.HasVideo() || outcome.HasAudio() {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if got := runner.Descriptions(); len(got) != 1 {
		t.Fatalf("expected the run to stop after video repair, got %v", got)
	}
	assertWorkspaceRemoved(t, cfg)
}

func TestRunEmbedsSubtitles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFragments(t, cfg.Paths.VideoChunksDir, "video", "webm", 0)
	subtitle := filepath.Join(testsupport.BaseDir(cfg), "captions.srt")
	if err := os.WriteFile(subtitle, []byte("srt;"), 0o644); err != nil {
		t.Fatalf("write subtitle: %v", err)
	}
	runner := &testsupport.FakeRunner{}

	outcome, err := newOrchestrator(cfg, runner, workflow.Options{}).
		Run(context.Background(), workflow.Request{SubtitlePath: subtitle})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !outcome.SubtitlesEmbedded {
		t.Fatal("expected subtitles to be embedded")
	}
	if got := readString(t, outcome.VideoPath); got != markers("video", 0)+"srt;" {
		t.Fatalf("unexpected mux content %q", got)
	}
}

func TestRunMissingSubtitleIsIgnored(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFragments(t, cfg.Paths.VideoChunksDir, "video", "webm", 0)
	runner := &testsupport.FakeRunner{}

	outcome, err := newOrchestrator(cfg, runner, workflow.Options{}).
		Run(context.Background(), workflow.Request{SubtitlePath: filepath.Join(t.TempDir(), "absent.srt")})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.State != workflow.StateDone || outcome.SubtitlesEmbedded {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestRunReportsGaps(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFragments(t, cfg.Paths.VideoChunksDir, "video", "webm", 0, 1, 4)
	runner := &testsupport.FakeRunner{}

	outcome, err := newOrchestrator(cfg, runner, workflow.Options{}).Run(context.Background(), workflow.Request{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.State != workflow.StateDone {
		t.Fatalf("gaps must not fail the run, got %s", outcome.State)
	}
	if !slices.Equal(outcome.VideoMissing, []int{2, 3}) {
		t.Fatalf("unexpected missing indices %v", outcome.VideoMissing)
	}
	if got := readString(t, outcome.VideoPath); got != markers("video", 0, 1, 4) {
		t.Fatalf("unexpected video content %q", got)
	}
}

func TestRunCollisionAddsSuffix(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFragments(t, cfg.Paths.VideoChunksDir, "video", "webm", 0)
	runner := &testsupport.FakeRunner{}
	orch := newOrchestrator(cfg, runner, workflow.Options{})

	first, err := orch.Run(context.Background(), workflow.Request{})
	if err != nil {
		t.Fatalf("first Run returned error: %v", err)
	}
	second, err := orch.Run(context.Background(), workflow.Request{})
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	if first.VideoPath == second.VideoPath {
		t.Fatalf("second run overwrote %q", first.VideoPath)
	}
	if !strings.HasSuffix(second.VideoPath, "_2.mp4") {
		t.Fatalf("expected suffixed name, got %q", second.VideoPath)
	}
	if files := listDir(t, cfg.Paths.VideoOutputDir); len(files) != 2 {
		t.Fatalf("expected two outputs, found %v", files)
	}
}

func TestRunLaunchErrorAborts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFragments(t, cfg.Paths.VideoChunksDir, "video", "webm", 0)
	launchErr := services.Wrap(services.ErrExternalTool, "ffmpeg", "launch", "not found", errors.New("exec: not found"))
	runner := &testsupport.FakeRunner{LaunchErr: launchErr}

	outcome, err := newOrchestrator(cfg, runner, workflow.Options{}).Run(context.Background(), workflow.Request{})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if outcome.State != workflow.StateFailed || outcome.FailureReason == "" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	assertWorkspaceRemoved(t, cfg)
}

func TestRunVerifiesOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Output.VerifyOutput = true
	testsupport.WriteFragments(t, cfg.Paths.VideoChunksDir, "video", "webm", 0)
	testsupport.WriteFragments(t, cfg.Paths.AudioChunksDir, "audio", "webm", 0)
	runner := &testsupport.FakeRunner{}

	var probed string
	prober := func(_ context.Context, path string) (ffprobe.Result, error) {
		probed = path
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "video"}},
			Format:  ffprobe.Format{Duration: "12.5"},
		}, nil
	}

	outcome, err := newOrchestrator(cfg, runner, workflow.Options{Prober: prober}).Run(context.Background(), workflow.Request{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if probed != outcome.VideoPath {
		t.Fatalf("expected prober to inspect %q, got %q", outcome.VideoPath, probed)
	}
	v := outcome.Verification
	if v == nil {
		t.Fatal("expected verification result")
	}
	if v.DurationSeconds != 12.5 || v.VideoStreams != 1 {
		t.Fatalf("unexpected verification %+v", v)
	}
	if len(v.Warnings) != 1 || !strings.Contains(v.Warnings[0], "no audio stream") {
		t.Fatalf("expected missing audio warning, got %v", v.Warnings)
	}
	if outcome.State != workflow.StateDone {
		t.Fatal("verification warnings must not change the outcome")
	}
}
