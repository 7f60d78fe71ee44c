// Package metrics exposes per-run Prometheus gauges for node-exporter's
// textfile collector.
//
// chunkmux is a one-shot CLI, so nothing is scraped live: a fresh registry is
// filled during the run and written once at the end with
// prometheus.WriteToTextfile, which renames into place atomically.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects metrics for a single run.
type Recorder struct {
	registry *prometheus.Registry

	fragments    *prometheus.GaugeVec
	missing      *prometheus.GaugeVec
	stepSuccess  *prometheus.GaugeVec
	stepDuration *prometheus.GaugeVec
	artifacts    *prometheus.GaugeVec
	runSuccess   prometheus.Gauge
	runDuration  prometheus.Gauge
	outputBytes  prometheus.Gauge
	lastRun      prometheus.Gauge
}

// New builds a Recorder backed by its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		fragments: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chunkmux_fragments_found",
			Help: "Fragments located in the last run, by kind.",
		}, []string{"kind"}),
		missing: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chunkmux_fragments_missing",
			Help: "Index gaps below the highest fragment found in the last run, by kind.",
		}, []string{"kind"}),
		stepSuccess: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chunkmux_step_success",
			Help: "1 when the pipeline step succeeded in the last run, 0 when it failed or was skipped.",
		}, []string{"step"}),
		stepDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chunkmux_step_duration_seconds",
			Help: "Wall-clock duration of each pipeline step in the last run.",
		}, []string{"step"}),
		artifacts: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chunkmux_artifact_produced",
			Help: "1 when the last run produced the artifact (video, audio, subtitles).",
		}, []string{"artifact"}),
		runSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chunkmux_last_run_success",
			Help: "1 when the last run produced a final video.",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chunkmux_last_run_duration_seconds",
			Help: "Wall-clock duration of the last run.",
		}),
		outputBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chunkmux_last_run_output_bytes",
			Help: "Size of the final video produced by the last run.",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chunkmux_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveSequence records the located fragment count and gap count for kind.
func (r *Recorder) ObserveSequence(kind string, found, missing int) {
	if r == nil {
		return
	}
	r.fragments.WithLabelValues(kind).Set(float64(found))
	r.missing.WithLabelValues(kind).Set(float64(missing))
}

// ObserveStep records the outcome of one pipeline step.
func (r *Recorder) ObserveStep(step string, ok bool, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.stepSuccess.WithLabelValues(step).Set(boolValue(ok))
	r.stepDuration.WithLabelValues(step).Set(elapsed.Seconds())
}

// RunSummary is the end-of-run snapshot passed to ObserveRun.
type RunSummary struct {
	Video       bool
	Audio       bool
	Subtitles   bool
	OutputBytes int64
	Elapsed     time.Duration
	Finished    time.Time
}

// ObserveRun records the overall run outcome.
func (r *Recorder) ObserveRun(s RunSummary) {
	if r == nil {
		return
	}
	r.runSuccess.Set(boolValue(s.Video))
	r.artifacts.WithLabelValues("video").Set(boolValue(s.Video))
	r.artifacts.WithLabelValues("audio").Set(boolValue(s.Audio))
	r.artifacts.WithLabelValues("subtitles").Set(boolValue(s.Subtitles))
	r.runDuration.Set(s.Elapsed.Seconds())
	r.outputBytes.Set(float64(s.OutputBytes))
	if !s.Finished.IsZero() {
		r.lastRun.Set(float64(s.Finished.Unix()))
	}
}

// WriteTextfile writes every collected metric to path in the text exposition
// format. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

func boolValue(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
