package workflow

import (
	"time"

	"chunkmux/internal/history"
)

// Step records one visited state.
type Step struct {
	State     State
	Succeeded bool
	Skipped   bool
	Elapsed   time.Duration
}

// Outcome is the terminal result of a run. VideoPath and AudioPath are
// independent: either may be empty (absent) regardless of the other.
type Outcome struct {
	RunID      string
	State      State
	VideoPath  string
	AudioPath  string
	StartedAt  time.Time
	FinishedAt time.Time

	VideoFragments int
	AudioFragments int
	VideoMissing   []int
	AudioMissing   []int

	AudioMuxed        bool
	SubtitlesEmbedded bool
	OutputBytes       int64
	FailureReason     string

	Steps        []Step
	Verification *Verification
}

// HasVideo reports whether a final video was produced.
func (o Outcome) HasVideo() bool {
	return o.VideoPath != ""
}

// HasAudio reports whether a standalone WAV was produced.
func (o Outcome) HasAudio() bool {
	return o.AudioPath != ""
}

// Elapsed returns the wall-clock duration of the run.
func (o Outcome) Elapsed() time.Duration {
	if o.StartedAt.IsZero() || o.FinishedAt.IsZero() {
		return 0
	}
	return o.FinishedAt.Sub(o.StartedAt)
}

// HistoryRun converts the outcome into its persisted form.
func (o Outcome) HistoryRun() history.Run {
	return history.Run{
		ID:                o.RunID,
		StartedAt:         o.StartedAt,
		FinishedAt:        o.FinishedAt,
		State:             string(o.State),
		VideoPath:         o.VideoPath,
		AudioPath:         o.AudioPath,
		VideoFragments:    o.VideoFragments,
		AudioFragments:    o.AudioFragments,
		VideoMissing:      len(o.VideoMissing),
		AudioMissing:      len(o.AudioMissing),
		SubtitlesEmbedded: o.SubtitlesEmbedded,
		OutputBytes:       o.OutputBytes,
		Error:             o.FailureReason,
	}
}
