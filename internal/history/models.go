package history

import "time"

// Run is one persisted pipeline execution.
type Run struct {
	ID                string    `json:"id"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	State             string    `json:"state"`
	VideoPath         string    `json:"video_path,omitempty"`
	AudioPath         string    `json:"audio_path,omitempty"`
	VideoFragments    int       `json:"video_fragments"`
	AudioFragments    int       `json:"audio_fragments"`
	VideoMissing      int       `json:"video_missing"`
	AudioMissing      int       `json:"audio_missing"`
	SubtitlesEmbedded bool      `json:"subtitles_embedded"`
	OutputBytes       int64     `json:"output_bytes"`
	Error             string    `json:"error,omitempty"`
}

// Duration returns the wall-clock time the run took.
func (r Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the run produced a final video.
func (r Run) Succeeded() bool {
	return r.VideoPath != ""
}
