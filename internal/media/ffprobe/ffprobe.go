package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"chunkmux/internal/language"
)

// Kind is the codec_type ffprobe reports for a stream.
type Kind string

const (
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindSubtitle Kind = "subtitle"
)

// Result is the subset of `ffprobe -show_format -show_streams` that output
// verification reads.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream is one entry of the streams array.
type Stream struct {
	Index      int               `json:"index"`
	CodecName  string            `json:"codec_name"`
	CodecType  string            `json:"codec_type"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	SampleRate string            `json:"sample_rate"`
	Channels   int               `json:"channels"`
	Tags       map[string]string `json:"tags"`
}

// Is reports whether the stream has the given kind.
func (s Stream) Is(kind Kind) bool {
	return strings.EqualFold(s.CodecType, string(kind))
}

// Format is the container section. Numbers arrive as strings.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Inspect runs binary against path and decodes its JSON report. stderr is
// folded into the error when ffprobe exits non-zero.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe: empty path")
	}
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary,
		"-v", "error", "-hide_banner",
		"-show_format", "-show_streams",
		"-of", "json", "--", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Result{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, msg)
		}
		return Result{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return Parse(stdout.Bytes())
}

// Parse decodes an ffprobe JSON document.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe: decode report: %w", err)
	}
	return result, nil
}

// Count returns how many streams of kind the container holds.
func (r Result) Count(kind Kind) int {
	n := 0
	for _, s := range r.Streams {
		if s.Is(kind) {
			n++
		}
	}
	return n
}

// Languages returns the ISO 639-2 tag of each stream of kind, in stream
// order. Untagged streams report language.Undetermined.
func (r Result) Languages(kind Kind) []string {
	var out []string
	for _, s := range r.Streams {
		if !s.Is(kind) {
			continue
		}
		tag := language.ExtractFromTags(s.Tags)
		if tag == "" {
			tag = language.Undetermined
		}
		out = append(out, tag)
	}
	return out
}

// DurationSeconds is the container duration. It is 0 when ffprobe omitted
// the field and NaN when the field does not parse.
func (r Result) DurationSeconds() float64 {
	return number(r.Format.Duration)
}

// SizeBytes is the container size, or 0 when absent or invalid.
func (r Result) SizeBytes() int64 {
	return nonNegative(number(r.Format.Size))
}

// BitRate is the overall bitrate in bits per second, or 0 when absent or invalid.
func (r Result) BitRate() int64 {
	return nonNegative(number(r.Format.BitRate))
}

func number(field string) float64 {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func nonNegative(v float64) int64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return int64(v)
}
