package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const muxedReport = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1280, "height": 720},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "44100", "channels": 2},
    {"index": 2, "codec_name": "mov_text", "codec_type": "subtitle", "tags": {"language": "eng"}},
    {"index": 3, "codec_name": "mov_text", "codec_type": "subtitle"}
  ],
  "format": {"filename": "out.mp4", "nb_streams": 4, "duration": "12.500000", "size": "2048", "bit_rate": "1310", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}`

func TestParseMuxedReport(t *testing.T) {
	result, err := Parse([]byte(muxedReport))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	counts := map[Kind]int{KindVideo: 1, KindAudio: 1, KindSubtitle: 2}
	for kind, want := range counts {
		if got := result.Count(kind); got != want {
			t.Fatalf("Count(%s) = %d, want %d", kind, got, want)
		}
	}
	langs := result.Languages(KindSubtitle)
	if len(langs) != 2 || langs[0] != "eng" || langs[1] != "und" {
		t.Fatalf("unexpected subtitle languages %v", langs)
	}
	if result.DurationSeconds() != 12.5 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 2048 || result.BitRate() != 1310 {
		t.Fatalf("unexpected size/bitrate %d/%d", result.SizeBytes(), result.BitRate())
	}
}

func TestFormatNumbers(t *testing.T) {
	missing := Result{}
	if missing.DurationSeconds() != 0 || missing.SizeBytes() != 0 {
		t.Fatal("absent fields should read as zero")
	}

	bad := Result{Format: Format{Duration: "n/a", Size: "-1", BitRate: "fast"}}
	if !math.IsNaN(bad.DurationSeconds()) {
		t.Fatalf("expected NaN duration, got %v", bad.DurationSeconds())
	}
	if bad.SizeBytes() != 0 || bad.BitRate() != 0 {
		t.Fatalf("invalid numbers should clamp to zero, got %d/%d", bad.SizeBytes(), bad.BitRate())
	}
}

func TestStreamKindIsCaseInsensitive(t *testing.T) {
	if !(Stream{CodecType: "Video"}).Is(KindVideo) {
		t.Fatal("expected case-insensitive match")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func writeStub(t *testing.T, body string) string {
	t.Helper()
	stub := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return stub
}

func TestInspectRunsBinary(t *testing.T) {
	report := filepath.Join(t.TempDir(), "report.json")
	if err := os.WriteFile(report, []byte(muxedReport), 0o644); err != nil {
		t.Fatal(err)
	}
	stub := writeStub(t, "echo noise >&2\ncat "+report+"\n")

	result, err := Inspect(context.Background(), stub, "out.mp4")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.Count(KindVideo) != 1 || result.Count(KindAudio) != 1 {
		t.Fatalf("unexpected streams: %+v", result.Streams)
	}
}

func TestInspectReportsStderr(t *testing.T) {
	stub := writeStub(t, "echo 'out.mp4: Invalid data found' >&2\nexit 1\n")

	_, err := Inspect(context.Background(), stub, "out.mp4")
	if err == nil || !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestInspectEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
