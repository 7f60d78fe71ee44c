package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"chunkmux/internal/fileutil"
	"chunkmux/internal/workflow"
)

// renderRunSummary describes one run for the terminal: what was produced,
// what was degraded, and how each step went.
func renderRunSummary(out io.Writer, outcome workflow.Outcome) string {
	var b strings.Builder

	status := "completed"
	if outcome.State == workflow.StateFailed {
		status = "failed"
	}
	fmt.Fprintf(&b, "Run %s %s in %s\n", outcome.RunID, status, outcome.Elapsed().Round(time.Millisecond))

	rows := [][]string{
		{"Video", artifactLabel(outcome.VideoPath)},
		{"Audio (WAV)", artifactLabel(outcome.AudioPath)},
		{"Video fragments", fragmentLabel(outcome.VideoFragments, outcome.VideoMissing)},
		{"Audio fragments", fragmentLabel(outcome.AudioFragments, outcome.AudioMissing)},
		{"Audio muxed", yesNo(outcome.AudioMuxed)},
		{"Subtitles embedded", yesNo(outcome.SubtitlesEmbedded)},
	}
	if v := outcome.Verification; v != nil {
		rows = append(rows, []string{"Verified duration", fmt.Sprintf("%.1fs", v.DurationSeconds)})
		for _, w := range v.Warnings {
			rows = append(rows, []string{"Verification warning", w})
		}
	}
	if outcome.FailureReason != "" {
		rows = append(rows, []string{"Failure", outcome.FailureReason})
	}
	b.WriteString(renderTable(out, columns("Item", "Value"), rows))
	b.WriteString("\n")

	if len(outcome.Steps) > 0 {
		stepRows := make([][]string, 0, len(outcome.Steps))
		for _, step := range outcome.Steps {
			stepRows = append(stepRows, []string{
				string(step.State),
				stepLabel(step),
				step.Elapsed.Round(time.Millisecond).String(),
			})
		}
		b.WriteString(renderTable(out, []column{{title: "Step"}, {title: "Result"}, {title: "Elapsed", right: true}}, stepRows))
		b.WriteString("\n")
	}
	return b.String()
}

func artifactLabel(path string) string {
	if path == "" {
		return "absent"
	}
	size := fileutil.FileSize(path)
	if size <= 0 {
		return path
	}
	return fmt.Sprintf("%s (%s)", path, humanize.IBytes(uint64(size)))
}

func fragmentLabel(found int, missing []int) string {
	if len(missing) == 0 {
		return strconv.Itoa(found)
	}
	return fmt.Sprintf("%d (%d missing)", found, len(missing))
}

func stepLabel(step workflow.Step) string {
	switch {
	case step.Skipped:
		return "skipped"
	case step.Succeeded:
		return "ok"
	default:
		return "failed"
	}
}
