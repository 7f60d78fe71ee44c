package assembly

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"chunkmux/internal/chunks"
	"chunkmux/internal/fileutil"
	"chunkmux/internal/logging"
	"chunkmux/internal/media/ffmpeg"
)

// Result reports the outcome of one concatenation.
type Result struct {
	Succeeded  bool
	OutputPath string
	Fragments  int
	RawBytes   int64
}

// Concatenator appends fragments and repairs the joined stream.
type Concatenator struct {
	runner   ffmpeg.Runner
	binary   string
	logger   *slog.Logger
	progress io.Writer
}

// Option customizes a Concatenator.
type Option func(*Concatenator)

// WithProgress renders a byte progress bar for the raw append to w.
func WithProgress(w io.Writer) Option {
	return func(c *Concatenator) {
		c.progress = w
	}
}

// NewConcatenator constructs a concatenator that invokes binary through runner.
func NewConcatenator(runner ffmpeg.Runner, binary string, logger *slog.Logger, opts ...Option) *Concatenator {
	c := &Concatenator{
		runner: runner,
		binary: strings.TrimSpace(binary),
		logger: logging.NewComponentLogger(logger, "concat"),
	}
	if c.binary == "" {
		c.binary = "ffmpeg"
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RawPath returns the intermediate file used for the byte-level join of
// output: the same directory and extension with ".temp" before the extension.
func RawPath(output string) string {
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + ".temp" + ext
}

// RepairCommand regenerates timestamps on a raw join while copying streams.
func RepairCommand(binary, raw, output string, kind chunks.Kind) ffmpeg.CommandSpec {
	return ffmpeg.NewCommand(
		fmt.Sprintf("repair concatenated %s stream", kind),
		binary,
		"-hide_banner", "-nostdin", "-y",
		"-fflags", "+genpts",
		"-i", raw,
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		output,
	)
}

// Concatenate joins seq into output. An empty sequence yields a failed result
// without invoking any tool. The returned error is reserved for launch
// failures and cancellation surfaced by the Runner.
func (c *Concatenator) Concatenate(ctx context.Context, seq chunks.Sequence, output string) (Result, error) {
	result := Result{OutputPath: output, Fragments: seq.Len()}
	logger := logging.WithContext(ctx, c.logger).With(logging.String("kind", string(seq.Kind)))

	if seq.Empty() {
		logger.Info("no fragments to concatenate")
		return result, nil
	}

	raw := RawPath(output)
	defer func() {
		if err := fileutil.RemoveIfExists(raw); err != nil {
			logging.WarnWithContext(logger, "failed to remove raw concatenation", "concat_cleanup_failed",
				logging.String("path", raw),
				logging.Error(err),
				logging.String(logging.FieldImpact, "intermediate file left in workspace"),
			)
		}
	}()

	started := time.Now()
	written, err := c.appendRaw(seq, raw)
	result.RawBytes = written
	if err != nil {
		logging.ErrorWithContext(logger, "raw concatenation failed", "concat_raw_failed",
			logging.String("path", raw),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions in the work directory"),
		)
		return result, nil
	}
	logger.Info("fragments appended",
		logging.Int("fragments", seq.Len()),
		logging.Bytes("size", written),
		logging.Duration("elapsed", time.Since(started)),
	)

	cmd := RepairCommand(c.binary, raw, output, seq.Kind)
	run, err := c.runner.Execute(ctx, cmd)
	if err != nil {
		_ = fileutil.RemoveIfExists(output)
		return result, err
	}
	if !run.Succeeded {
		_ = fileutil.RemoveIfExists(output)
		logging.ErrorWithContext(logger, "timestamp repair failed", "concat_repair_failed",
			logging.Int("exit_code", run.ExitCode),
			logging.String("output_tail", run.Tail(6)),
			logging.String(logging.FieldErrorHint, "inspect the fragments; the capture may be corrupt"),
		)
		return result, nil
	}

	result.Succeeded = true
	logger.Info("stream concatenated",
		logging.String("output", output),
		logging.Bytes("size", fileutil.FileSize(output)),
	)
	return result, nil
}

func (c *Concatenator) appendRaw(seq chunks.Sequence, raw string) (int64, error) {
	paths := seq.Paths()
	if c.progress == nil {
		return fileutil.AppendFiles(raw, paths, nil)
	}

	bar := progressbar.NewOptions64(
		fileutil.TotalSize(paths),
		progressbar.OptionSetWriter(c.progress),
		progressbar.OptionSetDescription(fmt.Sprintf("joining %d %s fragments", len(paths), seq.Kind)),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	written, err := fileutil.AppendFiles(raw, paths, bar)
	_ = bar.Finish()
	return written, err
}
