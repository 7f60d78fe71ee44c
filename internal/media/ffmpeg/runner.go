package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"

	"chunkmux/internal/logging"
	"chunkmux/internal/services"
)

// diagnosticLines bounds how much tool output is copied into failure logs.
const diagnosticLines = 12

// Runner executes external media commands.
type Runner interface {
	// Execute runs spec to completion. A non-zero exit is reported through
	// CommandResult.Succeeded; the error is reserved for launch failures and
	// cancellation.
	Execute(ctx context.Context, spec CommandSpec) (CommandResult, error)
}

// ExecRunner runs commands with os/exec, blocking until the process exits.
type ExecRunner struct {
	logger *slog.Logger
}

// NewExecRunner constructs a runner that logs each invocation.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	return &ExecRunner{logger: logging.NewComponentLogger(logger, "ffmpeg")}
}

// Execute implements Runner.
func (r *ExecRunner) Execute(ctx context.Context, spec CommandSpec) (CommandResult, error) {
	args := spec.Args()
	if len(args) == 0 {
		return CommandResult{}, services.Wrap(services.ErrValidation, "ffmpeg", spec.Description(), "empty command", nil)
	}
	logger := logging.WithContext(ctx, r.logger)
	logger.Info(spec.Description(), logging.String("command", spec.String()))

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	started := time.Now()
	err := cmd.Run()
	elapsed := time.Since(started)

	if err == nil {
		logger.Debug("command finished",
			logging.String("description", spec.Description()),
			logging.Duration("elapsed", elapsed),
		)
		return CommandResult{Succeeded: true, Output: output.String()}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return CommandResult{}, services.Wrap(services.ErrTransient, "ffmpeg", spec.Description(), "cancelled", ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result := CommandResult{
			Succeeded: false,
			Output:    output.String(),
			ExitCode:  exitErr.ExitCode(),
		}
		logger.Error("command failed",
			logging.String("description", spec.Description()),
			logging.Int("exit_code", result.ExitCode),
			logging.Duration("elapsed", elapsed),
			logging.String("output_tail", result.Tail(diagnosticLines)),
			logging.String(logging.FieldEventType, "ffmpeg_step_failed"),
		)
		return result, nil
	}

	return CommandResult{}, services.Wrap(services.ErrExternalTool, "ffmpeg", spec.Description(), "launch "+args[0], err)
}
