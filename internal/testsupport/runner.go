package testsupport

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"

	"chunkmux/internal/media/ffmpeg"
)

// FakeRunner is a deterministic ffmpeg.Runner. Successful commands write the
// concatenated bytes of every existing -i input to the final argument, so the
// data flow through a pipeline can be asserted without a real tool.
type FakeRunner struct {
	mu sync.Mutex
	// FailWhen marks a command as failed (exit 1) when its description
	// contains any of these substrings.
	FailWhen []string
	// PartialOnFailure makes failed commands leave a partial output behind.
	PartialOnFailure bool
	// LaunchErr, when set, is returned for every command.
	LaunchErr error

	commands []ffmpeg.CommandSpec
	inputs   map[string][]byte
}

// Execute implements ffmpeg.Runner.
func (f *FakeRunner) Execute(_ context.Context, spec ffmpeg.CommandSpec) (ffmpeg.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, spec)
	if f.LaunchErr != nil {
		return ffmpeg.CommandResult{}, f.LaunchErr
	}

	var joined bytes.Buffer
	for _, input := range spec.InputPaths() {
		data, err := os.ReadFile(input)
		if err != nil {
			continue
		}
		if f.inputs == nil {
			f.inputs = make(map[string][]byte)
		}
		f.inputs[input] = data
		joined.Write(data)
	}

	for _, marker := range f.FailWhen {
		if strings.Contains(spec.Description(), marker) {
			if f.PartialOnFailure {
				_ = os.WriteFile(spec.OutputPath(), []byte("partial"), 0o644)
			}
			return ffmpeg.CommandResult{Output: "simulated failure: " + marker, ExitCode: 1}, nil
		}
	}

	if err := os.WriteFile(spec.OutputPath(), joined.Bytes(), 0o644); err != nil {
		return ffmpeg.CommandResult{Output: err.Error(), ExitCode: 1}, nil
	}
	return ffmpeg.CommandResult{Succeeded: true}, nil
}

// Commands returns the commands executed so far.
func (f *FakeRunner) Commands() []ffmpeg.CommandSpec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ffmpeg.CommandSpec(nil), f.commands...)
}

// Descriptions returns the description of every executed command in order.
func (f *FakeRunner) Descriptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commands))
	for i, cmd := range f.commands {
		out[i] = cmd.Description()
	}
	return out
}

// InputContent returns the bytes an input file held when a command read it.
func (f *FakeRunner) InputContent(path string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.inputs[path]
	return data, ok
}
