package ffmpeg

import (
	"strconv"
	"strings"
)

// CommandSpec is an immutable external invocation: argv (binary first) plus a
// description used in logs.
type CommandSpec struct {
	args        []string
	description string
}

// NewCommand builds a CommandSpec. The argument slice is copied so later
// mutation by the caller cannot change the command.
func NewCommand(description string, args ...string) CommandSpec {
	return CommandSpec{
		args:        append([]string(nil), args...),
		description: strings.TrimSpace(description),
	}
}

// Args returns a copy of the full argv, binary first.
func (c CommandSpec) Args() []string {
	return append([]string(nil), c.args...)
}

// Binary returns argv[0], or "" for an empty command.
func (c CommandSpec) Binary() string {
	if len(c.args) == 0 {
		return ""
	}
	return c.args[0]
}

// Description returns the human-readable label.
func (c CommandSpec) Description() string {
	return c.description
}

// OutputPath returns the final argument, which every command built by this
// module uses as its output file.
func (c CommandSpec) OutputPath() string {
	if len(c.args) < 2 {
		return ""
	}
	return c.args[len(c.args)-1]
}

// InputPaths returns the values following each -i flag in order.
func (c CommandSpec) InputPaths() []string {
	var inputs []string
	for i := 0; i < len(c.args)-1; i++ {
		if c.args[i] == "-i" {
			inputs = append(inputs, c.args[i+1])
		}
	}
	return inputs
}

// String renders the command for logs, quoting arguments that contain spaces.
func (c CommandSpec) String() string {
	parts := make([]string, len(c.args))
	for i, arg := range c.args {
		if arg == "" || strings.ContainsAny(arg, " \t\"'") {
			parts[i] = strconv.Quote(arg)
			continue
		}
		parts[i] = arg
	}
	return strings.Join(parts, " ")
}

// CommandResult is the outcome of one CommandSpec execution.
type CommandResult struct {
	Succeeded bool
	// Output holds stdout and stderr interleaved as the tool wrote them.
	Output   string
	ExitCode int
}

// Tail returns the last n non-empty lines of the captured output.
func (r CommandResult) Tail(n int) string {
	return tailLines(r.Output, n)
}

func tailLines(text string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	kept := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			kept = append(kept, line)
		}
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, "\n")
}
