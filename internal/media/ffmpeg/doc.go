// Package ffmpeg is the single boundary between chunkmux and the external
// media toolchain.
//
// A CommandSpec is a fully formed argv plus a human-readable label. Runner
// executes one to completion and reports a CommandResult. A non-zero exit is
// a normal result (Succeeded=false with the captured output); only failing to
// launch the binary at all is returned as an error, tagged with
// services.ErrExternalTool. Callers decide whether a failed step is fatal.
//
// Components depend on the Runner interface so tests can substitute a
// deterministic fake without invoking any real tool.
package ffmpeg
