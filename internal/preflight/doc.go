// Package preflight provides readiness checks for the binaries and
// filesystem paths chunkmux depends on.
//
// These checks run in two contexts:
//   - The run command calls RunAll before touching any fragment and aborts
//     when a required check fails, so an environment problem is reported as
//     such instead of as a failed pipeline step.
//   - The CLI "chunkmux check" command renders every result as a table.
//
// Optional checks (audio fragments, ffprobe when verification is disabled)
// are reported but never block a run.
package preflight
