// Package staging owns the per-run scratch workspace.
//
// Each run gets a fresh chunkmux-* directory under the configured work
// directory (or the system temp directory). Intermediates live there and the
// whole tree is removed when the run ends, whatever its outcome. Directories
// left by runs that were killed before cleanup are reclaimed by CleanStale.
package staging
