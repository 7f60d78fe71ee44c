// Package chunks discovers numbered capture fragments on disk.
//
// Fragments follow the convention {prefix}_{index}.{extension} with indices
// starting at 0. The Locator probes every index below the configured bound and
// returns the ones that exist as a Sequence ordered by index. Gaps are
// tolerated and reported through Sequence.Missing so callers can log them.
package chunks
