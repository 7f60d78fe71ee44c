// Package assembly joins located fragments into one continuous stream file.
//
// Fragments are captured as independent container segments, so the joined
// bytes usually carry broken timestamps. The Concatenator therefore appends
// the raw bytes to an intermediate file next to the requested output and runs
// a stream-copy repair pass through the ffmpeg Runner to regenerate
// presentation timestamps. The intermediate is always removed, whatever the
// outcome of the repair.
package assembly
