// Package encoding produces the final artifacts from concatenated streams.
//
// AudioTranscoder converts the joined audio stream into 16-bit PCM WAV. Muxer
// combines the joined video, the repaired audio stream (when present) and an
// optional SRT file
// into an H.264/AAC container with a soft mov_text subtitle track. Both build
// their argv from a Profile derived from configuration and execute it through
// the ffmpeg Runner, removing any partial output when the tool fails.
//
// The argv builders are exported so the exact command lines can be asserted
// in tests and printed by the CLI.
package encoding
