// Package workflow runs one chunk reassembly from fragment discovery to the
// final muxed file.
//
// The Orchestrator is an explicit state machine:
//
//	Scanning -> ConcatenatingVideo -> ConcatenatingAudio -> TranscodingAudio -> Muxing -> Done
//
// with Failed as the second terminal state. Each state runs one step that
// reports success or failure, and a single policy table decides where each
// result leads. Video is mandatory, so a failed scan (no video fragments),
// video concatenation or mux ends in Failed. Audio is optional: a failed or
// skipped audio step degrades the run to video-only instead of aborting it.
//
// All intermediates live in a staging.Workspace that is removed when Run
// returns, whatever the outcome. Only environment problems (the workspace
// cannot be created, ffmpeg cannot be launched, the context is cancelled) are
// returned as errors; step failures are reported through the Outcome.
package workflow
