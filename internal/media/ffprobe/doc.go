// Package ffprobe decodes the JSON report of `ffprobe -show_format
// -show_streams` into the handful of fields chunkmux checks after a mux:
// stream counts per kind, subtitle language tags, and container duration.
package ffprobe
