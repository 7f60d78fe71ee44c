// Package config loads chunkmux settings from TOML.
//
// Defaults cover every key, so a missing file is valid. Load expands ~ in
// path settings, lower-cases enumerations such as logging.format, applies
// the CHUNKMUX_FFMPEG override, and rejects unknown keys. Command line path
// flags are layered on afterwards with ApplyOverrides.
package config
