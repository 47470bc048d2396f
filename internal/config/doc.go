// Package config loads, normalizes, and validates clipper configuration.
//
// Configuration lives in a TOML file (default ~/.config/clipper/config.toml)
// and is grouped by subsystem:
//   - Paths: working/scratch directories, log directory, API bind address,
//     and the static assets the renderer needs (overlay clip, caption font)
//   - Transcription: external transcription service credentials and polling
//   - FFmpeg: explicit engine binaries and fixed rendering parameters
//   - Workflow: daemon polling intervals, heartbeats, and segment workers
//   - Logging: log format and level
package config
