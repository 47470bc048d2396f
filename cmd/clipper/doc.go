// Package main hosts the clipper CLI entrypoint and command graph.
//
// The Cobra-based command tree covers synchronous local processing, queue
// maintenance, daemon status inspection over the HTTP API, and configuration
// scaffolding. It centralizes configuration resolution so subcommands can
// focus on user experience instead of wiring.
package main
