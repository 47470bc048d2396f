// Package engine wraps the ffmpeg/ffprobe invocations clipper needs:
// stream-copy segmenting, filter-graph rendering, and media probing.
// Binary paths are injected at construction so nothing in the process
// depends on mutable global engine state.
package engine
