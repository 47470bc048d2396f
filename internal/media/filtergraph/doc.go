// Package filtergraph models the media engine's filter graph as data.
//
// A Graph is an ordered list of named nodes; each node consumes raw input
// streams or the outputs of earlier nodes and produces one named output.
// Build constructs the fixed four-node caption/overlay graph the renderer
// uses, and Compile translates a graph into ffmpeg filter_complex syntax.
// Keeping construction declarative and translation separate confines the
// injection-prone text assembly to one boundary, and caption text passes
// through EscapeText before it can reach that boundary.
package filtergraph
