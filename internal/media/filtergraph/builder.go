package filtergraph

import "strconv"

// Node and stream names used by the caption/overlay graph.
const (
	PrimaryInput   = "0:v"
	SecondaryInput = "1:v"

	NodeMainScaled = "main_scaled"
	NodeMainText   = "main_text"
	NodeOverlay    = "ss_scaled"
	NodeFinal      = "final"
)

// BuildParams carries the fixed rendering parameters. Everything except the
// caption comes from configuration, not from request input.
type BuildParams struct {
	Width               int
	Height              int
	FontFile            string
	FontSize            int
	TextTopOffset       int
	OverlayHeight       int
	OverlayBottomMargin int
}

// Build produces the four-node graph that renders one segment:
// scale the primary input to the vertical target, draw the caption over it,
// scale the secondary overlay clip, and composite the overlay bottom-left.
// It returns the graph and the terminal node name the renderer must map.
// Build is pure: the same caption and params always produce the same graph.
func Build(caption string, p BuildParams) (Graph, string) {
	graph := Graph{Nodes: []Node{
		{
			Op: "scale",
			Args: []Arg{
				{Key: "w", Value: strconv.Itoa(p.Width)},
				{Key: "h", Value: strconv.Itoa(p.Height)},
			},
			Inputs: []string{PrimaryInput},
			Output: NodeMainScaled,
		},
		{
			Op: "drawtext",
			Args: []Arg{
				// The text value is emitted unquoted: inside a quoted run the
				// engine's tokenizer takes backslashes literally, so a caption
				// quote escaped as \' would still close the run. Bare
				// backslash escapes are processed everywhere else.
				{Key: "text", Value: EscapeText(caption)},
				{Key: "fontfile", Value: p.FontFile},
				{Key: "fontsize", Value: strconv.Itoa(p.FontSize)},
				{Key: "fontcolor", Value: "white"},
				{Key: "x", Value: "(w-text_w)/2"},
				{Key: "y", Value: strconv.Itoa(p.TextTopOffset)},
			},
			Inputs: []string{NodeMainScaled},
			Output: NodeMainText,
		},
		{
			Op: "scale",
			Args: []Arg{
				{Key: "w", Value: "-1"},
				{Key: "h", Value: strconv.Itoa(p.OverlayHeight)},
			},
			Inputs: []string{SecondaryInput},
			Output: NodeOverlay,
		},
		{
			Op: "overlay",
			Args: []Arg{
				{Key: "x", Value: "0"},
				{Key: "y", Value: "main_h-overlay_h-" + strconv.Itoa(p.OverlayBottomMargin)},
			},
			Inputs: []string{NodeMainText, NodeOverlay},
			Output: NodeFinal,
		},
	}}
	return graph, NodeFinal
}
