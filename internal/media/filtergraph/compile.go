package filtergraph

import "strings"

// Compile translates a graph into the engine's filter_complex syntax:
//
//	[0:v]scale=w=1080:h=1920[main_scaled];[main_scaled]drawtext=...[main_text];...
//
// Compile assumes a validated graph; callers validate before rendering.
func Compile(g Graph) string {
	var b strings.Builder
	for i, node := range g.Nodes {
		if i > 0 {
			b.WriteByte(';')
		}
		for _, input := range node.Inputs {
			b.WriteByte('[')
			b.WriteString(input)
			b.WriteByte(']')
		}
		b.WriteString(node.Op)
		for j, arg := range node.Args {
			if j == 0 {
				b.WriteByte('=')
			} else {
				b.WriteByte(':')
			}
			b.WriteString(arg.Key)
			b.WriteByte('=')
			b.WriteString(arg.Value)
		}
		b.WriteByte('[')
		b.WriteString(node.Output)
		b.WriteByte(']')
	}
	return b.String()
}
