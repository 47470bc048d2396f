package filtergraph

import (
	"fmt"
	"regexp"
)

// Arg is one key/value parameter of a node. Order is preserved so compiled
// output is deterministic.
type Arg struct {
	Key   string
	Value string
}

// Node is one processing operation in the graph.
type Node struct {
	Op     string
	Args   []Arg
	Inputs []string
	Output string
}

// Graph is an ordered sequence of nodes. Node inputs may reference raw input
// streams ("0:v", "1:v") or the output of an earlier node.
type Graph struct {
	Nodes []Node
}

var rawInputPattern = regexp.MustCompile(`^\d+:[a-z]$`)

// Validate checks the graph invariants: every node has an output name,
// output names are unique, and every input resolves to a raw input stream or
// an already-declared node output. Forward references and cycles are
// impossible in a graph that validates.
func (g Graph) Validate() error {
	declared := make(map[string]struct{}, len(g.Nodes))
	for i, node := range g.Nodes {
		if node.Op == "" {
			return fmt.Errorf("node %d: missing operation", i)
		}
		if node.Output == "" {
			return fmt.Errorf("node %d (%s): missing output name", i, node.Op)
		}
		if _, exists := declared[node.Output]; exists {
			return fmt.Errorf("node %d (%s): duplicate output %q", i, node.Op, node.Output)
		}
		if len(node.Inputs) == 0 {
			return fmt.Errorf("node %d (%s): no inputs", i, node.Op)
		}
		for _, input := range node.Inputs {
			if rawInputPattern.MatchString(input) {
				continue
			}
			if _, ok := declared[input]; !ok {
				return fmt.Errorf("node %d (%s): input %q does not resolve to a raw stream or earlier node", i, node.Op, input)
			}
		}
		declared[node.Output] = struct{}{}
	}
	return nil
}

// Terminal returns the output name of the last node, or "" for an empty graph.
func (g Graph) Terminal() string {
	if len(g.Nodes) == 0 {
		return ""
	}
	return g.Nodes[len(g.Nodes)-1].Output
}
