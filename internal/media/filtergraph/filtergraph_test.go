package filtergraph

import (
	"reflect"
	"strings"
	"testing"
)

func testParams() BuildParams {
	return BuildParams{
		Width:               1080,
		Height:              1920,
		FontFile:            "/assets/caption.ttf",
		FontSize:            64,
		TextTopOffset:       150,
		OverlayHeight:       300,
		OverlayBottomMargin: 50,
	}
}

func TestBuildShape(t *testing.T) {
	graph, terminal := Build("hello", testParams())

	if len(graph.Nodes) != 4 {
		t.Fatalf("node count = %d, want 4", len(graph.Nodes))
	}
	if terminal != NodeFinal {
		t.Fatalf("terminal = %q, want %q", terminal, NodeFinal)
	}
	if graph.Terminal() != NodeFinal {
		t.Fatalf("graph terminal = %q, want %q", graph.Terminal(), NodeFinal)
	}

	wantOps := []string{"scale", "drawtext", "scale", "overlay"}
	wantOutputs := []string{NodeMainScaled, NodeMainText, NodeOverlay, NodeFinal}
	for i, node := range graph.Nodes {
		if node.Op != wantOps[i] {
			t.Errorf("node %d op = %q, want %q", i, node.Op, wantOps[i])
		}
		if node.Output != wantOutputs[i] {
			t.Errorf("node %d output = %q, want %q", i, node.Output, wantOutputs[i])
		}
	}

	if err := graph.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	first, terminalA := Build("same caption", testParams())
	second, terminalB := Build("same caption", testParams())

	if terminalA != terminalB {
		t.Fatalf("terminals differ: %q vs %q", terminalA, terminalB)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical captions produced different graphs")
	}
}

func TestBuildDependencyShape(t *testing.T) {
	graph, _ := Build("caption", testParams())

	if got := graph.Nodes[0].Inputs; len(got) != 1 || got[0] != PrimaryInput {
		t.Fatalf("main scale inputs = %v", got)
	}
	if got := graph.Nodes[1].Inputs; len(got) != 1 || got[0] != NodeMainScaled {
		t.Fatalf("drawtext inputs = %v", got)
	}
	if got := graph.Nodes[2].Inputs; len(got) != 1 || got[0] != SecondaryInput {
		t.Fatalf("overlay scale inputs = %v", got)
	}
	if got := graph.Nodes[3].Inputs; len(got) != 2 || got[0] != NodeMainText || got[1] != NodeOverlay {
		t.Fatalf("composite inputs = %v", got)
	}
}

func TestValidateRejectsForwardReference(t *testing.T) {
	graph := Graph{Nodes: []Node{
		{Op: "scale", Inputs: []string{"later"}, Output: "early"},
		{Op: "scale", Inputs: []string{"0:v"}, Output: "later"},
	}}
	if err := graph.Validate(); err == nil {
		t.Fatal("expected forward reference to fail validation")
	}
}

func TestValidateRejectsDuplicateOutput(t *testing.T) {
	graph := Graph{Nodes: []Node{
		{Op: "scale", Inputs: []string{"0:v"}, Output: "a"},
		{Op: "scale", Inputs: []string{"0:v"}, Output: "a"},
	}}
	if err := graph.Validate(); err == nil {
		t.Fatal("expected duplicate output to fail validation")
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	captions := []string{
		"plain words",
		"it's got an apostrophe",
		`back\slash`,
		"time: 10:30",
		"100% effort",
		"semi;colon and [brackets] and a=b, plus trailing quote'",
		"'::\\''",
		"",
	}
	for _, caption := range captions {
		escaped := EscapeText(caption)
		if got := UnescapeText(escaped); got != caption {
			t.Errorf("round trip of %q: escaped %q, unescaped %q", caption, escaped, got)
		}
	}
}

// filterToken consumes one filter argument from s the way the engine's
// option tokenizer does: a backslash escapes the next character, a
// single-quoted run is taken literally with no backslash processing inside
// it, and an unescaped byte from term ends the token. stop reports which
// terminator ended the token, or zero at end of input.
func filterToken(s, term string) (token, rest string, stop byte) {
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if strings.IndexByte(term, c) >= 0 {
			return b.String(), s[i+1:], c
		}
		switch {
		case c == '\\' && i+1 < len(s):
			b.WriteByte(s[i+1])
			i += 2
		case c == '\'':
			i++
			for i < len(s) && s[i] != '\'' {
				b.WriteByte(s[i])
				i++
			}
			if i < len(s) {
				i++
			}
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), "", 0
}

// drawtextArgs extracts the drawtext node from a compiled graph and
// tokenizes its arguments up to the node's output label.
func drawtextArgs(t *testing.T, compiled string) []string {
	t.Helper()
	start := strings.Index(compiled, "drawtext=")
	if start < 0 {
		t.Fatalf("no drawtext node in %s", compiled)
	}
	raw := compiled[start+len("drawtext="):]
	var args []string
	for {
		tok, rest, stop := filterToken(raw, ":[")
		args = append(args, tok)
		if stop != ':' {
			return args
		}
		raw = rest
	}
}

func TestCaptionQuotesDoNotSplitDrawtextArgs(t *testing.T) {
	captions := []string{
		"it's got an apostrophe",
		"'; drawtext=text=owned [",
		"time: 10:30",
		`back\slash'`,
	}
	wantTail := []string{
		"fontfile=/assets/caption.ttf",
		"fontsize=64",
		"fontcolor=white",
		"x=(w-text_w)/2",
		"y=150",
	}
	for _, caption := range captions {
		graph, _ := Build(caption, testParams())
		args := drawtextArgs(t, Compile(graph))

		if len(args) != 1+len(wantTail) {
			t.Fatalf("caption %q split drawtext into %d args: %v", caption, len(args), args)
		}
		if got := args[0]; got != "text="+caption {
			t.Errorf("caption %q arrived as %q", caption, got)
		}
		for i, want := range wantTail {
			if args[1+i] != want {
				t.Errorf("caption %q corrupted arg %d: got %q, want %q", caption, 1+i, args[1+i], want)
			}
		}
	}
}

func TestCompileOutput(t *testing.T) {
	graph, terminal := Build("go time", testParams())
	compiled := Compile(graph)

	want := "[0:v]scale=w=1080:h=1920[main_scaled];" +
		"[main_scaled]drawtext=text=go time:fontfile=/assets/caption.ttf:fontsize=64:fontcolor=white:x=(w-text_w)/2:y=150[main_text];" +
		"[1:v]scale=w=-1:h=300[ss_scaled];" +
		"[main_text][ss_scaled]overlay=x=0:y=main_h-overlay_h-50[final]"
	if compiled != want {
		t.Fatalf("compiled graph mismatch\n got: %s\nwant: %s", compiled, want)
	}
	if !strings.HasSuffix(compiled, "["+terminal+"]") {
		t.Fatalf("compiled graph does not end at terminal %q: %s", terminal, compiled)
	}
}
