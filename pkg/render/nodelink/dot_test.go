package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/pipegraph/pkg/graph"
)

func TestToDOTSample(t *testing.T) {
	dot := ToDOT(graph.SamplePipeline(), Options{})

	for _, want := range []string{
		"digraph pipeline {",
		"rankdir=LR;",
		`"1" [label=<`,
		`"4" [label=<`,
		`"1":"value":e -> "2":"system":w;`,
		`PORT="4-input"`,
		`PORT="response"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("DOT not terminated")
	}
}

func TestToDOTUnknownHandle(t *testing.T) {
	s := graph.Snapshot{
		Nodes: []graph.NodeSpec{
			{ID: "a", Type: graph.KindInput},
			{ID: "b", Type: graph.KindOutput},
		},
		Edges: []graph.Edge{{ID: "e", Source: "a", SourceHandle: "nope", Target: "b", TargetHandle: "value"}},
	}
	dot := ToDOT(s, Options{})
	if !strings.Contains(dot, `"a" -> "b":"value":w;`) {
		t.Errorf("unknown handle should attach to the node\n%s", dot)
	}
}

func TestToDOTCycleHighlight(t *testing.T) {
	s := graph.Snapshot{
		Nodes: []graph.NodeSpec{
			{ID: "t1", Type: graph.KindTransform},
			{ID: "t2", Type: graph.KindTransform},
		},
		Edges: []graph.Edge{
			{ID: "a", Source: "t1", SourceHandle: "output", Target: "t2", TargetHandle: "input"},
			{ID: "b", Source: "t2", SourceHandle: "output", Target: "t1", TargetHandle: "input"},
		},
	}
	cycle := graph.FindCycle(s.NodeIDs(), s.Edges)
	dot := ToDOT(s, Options{Cycle: cycle})
	if got := strings.Count(dot, "penwidth=2"); got != 2 {
		t.Errorf("highlighted edges = %d, want 2", got)
	}
	if !strings.Contains(dot, `COLOR="`+cycleColor+`"`) {
		t.Error("cycle nodes not outlined")
	}
}

func TestToDOTEscapesLabels(t *testing.T) {
	s := graph.Snapshot{Nodes: []graph.NodeSpec{
		{ID: "n", Type: graph.KindText, Data: graph.Content{Label: "<b>&", Text: "{{x}} < y"}},
	}}
	dot := ToDOT(s, Options{Detailed: true})
	if strings.Contains(dot, "<b>&") {
		t.Error("label not escaped")
	}
	if !strings.Contains(dot, "&lt;b&gt;&amp;") {
		t.Errorf("escaped label missing\n%s", dot)
	}
	if !strings.Contains(dot, "{{x}} &lt; y") {
		t.Errorf("detailed summary missing\n%s", dot)
	}
}

func TestContentSummary(t *testing.T) {
	tests := []struct {
		name string
		node graph.NodeSpec
		want string
	}{
		{"input defaults", graph.NodeSpec{ID: "input-2", Type: graph.KindInput}, "input_2: Text"},
		{"output", graph.NodeSpec{ID: "3", Type: graph.KindOutput, Data: graph.Content{OutputName: "res", OutputType: "Image"}}, "res: Image"},
		{"http", graph.NodeSpec{ID: "h", Type: graph.KindHTTPCall, Data: graph.Content{URL: "https://x.io"}}, "GET https://x.io"},
		{"whitespace collapsed", graph.NodeSpec{ID: "t", Type: graph.KindText, Data: graph.Content{Text: "a\n\n  b"}}, "a b"},
		{"truncated", graph.NodeSpec{ID: "t", Type: graph.KindNote, Data: graph.Content{Text: strings.Repeat("x", 50)}}, strings.Repeat("x", 39) + "…"},
		{"filter", graph.NodeSpec{ID: "f", Type: graph.KindFilter}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := contentSummary(tt.node); got != tt.want {
				t.Errorf("contentSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte("<svg><g/></svg>")
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(graph.SamplePipeline(), Options{Detailed: true}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output is not SVG")
	}
}
