package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pipegraph/pkg/graph"
	"github.com/matzehuels/pipegraph/pkg/render"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the node's content summary (field name, template,
	// prompt, URL) under its title.
	Detailed bool

	// Cycle highlights these node ids, typically the output of
	// [graph.FindCycle].
	Cycle []string
}

var kindColors = map[graph.Kind]string{
	graph.KindInput:     "#dbeafe",
	graph.KindOutput:    "#dcfce7",
	graph.KindModelCall: "#ede9fe",
	graph.KindText:      "#fef9c3",
	graph.KindDatabase:  "#fee2e2",
	graph.KindTransform: "#e0f2fe",
	graph.KindFilter:    "#ffedd5",
	graph.KindHTTPCall:  "#f3e8ff",
	graph.KindNote:      "#f5f5f4",
}

const (
	defaultColor = "#e5e7eb"
	cycleColor   = "#dc2626"
)

// ToDOT converts a pipeline snapshot to Graphviz DOT.
//
// Each node becomes an HTML-like table: a title row, then one row per port
// with target ports on the left and source ports on the right. Edges attach
// to the cells of their source and target handles. Ports are resolved from
// node content, so the snapshot's own port lists are not needed. Edges whose
// handle is unknown attach to the node itself.
func ToDOT(s graph.Snapshot, opts Options) string {
	inCycle := make(map[string]bool, len(opts.Cycle))
	for _, id := range opts.Cycle {
		inCycle[id] = true
	}

	ports := make(map[string][]graph.Port, len(s.Nodes))
	var buf bytes.Buffer
	buf.WriteString("digraph pipeline {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=plain, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range s.Nodes {
		ps := graph.ResolvePorts(n.ID, n.Type, n.Data)
		ports[n.ID] = ps
		fmt.Fprintf(&buf, "  %q [label=<%s>];\n", n.ID, nodeTable(n, ps, opts.Detailed, inCycle[n.ID]))
	}

	buf.WriteString("\n")
	for _, e := range s.Edges {
		attrs := ""
		if inCycle[e.Source] && inCycle[e.Target] {
			attrs = fmt.Sprintf(" [color=%q, penwidth=2]", cycleColor)
		}
		fmt.Fprintf(&buf, "  %s -> %s%s;\n",
			endpoint(e.Source, e.SourceHandle, "e", ports),
			endpoint(e.Target, e.TargetHandle, "w", ports),
			attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func endpoint(nodeID, handle, compass string, ports map[string][]graph.Port) string {
	for _, p := range ports[nodeID] {
		if p.ID == handle {
			return fmt.Sprintf("%q:%q:%s", nodeID, handle, compass)
		}
	}
	return strconv.Quote(nodeID)
}

func nodeTable(n graph.NodeSpec, ports []graph.Port, detailed, highlight bool) string {
	color, ok := kindColors[n.Type]
	if !ok {
		color = defaultColor
	}
	border := "#6b7280"
	if highlight {
		border = cycleColor
	}

	var targets, sources []graph.Port
	for _, p := range ports {
		if p.Direction == graph.Target {
			targets = append(targets, p)
		} else {
			sources = append(sources, p)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<TABLE BORDER="1" CELLBORDER="0" CELLSPACING="0" CELLPADDING="4" COLOR="%s" BGCOLOR="white">`, border)
	fmt.Fprintf(&b, `<TR><TD COLSPAN="2" BGCOLOR="%s">%s</TD></TR>`, color, title(n, detailed))
	for i := range max(len(targets), len(sources)) {
		b.WriteString("<TR>")
		b.WriteString(portCell(targets, i, "LEFT"))
		b.WriteString(portCell(sources, i, "RIGHT"))
		b.WriteString("</TR>")
	}
	b.WriteString("</TABLE>")
	return b.String()
}

func title(n graph.NodeSpec, detailed bool) string {
	name := n.Type.Title()
	if n.Data.Label != "" {
		name = n.Data.Label
	}
	out := "<B>" + html.EscapeString(name) + "</B><BR/>" +
		`<FONT POINT-SIZE="9" COLOR="#6b7280">` + html.EscapeString(n.ID) + "</FONT>"
	if detailed {
		if summary := contentSummary(n); summary != "" {
			out += `<BR/><FONT POINT-SIZE="10"><I>` + html.EscapeString(summary) + "</I></FONT>"
		}
	}
	return out
}

func portCell(ports []graph.Port, i int, align string) string {
	if i >= len(ports) {
		return "<TD></TD>"
	}
	p := ports[i]
	label := p.Label
	if label == "" {
		label = p.ID
	}
	return fmt.Sprintf(`<TD PORT="%s" ALIGN="%s">%s</TD>`, html.EscapeString(p.ID), align, html.EscapeString(label))
}

const maxSummary = 40

func contentSummary(n graph.NodeSpec) string {
	c := graph.DefaultContent(n.ID, n.Type, n.Data)
	var s string
	switch n.Type {
	case graph.KindInput:
		s = c.InputName + ": " + c.InputType
	case graph.KindOutput:
		s = c.OutputName + ": " + c.OutputType
	case graph.KindText, graph.KindNote:
		s = c.Text
	case graph.KindModelCall:
		s = c.Prompt
	case graph.KindHTTPCall:
		s = strings.TrimSpace(c.Method + " " + c.URL)
	}
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxSummary {
		s = string(r[:maxSummary-1]) + "…"
	}
	return s
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg element with a plain
// viewBox so the image scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders DOT source as PDF via SVG. Requires rsvg-convert.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via SVG. Requires rsvg-convert.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
