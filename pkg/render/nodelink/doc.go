// Package nodelink renders pipeline graphs as node-link diagrams.
//
// # Usage
//
// Convert a snapshot to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(snapshot, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)
//
// # Layout
//
// Diagrams flow left to right (rankdir=LR), matching the editor where target
// handles sit on the left edge of a node and source handles on the right.
// Every node is an HTML-like table whose rows are its ports, so an edge from
// 1.value to 2.system is drawn between those two cells. Passing the result
// of [graph.FindCycle] in [Options].Cycle outlines the offending nodes and
// edges in red.
//
// # Dependencies
//
// SVG rendering runs Graphviz in-process via [github.com/goccy/go-graphviz].
// PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
