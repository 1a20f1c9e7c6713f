// Package render turns pipeline graphs into pictures.
//
// The [nodelink] subpackage emits Graphviz DOT with one HTML-table node per
// pipeline node and one cell per port, so edges attach to the exact handle
// they use in the editor. [ToPDF] and [ToPNG] convert the resulting SVG with
// the external rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(snapshot, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [nodelink]: github.com/matzehuels/pipegraph/pkg/render/nodelink
package render
