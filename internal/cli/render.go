package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegraph/pkg/graph"
	"github.com/matzehuels/pipegraph/pkg/render/nodelink"
)

// Output formats supported by the render command.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

type renderOpts struct {
	sample      bool
	output      string
	format      string
	detailed    bool
	noHighlight bool
	scale       float64
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [snapshot.json|-]",
		Short: "Render a pipeline as a node-link diagram",
		Long: `Render draws a pipeline with Graphviz. Each node is a box with its target
ports on the left and source ports on the right; edges connect the ports
they attach to. Nodes and edges on a cycle are highlighted.

The format is taken from --format, then from the output file extension, and
defaults to svg. PDF and PNG require rsvg-convert.`,
		Example: `  pipegraph render pipeline.json -o pipeline.svg
  pipegraph render --sample -f dot
  pipegraph render pipeline.json -o pipeline.png --scale 3 --detailed`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.sample, "sample", false, "render the built-in sample pipeline")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, pdf, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node content under titles")
	cmd.Flags().BoolVar(&opts.noHighlight, "no-highlight", false, "do not highlight cycles")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2, "PNG scale factor")

	return cmd
}

func runRender(cmd *cobra.Command, args []string, opts renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	format, err := resolveFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	s, name, err := readSnapshot(cmd, args, opts.sample)
	if err != nil {
		return err
	}

	dotOpts := nodelink.Options{Detailed: opts.detailed}
	if !opts.noHighlight {
		dotOpts.Cycle = graph.FindCycle(s.NodeIDs(), s.Edges)
		if len(dotOpts.Cycle) > 0 {
			logger.Warn("pipeline has a cycle", "cycle", formatCycle(dotOpts.Cycle))
		}
	}

	prog := newProgress(logger)
	dot := nodelink.ToDOT(s, dotOpts)

	var data []byte
	switch format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG:
		data, err = nodelink.RenderSVG(ctx, dot)
	case formatPDF:
		data, err = nodelink.RenderPDF(ctx, dot)
	case formatPNG:
		data, err = nodelink.RenderPNG(ctx, dot, opts.scale)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}

	if err := writeOutput(cmd.OutOrStdout(), opts.output, data); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s as %s", name, format))
	if opts.output != "" && opts.output != "-" {
		printFile(cmd.ErrOrStderr(), opts.output)
	}
	return nil
}

// resolveFormat picks the output format from the flag or the file
// extension.
func resolveFormat(flag, output string) (string, error) {
	format := strings.ToLower(flag)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if format == "gv" {
			format = formatDOT
		}
	}
	switch format {
	case "":
		return formatSVG, nil
	case formatDOT, formatSVG, formatPDF, formatPNG:
		return format, nil
	}
	return "", fmt.Errorf("unsupported format %q (want dot, svg, pdf or png)", format)
}
