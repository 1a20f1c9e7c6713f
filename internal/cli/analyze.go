package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegraph/pkg/analysis"
)

// errNotDAG is returned by `analyze --strict` for cyclic pipelines.
var errNotDAG = errors.New("pipeline contains a cycle")

type analyzeOpts struct {
	sample  bool
	remote  string
	noCache bool
	jsonOut bool
	strict  bool
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze [snapshot.json|-]",
		Short: "Count nodes and edges and check a pipeline for cycles",
		Long: `Analyze reads an editor snapshot and reports its node and edge counts and
whether it is a directed acyclic graph. When it is not, one cycle is shown.

With --remote (or analysis.remote_url in the config) the snapshot is sent to
an analysis service; if that fails the result is computed locally.`,
		Example: `  pipegraph analyze pipeline.json
  pipegraph analyze --sample --json
  cat pipeline.json | pipegraph analyze - --strict`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.sample, "sample", false, "analyze the built-in sample pipeline")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "analysis service URL (overrides analysis.remote_url)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable result caching")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit non-zero when the pipeline has a cycle")

	return cmd
}

func (c *CLI) runAnalyze(cmd *cobra.Command, args []string, opts analyzeOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.config()
	if err != nil {
		return err
	}
	s, name, err := readSnapshot(cmd, args, opts.sample)
	if err != nil {
		return err
	}

	store, err := c.newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer closeCache(logger, store)

	remote := opts.remote
	if remote == "" {
		remote = cfg.Analysis.RemoteURL
	}
	runner := c.newRunner(cfg, store, remote)

	prog := newProgress(logger)
	rep, err := runner.Run(ctx, s)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Analyzed %s", name))

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		printReport(out, name, rep)
	}

	if opts.strict && !rep.IsDAG {
		return errNotDAG
	}
	return nil
}

// printReport prints an analysis report for humans.
func printReport(w io.Writer, name string, rep analysis.Report) {
	fmt.Fprintln(w, StyleTitle.Render("Pipeline")+" "+StyleDim.Render(name))
	printKeyValue(w, "Nodes", strconv.Itoa(rep.NumNodes))
	printKeyValue(w, "Edges", strconv.Itoa(rep.NumEdges))
	printKeyValue(w, "Source", sourceLabel(rep.Source))
	fmt.Fprintln(w)

	if rep.IsDAG {
		printSuccess(w, "Pipeline is a DAG")
	} else {
		printError(w, "Pipeline is not a DAG")
		if len(rep.Cycle) > 0 {
			printDetail(w, "cycle: %s", formatCycle(rep.Cycle))
		}
	}
	if rep.Fallback != "" {
		printWarning(w, "Remote analysis failed, result computed locally")
		printDetail(w, "%s", rep.Fallback)
	}
}
