package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegraph/pkg/graph"
)

type portsOpts struct {
	sample  bool
	node    string
	kind    string
	text    string
	jsonOut bool
}

// nodePorts is the JSON form of one node's ports.
type nodePorts struct {
	ID     string       `json:"id"`
	Type   graph.Kind   `json:"type"`
	Ports  []graph.Port `json:"ports"`
	Layout graph.Layout `json:"layout"`
}

// portsCommand creates the ports command.
func (c *CLI) portsCommand() *cobra.Command {
	var opts portsOpts

	cmd := &cobra.Command{
		Use:   "ports [snapshot.json|-]",
		Short: "Show the ports of pipeline nodes and where they sit",
		Long: `Ports lists each node's ports as the editor derives them from the node's
kind and content, with the side and offset each port is drawn at.

Without a snapshot, --kind and --text describe a single throwaway node, which
is handy for checking which variables a template exposes.`,
		Example: `  pipegraph ports pipeline.json
  pipegraph ports --sample --node 4
  pipegraph ports --kind text --text "Summarize {{doc}} for {{audience}}"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPorts(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.sample, "sample", false, "use the built-in sample pipeline")
	cmd.Flags().StringVar(&opts.node, "node", "", "only show this node")
	cmd.Flags().StringVar(&opts.kind, "kind", "", "describe a single node of this kind")
	cmd.Flags().StringVar(&opts.text, "text", "", "template text for --kind text")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print ports as JSON")

	return cmd
}

func runPorts(cmd *cobra.Command, args []string, opts portsOpts) error {
	var nodes []graph.NodeSpec
	if opts.kind != "" {
		kind, err := graph.ParseKind(opts.kind)
		if err != nil {
			return err
		}
		nodes = []graph.NodeSpec{{ID: "node", Type: kind, Data: graph.Content{Text: opts.text}}}
	} else {
		s, _, err := readSnapshot(cmd, args, opts.sample)
		if err != nil {
			return err
		}
		nodes = s.Nodes
	}

	if opts.node != "" {
		n, ok := findNode(nodes, opts.node)
		if !ok {
			return fmt.Errorf("%w: %s", graph.ErrNodeNotFound, opts.node)
		}
		nodes = []graph.NodeSpec{n}
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		return writePortsJSON(out, nodes)
	}
	for i, n := range nodes {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, nodeHeading(n))
		fmt.Fprintln(out, portsTable(n.ID, n.Type, n.Data))
	}
	return nil
}

func writePortsJSON(w io.Writer, nodes []graph.NodeSpec) error {
	list := make([]nodePorts, 0, len(nodes))
	for _, n := range nodes {
		ports := graph.ResolvePorts(n.ID, n.Type, n.Data)
		list = append(list, nodePorts{
			ID:     n.ID,
			Type:   n.Type,
			Ports:  ports,
			Layout: graph.AssignLayout(ports),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}

func findNode(nodes []graph.NodeSpec, id string) (graph.NodeSpec, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return graph.NodeSpec{}, false
}
