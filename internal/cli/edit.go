package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegraph/pkg/graph"
	pipeio "github.com/matzehuels/pipegraph/pkg/io"
)

var (
	editorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	editorCursorStyle = lipgloss.NewStyle().Foreground(colorCyan)
	editorVarStyle    = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// TemplateModel - Interactive template editing
// =============================================================================

// TemplateModel is the bubbletea model for editing a text node's template.
// Ports are re-resolved on every keystroke, so the view always shows the
// handles the editor would draw for the current text.
type TemplateModel struct {
	NodeID string
	Text   []rune
	Saved  bool
	Width  int
}

// NewTemplateModel creates a model editing text for the node with the given id.
func NewTemplateModel(nodeID, text string) TemplateModel {
	return TemplateModel{NodeID: nodeID, Text: []rune(text), Width: 60}
}

func (m TemplateModel) Init() tea.Cmd {
	return nil
}

func (m TemplateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlS:
			m.Saved = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.Text = append(m.Text, '\n')
		case tea.KeySpace:
			m.Text = append(m.Text, ' ')
		case tea.KeyTab:
			m.Text = append(m.Text, '\t')
		case tea.KeyBackspace:
			if len(m.Text) > 0 {
				m.Text = m.Text[:len(m.Text)-1]
			}
		case tea.KeyCtrlU:
			m.Text = m.Text[:0]
		case tea.KeyRunes:
			m.Text = append(m.Text, msg.Runes...)
		}
	case tea.WindowSizeMsg:
		m.Width = max(msg.Width-4, 20)
	}
	return m, nil
}

func (m TemplateModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Edit Template") + "  " + StyleDim.Render("node "+m.NodeID))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("type to edit  ctrl+s save  ctrl+u clear  esc cancel"))
	b.WriteString("\n\n")

	b.WriteString(editorBoxStyle.Width(m.Width).Render(string(m.Text) + editorCursorStyle.Render("█")))
	b.WriteString("\n\n")

	vars := graph.TemplateVariables(m.String())
	if len(vars) == 0 {
		b.WriteString(StyleDim.Render("No variables. Add {{name}} to create an input port."))
	} else {
		names := make([]string, len(vars))
		for i, v := range vars {
			names[i] = editorVarStyle.Render(v)
		}
		b.WriteString("Variables: " + strings.Join(names, ", "))
	}
	b.WriteString("\n")
	b.WriteString(portsTable(m.NodeID, graph.KindText, graph.Content{Text: m.String()}))
	b.WriteString("\n")

	return b.String()
}

// String returns the current template text.
func (m TemplateModel) String() string {
	return string(m.Text)
}

// =============================================================================
// Command
// =============================================================================

// editCommand creates the edit command.
func (c *CLI) editCommand() *cobra.Command {
	var nodeID string

	cmd := &cobra.Command{
		Use:   "edit [snapshot.json]",
		Short: "Edit a text node's template with live port preview",
		Long: `Edit opens an interactive editor for a text node's template. The ports the
template exposes are shown as you type.

With a snapshot file and --node, saving (ctrl+s) writes the new template back
to the file. Edges attached to variables that no longer exist are removed.
Without a file, the final template is printed to stdout.`,
		Example: `  pipegraph edit pipeline.json --node 4
  pipegraph edit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runEditScratch(cmd)
			}
			if nodeID == "" {
				return fmt.Errorf("--node is required when editing %s", args[0])
			}
			return runEditFile(cmd, args[0], nodeID)
		},
	}

	cmd.Flags().StringVar(&nodeID, "node", "", "id of the text node to edit")

	return cmd
}

func runTemplateEditor(cmd *cobra.Command, m TemplateModel) (TemplateModel, error) {
	p := tea.NewProgram(m,
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.ErrOrStderr()),
	)
	final, err := p.Run()
	if err != nil {
		return m, err
	}
	fm, ok := final.(TemplateModel)
	if !ok {
		return m, fmt.Errorf("unexpected model %T", final)
	}
	return fm, nil
}

func runEditScratch(cmd *cobra.Command) error {
	m, err := runTemplateEditor(cmd, NewTemplateModel("text-1", graph.DefaultTemplate))
	if err != nil {
		return err
	}
	if !m.Saved {
		printDetail(cmd.ErrOrStderr(), "Cancelled")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), m.String())
	return nil
}

func runEditFile(cmd *cobra.Command, path, nodeID string) error {
	s, err := pipeio.ImportSnapshot(path)
	if err != nil {
		return err
	}
	n, ok := findNode(s.Nodes, nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", graph.ErrNodeNotFound, nodeID)
	}
	if n.Type != graph.KindText {
		return fmt.Errorf("node %s is a %s node, only text nodes have templates", nodeID, n.Type)
	}

	m, err := runTemplateEditor(cmd, NewTemplateModel(nodeID, n.Data.Text))
	if err != nil {
		return err
	}
	out := cmd.ErrOrStderr()
	if !m.Saved {
		printDetail(out, "Cancelled, %s unchanged", path)
		return nil
	}

	updated, removed, err := applyTemplate(s, nodeID, m.String())
	if err != nil {
		return err
	}
	if err := pipeio.ExportSnapshot(updated, path); err != nil {
		return err
	}

	printSuccess(out, "Updated node %s", nodeID)
	for _, e := range removed {
		printDetail(out, "removed edge %s (%s no longer exists)", e.ID, e.TargetHandle)
	}
	printFile(out, path)
	return nil
}

// applyTemplate sets the text of a node in s and drops edges whose ports
// disappeared. Node positions are kept. The snapshot must satisfy every
// graph invariant.
func applyTemplate(s graph.Snapshot, nodeID, text string) (graph.Snapshot, []graph.Edge, error) {
	g, err := graph.FromSnapshot(s)
	if err != nil {
		return graph.Snapshot{}, nil, fmt.Errorf("snapshot is not a valid pipeline: %w", err)
	}

	out := graph.Snapshot{Nodes: make([]graph.NodeSpec, len(s.Nodes))}
	copy(out.Nodes, s.Nodes)

	var removed []graph.Edge
	for i := range out.Nodes {
		if out.Nodes[i].ID != nodeID {
			continue
		}
		content := out.Nodes[i].Data
		content.Text = text
		removed, err = g.UpdateNodeContent(nodeID, content)
		if err != nil {
			return graph.Snapshot{}, nil, err
		}
		out.Nodes[i].Data = content
	}
	out.Edges = g.Edges()
	return out, removed, nil
}
