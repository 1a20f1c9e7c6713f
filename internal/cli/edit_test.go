package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/pipegraph/pkg/graph"
)

func press(m TemplateModel, msgs ...tea.Msg) (TemplateModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(TemplateModel)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTemplateModelTyping(t *testing.T) {
	m := NewTemplateModel("4", "")
	m, cmd := press(m,
		runes("Hi"),
		tea.KeyMsg{Type: tea.KeySpace},
		runes("{{name}}x"),
		tea.KeyMsg{Type: tea.KeyBackspace},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	if cmd != nil {
		t.Error("typing should not return a command")
	}
	if got, want := m.String(), "Hi {{name}}\n"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}

	view := m.View()
	for _, want := range []string{"Variables:", "name", "4-name", "output"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTemplateModelClearAndBackspace(t *testing.T) {
	m := NewTemplateModel("4", "abc")
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlU}, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.String() != "" {
		t.Errorf("text = %q, want empty", m.String())
	}
	if !strings.Contains(m.View(), "No variables") {
		t.Error("view should say there are no variables")
	}
}

func TestTemplateModelSaveAndCancel(t *testing.T) {
	tests := []struct {
		name      string
		key       tea.KeyType
		wantSaved bool
	}{
		{"ctrl+s saves", tea.KeyCtrlS, true},
		{"esc cancels", tea.KeyEsc, false},
		{"ctrl+c cancels", tea.KeyCtrlC, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cmd := press(NewTemplateModel("4", "{{input}}"), tea.KeyMsg{Type: tt.key})
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("command should quit the program")
			}
			if m.Saved != tt.wantSaved {
				t.Errorf("Saved = %v, want %v", m.Saved, tt.wantSaved)
			}
		})
	}
}

func TestTemplateModelWindowSize(t *testing.T) {
	m, _ := press(NewTemplateModel("4", ""), tea.WindowSizeMsg{Width: 100, Height: 40})
	if m.Width != 96 {
		t.Errorf("Width = %d, want 96", m.Width)
	}
	m, _ = press(m, tea.WindowSizeMsg{Width: 10, Height: 40})
	if m.Width != 20 {
		t.Errorf("Width = %d, want minimum 20", m.Width)
	}
}

func TestApplyTemplate(t *testing.T) {
	s := graph.Snapshot{
		Nodes: []graph.NodeSpec{
			{ID: "1", Type: graph.KindInput, Position: &graph.Position{X: 10, Y: 20}},
			{ID: "4", Type: graph.KindText, Data: graph.Content{Text: "{{input}} and {{tone}}", Label: "Prompt"}},
		},
		Edges: []graph.Edge{
			{ID: "a", Source: "1", SourceHandle: "value", Target: "4", TargetHandle: "4-input"},
			{ID: "b", Source: "1", SourceHandle: "value", Target: "4", TargetHandle: "4-tone"},
		},
	}

	out, removed, err := applyTemplate(s, "4", "only {{tone}}")
	if err != nil {
		t.Fatalf("applyTemplate() error: %v", err)
	}
	if len(removed) != 1 || removed[0].ID != "a" {
		t.Errorf("removed = %+v, want edge a", removed)
	}
	if len(out.Edges) != 1 || out.Edges[0].ID != "b" {
		t.Errorf("edges = %+v, want only b", out.Edges)
	}
	if got := out.Nodes[1].Data; got.Text != "only {{tone}}" || got.Label != "Prompt" {
		t.Errorf("node data = %+v", got)
	}
	if out.Nodes[0].Position == nil || out.Nodes[0].Position.X != 10 {
		t.Error("positions should be kept")
	}
	if s.Nodes[1].Data.Text != "{{input}} and {{tone}}" {
		t.Error("input snapshot must not be modified")
	}
}

func TestApplyTemplateInvalidSnapshot(t *testing.T) {
	s := graph.Snapshot{
		Nodes: []graph.NodeSpec{{ID: "4", Type: graph.KindText}},
		Edges: []graph.Edge{{ID: "x", Source: "ghost", SourceHandle: "value", Target: "4", TargetHandle: "4-input"}},
	}
	if _, _, err := applyTemplate(s, "4", "{{input}}"); err == nil {
		t.Error("applyTemplate() should reject a snapshot with dangling edges")
	}
}
