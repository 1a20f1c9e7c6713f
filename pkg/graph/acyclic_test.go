package graph

import (
	"fmt"
	"reflect"
	"testing"
)

func edges(pairs ...[2]string) []Edge {
	out := make([]Edge, len(pairs))
	for i, p := range pairs {
		out[i] = Edge{ID: fmt.Sprintf("e%d", i), Source: p[0], Target: p[1]}
	}
	return out
}

func TestIsAcyclic(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges []Edge
		want  bool
	}{
		{"empty", nil, nil, true},
		{"no edges", []string{"a", "b", "c"}, nil, true},
		{"self loop", []string{"a"}, edges([2]string{"a", "a"}), false},
		{"chain", []string{"a", "b", "c"}, edges([2]string{"a", "b"}, [2]string{"b", "c"}), true},
		{"back edge", []string{"a", "b", "c"}, edges([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"}), false},
		{"diamond", []string{"a", "b", "c", "d"}, edges([2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"b", "d"}, [2]string{"c", "d"}), true},
		{"parallel edges", []string{"a", "b"}, edges([2]string{"a", "b"}, [2]string{"a", "b"}), true},
		{"two cycle", []string{"a", "b"}, edges([2]string{"a", "b"}, [2]string{"b", "a"}), false},
		{"cycle in second component", []string{"a", "b", "c", "d"}, edges([2]string{"a", "b"}, [2]string{"c", "d"}, [2]string{"d", "c"}), false},
		{"dangling endpoint", []string{"a"}, edges([2]string{"a", "ghost"}), true},
		{"cycle through dangling node", []string{"a"}, edges([2]string{"a", "ghost"}, [2]string{"ghost", "a"}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAcyclic(tt.nodes, tt.edges); got != tt.want {
				t.Errorf("IsAcyclic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAcyclic_OrderIndependent(t *testing.T) {
	es := edges([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"}, [2]string{"d", "b"})
	reversed := make([]Edge, len(es))
	for i, e := range es {
		reversed[len(es)-1-i] = e
	}
	nodes := []string{"d", "c", "b", "a"}
	if IsAcyclic(nodes, es) || IsAcyclic(nodes, reversed) {
		t.Error("cycle b->c->d->b not detected for some ordering")
	}
}

func TestIsAcyclic_DeepChain(t *testing.T) {
	const n = 100000
	ids := make([]string, n)
	es := make([]Edge, 0, n)
	for i := range ids {
		ids[i] = fmt.Sprint(i)
		if i > 0 {
			es = append(es, Edge{Source: ids[i-1], Target: ids[i]})
		}
	}
	if !IsAcyclic(ids, es) {
		t.Fatal("long chain reported cyclic")
	}
	es = append(es, Edge{Source: ids[n-1], Target: ids[0]})
	if IsAcyclic(ids, es) {
		t.Fatal("long ring reported acyclic")
	}
}

func TestFindCycle(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges []Edge
		want  []string
	}{
		{"acyclic", []string{"a", "b"}, edges([2]string{"a", "b"}), nil},
		{"self loop", []string{"a"}, edges([2]string{"a", "a"}), []string{"a", "a"}},
		{"triangle", []string{"a", "b", "c"}, edges([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"}), []string{"a", "b", "c", "a"}},
		{"tail into cycle", []string{"x", "a", "b"}, edges([2]string{"x", "a"}, [2]string{"a", "b"}, [2]string{"b", "a"}), []string{"a", "b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindCycle(tt.nodes, tt.edges); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindCycle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAcyclic_BackEdgeOnDAG(t *testing.T) {
	g := samplePipelineGraph(t)
	if !IsAcyclic(g.NodeIDs(), g.Edges()) {
		t.Fatal("sample pipeline should be acyclic")
	}
	_, _ = g.AddEdge(Edge{ID: "a", Source: "2", SourceHandle: "response", Target: "4", TargetHandle: "4-input"})
	_, _ = g.AddEdge(Edge{ID: "b", Source: "4", SourceHandle: "output", Target: "2", TargetHandle: "prompt"})
	if IsAcyclic(g.NodeIDs(), g.Edges()) {
		t.Error("2 -> 4 -> 2 should be cyclic")
	}
}
