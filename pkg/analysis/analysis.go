package analysis

import (
	"context"

	"github.com/matzehuels/pipegraph/pkg/graph"
)

// Result is the structural summary of a pipeline. Its JSON form is the
// response body of POST /pipelines/parse.
type Result struct {
	NumNodes int  `json:"num_nodes"`
	NumEdges int  `json:"num_edges"`
	IsDAG    bool `json:"is_dag"`
}

// Analyze summarizes a snapshot: node and edge counts plus whether the
// edges form a directed acyclic graph.
//
// The snapshot is taken at face value. Edges pointing at missing nodes are
// counted and traversed like any other; duplicate node ids are counted once
// per occurrence. Analyze is pure and never fails.
func Analyze(s graph.Snapshot) Result {
	return Result{
		NumNodes: len(s.Nodes),
		NumEdges: len(s.Edges),
		IsDAG:    graph.IsAcyclic(s.NodeIDs(), s.Edges),
	}
}

// AnalyzeGraph is Analyze over g's current snapshot.
func AnalyzeGraph(g *graph.Graph) Result {
	return Analyze(g.Snapshot())
}

// Analyzer produces an analysis result, possibly by calling another
// service. Implementations must be safe for concurrent use.
type Analyzer interface {
	Analyze(ctx context.Context, s graph.Snapshot) (Result, error)
}

// Local runs [Analyze] in process. It never returns an error.
type Local struct{}

// Analyze implements [Analyzer].
func (Local) Analyze(_ context.Context, s graph.Snapshot) (Result, error) {
	return Analyze(s), nil
}

var _ Analyzer = Local{}
