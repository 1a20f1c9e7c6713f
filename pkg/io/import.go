package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/pipegraph/pkg/graph"
)

// ErrEmptySnapshot is returned when the input holds no JSON value.
var ErrEmptySnapshot = errors.New("empty snapshot")

// ReadSnapshot decodes an editor snapshot from r.
//
// The snapshot is taken at face value: unknown node types, duplicate ids and
// edges that reference missing nodes are all kept, so that analysis sees
// exactly what the editor sent. Unknown JSON fields (selection state,
// widths, ...) are ignored. Missing "nodes" or "edges" arrays decode as
// empty. Use [ReadGraph] when the graph invariants must hold.
//
// ReadSnapshot does not close r.
func ReadSnapshot(r io.Reader) (graph.Snapshot, error) {
	var s graph.Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return graph.Snapshot{}, ErrEmptySnapshot
		}
		return graph.Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	if s.Nodes == nil {
		s.Nodes = []graph.NodeSpec{}
	}
	if s.Edges == nil {
		s.Edges = []graph.Edge{}
	}
	return s, nil
}

// ReadGraph decodes a snapshot and builds a graph from it, failing on the
// first node or edge that breaks a graph invariant. Errors wrap the graph
// package sentinels (graph.ErrInvalidEdge, graph.ErrDuplicateNodeID, ...).
func ReadGraph(r io.Reader) (*graph.Graph, error) {
	s, err := ReadSnapshot(r)
	if err != nil {
		return nil, err
	}
	return graph.FromSnapshot(s)
}

// ImportSnapshot reads the snapshot file at path. See [ReadSnapshot].
func ImportSnapshot(path string) (graph.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return graph.Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	s, err := ReadSnapshot(f)
	if err != nil {
		return graph.Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ImportGraph reads the snapshot file at path into a validated graph.
func ImportGraph(path string) (*graph.Graph, error) {
	s, err := ImportSnapshot(path)
	if err != nil {
		return nil, err
	}
	g, err := graph.FromSnapshot(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
