package graph

import "fmt"

// Snapshot is the serialized form of a pipeline as exchanged with the
// editor:
//
//	{
//	  "nodes": [{"id": "1", "type": "customInput", "data": {"inputName": "q"}}],
//	  "edges": [{"id": "e1-2", "source": "1", "sourceHandle": "value",
//	             "target": "2", "targetHandle": "system"}]
//	}
//
// A snapshot is plain data. It may hold edges that reference missing nodes
// or ports; analysis counts and traverses them as given.
type Snapshot struct {
	Nodes []NodeSpec `json:"nodes"`
	Edges []Edge     `json:"edges"`
}

// NodeSpec is the serialized form of a node. Ports are not serialized; they
// are recomputed from Type and Data.
type NodeSpec struct {
	ID       string    `json:"id"`
	Type     Kind      `json:"type"`
	Data     Content   `json:"data"`
	Position *Position `json:"position,omitempty"`
}

// Position is the canvas position of a node. It is carried through
// snapshots untouched and plays no role in validation.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeIDs returns the ids of the snapshot's nodes in order.
func (s Snapshot) NodeIDs() []string {
	ids := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Snapshot serializes the graph. Nodes appear in insertion order.
func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{
		Nodes: make([]NodeSpec, 0, len(g.order)),
		Edges: g.Edges(),
	}
	for _, id := range g.order {
		n := g.nodes[id]
		s.Nodes = append(s.Nodes, NodeSpec{ID: n.ID, Type: n.Kind, Data: n.Content})
	}
	return s
}

// FromSnapshot builds a graph from a snapshot, enforcing every graph
// invariant. Unlike analysis, which accepts snapshots at face value, this
// fails on the first invalid node or edge (duplicate id, unknown kind,
// dangling or mismatched edge).
func FromSnapshot(s Snapshot) (*Graph, error) {
	g := New()
	for i, n := range s.Nodes {
		if err := g.AddNode(n.ID, n.Type, n.Data); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
	}
	for i, e := range s.Edges {
		if _, err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}
	return g, nil
}
