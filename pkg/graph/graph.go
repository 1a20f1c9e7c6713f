package graph

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownKind is returned by [ParseKind] and [Graph.AddNode] for node
	// types that are not one of [Kinds].
	ErrUnknownKind = errors.New("unknown node kind")

	// ErrNodeNotFound is returned by operations addressing a node ID that is
	// not in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound is returned by [Graph.RemoveEdge] for an unknown edge ID.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrInvalidEdge is returned by [Graph.AddEdge] when an endpoint node or
	// port does not exist, when the ports' directions do not match (the source
	// end must be a source port, the target end a target port), or when an
	// edge with the same ID already exists. The graph is left unchanged.
	ErrInvalidEdge = errors.New("invalid edge")
)

// Node is a processing step in a pipeline. Ports and Layout are derived from
// Kind and Content and are recomputed whenever the content changes.
type Node struct {
	ID      string
	Kind    Kind
	Content Content
	Ports   []Port
	Layout  Layout
}

// Port returns the node's port with the given id.
func (n Node) Port(id string) (Port, bool) { return findPort(n.Ports, id) }

// Edge connects a source port on one node to a target port on another.
// JSON field names follow the editor's snapshot format.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle"`
}

// EdgeID builds the identifier the editor assigns to a new connection.
func EdgeID(source, sourceHandle, target, targetHandle string) string {
	return "reactflow__edge-" + source + sourceHandle + "-" + target + targetHandle
}

// Graph is an editable pipeline: a set of nodes keyed by ID plus a list of
// edges between their ports.
//
// Every mutating method either succeeds completely or leaves the graph
// unchanged. After any successful mutation all edges reference existing
// nodes and ports with matching directions.
//
// The zero value is not usable; use [New]. Graph is not safe for concurrent
// use without external synchronization.
type Graph struct {
	nodes map[string]*Node
	order []string
	edges []Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddNode inserts a node and resolves its ports. Content defaults for the
// kind are not applied here; use [DefaultContent] for that.
//
// Returns ErrInvalidNodeID for an empty id, ErrUnknownKind for an unsupported
// kind, or ErrDuplicateNodeID if the id is taken.
func (g *Graph) AddNode(id string, kind Kind, c Content) error {
	if id == "" {
		return ErrInvalidNodeID
	}
	if !kind.Valid() {
		return fmt.Errorf("add node %s: %w: %q", id, ErrUnknownKind, kind)
	}
	if _, ok := g.nodes[id]; ok {
		return fmt.Errorf("add node %s: %w", id, ErrDuplicateNodeID)
	}
	g.nodes[id] = newNode(id, kind, c)
	g.order = append(g.order, id)
	return nil
}

func newNode(id string, kind Kind, c Content) *Node {
	ports := ResolvePorts(id, kind, c)
	return &Node{
		ID:      id,
		Kind:    kind,
		Content: c,
		Ports:   ports,
		Layout:  AssignLayout(ports),
	}
}

// RemoveNode deletes a node together with every edge touching it and returns
// the removed edges. Returns ErrNodeNotFound if the node does not exist.
func (g *Graph) RemoveNode(id string) ([]Edge, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("remove node %s: %w", id, ErrNodeNotFound)
	}
	removed := g.dropEdges(func(e Edge) bool {
		return e.Source == id || e.Target == id
	})
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })
	return removed, nil
}

// UpdateNodeContent replaces a node's content, re-resolves its ports and
// recomputes its layout.
//
// Edges attached to ports that no longer exist (for example a template
// variable removed from a text node) are dropped and returned, so the graph
// never holds a dangling edge. Returns ErrNodeNotFound for an unknown id.
func (g *Graph) UpdateNodeContent(id string, c Content) ([]Edge, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("update node %s: %w", id, ErrNodeNotFound)
	}
	updated := newNode(id, n.Kind, c)
	removed := g.dropEdges(func(e Edge) bool {
		if e.Source == id {
			if _, ok := updated.Port(e.SourceHandle); !ok {
				return true
			}
		}
		if e.Target == id {
			if _, ok := updated.Port(e.TargetHandle); !ok {
				return true
			}
		}
		return false
	})
	g.nodes[id] = updated
	return removed, nil
}

// AddEdge connects two ports. An empty e.ID is replaced with the editor-style
// identifier from [EdgeID]. The stored edge is returned.
//
// Returns ErrInvalidEdge (wrapped with the reason) if either endpoint node
// or port is missing, if the source handle is not a source port or the
// target handle is not a target port, or if the edge ID is already in use.
func (g *Graph) AddEdge(e Edge) (Edge, error) {
	if e.ID == "" {
		e.ID = EdgeID(e.Source, e.SourceHandle, e.Target, e.TargetHandle)
	}
	if err := g.checkEdge(e); err != nil {
		return Edge{}, fmt.Errorf("add edge %s: %w", e.ID, err)
	}
	g.edges = append(g.edges, e)
	return e, nil
}

func (g *Graph) checkEdge(e Edge) error {
	if _, ok := g.edgeIndex(e.ID); ok {
		return fmt.Errorf("%w: duplicate edge ID", ErrInvalidEdge)
	}
	if err := g.checkEndpoint(e.Source, e.SourceHandle, Source); err != nil {
		return err
	}
	return g.checkEndpoint(e.Target, e.TargetHandle, Target)
}

func (g *Graph) checkEndpoint(nodeID, portID string, want Direction) error {
	n, ok := g.nodes[nodeID]
	if !ok {
		return fmt.Errorf("%w: unknown %s node %q", ErrInvalidEdge, want, nodeID)
	}
	p, ok := n.Port(portID)
	if !ok {
		return fmt.Errorf("%w: node %q has no port %q", ErrInvalidEdge, nodeID, portID)
	}
	if p.Direction != want {
		return fmt.Errorf("%w: port %s.%s is a %s port, want %s", ErrInvalidEdge, nodeID, portID, p.Direction, want)
	}
	return nil
}

// RemoveEdge deletes the edge with the given ID. Returns ErrEdgeNotFound if
// there is none.
func (g *Graph) RemoveEdge(id string) error {
	i, ok := g.edgeIndex(id)
	if !ok {
		return fmt.Errorf("remove edge %s: %w", id, ErrEdgeNotFound)
	}
	g.edges = slices.Delete(g.edges, i, i+1)
	return nil
}

func (g *Graph) edgeIndex(id string) (int, bool) {
	for i, e := range g.edges {
		if e.ID == id {
			return i, true
		}
	}
	return -1, false
}

// dropEdges removes every edge matching fn and returns them in list order.
func (g *Graph) dropEdges(fn func(Edge) bool) []Edge {
	var removed []Edge
	kept := g.edges[:0:0]
	for _, e := range g.edges {
		if fn(e) {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept
	return removed
}

// Node returns a copy of the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return cloneNode(n), true
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, cloneNode(g.nodes[id]))
	}
	return out
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.order) }

// Edges returns a copy of the edge list.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// NextNodeID returns the first unused id of the form "<kind>-<n>", n >= 1,
// matching how the editor names nodes dropped onto the canvas.
func (g *Graph) NextNodeID(kind Kind) string {
	prefix := string(kind) + "-"
	next := 1
	for id := range g.nodes {
		rest, ok := strings.CutPrefix(id, prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n >= next {
			next = n + 1
		}
	}
	return prefix + strconv.Itoa(next)
}

func cloneNode(n *Node) Node {
	c := *n
	c.Ports = slices.Clone(n.Ports)
	c.Layout = maps.Clone(n.Layout)
	return c
}
