// Package graph models visual processing pipelines: typed nodes connected
// through named ports, and the structural checks run on them.
//
// # Ports
//
// A node never stores its ports. They are a projection of its [Kind] and
// [Content] computed by [ResolvePorts]:
//
//	graph.ResolvePorts("t1", graph.KindText, graph.Content{Text: "Hi {{ name }}"})
//	// [{t1-name target "name" left} {output source "" right}]
//
// Most kinds expose a fixed list. Text nodes expose one target port per
// distinct {{ variable }} in their template followed by an "output" port.
// [AssignLayout] then spreads ports along each side of the node box.
//
// # Editing
//
// [Graph] holds nodes and edges and keeps them consistent:
//
//	g := graph.New()
//	_ = g.AddNode("1", graph.KindInput, graph.Content{InputName: "q"})
//	_ = g.AddNode("2", graph.KindModelCall, graph.Content{})
//	_, err := g.AddEdge(graph.Edge{Source: "1", SourceHandle: "value", Target: "2", TargetHandle: "prompt"})
//
// AddEdge rejects edges whose endpoints are missing or whose port
// directions do not match with [ErrInvalidEdge]. Removing a node removes
// its edges; changing a node's content drops edges whose ports vanished.
//
// # Acyclicity
//
// [IsAcyclic] and [FindCycle] classify an edge set by node identity using an
// iterative depth-first search. They work on plain id and edge slices so
// they can run on unvalidated [Snapshot] data.
package graph
