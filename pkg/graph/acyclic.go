package graph

// adjacency builds node -> direct successors from the edge list. Duplicate
// edges between the same pair collapse to one entry. Endpoints missing from
// nodeIDs are still added so that dangling edges take part in traversal.
func adjacency(nodeIDs []string, edges []Edge) (map[string][]string, []string) {
	adj := make(map[string][]string, len(nodeIDs))
	roots := make([]string, 0, len(nodeIDs))
	seen := make(map[string]bool, len(nodeIDs))
	addRoot := func(id string) {
		if !seen[id] {
			seen[id] = true
			roots = append(roots, id)
		}
	}
	for _, id := range nodeIDs {
		addRoot(id)
	}

	type pair struct{ from, to string }
	dup := make(map[pair]bool, len(edges))
	for _, e := range edges {
		addRoot(e.Source)
		addRoot(e.Target)
		p := pair{e.Source, e.Target}
		if dup[p] {
			continue
		}
		dup[p] = true
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	return adj, roots
}

// dfsFrame is one entry of the explicit traversal stack: a node and the
// index of the next successor to visit.
type dfsFrame struct {
	id   string
	next int
}

// IsAcyclic reports whether the directed graph formed by nodeIDs and edges
// contains no cycle. Edges are followed by node identity only; ports are
// irrelevant. A self-loop is a cycle.
//
// Every node is used as a traversal root so disconnected components are
// covered, and the search stops at the first back-edge. Runs in O(V+E).
func IsAcyclic(nodeIDs []string, edges []Edge) bool {
	return FindCycle(nodeIDs, edges) == nil
}

// FindCycle returns the node ids along the first cycle found, starting and
// ending with the same node (a self-loop on "a" yields [a a]). It returns
// nil when the graph is acyclic.
//
// The search is an iterative depth-first traversal with an explicit stack,
// so deep pipelines cannot exhaust the goroutine stack.
func FindCycle(nodeIDs []string, edges []Edge) []string {
	adj, roots := adjacency(nodeIDs, edges)

	const (
		white = iota // not yet visited
		gray         // on the active path
		black        // fully explored
	)
	color := make(map[string]int, len(roots))

	for _, root := range roots {
		if color[root] != white {
			continue
		}
		stack := []dfsFrame{{id: root}}
		color[root] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := adj[top.id]
			if top.next == len(children) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++

			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, dfsFrame{id: child})
			case gray:
				return cyclePath(stack, child)
			}
		}
	}
	return nil
}

// cyclePath extracts the path from start's frame on the stack to the top,
// closing it with start again.
func cyclePath(stack []dfsFrame, start string) []string {
	var path []string
	for _, f := range stack {
		if path == nil && f.id != start {
			continue
		}
		path = append(path, f.id)
	}
	return append(path, start)
}
