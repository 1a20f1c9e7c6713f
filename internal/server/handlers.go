package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pipegraph/pkg/analysis"
	"github.com/matzehuels/pipegraph/pkg/buildinfo"
	perrors "github.com/matzehuels/pipegraph/pkg/errors"
	"github.com/matzehuels/pipegraph/pkg/graph"
)

const headerAnalysisSource = "X-Analysis-Source"

// =============================================================================
// Stateless endpoints
// =============================================================================

type healthResponse struct {
	Status     string         `json:"status"`
	Workspaces int            `json:"workspaces"`
	Build      buildinfo.Info `json:"build"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Workspaces: s.workspaces.Len(),
		Build:      buildinfo.Get(),
	})
}

// parsePipeline answers the editor's analysis request. The snapshot is
// taken at face value; the body is exactly {num_nodes, num_edges, is_dag}.
func (s *Server) parsePipeline(w http.ResponseWriter, r *http.Request) {
	var snap graph.Snapshot
	if err := decode(w, r, s.opts.MaxBodyBytes, &snap); err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := s.runner.Run(r.Context(), snap)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set(headerAnalysisSource, rep.Source)
	writeJSON(w, http.StatusOK, rep.Result)
}

type portsRequest struct {
	ID   string        `json:"id" validate:"required,max=256"`
	Type graph.Kind    `json:"type" validate:"required"`
	Data graph.Content `json:"data"`
}

type portsResponse struct {
	Ports  []graph.Port `json:"ports"`
	Layout graph.Layout `json:"layout"`
}

// resolvePorts is the content-change notification: the editor sends a
// node's current content and receives the ports and placement to render.
func (s *Server) resolvePorts(w http.ResponseWriter, r *http.Request) {
	var req portsRequest
	if err := decode(w, r, s.opts.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := checkNode(req.ID, req.Type, req.Data); err != nil {
		s.writeError(w, r, err)
		return
	}
	ports := graph.ResolvePorts(req.ID, req.Type, req.Data)
	writeJSON(w, http.StatusOK, portsResponse{Ports: ports, Layout: graph.AssignLayout(ports)})
}

func checkNode(id string, kind graph.Kind, c graph.Content) error {
	if err := perrors.ValidateNodeID(id); err != nil {
		return err
	}
	if !kind.Valid() {
		return perrors.New(perrors.ErrCodeUnknownKind, "unknown node type %q", kind)
	}
	if kind == graph.KindHTTPCall {
		if c.URL != "" {
			if err := perrors.ValidateURL(c.URL); err != nil {
				return err
			}
		}
		if err := perrors.ValidateHTTPMethod(c.Method); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Workspaces
// =============================================================================

type nodeView struct {
	ID     string        `json:"id"`
	Type   graph.Kind    `json:"type"`
	Data   graph.Content `json:"data"`
	Ports  []graph.Port  `json:"ports"`
	Layout graph.Layout  `json:"layout"`
}

func viewOf(n graph.Node) nodeView {
	return nodeView{ID: n.ID, Type: n.Kind, Data: n.Content, Ports: n.Ports, Layout: n.Layout}
}

type workspaceResponse struct {
	ID       string         `json:"id"`
	Snapshot graph.Snapshot `json:"snapshot"`
}

// createWorkspace accepts an optional snapshot body. Unlike parse, the
// snapshot must satisfy every graph invariant.
func (s *Server) createWorkspace(w http.ResponseWriter, r *http.Request) {
	g := graph.New()
	if r.ContentLength != 0 {
		var snap graph.Snapshot
		if err := decode(w, r, s.opts.MaxBodyBytes, &snap); err != nil {
			s.writeError(w, r, err)
			return
		}
		built, err := graph.FromSnapshot(snap)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		g = built
	}
	id, err := s.workspaces.Create(g)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("workspace created", "id", id, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	writeJSON(w, http.StatusCreated, workspaceResponse{ID: id.String(), Snapshot: g.Snapshot()})
}

func (s *Server) getWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ws")
	var snap graph.Snapshot
	err := s.workspaces.View(id, func(g *graph.Graph) error {
		snap = g.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaceResponse{ID: id, Snapshot: snap})
}

func (s *Server) deleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := s.workspaces.Delete(chi.URLParam(r, "ws")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) analyzeWorkspace(w http.ResponseWriter, r *http.Request) {
	var snap graph.Snapshot
	err := s.workspaces.View(chi.URLParam(r, "ws"), func(g *graph.Graph) error {
		snap = g.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := s.runner.Run(r.Context(), snap)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set(headerAnalysisSource, rep.Source)
	writeJSON(w, http.StatusOK, analysisResponse{Report: rep, DurationMS: float64(rep.Duration.Microseconds()) / 1000})
}

type analysisResponse struct {
	analysis.Report
	DurationMS float64 `json:"duration_ms"`
}

type addNodeRequest struct {
	ID   string        `json:"id" validate:"omitempty,max=256"`
	Type graph.Kind    `json:"type" validate:"required"`
	Data graph.Content `json:"data"`
}

// addNode inserts a node. An empty id is allocated as "<type>-<n>" and the
// kind's default content is filled in, as the editor does on drop.
func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decode(w, r, s.opts.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var view nodeView
	err := s.workspaces.Update(chi.URLParam(r, "ws"), func(g *graph.Graph) error {
		id := req.ID
		if id == "" {
			id = g.NextNodeID(req.Type)
		}
		if err := checkNode(id, req.Type, req.Data); err != nil {
			return err
		}
		if err := g.AddNode(id, req.Type, graph.DefaultContent(id, req.Type, req.Data)); err != nil {
			return err
		}
		n, _ := g.Node(id)
		view = viewOf(n)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

type updateNodeRequest struct {
	Data graph.Content `json:"data"`
}

type updateNodeResponse struct {
	Node         nodeView     `json:"node"`
	RemovedEdges []graph.Edge `json:"removed_edges"`
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	var req updateNodeRequest
	if err := decode(w, r, s.opts.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	nodeID := chi.URLParam(r, "node")
	var resp updateNodeResponse
	err := s.workspaces.Update(chi.URLParam(r, "ws"), func(g *graph.Graph) error {
		n, ok := g.Node(nodeID)
		if !ok {
			return perrors.Wrap(perrors.ErrCodeNotFound, graph.ErrNodeNotFound, "node %q not found", nodeID)
		}
		if err := checkNode(nodeID, n.Kind, req.Data); err != nil {
			return err
		}
		removed, err := g.UpdateNodeContent(nodeID, req.Data)
		if err != nil {
			return err
		}
		n, _ = g.Node(nodeID)
		resp = updateNodeResponse{Node: viewOf(n), RemovedEdges: nonNil(removed)}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type removedEdgesResponse struct {
	RemovedEdges []graph.Edge `json:"removed_edges"`
}

func (s *Server) removeNode(w http.ResponseWriter, r *http.Request) {
	var removed []graph.Edge
	err := s.workspaces.Update(chi.URLParam(r, "ws"), func(g *graph.Graph) error {
		var err error
		removed, err = g.RemoveNode(chi.URLParam(r, "node"))
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removedEdgesResponse{RemovedEdges: nonNil(removed)})
}

type addEdgeRequest struct {
	ID           string `json:"id" validate:"max=256"`
	Source       string `json:"source" validate:"required"`
	SourceHandle string `json:"sourceHandle" validate:"required"`
	Target       string `json:"target" validate:"required"`
	TargetHandle string `json:"targetHandle" validate:"required"`
}

func (s *Server) addEdge(w http.ResponseWriter, r *http.Request) {
	var req addEdgeRequest
	if err := decode(w, r, s.opts.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := perrors.ValidateEdgeID(req.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	var added graph.Edge
	err := s.workspaces.Update(chi.URLParam(r, "ws"), func(g *graph.Graph) error {
		var err error
		added, err = g.AddEdge(graph.Edge(req))
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) removeEdge(w http.ResponseWriter, r *http.Request) {
	err := s.workspaces.Update(chi.URLParam(r, "ws"), func(g *graph.Graph) error {
		return g.RemoveEdge(chi.URLParam(r, "edge"))
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil(edges []graph.Edge) []graph.Edge {
	if edges == nil {
		return []graph.Edge{}
	}
	return edges
}
