package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/pipegraph/pkg/graph"
)

var (
	// ErrWorkspaceNotFound is returned for unknown or malformed workspace ids.
	ErrWorkspaceNotFound = errors.New("workspace not found")

	// ErrWorkspaceLimit is returned by Create when the store is full.
	ErrWorkspaceLimit = errors.New("workspace limit reached")
)

const defaultMaxWorkspaces = 1024

// Workspaces keeps editable graphs in memory, keyed by UUID. Nothing is
// persisted; a restart loses every workspace.
//
// Each graph has its own mutex, so requests against different workspaces
// never wait on each other while edits to one workspace are serialized.
type Workspaces struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*workspace
	max   int
}

type workspace struct {
	mu      sync.Mutex
	g       *graph.Graph
	updated time.Time
}

// NewWorkspaces creates a store holding at most max graphs (default 1024).
func NewWorkspaces(max int) *Workspaces {
	if max <= 0 {
		max = defaultMaxWorkspaces
	}
	return &Workspaces{items: make(map[uuid.UUID]*workspace), max: max}
}

// Create stores g under a fresh id.
func (ws *Workspaces) Create(g *graph.Graph) (uuid.UUID, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if len(ws.items) >= ws.max {
		return uuid.Nil, ErrWorkspaceLimit
	}
	id := uuid.New()
	ws.items[id] = &workspace{g: g, updated: time.Now()}
	return id, nil
}

// Delete removes a workspace.
func (ws *Workspaces) Delete(id string) error {
	key, err := uuid.Parse(id)
	if err != nil {
		return ErrWorkspaceNotFound
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if _, ok := ws.items[key]; !ok {
		return ErrWorkspaceNotFound
	}
	delete(ws.items, key)
	return nil
}

// Len returns the number of stored workspaces.
func (ws *Workspaces) Len() int {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return len(ws.items)
}

// Update runs fn with exclusive access to the workspace graph.
func (ws *Workspaces) Update(id string, fn func(*graph.Graph) error) error {
	w, err := ws.get(id)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := fn(w.g); err != nil {
		return err
	}
	w.updated = time.Now()
	return nil
}

// View runs fn with the workspace graph locked. fn must not modify it.
func (ws *Workspaces) View(id string, fn func(*graph.Graph) error) error {
	w, err := ws.get(id)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(w.g)
}

// Prune drops workspaces not modified within maxAge and returns how many
// were removed.
func (ws *Workspaces) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	n := 0
	for id, w := range ws.items {
		w.mu.Lock()
		stale := w.updated.Before(cutoff)
		w.mu.Unlock()
		if stale {
			delete(ws.items, id)
			n++
		}
	}
	return n
}

func (ws *Workspaces) get(id string) (*workspace, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrWorkspaceNotFound
	}
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	w, ok := ws.items[key]
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	return w, nil
}
