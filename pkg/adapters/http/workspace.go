package http

import (
	"sync"

	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/aretw0/mbtassist/pkg/project"
)

// Workspace is the graph being edited, plus its layout. Every editing
// request goes through Update, which holds the exclusive lock; generation
// and reads go through View and hold the shared lock for their whole run.
type Workspace struct {
	mu       sync.RWMutex
	name     string
	graph    *domain.Graph
	layout   *project.Layout
	revision uint64
}

// NewWorkspace wraps g. A nil graph starts empty.
func NewWorkspace(g *domain.Graph) *Workspace {
	if g == nil {
		g = domain.NewGraph()
	}
	return &Workspace{graph: g, layout: newLayout()}
}

// View runs fn under the shared lock.
func (ws *Workspace) View(fn func(g *domain.Graph, layout *project.Layout)) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	fn(ws.graph, ws.layout)
}

// Update runs fn under the exclusive lock. The revision is bumped when fn
// succeeds.
func (ws *Workspace) Update(fn func(g *domain.Graph, layout *project.Layout) error) (uint64, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := fn(ws.graph, ws.layout); err != nil {
		return ws.revision, err
	}
	ws.revision++
	return ws.revision, nil
}

// Document snapshots the workspace.
func (ws *Workspace) Document() *project.Document {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return project.FromGraph(ws.name, ws.graph, ws.layout)
}

// Replace swaps in a loaded document.
func (ws *Workspace) Replace(doc *project.Document) (uint64, error) {
	g, layout, err := doc.Graph()
	if err != nil {
		return 0, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.name = doc.Name
	ws.graph = g
	ws.layout = layout
	ws.revision++
	return ws.revision, nil
}

// Revision returns the number of successful edits so far.
func (ws *Workspace) Revision() uint64 {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.revision
}

func newLayout() *project.Layout {
	return &project.Layout{
		Nodes:       map[string]project.Point{},
		Transitions: map[string]project.Point{},
	}
}
