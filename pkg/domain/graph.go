package domain

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Graph is the aggregate root of the interaction model. It exclusively owns
// all Nodes and Transitions and keeps them in insertion order.
//
// Lookups are linear scans: graphs are editor-sized, and insertion order is
// what makes path enumeration deterministic.
//
// A Graph is not safe for concurrent use. Callers sharing one across
// goroutines must serialize writers against readers (see the http adapter).
type Graph struct {
	nodes       []*Node
	transitions []*Transition
	newID       func() string
}

// GraphOption configures a Graph.
type GraphOption func(*Graph)

// WithIDGenerator replaces the default uuid generator. The function must
// return ids that are unique for the lifetime of the Graph.
func WithIDGenerator(fn func() string) GraphOption {
	return func(g *Graph) {
		g.newID = fn
	}
}

// NewGraph creates an empty graph.
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{newID: uuid.NewString}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddNode creates and registers a Node. An empty name falls back to DefaultNodeName.
func (g *Graph) AddNode(name string) *Node {
	if name == "" {
		name = DefaultNodeName
	}
	n := &Node{ID: g.nextID(), Name: name, Properties: Properties{}}
	g.nodes = append(g.nodes, n)
	return n
}

// AddTransition creates a Transition from source to target. Both Nodes must
// belong to this Graph; passing foreign Nodes is a caller error and is not
// detected here (use RestoreTransition for checked linking).
func (g *Graph) AddTransition(source, target *Node, action string) *Transition {
	if action == "" {
		action = DefaultAction
	}
	t := &Transition{
		ID:         g.nextID(),
		SourceID:   source.ID,
		TargetID:   target.ID,
		Action:     action,
		Properties: Properties{},
	}
	g.transitions = append(g.transitions, t)
	return t
}

// FindTransition returns the first Transition (by insertion order) going from
// source to target. Direction matters: (b, a) does not match a transition a -> b.
func (g *Graph) FindTransition(source, target *Node) (*Transition, bool) {
	for _, t := range g.transitions {
		if t.SourceID == source.ID && t.TargetID == target.ID {
			return t, true
		}
	}
	return nil, false
}

// ToggleTransition implements click-to-link: it deletes the existing
// source -> target transition if there is one, otherwise creates it.
// It returns the created transition and true, or nil and false after a delete.
func (g *Graph) ToggleTransition(source, target *Node, action string) (*Transition, bool) {
	if t, ok := g.FindTransition(source, target); ok {
		g.DeleteTransition(t.ID)
		return nil, false
	}
	return g.AddTransition(source, target, action), true
}

// DeleteNode removes the Node and every Transition touching it.
// Unknown ids are ignored.
func (g *Graph) DeleteNode(id string) {
	g.nodes = slices.DeleteFunc(g.nodes, func(n *Node) bool { return n.ID == id })
	g.transitions = slices.DeleteFunc(g.transitions, func(t *Transition) bool { return t.Touches(id) })
}

// DeleteTransition removes the Transition with the given id. Unknown ids are ignored.
func (g *Graph) DeleteTransition(id string) {
	g.transitions = slices.DeleteFunc(g.transitions, func(t *Transition) bool { return t.ID == id })
}

// Clear empties the graph.
func (g *Graph) Clear() {
	g.nodes = nil
	g.transitions = nil
}

// Node returns the Node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	for _, n := range g.nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// Transition returns the Transition with the given id.
func (g *Graph) Transition(id string) (*Transition, bool) {
	for _, t := range g.transitions {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Nodes returns the nodes in insertion order. The slice is a copy; the
// Nodes themselves are live.
func (g *Graph) Nodes() []*Node {
	return slices.Clone(g.nodes)
}

// Transitions returns the transitions in insertion order. The slice is a
// copy; the Transitions themselves are live.
func (g *Graph) Transitions() []*Transition {
	return slices.Clone(g.transitions)
}

// Outgoing returns the transitions leaving nodeID, in insertion order.
func (g *Graph) Outgoing(nodeID string) []*Transition {
	var out []*Transition
	for _, t := range g.transitions {
		if t.SourceID == nodeID {
			out = append(out, t)
		}
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// TransitionCount returns the number of transitions.
func (g *Graph) TransitionCount() int { return len(g.transitions) }

// SetInitial flags the given Node as initial and clears the flag everywhere else.
func (g *Graph) SetInitial(id string) error {
	if _, ok := g.Node(id); !ok {
		return fmt.Errorf("set initial %q: %w", id, ErrUnknownNode)
	}
	for _, n := range g.nodes {
		if n.ID == id {
			n.Properties.Set(KeyIsInitial, Bool(true))
		} else {
			n.Properties.Delete(KeyIsInitial)
		}
	}
	return nil
}

// RestoreNode registers a Node with a caller-supplied id, as done when a
// project is loaded back from storage.
func (g *Graph) RestoreNode(id, name string, props Properties) (*Node, error) {
	if id == "" {
		return nil, fmt.Errorf("restore node %q: %w", name, ErrEmptyID)
	}
	if _, exists := g.Node(id); exists {
		return nil, fmt.Errorf("restore node %q: %w", id, ErrDuplicateID)
	}
	n := &Node{ID: id, Name: name, Properties: props.Clone()}
	g.nodes = append(g.nodes, n)
	return n, nil
}

// RestoreTransition registers a Transition with a caller-supplied id and
// links it to its endpoints by id. Both endpoints must already be present.
// An empty id is replaced by a fresh one.
func (g *Graph) RestoreTransition(id, sourceID, targetID, action string, props Properties) (*Transition, error) {
	if id == "" {
		id = g.nextID()
	}
	if _, exists := g.Transition(id); exists {
		return nil, fmt.Errorf("restore transition %q: %w", id, ErrDuplicateID)
	}
	if _, ok := g.Node(sourceID); !ok {
		return nil, fmt.Errorf("restore transition %q: source %q: %w", id, sourceID, ErrUnknownNode)
	}
	if _, ok := g.Node(targetID); !ok {
		return nil, fmt.Errorf("restore transition %q: target %q: %w", id, targetID, ErrUnknownNode)
	}
	t := &Transition{
		ID:         id,
		SourceID:   sourceID,
		TargetID:   targetID,
		Action:     action,
		Properties: props.Clone(),
	}
	g.transitions = append(g.transitions, t)
	return t, nil
}

// Clone returns a deep copy sharing nothing with g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:       make([]*Node, 0, len(g.nodes)),
		transitions: make([]*Transition, 0, len(g.transitions)),
		newID:       g.newID,
	}
	for _, n := range g.nodes {
		c.nodes = append(c.nodes, n.clone())
	}
	for _, t := range g.transitions {
		c.transitions = append(c.transitions, t.clone())
	}
	return c
}

func (g *Graph) nextID() string {
	if g.newID == nil {
		return uuid.NewString()
	}
	return g.newID()
}
