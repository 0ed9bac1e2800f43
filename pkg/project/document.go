// Package project defines the persisted shape of an interaction model.
//
// A Document carries the graph plus the layout coordinates owned by the
// editor. Coordinates are opaque here: they are round-tripped, never
// interpreted.
package project

import (
	"fmt"

	"github.com/aretw0/mbtassist/pkg/domain"
)

// CurrentVersion is written into every new Document.
const CurrentVersion = 1

// Point is an editor coordinate.
type Point struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// Layout maps node and transition ids to editor coordinates.
type Layout struct {
	Nodes       map[string]Point
	Transitions map[string]Point
}

// NodeDoc is the stored form of a Node.
type NodeDoc struct {
	ID         string            `json:"id" yaml:"id" mapstructure:"id"`
	Name       string            `json:"name" yaml:"name" mapstructure:"name"`
	Properties domain.Properties `json:"properties,omitempty" yaml:"properties,omitempty" mapstructure:"properties"`
	X          float64           `json:"x" yaml:"x" mapstructure:"x"`
	Y          float64           `json:"y" yaml:"y" mapstructure:"y"`
}

// TransitionDoc is the stored form of a Transition.
type TransitionDoc struct {
	ID         string            `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	SourceID   string            `json:"source_id" yaml:"source_id" mapstructure:"source_id"`
	TargetID   string            `json:"target_id" yaml:"target_id" mapstructure:"target_id"`
	Action     string            `json:"action" yaml:"action" mapstructure:"action"`
	Properties domain.Properties `json:"properties,omitempty" yaml:"properties,omitempty" mapstructure:"properties"`
	Anchor     *Point            `json:"anchor,omitempty" yaml:"anchor,omitempty" mapstructure:"anchor"`
}

// Document is a saved project.
type Document struct {
	Version     int             `json:"version" yaml:"version" mapstructure:"version"`
	Name        string          `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Nodes       []NodeDoc       `json:"nodes" yaml:"nodes" mapstructure:"nodes"`
	Transitions []TransitionDoc `json:"transitions" yaml:"transitions" mapstructure:"transitions"`
}

// FromGraph captures g, and the optional layout, into a Document.
// Entity order follows the graph's insertion order.
func FromGraph(name string, g *domain.Graph, layout *Layout) *Document {
	doc := &Document{
		Version:     CurrentVersion,
		Name:        name,
		Nodes:       make([]NodeDoc, 0, g.NodeCount()),
		Transitions: make([]TransitionDoc, 0, g.TransitionCount()),
	}
	for _, n := range g.Nodes() {
		nd := NodeDoc{ID: n.ID, Name: n.Name, Properties: n.Properties.Clone()}
		if layout != nil {
			if p, ok := layout.Nodes[n.ID]; ok {
				nd.X, nd.Y = p.X, p.Y
			}
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	for _, t := range g.Transitions() {
		td := TransitionDoc{
			ID:         t.ID,
			SourceID:   t.SourceID,
			TargetID:   t.TargetID,
			Action:     t.Action,
			Properties: t.Properties.Clone(),
		}
		if layout != nil {
			if p, ok := layout.Transitions[t.ID]; ok {
				td.Anchor = &Point{X: p.X, Y: p.Y}
			}
		}
		doc.Transitions = append(doc.Transitions, td)
	}
	return doc
}

// Graph rebuilds the model. Node ids are preserved and transitions are
// re-linked to their endpoints by id; a transition referring to a node that
// is not in the document is rejected with domain.ErrUnknownNode.
func (d *Document) Graph(opts ...domain.GraphOption) (*domain.Graph, *Layout, error) {
	g := domain.NewGraph(opts...)
	layout := &Layout{
		Nodes:       make(map[string]Point, len(d.Nodes)),
		Transitions: make(map[string]Point, len(d.Transitions)),
	}

	for _, nd := range d.Nodes {
		if _, err := g.RestoreNode(nd.ID, nd.Name, nd.Properties); err != nil {
			return nil, nil, fmt.Errorf("load project %q: %w", d.Name, err)
		}
		layout.Nodes[nd.ID] = Point{X: nd.X, Y: nd.Y}
	}
	for _, td := range d.Transitions {
		t, err := g.RestoreTransition(td.ID, td.SourceID, td.TargetID, td.Action, td.Properties)
		if err != nil {
			return nil, nil, fmt.Errorf("load project %q: %w", d.Name, err)
		}
		if td.Anchor != nil {
			layout.Transitions[t.ID] = *td.Anchor
		}
	}
	return g, layout, nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{
		Version:     d.Version,
		Name:        d.Name,
		Nodes:       make([]NodeDoc, len(d.Nodes)),
		Transitions: make([]TransitionDoc, len(d.Transitions)),
	}
	for i, nd := range d.Nodes {
		nd.Properties = nd.Properties.Clone()
		c.Nodes[i] = nd
	}
	for i, td := range d.Transitions {
		td.Properties = td.Properties.Clone()
		if td.Anchor != nil {
			a := *td.Anchor
			td.Anchor = &a
		}
		c.Transitions[i] = td
	}
	return c
}
