package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/mbtassist/pkg/domain"
)

// ErrMultipleInitial is returned by Build when more than one state is marked Initial.
var ErrMultipleInitial = errors.New("more than one initial state")

// Builder manages the graph construction.
type Builder struct {
	order []string
	nodes map[string]*NodeBuilder
	links []*link
}

type link struct {
	from, to string
	action   string
	props    domain.Properties
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new state in the graph.
// If the state already exists, it returns the existing builder.
func (b *Builder) Add(name string) *NodeBuilder {
	if nb, ok := b.nodes[name]; ok {
		return nb
	}
	nb := &NodeBuilder{
		name:    name,
		props:   domain.Properties{},
		builder: b,
	}
	b.nodes[name] = nb
	b.order = append(b.order, name)
	return nb
}

// Build creates a fresh Graph. States are added in first-reference order,
// transitions in declaration order.
func (b *Builder) Build(opts ...domain.GraphOption) (*domain.Graph, error) {
	initial := 0
	for _, name := range b.order {
		if b.nodes[name].props.Flag(domain.KeyIsInitial) {
			initial++
		}
	}
	if initial > 1 {
		return nil, fmt.Errorf("failed to build graph: %w", ErrMultipleInitial)
	}

	g := domain.NewGraph(opts...)
	byName := make(map[string]*domain.Node, len(b.order))
	for _, name := range b.order {
		n := g.AddNode(name)
		for k, v := range b.nodes[name].props {
			n.Properties.Set(k, v)
		}
		byName[name] = n
	}
	for _, l := range b.links {
		t := g.AddTransition(byName[l.from], byName[l.to], l.action)
		for k, v := range l.props {
			t.Properties.Set(k, v)
		}
	}
	return g, nil
}

// MustBuild is Build for tests and examples; it panics on error.
func (b *Builder) MustBuild(opts ...domain.GraphOption) *domain.Graph {
	g, err := b.Build(opts...)
	if err != nil {
		panic(err)
	}
	return g
}
