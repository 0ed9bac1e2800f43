package dsl

import "github.com/aretw0/mbtassist/pkg/domain"

// NodeBuilder provides a fluent API for configuring a state.
type NodeBuilder struct {
	name    string
	props   domain.Properties
	last    *link
	builder *Builder
}

// Initial marks the state as the start of every generated path.
func (n *NodeBuilder) Initial() *NodeBuilder {
	n.props.Set(domain.KeyIsInitial, domain.Bool(true))
	return n
}

// Expect sets the expected result checked when a step lands on this state.
func (n *NodeBuilder) Expect(result string) *NodeBuilder {
	n.props.Set(domain.KeyExpectedResult, domain.String(result))
	return n
}

// Set stores an arbitrary property on the state.
func (n *NodeBuilder) Set(key string, v domain.Value) *NodeBuilder {
	n.props.Set(key, v)
	return n
}

// Go adds a transition labeled action to the target state, creating the
// target if needed.
func (n *NodeBuilder) Go(action, target string) *NodeBuilder {
	n.builder.Add(target)
	l := &link{from: n.name, to: target, action: action, props: domain.Properties{}}
	n.builder.links = append(n.builder.links, l)
	n.last = l
	return n
}

// Input sets input_data on the transition added by the preceding Go.
// Without a preceding Go it does nothing.
func (n *NodeBuilder) Input(data string) *NodeBuilder {
	if n.last != nil {
		n.last.props.Set(domain.KeyInputData, domain.String(data))
	}
	return n
}

// Add switches to another state; it is a shortcut for Builder.Add.
func (n *NodeBuilder) Add(name string) *NodeBuilder {
	return n.builder.Add(name)
}

// Build finishes the chain; it is a shortcut for Builder.Build.
func (n *NodeBuilder) Build(opts ...domain.GraphOption) (*domain.Graph, error) {
	return n.builder.Build(opts...)
}

// MustBuild finishes the chain; it is a shortcut for Builder.MustBuild.
func (n *NodeBuilder) MustBuild(opts ...domain.GraphOption) *domain.Graph {
	return n.builder.MustBuild(opts...)
}
