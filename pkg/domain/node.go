package domain

// Node represents one system state of the interaction model.
// The ID is assigned by the Graph and never changes; Name and Properties are
// edited in place.
type Node struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// IsInitial reports whether the node is flagged as the initial state.
func (n *Node) IsInitial() bool {
	return n.Properties.Flag(KeyIsInitial)
}

// ExpectedResult returns the assertion text for steps ending at this node.
func (n *Node) ExpectedResult() (string, bool) {
	return n.Properties.Text(KeyExpectedResult)
}

func (n *Node) clone() *Node {
	return &Node{ID: n.ID, Name: n.Name, Properties: n.Properties.Clone()}
}
