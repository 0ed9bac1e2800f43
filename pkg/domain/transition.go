package domain

// Transition is a directional action between two Nodes of the same Graph.
// Endpoints are held by id; resolve them through the owning Graph.
type Transition struct {
	ID       string `json:"id" yaml:"id"`
	SourceID string `json:"source_id" yaml:"source_id"`
	TargetID string `json:"target_id" yaml:"target_id"`
	Action   string `json:"action" yaml:"action"`

	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// InputData returns the input value for the step this transition generates.
func (t *Transition) InputData() (string, bool) {
	return t.Properties.Text(KeyInputData)
}

// Touches reports whether nodeID is either endpoint.
func (t *Transition) Touches(nodeID string) bool {
	return t.SourceID == nodeID || t.TargetID == nodeID
}

func (t *Transition) clone() *Transition {
	c := *t
	c.Properties = t.Properties.Clone()
	return &c
}
