package domain

// TestCase is one enumerated path formatted for display or export.
// Field names are part of the export contract.
type TestCase struct {
	ID    int    `json:"id" yaml:"id"`
	Steps []Step `json:"steps" yaml:"steps"`
}

// Step is derived from a single Transition of a path.
type Step struct {
	Action     string `json:"action" yaml:"action"`
	Input      string `json:"input" yaml:"input"`
	Expected   string `json:"expected" yaml:"expected"`
	TargetNode string `json:"target_node" yaml:"target_node"`
}
