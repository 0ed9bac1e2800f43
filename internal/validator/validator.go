// Package validator lints an interaction model before generation.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/aretw0/mbtassist/pkg/project"
)

// Severity ranks an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue codes.
const (
	CodeNoInitial             = "no_initial"
	CodeMultipleInitial       = "multiple_initial"
	CodeDanglingTransition    = "dangling_transition"
	CodeUnreachableNode       = "unreachable_node"
	CodeEmptyAction           = "empty_action"
	CodeMissingExpectedResult = "missing_expected_result"
	CodeDuplicateID           = "duplicate_id"
	CodeInvalidDocument       = "invalid_document"
)

// Issue is a single finding.
type Issue struct {
	Severity     Severity `json:"severity"`
	Code         string   `json:"code"`
	Message      string   `json:"message"`
	NodeID       string   `json:"node_id,omitempty"`
	TransitionID string   `json:"transition_id,omitempty"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Code, i.Message)
}

// Report collects the issues found in one pass, in discovery order.
type Report struct {
	Issues []Issue `json:"issues"`
}

// ErrInvalidModel is returned by Report.Err when at least one error-level issue exists.
var ErrInvalidModel = errors.New("invalid model")

// Count returns how many issues carry the given severity.
func (r Report) Count(s Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == s {
			n++
		}
	}
	return n
}

// Has reports whether an issue with the given code was found.
func (r Report) Has(code string) bool {
	for _, i := range r.Issues {
		if i.Code == code {
			return true
		}
	}
	return false
}

// Err aggregates error-level issues. Warnings and infos never fail a model.
func (r Report) Err() error {
	var msgs []string
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			msgs = append(msgs, i.Message)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: found %d errors:\n- %s", ErrInvalidModel, len(msgs), strings.Join(msgs, "\n- "))
}

// ValidateDocument checks a stored project before it is turned into a Graph.
// Referential problems (duplicate ids, transitions pointing at absent nodes)
// are reported first; the graph-level checks only run on a document that links.
func ValidateDocument(d *project.Document) Report {
	var r Report
	known := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if known[n.ID] {
			r.add(SeverityError, CodeDuplicateID, n.ID, "", fmt.Sprintf("node id %q is used more than once", n.ID))
		}
		known[n.ID] = true
	}
	seen := make(map[string]bool, len(d.Transitions))
	for _, t := range d.Transitions {
		if t.ID != "" {
			if seen[t.ID] {
				r.add(SeverityError, CodeDuplicateID, "", t.ID, fmt.Sprintf("transition id %q is used more than once", t.ID))
			}
			seen[t.ID] = true
		}
		for _, end := range []string{t.SourceID, t.TargetID} {
			if !known[end] {
				r.add(SeverityError, CodeDanglingTransition, "", t.ID,
					fmt.Sprintf("transition %q references missing node %q", t.Action, end))
			}
		}
	}
	if r.Count(SeverityError) > 0 {
		return r
	}

	g, _, err := d.Graph()
	if err != nil {
		r.add(SeverityError, CodeInvalidDocument, "", "", err.Error())
		return r
	}
	r.Issues = append(r.Issues, Validate(g).Issues...)
	return r
}

// Validate checks the graph for structural problems: missing or duplicate
// initial flags, and nodes that cannot be reached from the initial node.
func Validate(g *domain.Graph) Report {
	var r Report
	nodes := g.Nodes()
	transitions := g.Transitions()

	var initial []*domain.Node
	for _, n := range nodes {
		if n.IsInitial() {
			initial = append(initial, n)
		}
	}

	switch {
	case len(nodes) > 0 && len(initial) == 0:
		r.add(SeverityWarning, CodeNoInitial, "", "", "no node is flagged as initial; generation yields no test cases")
	case len(initial) > 1:
		for _, n := range initial[1:] {
			r.add(SeverityError, CodeMultipleInitial, n.ID, "",
				fmt.Sprintf("node %q is also flagged initial; %q wins", n.Name, initial[0].Name))
		}
	}

	for _, t := range transitions {
		if strings.TrimSpace(t.Action) == "" {
			r.add(SeverityInfo, CodeEmptyAction, "", t.ID, "transition has an empty action label")
		}
	}

	if len(initial) > 0 {
		visited := crawl(g, initial[0].ID)
		for _, n := range nodes {
			if !visited[n.ID] {
				r.add(SeverityWarning, CodeUnreachableNode, n.ID, "",
					fmt.Sprintf("node %q is not reachable from %q", n.Name, initial[0].Name))
			}
		}
	}

	for _, n := range nodes {
		if _, ok := n.Properties.Text(domain.KeyExpectedResult); !ok {
			r.add(SeverityInfo, CodeMissingExpectedResult, n.ID, "",
				fmt.Sprintf("node %q has no expected_result", n.Name))
		}
	}

	return r
}

func (r *Report) add(sev Severity, code, nodeID, transitionID, msg string) {
	r.Issues = append(r.Issues, Issue{
		Severity:     sev,
		Code:         code,
		Message:      msg,
		NodeID:       nodeID,
		TransitionID: transitionID,
	})
}

// crawl walks the graph breadth-first from startID.
func crawl(g *domain.Graph, startID string) map[string]bool {
	visited := make(map[string]bool)
	queue := []string{startID}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		for _, t := range g.Outgoing(currentID) {
			if !visited[t.TargetID] {
				queue = append(queue, t.TargetID)
			}
		}
	}
	return visited
}
