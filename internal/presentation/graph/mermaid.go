package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/mbtassist/pkg/domain"
)

// Overlay highlights one generated path on top of the model.
type Overlay struct {
	// TransitionIDs is the path, in traversal order.
	TransitionIDs []string
}

// GenerateMermaid produces a Mermaid flowchart for g.
// It applies semantic styling:
// - Initial: ((Circle))
// - Terminal (no outgoing transitions): ([Stadium])
// - Default: [Rectangle]
// Edges carry the action label. When an overlay is provided, the nodes and
// edges of its path are styled, and the node where the path ends is marked current.
func GenerateMermaid(g *domain.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range g.Nodes() {
		opener, closer := "[", "]"
		switch {
		case node.IsInitial():
			opener, closer = "((", "))"
		case len(g.Outgoing(node.ID)) == 0:
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(node.ID), opener, escapeLabel(node.Name), closer)
	}

	edgeIndex := make(map[string]int)
	for i, t := range g.Transitions() {
		edgeIndex[t.ID] = i
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n",
			sanitizeMermaidID(t.SourceID), escapeLabel(t.Action), sanitizeMermaidID(t.TargetID))
	}

	if overlay == nil || len(overlay.TransitionIDs) == 0 {
		return sb.String()
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	visitedSet := make(map[string]bool)
	var last string
	for _, id := range overlay.TransitionIDs {
		t, ok := g.Transition(id)
		if !ok {
			continue
		}
		for _, nodeID := range []string{t.SourceID, t.TargetID} {
			safeID := sanitizeMermaidID(nodeID)
			if !visitedSet[safeID] {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		fmt.Fprintf(&sb, "    linkStyle %d stroke:#01579b,stroke-width:3px;\n", edgeIndex[id])
		last = t.TargetID
	}
	if last != "" {
		fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(last))
	}

	return sb.String()
}

// OverlayFor builds an Overlay from a generated path.
func OverlayFor(path []*domain.Transition) *Overlay {
	o := &Overlay{TransitionIDs: make([]string, 0, len(path))}
	for _, t := range path {
		o.TransitionIDs = append(o.TransitionIDs, t.ID)
	}
	return o
}

// sanitizeMermaidID keeps ids usable as Mermaid identifiers. The prefix
// guards against ids starting with a digit, as uuids often do.
func sanitizeMermaidID(id string) string {
	s := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
	return "n_" + s
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
