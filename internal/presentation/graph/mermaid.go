package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/digest/pkg/domain"
)

// endID is the sentinel target the graph uses for termination.
const endID = "__end__"

// GraphOverlay contains run state to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFor builds an overlay from a record's history.
func OverlayFor(rec *domain.Record) *GraphOverlay {
	if rec == nil {
		return nil
	}
	return &GraphOverlay{
		VisitedNodes: rec.History,
		CurrentNode:  rec.CurrentStep,
	}
}

// GenerateMermaid produces a Mermaid flowchart from a list of nodes.
// Shapes:
// - Entry: ([Stadium])
// - Router: {Diamond}
// - Terminal: [[Subroutine]]
// - Default: [Rectangle]
// Retry edges are dotted. Overlay styles (Visited/Current) are applied if provided.
func GenerateMermaid(nodes []domain.Node, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	usesEnd := false
	for i, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case i == 0:
			opener, closer = "([", "])"
		case node.Kind == domain.NodeKindRouter:
			opener, closer = "{", "}"
		case node.Kind == domain.NodeKindTerminal:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, node.ID, closer)

		for _, t := range node.Transitions {
			if t.ToNodeID == endID {
				usesEnd = true
			}
			safeTo := sanitizeMermaidID(t.ToNodeID)

			label := t.Label
			if t.Fail != "" {
				label = fmt.Sprintf("%s: %s", t.Label, t.Fail)
			}
			label = strings.ReplaceAll(label, "\"", "'")

			var arrow string
			switch {
			case t.Retry && label != "":
				arrow = fmt.Sprintf("-. \"%s\" .->", label)
			case t.Retry:
				arrow = "-.->"
			case label != "":
				arrow = fmt.Sprintf("-- \"%s\" -->", label)
			default:
				arrow = "-->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, safeTo)
		}
	}

	if usesEnd {
		fmt.Fprintf(&sb, "    %s((\"End\"))\n", sanitizeMermaidID(endID))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
