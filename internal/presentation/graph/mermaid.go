package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/axon/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFromTimeline marks every entered node as visited and the last exited
// node as current.
func OverlayFromTimeline(events []domain.TimelineEvent) *GraphOverlay {
	o := &GraphOverlay{}
	for _, ev := range events {
		switch ev.Type {
		case domain.EventNodeEnter:
			o.VisitedNodes = append(o.VisitedNodes, ev.NodeID)
		case domain.EventNodeExit:
			o.CurrentNode = ev.NodeID
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart for a schematic.
// Node shapes follow the node kind:
// - Ingress: ((Circle))
// - Synapse: {Diamond}
// - Egress: [/Parallelogram/]
// - Subgraph: [[Subroutine]], expanded as a nested subgraph block
// - Atom: [Rectangle]
// Overlay styles (Visited/Current) are applied if provided.
func GenerateMermaid(s *domain.Schematic, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	writeSchematic(&sb, s, "    ")

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds
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

func writeSchematic(sb *strings.Builder, s *domain.Schematic, indent string) {
	if s == nil {
		return
	}
	for _, node := range s.Nodes {
		safeID := sanitizeMermaidID(node.ID)
		label := escapeLabel(node.Label)

		if node.Kind == domain.NodeSubgraph && node.Subgraph != nil {
			fmt.Fprintf(sb, "%s%s[[\"%s\"]]\n", indent, safeID, label)
			fmt.Fprintf(sb, "%ssubgraph %s_inner[\"%s\"]\n", indent, safeID, label)
			writeSchematic(sb, node.Subgraph, indent+"    ")
			fmt.Fprintf(sb, "%send\n", indent)
			fmt.Fprintf(sb, "%s%s -.- %s_inner\n", indent, safeID, safeID)
			continue
		}

		opener, closer := "[", "]"
		switch node.Kind {
		case domain.NodeIngress:
			opener, closer = "((", "))"
		case domain.NodeSynapse:
			opener, closer = "{", "}"
		case domain.NodeEgress:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(sb, "%s%s%s\"%s\"%s\n", indent, safeID, opener, label, closer)
	}

	for _, e := range s.Edges {
		from, to := sanitizeMermaidID(e.From), sanitizeMermaidID(e.To)
		switch e.Kind {
		case domain.EdgeBranch:
			fmt.Fprintf(sb, "%s%s -. \"%s\" .-> %s\n", indent, from, escapeLabel(e.BranchID), to)
		case domain.EdgeJump, domain.EdgeFault:
			fmt.Fprintf(sb, "%s%s -. \"%s\" .-> %s\n", indent, from, escapeLabel(string(e.Kind)), to)
		default:
			fmt.Fprintf(sb, "%s%s --> %s\n", indent, from, to)
		}
	}
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// sanitizeMermaidID keeps identifiers valid for Mermaid. Node ids are UUIDs, so
// a letter prefix guards against a leading digit.
func sanitizeMermaidID(id string) string {
	if id == "" {
		return ""
	}
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return "n_" + r.Replace(id)
}
