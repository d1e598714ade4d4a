package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/tapestry/pkg/domain"
)

// GraphOverlay contains editor state to visualize on the graph.
type GraphOverlay struct {
	Selected    []string
	Highlighted []string // e.g. nodes referencing a variable
}

// GenerateMermaid produces a Mermaid flowchart from a document.
// It applies semantic styling:
// - Group: {{Hexagon}}
// - Note: >Flag]
// - Subflow header: [[Subroutine]]
// - Default: [Rectangle] labelled with id and kind
// It also applies overlay styles (Selected/Highlighted) if provided.
func GenerateMermaid(doc *domain.Document, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	if doc == nil {
		return sb.String()
	}

	for _, node := range doc.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		label := node.ID + " <br/> " + node.Kind
		switch node.Kind {
		case domain.KindGroup:
			opener, closer = "{{", "}}"
			label = textOr(node, "label", node.ID)
		case domain.KindNote:
			opener, closer = ">", "]"
			label = textOr(node, "text", node.ID)
		case domain.KindSubflowHeader:
			opener, closer = "[[", "]]"
			label = textOr(node, "title", node.ID)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer)
	}

	for _, e := range doc.Edges {
		fmt.Fprintf(&sb, "    %s --> %s\n", sanitizeMermaidID(e.Source), sanitizeMermaidID(e.Target))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef selected fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef highlighted fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		writeClass(&sb, overlay.Selected, "selected")
		writeClass(&sb, overlay.Highlighted, "highlighted")
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, ids []string, class string) {
	seen := make(map[string]bool)
	for _, id := range ids {
		safeID := sanitizeMermaidID(id)
		if safeID == "" || seen[safeID] {
			continue
		}
		seen[safeID] = true
		fmt.Fprintf(sb, "    class %s %s;\n", safeID, class)
	}
}

func textOr(n domain.Node, key, fallback string) string {
	if s, ok := n.Data.String(key); ok && s != "" {
		return s
	}
	return fallback
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.ReplaceAll(s, "\n", " <br/> ")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
