package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/tapestry/pkg/domain"
)

// Summary describes a document as markdown: header, node table, edges and variables.
func Summary(doc *domain.Document) string {
	var sb strings.Builder

	name := doc.Name
	if name == "" {
		name = "Untitled workflow"
	}
	fmt.Fprintf(&sb, "# %s\n\n", name)
	if doc.ID != "" {
		fmt.Fprintf(&sb, "`%s`\n\n", doc.ID)
	}
	fmt.Fprintf(&sb, "%d nodes, %d edges, %d variables\n\n", len(doc.Nodes), len(doc.Edges), len(doc.Variables))

	if len(doc.Nodes) > 0 {
		sb.WriteString("## Nodes\n\n")
		sb.WriteString("| id | kind | position | fields |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, n := range doc.Nodes {
			fmt.Fprintf(&sb, "| %s | %s | %g, %g | %s |\n",
				cell(n.ID), cell(n.Kind), n.Position.X, n.Position.Y, cell(fieldList(n.Data)))
		}
		sb.WriteString("\n")
	}

	if len(doc.Edges) > 0 {
		sb.WriteString("## Edges\n\n")
		for _, e := range doc.Edges {
			fmt.Fprintf(&sb, "- `%s` → `%s`\n", e.Source, e.Target)
		}
		sb.WriteString("\n")
	}

	if len(doc.Variables) > 0 {
		sb.WriteString("## Variables\n\n")
		sb.WriteString("| name | type | scope | value |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, v := range doc.Variables {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", cell(v.Name), v.Type, v.Scope, cell(valueString(v.Value)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func fieldList(data domain.PropertyBag) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

func valueString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// cell escapes pipes so values cannot break the table.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
