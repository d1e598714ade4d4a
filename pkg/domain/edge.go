package domain

// Edge is a directed connection between two nodes.
type Edge struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// IsSelfLoop reports whether the edge connects a node to itself.
func (e Edge) IsSelfLoop() bool {
	return e.Source == e.Target
}

// CloneEdges copies an edge list. A nil input yields an empty, non-nil slice.
func CloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// InducedEdges returns every edge whose source and target are both in ids.
// Edges crossing the boundary of the set are dropped.
func InducedEdges(edges []Edge, ids map[string]bool) []Edge {
	out := make([]Edge, 0)
	for _, e := range edges {
		if ids[e.Source] && ids[e.Target] {
			out = append(out, e)
		}
	}
	return out
}
