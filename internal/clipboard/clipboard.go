// Package clipboard extracts induced subgraphs and re-instantiates them with
// fresh identifiers.
package clipboard

import (
	"github.com/aretw0/tapestry/internal/remap"
	"github.com/aretw0/tapestry/pkg/domain"
	"github.com/aretw0/tapestry/pkg/ports"
)

// Copy returns a detached payload holding the nodes whose id is in ids and
// every edge with both endpoints among them. Edges crossing the selection
// boundary are dropped. Unknown ids are ignored. The result is nil when no
// node matched.
func Copy(nodes []domain.Node, edges []domain.Edge, ids []string) *domain.ClipboardPayload {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	picked := make([]domain.Node, 0, len(ids))
	present := make(map[string]bool, len(ids))
	for _, n := range nodes {
		if !want[n.ID] {
			continue
		}
		c := n.Clone()
		c.Selected = false
		picked = append(picked, c)
		present[n.ID] = true
	}
	if len(picked) == 0 {
		return nil
	}

	return &domain.ClipboardPayload{
		Nodes: picked,
		Edges: domain.InducedEdges(edges, present),
	}
}

// Instantiate remaps a payload for insertion into a document whose ids are in
// used. Pasted nodes preserve their relative layout: they are shifted so that
// the payload's bounding-box origin lands on at, or by def when at is nil.
// Every pasted node comes out selected.
func Instantiate(p *domain.ClipboardPayload, gen ports.IDGenerator, used map[string]bool, at *domain.Position, def domain.Position) remap.Result {
	if p.Empty() {
		return remap.Result{IDs: map[string]string{}}
	}
	delta := remap.Offset(p.Nodes, at, def)
	res := remap.Apply(p.Nodes, p.Edges, gen, used, delta)
	for i := range res.Nodes {
		res.Nodes[i].Selected = true
	}
	return res
}
