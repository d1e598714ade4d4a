// Package remap re-identifies and repositions a detached subgraph before it
// is spliced into a live document. Paste and merge-import share it.
package remap

import (
	"github.com/aretw0/tapestry/pkg/domain"
	"github.com/aretw0/tapestry/pkg/ports"
)

// Result is a subgraph with fresh identifiers.
type Result struct {
	Nodes []domain.Node
	Edges []domain.Edge
	// IDs maps each source node id to its new id.
	IDs map[string]string
	// Dropped lists source edge ids that could not be remapped.
	Dropped []string
}

// NodeIDs returns the new node ids in order.
func (r Result) NodeIDs() []string {
	out := make([]string, len(r.Nodes))
	for i, n := range r.Nodes {
		out[i] = n.ID
	}
	return out
}

// EdgeIDs returns the new edge ids in order.
func (r Result) EdgeIDs() []string {
	out := make([]string, len(r.Edges))
	for i, e := range r.Edges {
		out[i] = e.ID
	}
	return out
}

// Origin returns the top-left corner of the bounding box of nodes.
// An empty list yields the zero position.
func Origin(nodes []domain.Node) domain.Position {
	if len(nodes) == 0 {
		return domain.Position{}
	}
	o := nodes[0].Position
	for _, n := range nodes[1:] {
		o.X = min(o.X, n.Position.X)
		o.Y = min(o.Y, n.Position.Y)
	}
	return o
}

// Offset derives the uniform displacement for a subgraph: at minus the
// bounding-box origin when a drop position is given, def otherwise.
func Offset(nodes []domain.Node, at *domain.Position, def domain.Position) domain.Position {
	if at == nil {
		return def
	}
	return at.Sub(Origin(nodes))
}

// Apply copies nodes and edges with fresh ids drawn from gen, shifting every
// node by delta. Generated ids never collide with used, nor with each other.
// Edges whose endpoints are not among nodes, or that would become self-loops,
// are dropped.
func Apply(nodes []domain.Node, edges []domain.Edge, gen ports.IDGenerator, used map[string]bool, delta domain.Position) Result {
	taken := make(map[string]bool, len(used)+len(nodes)+len(edges))
	for id := range used {
		taken[id] = true
	}
	fresh := func() string {
		for {
			id := gen.Next()
			if id != "" && !taken[id] {
				taken[id] = true
				return id
			}
		}
	}

	res := Result{
		Nodes: make([]domain.Node, 0, len(nodes)),
		Edges: make([]domain.Edge, 0, len(edges)),
		IDs:   make(map[string]string, len(nodes)),
	}

	for _, n := range nodes {
		if _, dup := res.IDs[n.ID]; dup {
			continue
		}
		c := n.Clone()
		c.ID = fresh()
		c.Position = n.Position.Add(delta)
		res.IDs[n.ID] = c.ID
		res.Nodes = append(res.Nodes, c)
	}

	for _, e := range edges {
		src, okSrc := res.IDs[e.Source]
		dst, okDst := res.IDs[e.Target]
		if !okSrc || !okDst || src == dst {
			res.Dropped = append(res.Dropped, e.ID)
			continue
		}
		res.Edges = append(res.Edges, domain.Edge{ID: fresh(), Source: src, Target: dst})
	}

	return res
}
