// Package merge imports foreign documents into a graph store, either
// replacing it wholesale or splicing the document in with fresh identifiers.
package merge

import (
	"fmt"

	"github.com/aretw0/tapestry/internal/graph"
	"github.com/aretw0/tapestry/internal/remap"
	"github.com/aretw0/tapestry/pkg/codec"
	"github.com/aretw0/tapestry/pkg/domain"
	"github.com/aretw0/tapestry/pkg/ports"
	"github.com/aretw0/tapestry/pkg/schema"
)

// Report describes what a merge spliced into the live document.
type Report struct {
	Nodes []string          `json:"nodes"`
	Edges []string          `json:"edges"`
	IDs   map[string]string `json:"ids"`
	// Offset is the displacement applied to every incoming node.
	Offset domain.Position `json:"offset"`
	// DroppedEdges are incoming edges that were dangling or self-loops.
	DroppedEdges []string `json:"dropped_edges,omitempty"`
	// DroppedVariables are incoming variables whose name already existed.
	DroppedVariables []string `json:"dropped_variables,omitempty"`
}

// Canonicalize returns a copy of doc with every node kind mapped onto the
// in-memory taxonomy.
func Canonicalize(doc *domain.Document) *domain.Document {
	out := doc.Clone()
	for i := range out.Nodes {
		out.Nodes[i].Kind = codec.CanonicalKind(out.Nodes[i].Kind)
		out.Nodes[i].Selected = false
	}
	return out
}

// Replace swaps the store content for doc, keeping its identifiers.
// A document whose graph fails structural validation is rejected and the
// store is left untouched. Variables are taken wholesale: types and values
// are not checked, unnamed ones are skipped and a repeated name updates the
// earlier declaration.
func Replace(store *graph.Store, doc *domain.Document) error {
	if doc == nil {
		return &domain.MalformedDocumentError{Missing: []string{"nodes", "edges"}}
	}
	doc = Canonicalize(doc)
	if err := schema.ValidateStructure(doc); err != nil {
		return &domain.MalformedDocumentError{Err: err}
	}
	doc.Variables = collapseVariables(doc.Variables)
	store.Replace(doc)
	return nil
}

func collapseVariables(vars []domain.Variable) []domain.Variable {
	out := make([]domain.Variable, 0, len(vars))
	index := make(map[string]int, len(vars))
	for _, v := range vars {
		if v.Name == "" {
			continue
		}
		if i, ok := index[v.Name]; ok {
			out[i] = v
			continue
		}
		index[v.Name] = len(out)
		out = append(out, v)
	}
	return out
}

// Merge splices doc into the store. Every node and edge gets a fresh id from
// gen, nodes are shifted so the document's bounding-box origin lands on at
// (no shift when at is nil), and variables whose name is already taken are
// dropped.
func Merge(store *graph.Store, doc *domain.Document, gen ports.IDGenerator, at *domain.Position) (Report, error) {
	if doc == nil {
		return Report{}, &domain.MalformedDocumentError{Missing: []string{"nodes", "edges"}}
	}
	doc = Canonicalize(doc)

	delta := remap.Offset(doc.Nodes, at, domain.Position{})
	res := remap.Apply(doc.Nodes, doc.Edges, gen, store.IDs(), delta)

	if err := store.Insert(res.Nodes, res.Edges); err != nil {
		return Report{}, fmt.Errorf("merge: %w", err)
	}
	dropped := store.AddVariables(doc.Variables)

	return Report{
		Nodes:            res.NodeIDs(),
		Edges:            res.EdgeIDs(),
		IDs:              res.IDs,
		Offset:           delta,
		DroppedEdges:     res.Dropped,
		DroppedVariables: dropped,
	}, nil
}
