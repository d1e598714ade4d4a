package domain

import (
	"reflect"
	"time"
)

// Document is the unit of import, export and merge.
type Document struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Nodes     []Node     `json:"nodes" yaml:"nodes"`
	Edges     []Edge     `json:"edges" yaml:"edges"`
	Variables []Variable `json:"variables" yaml:"variables"`
	CreatedAt time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" yaml:"updatedAt"`
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Nodes = CloneNodes(d.Nodes)
	out.Edges = CloneEdges(d.Edges)
	out.Variables = CloneVariables(d.Variables)
	return &out
}

// Snapshot is an immutable, deep point-in-time copy of the editable graph.
type Snapshot struct {
	Nodes        []Node `json:"nodes"`
	Edges        []Edge `json:"edges"`
	DocumentName string `json:"documentName"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Nodes:        CloneNodes(s.Nodes),
		Edges:        CloneEdges(s.Edges),
		DocumentName: s.DocumentName,
	}
}

// Equal reports deep structural equality, including node and edge order.
// Selection is ignored, so a selection-only change never becomes a history entry.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.DocumentName != o.DocumentName || len(s.Nodes) != len(o.Nodes) {
		return false
	}
	for i := range s.Nodes {
		if !s.Nodes[i].SameContent(o.Nodes[i]) {
			return false
		}
	}
	return reflect.DeepEqual(s.Edges, o.Edges)
}

// ClipboardPayload is a detached induced subgraph ready to be pasted.
// Its identifiers are those of the source document and are never reused.
type ClipboardPayload struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Empty reports whether there is nothing to paste.
func (p *ClipboardPayload) Empty() bool {
	return p == nil || len(p.Nodes) == 0
}

// Clone returns a deep copy of the payload.
func (p *ClipboardPayload) Clone() *ClipboardPayload {
	if p == nil {
		return nil
	}
	return &ClipboardPayload{
		Nodes: CloneNodes(p.Nodes),
		Edges: CloneEdges(p.Edges),
	}
}
