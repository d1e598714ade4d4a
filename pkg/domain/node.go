package domain

import "reflect"

// Structural node kinds. Every other kind is an ordinary module kind and is
// carried verbatim.
const (
	KindGroup         = "group"
	KindNote          = "note"
	KindSubflowHeader = "subflow-header"
)

// IsStructural reports whether kind is one of the structural block kinds.
func IsStructural(kind string) bool {
	switch kind {
	case KindGroup, KindNote, KindSubflowHeader:
		return true
	}
	return false
}

// Position is a point on the editor canvas.
type Position struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// Add returns p shifted by d.
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the offset that moves o onto p.
func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y}
}

// Node represents one step (box) of a workflow graph.
type Node struct {
	ID       string      `json:"id" yaml:"id"`
	Kind     string      `json:"kind" yaml:"kind"`
	Position Position    `json:"position" yaml:"position"`
	Data     PropertyBag `json:"data,omitempty" yaml:"data,omitempty"`

	// Selected mirrors the canvas selection. It travels with snapshots so that
	// undo restores what the user was looking at, but it is not content:
	// SameContent and Snapshot.Equal ignore it.
	Selected bool `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// SameContent reports whether n and o are equal apart from selection.
func (n Node) SameContent(o Node) bool {
	n.Selected, o.Selected = false, false
	return reflect.DeepEqual(n, o)
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	n.Data = n.Data.Clone()
	return n
}

// CloneNodes deep-copies a node list. A nil input yields an empty, non-nil slice.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}
