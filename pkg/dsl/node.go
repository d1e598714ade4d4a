package dsl

import "github.com/aretw0/tapestry/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Kind sets the module kind of the node.
func (n *NodeBuilder) Kind(kind string) *NodeBuilder {
	n.node.Kind = kind
	return n
}

// At places the node on the canvas.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// Set assigns one property.
func (n *NodeBuilder) Set(key string, value any) *NodeBuilder {
	n.node.Data[key] = value
	return n
}

// Data merges a property bag into the node.
func (n *NodeBuilder) Data(data domain.PropertyBag) *NodeBuilder {
	for k, v := range data {
		n.node.Data[k] = v
	}
	return n
}

// Group marks the node as a group block with a label.
func (n *NodeBuilder) Group(label string) *NodeBuilder {
	n.node.Kind = domain.KindGroup
	return n.Set("label", label)
}

// Note marks the node as a sticky note.
func (n *NodeBuilder) Note(text string) *NodeBuilder {
	n.node.Kind = domain.KindNote
	return n.Set("text", text)
}

// SubflowHeader marks the node as the header of a subflow.
func (n *NodeBuilder) SubflowHeader(title string) *NodeBuilder {
	n.node.Kind = domain.KindSubflowHeader
	return n.Set("title", title)
}

// Go adds an edge from this node to target.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.builder.Connect(n.node.ID, target)
	return n
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node.Clone()
}
