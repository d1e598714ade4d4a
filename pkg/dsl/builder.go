package dsl

import (
	"fmt"

	"github.com/aretw0/tapestry/pkg/domain"
	"github.com/aretw0/tapestry/pkg/schema"
)

// Builder manages the document construction.
type Builder struct {
	id        string
	name      string
	order     []string
	nodes     map[string]*NodeBuilder
	edges     []domain.Edge
	variables []domain.Variable
}

// New creates a new document builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// ID sets the document id.
func (b *Builder) ID(id string) *Builder {
	b.id = id
	return b
}

// Name sets the document name.
func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

// Add creates a new node in the document.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{
			ID:   id,
			Data: domain.PropertyBag{},
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Connect adds an edge. The edge id is "<source>-><target>".
func (b *Builder) Connect(source, target string) *Builder {
	b.edges = append(b.edges, domain.Edge{
		ID:     source + "->" + target,
		Source: source,
		Target: target,
	})
	return b
}

// Variable declares a variable.
func (b *Builder) Variable(name string, value any, typ domain.VariableType) *Builder {
	b.variables = append(b.variables, domain.Variable{
		Name:  name,
		Value: value,
		Type:  typ,
		Scope: domain.ScopeLocal,
	})
	return b
}

// Build assembles the document in declaration order and validates it.
func (b *Builder) Build() (*domain.Document, error) {
	doc := &domain.Document{
		ID:        b.id,
		Name:      b.name,
		Nodes:     make([]domain.Node, 0, len(b.order)),
		Edges:     domain.CloneEdges(b.edges),
		Variables: make([]domain.Variable, 0, len(b.variables)),
	}

	for _, id := range b.order {
		n := b.nodes[id].Build()
		data, err := n.Data.Normalize()
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", id, err)
		}
		n.Data = data
		doc.Nodes = append(doc.Nodes, n)
	}

	for _, v := range b.variables {
		val, err := domain.NormalizeValue(v.Value)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", v.Name, err)
		}
		v.Value = val
		doc.Variables = append(doc.Variables, v)
	}

	if err := schema.ValidateDocument(doc); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return doc, nil
}

// MustBuild is Build for fixtures; it panics on error.
func (b *Builder) MustBuild() *domain.Document {
	doc, err := b.Build()
	if err != nil {
		panic(err)
	}
	return doc
}
