// Package graph holds the authoritative workflow document and its primitive mutators.
//
// Every mutator checks all of its preconditions before touching state, so a
// failed call leaves the document exactly as it was.
package graph

import (
	"fmt"
	"time"

	"github.com/aretw0/tapestry/pkg/domain"
	"github.com/aretw0/tapestry/pkg/ports"
)

// Store owns the live (nodes, edges, variables, metadata) tuple.
// It is not safe for concurrent use; callers serialize access.
type Store struct {
	ids   ports.IDGenerator
	clock func() time.Time

	id        string
	name      string
	nodes     []domain.Node
	edges     []domain.Edge
	variables []domain.Variable
	createdAt time.Time
	updatedAt time.Time
}

// NewStore creates an empty document. A nil clock defaults to time.Now.
func NewStore(ids ports.IDGenerator, clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	now := clock()
	return &Store{
		ids:       ids,
		clock:     clock,
		id:        ids.Next(),
		nodes:     []domain.Node{},
		edges:     []domain.Edge{},
		variables: []domain.Variable{},
		createdAt: now,
		updatedAt: now,
	}
}

// NextID draws a fresh identifier from the store's generator.
func (s *Store) NextID() string {
	return s.ids.Next()
}

func (s *Store) touch() {
	s.updatedAt = s.clock()
}

// --- Reads ---

// ID returns the document identifier.
func (s *Store) ID() string { return s.id }

// Name returns the document name.
func (s *Store) Name() string { return s.name }

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (domain.Node, bool) {
	i := s.nodeIndex(id)
	if i < 0 {
		return domain.Node{}, false
	}
	return s.nodes[i].Clone(), true
}

// HasNode reports whether id is a node of the document.
func (s *Store) HasNode(id string) bool {
	return s.nodeIndex(id) >= 0
}

// Nodes returns a deep copy of all nodes in document order.
func (s *Store) Nodes() []domain.Node {
	return domain.CloneNodes(s.nodes)
}

// Edges returns a copy of all edges in document order.
func (s *Store) Edges() []domain.Edge {
	return domain.CloneEdges(s.edges)
}

// IDs returns every node and edge identifier currently in use.
func (s *Store) IDs() map[string]bool {
	out := make(map[string]bool, len(s.nodes)+len(s.edges))
	for _, n := range s.nodes {
		out[n.ID] = true
	}
	for _, e := range s.edges {
		out[e.ID] = true
	}
	return out
}

func (s *Store) nodeIndex(id string) int {
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) edgeIndex(id string) int {
	for i := range s.edges {
		if s.edges[i].ID == id {
			return i
		}
	}
	return -1
}

// --- Node mutators ---

// AddNode appends a node of the given kind with a fresh id.
// data is normalized; values outside the supported variants are rejected.
func (s *Store) AddNode(kind string, pos domain.Position, data domain.PropertyBag) (domain.Node, error) {
	norm, err := data.Normalize()
	if err != nil {
		return domain.Node{}, err
	}
	if norm == nil {
		norm = domain.PropertyBag{}
	}
	n := domain.Node{
		ID:       s.ids.Next(),
		Kind:     kind,
		Position: pos,
		Data:     norm,
	}
	s.nodes = append(s.nodes, n)
	s.touch()
	return n.Clone(), nil
}

// UpdateNodeData merges partial into the node's property bag.
// Keys with a nil value are stored as nil, not deleted.
func (s *Store) UpdateNodeData(id string, partial domain.PropertyBag) error {
	i := s.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	norm, err := partial.Normalize()
	if err != nil {
		return err
	}
	if len(norm) == 0 {
		return nil
	}

	data := s.nodes[i].Data.Clone()
	if data == nil {
		data = domain.PropertyBag{}
	}
	for k, v := range norm {
		data[k] = v
	}
	s.nodes[i].Data = data
	s.touch()
	return nil
}

// SetField is the single-field form of UpdateNodeData.
func (s *Store) SetField(id, key string, value any) error {
	return s.UpdateNodeData(id, domain.PropertyBag{key: value})
}

// SetPosition moves a node.
func (s *Store) SetPosition(id string, pos domain.Position) error {
	i := s.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	if s.nodes[i].Position == pos {
		return nil
	}
	s.nodes[i].Position = pos
	s.touch()
	return nil
}

// DeleteNode removes the node and every edge incident to it.
// It returns the ids of the removed edges.
func (s *Store) DeleteNode(id string) ([]string, error) {
	i := s.nodeIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	s.nodes = append(s.nodes[:i:i], s.nodes[i+1:]...)
	removed := s.removeIncident(map[string]bool{id: true})
	s.touch()
	return removed, nil
}

// DeleteNodes removes every listed node that exists, plus incident edges.
// Unknown ids are ignored. It returns the ids of the removed nodes and edges.
func (s *Store) DeleteNodes(ids []string) (nodes []string, edges []string) {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	kept := make([]domain.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		if set[n.ID] {
			nodes = append(nodes, n.ID)
			continue
		}
		kept = append(kept, n)
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	s.nodes = kept
	edges = s.removeIncident(set)
	s.touch()
	return nodes, edges
}

func (s *Store) removeIncident(ids map[string]bool) []string {
	var removed []string
	kept := make([]domain.Edge, 0, len(s.edges))
	for _, e := range s.edges {
		if ids[e.Source] || ids[e.Target] {
			removed = append(removed, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	s.edges = kept
	return removed
}

// --- Edge mutators ---

// Connect adds a directed edge. A self-loop yields *domain.SelfLoopError and
// leaves the store untouched. Connecting an already connected pair returns
// the existing edge.
func (s *Store) Connect(source, target string) (domain.Edge, error) {
	if source == target {
		return domain.Edge{}, &domain.SelfLoopError{NodeID: source}
	}
	if !s.HasNode(source) {
		return domain.Edge{}, fmt.Errorf("%w: source %s", domain.ErrNodeNotFound, source)
	}
	if !s.HasNode(target) {
		return domain.Edge{}, fmt.Errorf("%w: target %s", domain.ErrNodeNotFound, target)
	}
	for _, e := range s.edges {
		if e.Source == source && e.Target == target {
			return e, nil
		}
	}

	e := domain.Edge{ID: s.ids.Next(), Source: source, Target: target}
	s.edges = append(s.edges, e)
	s.touch()
	return e, nil
}

// Disconnect removes an edge by id.
func (s *Store) Disconnect(edgeID string) error {
	i := s.edgeIndex(edgeID)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrEdgeNotFound, edgeID)
	}
	s.edges = append(s.edges[:i:i], s.edges[i+1:]...)
	s.touch()
	return nil
}

// Insert splices already-identified nodes and edges into the document.
// Every id must be new and every edge must reference a node that exists
// after insertion; otherwise nothing is inserted.
func (s *Store) Insert(nodes []domain.Node, edges []domain.Edge) error {
	used := s.IDs()
	for _, n := range nodes {
		if n.ID == "" || used[n.ID] {
			return fmt.Errorf("insert: node id %q already in use", n.ID)
		}
		used[n.ID] = true
	}
	for _, e := range edges {
		if e.ID == "" || used[e.ID] {
			return fmt.Errorf("insert: edge id %q already in use", e.ID)
		}
		if e.IsSelfLoop() {
			return &domain.SelfLoopError{NodeID: e.Source}
		}
		if !used[e.Source] || !used[e.Target] {
			return fmt.Errorf("insert: edge %s: %w", e.ID, domain.ErrNodeNotFound)
		}
		used[e.ID] = true
	}

	s.nodes = append(s.nodes, domain.CloneNodes(nodes)...)
	s.edges = append(s.edges, domain.CloneEdges(edges)...)
	s.touch()
	return nil
}

// --- Selection ---

// Select marks exactly the given nodes as selected. Unknown ids are ignored.
// It reports whether the selection changed.
func (s *Store) Select(ids ...string) bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	changed := false
	for i := range s.nodes {
		want := set[s.nodes[i].ID]
		if s.nodes[i].Selected != want {
			s.nodes[i].Selected = want
			changed = true
		}
	}
	return changed
}

// Selected returns the ids of the selected nodes in document order.
func (s *Store) Selected() []string {
	out := make([]string, 0)
	for _, n := range s.nodes {
		if n.Selected {
			out = append(out, n.ID)
		}
	}
	return out
}

// --- Document metadata ---

// SetName renames the document.
func (s *Store) SetName(name string) {
	if s.name == name {
		return
	}
	s.name = name
	s.touch()
}

// --- Snapshots ---

// Snapshot returns a deep copy of the editable graph.
func (s *Store) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		Nodes:        domain.CloneNodes(s.nodes),
		Edges:        domain.CloneEdges(s.edges),
		DocumentName: s.name,
	}
}

// Restore replaces nodes, edges and name with a deep copy of snap.
// Variables are not part of snapshots and stay as they are.
func (s *Store) Restore(snap domain.Snapshot) {
	s.nodes = domain.CloneNodes(snap.Nodes)
	s.edges = domain.CloneEdges(snap.Edges)
	s.name = snap.DocumentName
	s.touch()
}

// Document exports a deep copy of the whole document.
func (s *Store) Document() *domain.Document {
	return &domain.Document{
		ID:        s.id,
		Name:      s.name,
		Nodes:     domain.CloneNodes(s.nodes),
		Edges:     domain.CloneEdges(s.edges),
		Variables: domain.CloneVariables(s.variables),
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}

// Replace swaps the whole document for a deep copy of doc. Identifiers are
// kept as they are. A document without id gets a fresh one.
func (s *Store) Replace(doc *domain.Document) {
	d := doc.Clone()
	s.id = d.ID
	if s.id == "" {
		s.id = s.ids.Next()
	}
	s.name = d.Name
	s.nodes = d.Nodes
	s.edges = d.Edges
	s.variables = d.Variables
	s.createdAt = d.CreatedAt
	if s.createdAt.IsZero() {
		s.createdAt = s.clock()
	}
	s.updatedAt = s.clock()
}
