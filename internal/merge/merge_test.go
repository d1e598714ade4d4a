package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tapestry/internal/graph"
	"github.com/aretw0/tapestry/pkg/domain"
	"github.com/aretw0/tapestry/pkg/idgen"
)

func liveStore(t *testing.T) *graph.Store {
	t.Helper()
	s := graph.NewStore(idgen.NewSequence("n"), func() time.Time { return time.Unix(0, 0) })
	a, err := s.AddNode("http", domain.Position{X: 0, Y: 0}, nil)
	require.NoError(t, err)
	b, err := s.AddNode("log", domain.Position{X: 100, Y: 0}, nil)
	require.NoError(t, err)
	_, err = s.Connect(a.ID, b.ID)
	require.NoError(t, err)
	_, err = s.SetVariable(domain.Variable{Name: "host", Value: "live"})
	require.NoError(t, err)
	return s
}

// incoming deliberately reuses the ids of the live store.
func incoming() *domain.Document {
	return &domain.Document{
		Name: "fragment",
		Nodes: []domain.Node{
			{ID: "n2", Kind: "GroupNode", Position: domain.Position{X: 10, Y: 20}},
			{ID: "n3", Kind: "http", Position: domain.Position{X: 60, Y: 80}},
		},
		Edges: []domain.Edge{
			{ID: "n4", Source: "n2", Target: "n3"},
			{ID: "bad", Source: "n3", Target: "ghost"},
		},
		Variables: []domain.Variable{
			{Name: "host", Value: "incoming"},
			{Name: "token", Value: "abc"},
		},
	}
}

func TestMerge_CollisionFree(t *testing.T) {
	s := liveStore(t)
	before := s.IDs()

	rep, err := Merge(s, incoming(), idgen.NewSequence("n"), nil)
	require.NoError(t, err)

	require.Len(t, rep.Nodes, 2)
	require.Len(t, rep.Edges, 1)
	for _, id := range append(rep.Nodes, rep.Edges...) {
		assert.False(t, before[id], "id %s collides with live document", id)
	}

	after := s.IDs()
	assert.Len(t, after, len(before)+3)
	for id := range before {
		assert.True(t, after[id])
	}
	assert.Equal(t, []string{"bad"}, rep.DroppedEdges)
}

func TestMerge_RemapsEdgesAndKinds(t *testing.T) {
	s := liveStore(t)

	rep, err := Merge(s, incoming(), idgen.NewSequence("n"), nil)
	require.NoError(t, err)

	group, ok := s.Node(rep.IDs["n2"])
	require.True(t, ok)
	assert.Equal(t, domain.KindGroup, group.Kind)
	assert.Equal(t, domain.Position{X: 10, Y: 20}, group.Position)

	var merged domain.Edge
	for _, e := range s.Edges() {
		if e.ID == rep.Edges[0] {
			merged = e
		}
	}
	assert.Equal(t, rep.IDs["n2"], merged.Source)
	assert.Equal(t, rep.IDs["n3"], merged.Target)
}

func TestMerge_OffsetToDropPosition(t *testing.T) {
	s := liveStore(t)

	rep, err := Merge(s, incoming(), idgen.NewSequence("n"), &domain.Position{X: 300, Y: 300})
	require.NoError(t, err)
	assert.Equal(t, domain.Position{X: 290, Y: 280}, rep.Offset)

	n, _ := s.Node(rep.IDs["n2"])
	assert.Equal(t, domain.Position{X: 300, Y: 300}, n.Position)
	m, _ := s.Node(rep.IDs["n3"])
	assert.Equal(t, domain.Position{X: 350, Y: 360}, m.Position)
}

func TestMerge_ExistingVariableWins(t *testing.T) {
	s := liveStore(t)

	rep, err := Merge(s, incoming(), idgen.NewSequence("n"), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"host"}, rep.DroppedVariables)
	v, _ := s.Variable("host")
	assert.Equal(t, "live", v.Value)
	_, ok := s.Variable("token")
	assert.True(t, ok)
}

func TestMerge_Nil(t *testing.T) {
	s := liveStore(t)
	_, err := Merge(s, nil, idgen.NewSequence("x"), nil)
	assert.ErrorIs(t, err, domain.ErrMalformedDocument)
}

func TestReplace(t *testing.T) {
	s := liveStore(t)

	doc := &domain.Document{
		ID:    "doc",
		Name:  "loaded",
		Nodes: []domain.Node{{ID: "x", Kind: "BlockNote"}, {ID: "y", Kind: "http"}},
		Edges: []domain.Edge{{ID: "xy", Source: "x", Target: "y"}},
	}
	require.NoError(t, Replace(s, doc))

	assert.Equal(t, "loaded", s.Name())
	n, ok := s.Node("x")
	require.True(t, ok)
	assert.Equal(t, domain.KindNote, n.Kind)
	assert.Empty(t, s.Variables())
}

func TestReplace_InvalidLeavesStoreUntouched(t *testing.T) {
	s := liveStore(t)
	before := s.Document()

	doc := &domain.Document{
		Nodes: []domain.Node{{ID: "x"}},
		Edges: []domain.Edge{{ID: "xx", Source: "x", Target: "x"}},
	}
	err := Replace(s, doc)
	require.ErrorIs(t, err, domain.ErrMalformedDocument)
	assert.Equal(t, before, s.Document())

	assert.ErrorIs(t, Replace(s, nil), domain.ErrMalformedDocument)
}

func TestReplace_VariablesTakenWholesale(t *testing.T) {
	s := liveStore(t)

	doc := &domain.Document{
		Nodes: []domain.Node{{ID: "x", Kind: "http"}},
		Edges: []domain.Edge{},
		Variables: []domain.Variable{
			{Name: "items", Type: "array", Value: []any{1.0}},
			{Name: "n", Type: domain.VarNumber, Value: "5"},
			{Name: ""},
			{Name: "n", Type: domain.VarNumber, Value: 6.0},
		},
	}
	require.NoError(t, Replace(s, doc))

	assert.Equal(t, []domain.Variable{
		{Name: "items", Type: "array", Value: []any{1.0}},
		{Name: "n", Type: domain.VarNumber, Value: 6.0},
	}, s.Variables())
	assert.Len(t, doc.Variables, 4, "input document is not modified")
}
