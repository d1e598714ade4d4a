package tapestry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tapestry"
	"github.com/aretw0/tapestry/pkg/adapters/memory"
	"github.com/aretw0/tapestry/pkg/codec"
	"github.com/aretw0/tapestry/pkg/domain"
	"github.com/aretw0/tapestry/pkg/idgen"
	"github.com/aretw0/tapestry/pkg/registry"
	"github.com/aretw0/tapestry/pkg/schema"
)

func newEditor(opts ...tapestry.Option) *tapestry.Editor {
	opts = append([]tapestry.Option{tapestry.WithIDGenerator(idgen.NewSequence("n"))}, opts...)
	return tapestry.New(opts...)
}

func mustAdd(t *testing.T, ed *tapestry.Editor, kind string, x, y float64) domain.Node {
	t.Helper()
	n, err := ed.AddNode(kind, domain.Position{X: x, Y: y})
	require.NoError(t, err)
	return n
}

func ids(doc *domain.Document) map[string]bool {
	out := make(map[string]bool)
	for _, n := range doc.Nodes {
		out[n.ID] = true
	}
	for _, e := range doc.Edges {
		out[e.ID] = true
	}
	return out
}

func TestEditor_CopyPasteScenario(t *testing.T) {
	ed := newEditor()
	a := mustAdd(t, ed, "http", 0, 0)
	b := mustAdd(t, ed, "log", 100, 0)
	ab, err := ed.Connect(a.ID, b.ID)
	require.NoError(t, err)

	ed.Select(a.ID, b.ID)
	require.NotNil(t, ed.Copy(ed.Selected()))
	before := ed.HistoryLen()

	pasted := ed.Paste(&domain.Position{X: 500, Y: 500})
	require.Len(t, pasted, 2)
	assert.Equal(t, before+1, ed.HistoryLen(), "paste is a single history entry")

	p0, _ := ed.Node(pasted[0])
	p1, _ := ed.Node(pasted[1])
	assert.Equal(t, domain.Position{X: 500, Y: 500}, p0.Position)
	assert.Equal(t, domain.Position{X: 600, Y: 500}, p1.Position)

	edges := ed.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, ab, edges[0], "original edge is unchanged")
	assert.Equal(t, pasted[0], edges[1].Source)
	assert.Equal(t, pasted[1], edges[1].Target)

	assert.Equal(t, pasted, ed.Selected())
}

func TestEditor_PasteFreshnessAndTopology(t *testing.T) {
	ed := newEditor()
	a := mustAdd(t, ed, "k", 0, 0)
	b := mustAdd(t, ed, "k", 10, 10)
	c := mustAdd(t, ed, "k", 20, 20)
	_, _ = ed.Connect(a.ID, b.ID)
	_, _ = ed.Connect(b.ID, c.ID) // crosses the selection boundary

	ed.Copy([]string{a.ID, b.ID})
	pre := ids(ed.Document())

	pasted := ed.Paste(nil)
	require.Len(t, pasted, 2)

	post := ed.Document()
	var newEdges []domain.Edge
	for _, e := range post.Edges {
		if !pre[e.ID] {
			newEdges = append(newEdges, e)
		}
	}
	for _, id := range pasted {
		assert.False(t, pre[id], "pasted node id %s reused", id)
	}
	require.Len(t, newEdges, 1, "only the induced edge is pasted")
	assert.Equal(t, pasted[0], newEdges[0].Source)
	assert.Equal(t, pasted[1], newEdges[0].Target)

	// default offset preserves the relative layout
	p0, _ := ed.Node(pasted[0])
	p1, _ := ed.Node(pasted[1])
	assert.Equal(t, domain.Position{X: 50, Y: 50}, p0.Position)
	assert.Equal(t, domain.Position{X: 60, Y: 60}, p1.Position)

	// pasting twice yields distinct ids again
	again := ed.Paste(nil)
	assert.NotEqual(t, pasted, again)
}

func TestEditor_PasteEmptyClipboard(t *testing.T) {
	ed := newEditor()
	assert.Nil(t, ed.Paste(nil))
	assert.Nil(t, ed.Copy([]string{"ghost"}))
	assert.Equal(t, 1, ed.HistoryLen())
}

func TestEditor_UndoRedoInverseLaw(t *testing.T) {
	ed := newEditor()
	initial := ed.Snapshot()

	a := mustAdd(t, ed, "http", 0, 0)
	b := mustAdd(t, ed, "log", 100, 0)
	_, err := ed.Connect(a.ID, b.ID)
	require.NoError(t, err)
	require.NoError(t, ed.MoveNode(b.ID, domain.Position{X: 150, Y: 40}))
	require.NoError(t, ed.OnChange(a.ID, "url", "https://example.com"))
	require.True(t, ed.Record())
	ed.Rename("Scraper")
	require.NoError(t, ed.DeleteNode(a.ID))
	final := ed.Snapshot()

	steps := 0
	for ed.Undo() {
		steps++
	}
	assert.Equal(t, 6, steps)
	assert.True(t, initial.Equal(ed.Snapshot()))

	for i := 0; i < steps; i++ {
		require.True(t, ed.Redo())
	}
	assert.False(t, ed.Redo())
	assert.True(t, final.Equal(ed.Snapshot()))
}

func TestEditor_RecordIdempotent(t *testing.T) {
	ed := newEditor()
	mustAdd(t, ed, "k", 0, 0)
	n := ed.HistoryLen()

	assert.False(t, ed.Record())
	assert.False(t, ed.Record())
	assert.Equal(t, n, ed.HistoryLen())
}

func TestEditor_SelectionIsNotAHistoryEntry(t *testing.T) {
	ed := newEditor()
	a := mustAdd(t, ed, "k", 0, 0)
	b := mustAdd(t, ed, "k", 100, 0)
	n := ed.HistoryLen()

	ed.Select(a.ID, b.ID)
	assert.False(t, ed.Record())
	ed.Select(b.ID)
	assert.False(t, ed.Record())
	assert.Equal(t, n, ed.HistoryLen())

	require.NoError(t, ed.MoveNode(a.ID, domain.Position{X: 5, Y: 5}))
	require.True(t, ed.Record())
	require.True(t, ed.Undo())
	got, ok := ed.Node(a.ID)
	require.True(t, ok)
	assert.Equal(t, domain.Position{X: 0, Y: 0}, got.Position, "one undo reverts the move, not a selection")
}

func TestEditor_HistoryBound(t *testing.T) {
	ed := newEditor()
	for i := 0; i < 75; i++ {
		mustAdd(t, ed, "k", float64(i), 0)
		require.LessOrEqual(t, ed.HistoryLen(), 50)
	}
	assert.Equal(t, 50, ed.HistoryLen())

	for i := 0; i < ed.HistoryLen()-1; i++ {
		require.True(t, ed.Undo())
	}
	assert.False(t, ed.CanUndo())
	assert.Len(t, ed.Nodes(), 26, "oldest retained snapshot holds 26 nodes")
	assert.Equal(t, 50, ed.HistoryCapacity())
}

func TestEditor_NewEditAfterUndoDropsRedo(t *testing.T) {
	ed := newEditor()
	mustAdd(t, ed, "a", 0, 0)
	mustAdd(t, ed, "b", 0, 0)

	require.True(t, ed.Undo())
	require.True(t, ed.CanRedo())

	mustAdd(t, ed, "c", 0, 0)
	assert.False(t, ed.CanRedo())
	assert.Len(t, ed.Nodes(), 2)
}

func TestEditor_SelfLoopRejected(t *testing.T) {
	ed := newEditor()
	a := mustAdd(t, ed, "k", 0, 0)
	n := ed.HistoryLen()

	_, err := ed.Connect(a.ID, a.ID)

	var loop *domain.SelfLoopError
	require.True(t, errors.As(err, &loop))
	assert.Equal(t, a.ID, loop.NodeID)
	assert.Empty(t, ed.Edges())
	assert.Equal(t, n, ed.HistoryLen())
}

func TestEditor_DeleteSelection(t *testing.T) {
	ed := newEditor()
	a := mustAdd(t, ed, "k", 0, 0)
	b := mustAdd(t, ed, "k", 0, 0)
	c := mustAdd(t, ed, "k", 0, 0)
	_, _ = ed.Connect(a.ID, c.ID)

	ed.Select(a.ID, b.ID)
	assert.Equal(t, 2, ed.DeleteSelection())
	assert.Len(t, ed.Nodes(), 1)
	assert.Empty(t, ed.Edges())

	require.True(t, ed.Undo())
	assert.Len(t, ed.Nodes(), 3)
	assert.Len(t, ed.Edges(), 1)

	ed.Select()
	assert.Equal(t, 0, ed.DeleteSelection())
}

func TestEditor_Load(t *testing.T) {
	ed := newEditor()
	mustAdd(t, ed, "k", 0, 0)
	require.Greater(t, ed.HistoryLen(), 1)

	ok := ed.Load([]byte(`{
		"id": "doc-9", "name": "Imported",
		"nodes": [{"id": "x", "type": "BlockGroup", "position": {"x": 1, "y": 2}, "data": {}}],
		"edges": [],
		"variables": [{"name": "host", "value": "a", "type": "string", "scope": "global"}]
	}`))
	require.True(t, ok)

	doc := ed.Document()
	assert.Equal(t, "doc-9", doc.ID)
	assert.Equal(t, "Imported", doc.Name)
	require.Len(t, doc.Nodes, 1)
	assert.Equal(t, "x", doc.Nodes[0].ID, "replace-import keeps ids")
	assert.Equal(t, domain.KindGroup, doc.Nodes[0].Kind)
	assert.Equal(t, 1, ed.HistoryLen())
	assert.False(t, ed.CanUndo())
}

func TestEditor_LoadTakesVariablesWholesale(t *testing.T) {
	payload := []byte(`{
		"nodes": [{"id": "x", "type": "http", "position": {"x": 0, "y": 0}, "data": {"url": "{items[0]}"}}],
		"edges": [],
		"variables": [
			{"name": "items", "value": [1, 2], "type": "array", "scope": "global"},
			{"name": "n", "value": "5", "type": "number"}
		]
	}`)

	loaded := newEditor()
	require.True(t, loaded.Load(payload))

	merged := newEditor()
	require.True(t, merged.Merge(payload, nil))

	want := []domain.Variable{
		{Name: "items", Value: []any{float64(1), float64(2)}, Type: "array", Scope: domain.ScopeGlobal},
		{Name: "n", Value: "5", Type: domain.VarNumber},
	}
	assert.Equal(t, want, loaded.Variables())
	assert.Equal(t, loaded.Variables(), merged.Variables())
	assert.Len(t, loaded.FindUsages("items"), 1)
}

func TestEditor_LoadMalformedLeavesDocument(t *testing.T) {
	ed := newEditor()
	mustAdd(t, ed, "k", 0, 0)
	before := ed.Document()
	history := ed.HistoryLen()

	assert.False(t, ed.Load([]byte(`{"nodes": []}`)))
	assert.False(t, ed.Load([]byte(`not a document: [`)))
	assert.False(t, ed.Load([]byte(`{"nodes": [{"id": "a"}], "edges": [{"id": "e", "source": "a", "target": "a"}]}`)))

	assert.Equal(t, before, ed.Document())
	assert.Equal(t, history, ed.HistoryLen())
}

func TestEditor_MergeCollisionFree(t *testing.T) {
	ed := newEditor()
	a := mustAdd(t, ed, "k", 0, 0)
	b := mustAdd(t, ed, "k", 0, 0)
	_, _ = ed.Connect(a.ID, b.ID)
	require.NoError(t, ed.SetVariable(domain.Variable{Name: "host", Value: "live", Type: domain.VarString}))

	fragment := &domain.Document{
		Nodes: []domain.Node{
			{ID: a.ID, Kind: "k", Position: domain.Position{X: 5, Y: 5}},
			{ID: b.ID, Kind: "note", Position: domain.Position{X: 15, Y: 25}},
		},
		Edges:     []domain.Edge{{ID: "e", Source: a.ID, Target: b.ID}},
		Variables: []domain.Variable{{Name: "host", Value: "incoming"}, {Name: "port", Value: 8080.0}},
	}
	data, err := codec.Encode(fragment, codec.JSON)
	require.NoError(t, err)

	pre := ids(ed.Document())
	history := ed.HistoryLen()

	require.True(t, ed.Merge(data, &domain.Position{X: 200, Y: 200}))
	assert.Equal(t, history+1, ed.HistoryLen())

	post := ids(ed.Document())
	assert.Len(t, post, len(pre)+3)
	for id := range pre {
		assert.True(t, post[id])
	}

	vars := ed.Variables()
	require.Len(t, vars, 2)
	assert.Equal(t, "live", vars[0].Value, "existing variable wins")
	assert.Equal(t, "port", vars[1].Name)

	var offsets []domain.Position
	for _, n := range ed.Nodes() {
		if !pre[n.ID] {
			offsets = append(offsets, n.Position)
		}
	}
	assert.Equal(t, []domain.Position{{X: 200, Y: 200}, {X: 210, Y: 220}}, offsets)

	assert.False(t, ed.Merge([]byte(`{"edges": []}`), nil))
}

func TestEditor_RenameVariableCompleteness(t *testing.T) {
	ed := newEditor()
	n1 := mustAdd(t, ed, "http", 0, 0)
	n2 := mustAdd(t, ed, "log", 0, 0)
	n3 := mustAdd(t, ed, "log", 0, 0)
	require.NoError(t, ed.SetVariable(domain.Variable{Name: "count", Value: 1.0, Type: domain.VarNumber}))

	require.NoError(t, ed.UpdateNodeData(n1.ID, domain.PropertyBag{
		"url":  "/items/{count}?page={count[page + 1]}",
		"body": map[string]any{"total": "{count}"},
	}))
	require.NoError(t, ed.OnChange(n2.ID, "message", "{count2} vs {count[0]}"))
	require.NoError(t, ed.OnChange(n3.ID, "message", "plain"))

	require.Len(t, ed.FindUsages("count"), 3)

	fields, err := ed.RenameVariable("count", "total")
	require.NoError(t, err)
	assert.Equal(t, 3, fields)

	assert.Empty(t, ed.FindUsages("count"))
	usages := ed.FindUsages("total")
	require.Len(t, usages, 3)

	got1, _ := ed.Node(n1.ID)
	assert.Equal(t, "/items/{total}?page={total[page + 1]}", got1.Data["url"])
	assert.Equal(t, map[string]any{"total": "{total}"}, got1.Data["body"])
	got2, _ := ed.Node(n2.ID)
	assert.Equal(t, "{count2} vs {total[0]}", got2.Data["message"])

	vars := ed.Variables()
	require.Len(t, vars, 1)
	assert.Equal(t, "total", vars[0].Name)

	// the rename is a single undoable step
	require.True(t, ed.Undo())
	got1, _ = ed.Node(n1.ID)
	assert.Equal(t, "/items/{count}?page={count[page + 1]}", got1.Data["url"])
}

func TestEditor_UndoRenameKeepsNewDeclaration(t *testing.T) {
	ed := newEditor()
	n := mustAdd(t, ed, "http", 0, 0)
	require.NoError(t, ed.SetVariable(domain.Variable{Name: "x", Type: domain.VarString, Scope: domain.ScopeLocal}))
	require.NoError(t, ed.OnChange(n.ID, "url", "{x}"))

	_, err := ed.RenameVariable("x", "y")
	require.NoError(t, err)
	require.True(t, ed.Undo())

	got, ok := ed.Node(n.ID)
	require.True(t, ok)
	assert.Equal(t, "{x}", got.Data["url"], "placeholders come back with the snapshot")

	vars := ed.Variables()
	require.Len(t, vars, 1)
	assert.Equal(t, "y", vars[0].Name, "variables are not part of snapshots")
	assert.Len(t, ed.FindUsages("x"), 1)
	assert.Empty(t, ed.FindUsages("y"))
}

func TestEditor_RenameVariableErrors(t *testing.T) {
	ed := newEditor()
	require.NoError(t, ed.SetVariable(domain.Variable{Name: "a"}))
	require.NoError(t, ed.SetVariable(domain.Variable{Name: "b"}))

	_, err := ed.RenameVariable("a", "b")
	assert.ErrorIs(t, err, domain.ErrVariableExists)

	_, err = ed.RenameVariable("a", "bad{name")
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	n, err := ed.RenameVariable("a", "a")
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestEditor_SetVariable(t *testing.T) {
	ed := newEditor()

	require.NoError(t, ed.SetVariable(domain.Variable{Name: "retries", Value: 3, Type: domain.VarNumber}))
	require.NoError(t, ed.SetVariable(domain.Variable{Name: "retries", Value: 5, Type: domain.VarNumber}))
	vars := ed.Variables()
	require.Len(t, vars, 1)
	assert.Equal(t, 5.0, vars[0].Value)

	err := ed.SetVariable(domain.Variable{Name: "flag", Value: "yes", Type: domain.VarBoolean})
	var ve *schema.ValidationError
	assert.True(t, errors.As(err, &ve))

	assert.ErrorIs(t, ed.DeleteVariable("ghost"), domain.ErrVariableNotFound)
	require.NoError(t, ed.DeleteVariable("retries"))
	assert.Empty(t, ed.Variables())
}

func TestEditor_Telemetry(t *testing.T) {
	var events []domain.TelemetryEvent
	ed := newEditor(tapestry.WithLifecycleHooks(domain.LifecycleHooks{
		OnTelemetry: func(e *domain.TelemetryEvent) { events = append(events, *e) },
	}))

	for i := 0; i < 120; i++ {
		ed.AddLog(domain.LogEntry{Level: "info", Message: fmt.Sprintf("step %d", i)})
	}
	logs := ed.Logs()
	require.Len(t, logs, 100)
	assert.Equal(t, "step 20", logs[0].Message)
	assert.False(t, logs[0].Timestamp.IsZero())

	rows := make([]domain.DataRow, 25)
	for i := range rows {
		rows[i] = domain.DataRow{"i": i}
	}
	assert.Equal(t, 20, ed.AddDataRows(rows))
	assert.False(t, ed.AddDataRow(domain.DataRow{"late": true}))
	assert.Len(t, ed.DataRows(), 20)

	last := events[len(events)-1]
	assert.Equal(t, tapestry.BufferRows, last.Buffer)
	assert.Equal(t, 1, last.Dropped)

	assert.Equal(t, tapestry.TelemetryStats{
		Logs:        100,
		LogCapacity: 100,
		LogsWritten: 120,
		Rows:        20,
		RowCapacity: 20,
		RowsFull:    true,
	}, ed.TelemetryStats())

	ed.ClearTelemetry()
	assert.Empty(t, ed.Logs())
	assert.True(t, ed.AddDataRow(domain.DataRow{"again": true}))

	stats := ed.TelemetryStats()
	assert.Equal(t, int64(0), stats.LogsWritten)
	assert.False(t, stats.RowsFull)
}

func TestEditor_SharedClipboard(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	src := newEditor(tapestry.WithClipboardStore(store, "user-1"))
	a := mustAdd(t, src, "http", 0, 0)
	b := mustAdd(t, src, "log", 100, 0)
	_, _ = src.Connect(a.ID, b.ID)

	assert.ErrorIs(t, src.ShareClipboard(ctx), domain.ErrClipboardEmpty)
	src.Copy([]string{a.ID, b.ID})
	require.NoError(t, src.ShareClipboard(ctx))

	dst := tapestry.New(tapestry.WithClipboardStore(store, "user-1"))
	pasted, err := dst.PasteShared(ctx, &domain.Position{X: 500, Y: 500})
	require.NoError(t, err)
	require.Len(t, pasted, 2)
	assert.Len(t, dst.Edges(), 1)

	_, err = newEditor().PasteShared(ctx, nil)
	assert.ErrorIs(t, err, tapestry.ErrNoClipboardStore)
}

func TestEditor_RegistryDefaultsAndSchema(t *testing.T) {
	reg := registry.NewRegistry()
	require.NoError(t, reg.Register(registry.Kind{
		Name:     "delay",
		Defaults: func() domain.PropertyBag { return domain.PropertyBag{"ms": 1000} },
		Schema:   schema.Schema{"ms": schema.Number()},
	}))
	ed := newEditor(tapestry.WithRegistry(reg))

	n := mustAdd(t, ed, "delay", 0, 0)
	assert.Equal(t, 1000.0, n.Data["ms"])

	assert.Error(t, ed.OnChange(n.ID, "ms", "soon"))
	assert.NoError(t, ed.OnChange(n.ID, "ms", 250))
	assert.ErrorIs(t, ed.OnChange("ghost", "ms", 1), domain.ErrNodeNotFound)
}

func TestEditor_Hooks(t *testing.T) {
	var ops []string
	var history []string
	ed := newEditor(tapestry.WithLifecycleHooks(domain.LifecycleHooks{
		OnMutation: func(e *domain.MutationEvent) { ops = append(ops, e.Op) },
		OnHistory: func(e *domain.HistoryEvent) {
			history = append(history, e.Op)
			if e.Op == domain.HistoryRecord {
				assert.False(t, e.Diff.IsEmpty())
			}
		},
	}))

	a := mustAdd(t, ed, "k", 0, 0)
	_, _ = ed.Connect(a.ID, a.ID)
	ed.Undo()

	assert.Equal(t, []string{domain.OpAddNode}, ops)
	assert.Equal(t, []string{domain.HistoryRecord, domain.HistoryUndo}, history)
}

func TestEditor_Export(t *testing.T) {
	ed := newEditor()
	mustAdd(t, ed, "note", 0, 0)
	ed.Rename("flow")

	data, err := ed.Export(codec.YAML)
	require.NoError(t, err)
	assert.Contains(t, string(data), "type: BlockNote")

	other := tapestry.New()
	require.True(t, other.Load(data))
	want, got := ed.Nodes(), other.Nodes()
	require.Len(t, got, 1)
	assert.Equal(t, want[0].ID, got[0].ID)
	assert.Equal(t, domain.KindNote, got[0].Kind)
	assert.Equal(t, want[0].Position, got[0].Position)
	assert.Equal(t, "flow", other.Document().Name)
}
