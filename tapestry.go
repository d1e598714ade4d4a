package tapestry

import (
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/tapestry/internal/config"
	"github.com/aretw0/tapestry/internal/graph"
	"github.com/aretw0/tapestry/internal/history"
	"github.com/aretw0/tapestry/internal/logging"
	"github.com/aretw0/tapestry/internal/merge"
	"github.com/aretw0/tapestry/internal/telemetry"
	"github.com/aretw0/tapestry/internal/varref"
	"github.com/aretw0/tapestry/pkg/domain"
	"github.com/aretw0/tapestry/pkg/idgen"
	"github.com/aretw0/tapestry/pkg/ports"
	"github.com/aretw0/tapestry/pkg/registry"
)

// Version is the release of the module, overridden at link time with
// -ldflags "-X github.com/aretw0/tapestry.Version=...".
var Version = "0.1.0"

// ErrNoClipboardStore is returned by the shared clipboard operations when the
// editor was built without WithClipboardStore.
var ErrNoClipboardStore = errors.New("no shared clipboard store configured")

// DefaultClipboardKey is the key used for the shared clipboard when none is given.
const DefaultClipboardKey = "default"

// MergeReport describes what a merge-import spliced into the document.
type MergeReport = merge.Report

// Usage is one property field referencing a variable.
type Usage = varref.Usage

// Editor is the document/graph state engine behind a workflow canvas.
//
// It owns one document, its bounded undo/redo history, a local clipboard and
// the telemetry sinks fed by the execution runtime. Every mutator runs to
// completion and leaves the document consistent on error. An Editor is not
// safe for concurrent use; serialize access (see pkg/session).
type Editor struct {
	store   *graph.Store
	history *history.History
	logs    *telemetry.LogBuffer
	preview *telemetry.Preview

	clip      *domain.ClipboardPayload
	clipStore ports.ClipboardStore
	clipKey   string

	ids         ports.IDGenerator
	registry    *registry.Registry
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	clock       func() time.Time
	historyCap  int
	logCap      int
	previewRows int
	pasteOffset domain.Position
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithIDGenerator injects the identifier source (default: ULIDs).
func WithIDGenerator(gen ports.IDGenerator) Option {
	return func(e *Editor) {
		e.ids = gen
	}
}

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithHistoryCapacity bounds the number of retained snapshots (default 50).
func WithHistoryCapacity(n int) Option {
	return func(e *Editor) {
		e.historyCap = n
	}
}

// WithPasteOffset sets the displacement used when pasting without a drop position (default +50,+50).
func WithPasteOffset(offset domain.Position) Option {
	return func(e *Editor) {
		e.pasteOffset = offset
	}
}

// WithLogCapacity bounds the execution log ring (default 100).
func WithLogCapacity(n int) Option {
	return func(e *Editor) {
		e.logCap = n
	}
}

// WithPreviewRows bounds the data preview (default 20).
func WithPreviewRows(n int) Option {
	return func(e *Editor) {
		e.previewRows = n
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithRegistry provides per-kind default data and field schemas.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Editor) {
		e.registry = r
	}
}

// WithClipboardStore enables ShareClipboard and PasteShared through store,
// under key (DefaultClipboardKey when empty).
func WithClipboardStore(store ports.ClipboardStore, key string) Option {
	return func(e *Editor) {
		e.clipStore = store
		e.clipKey = key
	}
}

// WithClock overrides time.Now, for deterministic timestamps in tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Editor) {
		e.clock = clock
	}
}

// WithConfig applies capacities, paste offset and id format from a loaded configuration.
func WithConfig(cfg config.Config) Option {
	return func(e *Editor) {
		e.historyCap = cfg.HistoryCapacity
		e.logCap = cfg.LogCapacity
		e.previewRows = cfg.PreviewRows
		if cfg.PasteOffset != nil {
			e.pasteOffset = domain.Position{X: cfg.PasteOffset.X, Y: cfg.PasteOffset.Y}
		}
		if gen, err := idgen.New(cfg.IDFormat); err == nil {
			e.ids = gen
		}
	}
}

// New builds an isolated editor holding an empty document.
func New(opts ...Option) *Editor {
	e := &Editor{
		historyCap:  history.DefaultCapacity,
		logCap:      telemetry.DefaultLogCapacity,
		previewRows: telemetry.DefaultPreviewRows,
		pasteOffset: domain.Position{X: config.DefaultPasteOffset, Y: config.DefaultPasteOffset},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.ids == nil {
		e.ids = idgen.NewULID()
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.clipKey == "" {
		e.clipKey = DefaultClipboardKey
	}

	e.store = graph.NewStore(e.ids, e.clock)
	e.history = history.New(e.historyCap, e.store.Snapshot())
	e.logs = telemetry.NewLogBuffer(e.logCap)
	e.preview = telemetry.NewPreview(e.previewRows)
	e.logger = e.logger.With("document", e.store.ID())
	return e
}

// --- Reads ---

// Document returns a deep copy of the live document.
func (e *Editor) Document() *domain.Document {
	return e.store.Document()
}

// Snapshot returns a deep copy of the editable graph.
func (e *Editor) Snapshot() domain.Snapshot {
	return e.store.Snapshot()
}

// Node returns a copy of one node.
func (e *Editor) Node(id string) (domain.Node, bool) {
	return e.store.Node(id)
}

// Nodes returns a copy of every node in document order.
func (e *Editor) Nodes() []domain.Node {
	return e.store.Nodes()
}

// Edges returns a copy of every edge in document order.
func (e *Editor) Edges() []domain.Edge {
	return e.store.Edges()
}

// --- History ---

// Record captures the current document as a new history entry. It is a no-op,
// returning false, when nothing changed since the entry at the cursor.
func (e *Editor) Record() bool {
	var prev domain.Snapshot
	if e.hooks.OnHistory != nil {
		prev = e.history.Current()
	}
	cur := e.store.Snapshot()
	if !e.history.Record(cur) {
		return false
	}
	e.logger.Debug("history recorded", "cursor", e.history.Cursor(), "length", e.history.Len())
	if e.hooks.OnHistory != nil {
		e.emitHistory(domain.HistoryRecord, domain.Diff(&prev, &cur))
	}
	return true
}

// Undo restores the previous history entry. It returns false at the oldest entry.
func (e *Editor) Undo() bool {
	return e.step(domain.HistoryUndo, e.history.Undo)
}

// Redo restores the next history entry. It returns false at the newest entry.
func (e *Editor) Redo() bool {
	return e.step(domain.HistoryRedo, e.history.Redo)
}

func (e *Editor) step(op string, move func() (domain.Snapshot, bool)) bool {
	var prev domain.Snapshot
	if e.hooks.OnHistory != nil {
		prev = e.store.Snapshot()
	}
	snap, ok := move()
	if !ok {
		return false
	}
	e.store.Restore(snap)
	e.logger.Debug("history "+op, "cursor", e.history.Cursor(), "length", e.history.Len())
	if e.hooks.OnHistory != nil {
		e.emitHistory(op, domain.Diff(&prev, &snap))
	}
	return true
}

// CanUndo reports whether Undo would change the document.
func (e *Editor) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether Redo would change the document.
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// HistoryLen returns the number of retained snapshots.
func (e *Editor) HistoryLen() int { return e.history.Len() }

// HistoryCursor returns the index of the current snapshot.
func (e *Editor) HistoryCursor() int { return e.history.Cursor() }

// HistoryCapacity returns the maximum number of retained snapshots.
func (e *Editor) HistoryCapacity() int { return e.history.Capacity() }

func (e *Editor) resetHistory() {
	e.history.Reset(e.store.Snapshot())
	e.emitHistory(domain.HistoryReset, nil)
}

// --- Hooks ---

func (e *Editor) emitMutation(op string, nodeIDs, edgeIDs []string) {
	if e.hooks.OnMutation == nil {
		return
	}
	e.hooks.OnMutation(&domain.MutationEvent{
		Timestamp: e.clock(),
		Op:        op,
		NodeIDs:   nodeIDs,
		EdgeIDs:   edgeIDs,
	})
}

func (e *Editor) emitHistory(op string, diff *domain.SnapshotDiff) {
	if e.hooks.OnHistory == nil {
		return
	}
	e.hooks.OnHistory(&domain.HistoryEvent{
		Timestamp: e.clock(),
		Op:        op,
		Cursor:    e.history.Cursor(),
		Length:    e.history.Len(),
		Diff:      diff,
	})
}

func (e *Editor) emitTelemetry(buffer string, accepted, dropped int) {
	if e.hooks.OnTelemetry == nil {
		return
	}
	e.hooks.OnTelemetry(&domain.TelemetryEvent{
		Timestamp: e.clock(),
		Buffer:    buffer,
		Accepted:  accepted,
		Dropped:   dropped,
	})
}
