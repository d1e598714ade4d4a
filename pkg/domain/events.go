package domain

import (
	"time"
)

// Mutation operations reported through LifecycleHooks.OnMutation.
const (
	OpAddNode        = "add_node"
	OpUpdateNode     = "update_node"
	OpMoveNode       = "move_node"
	OpDeleteNode     = "delete_node"
	OpConnect        = "connect"
	OpDisconnect     = "disconnect"
	OpPaste          = "paste"
	OpLoad           = "load"
	OpMerge          = "merge"
	OpRenameVariable = "rename_variable"
	OpSetVariable    = "set_variable"
	OpDeleteVariable = "delete_variable"
	OpRenameDocument = "rename_document"
)

// History operations reported through LifecycleHooks.OnHistory.
const (
	HistoryRecord = "record"
	HistoryUndo   = "undo"
	HistoryRedo   = "redo"
	HistoryReset  = "reset"
)

// MutationEvent describes an applied change to the live document.
type MutationEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Op        string    `json:"op"`
	NodeIDs   []string  `json:"node_ids,omitempty"`
	EdgeIDs   []string  `json:"edge_ids,omitempty"`
}

// HistoryEvent describes a change of the undo/redo history.
type HistoryEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Op        string        `json:"op"`
	Cursor    int           `json:"cursor"`
	Length    int           `json:"length"`
	Diff      *SnapshotDiff `json:"diff,omitempty"`
}

// TelemetryEvent describes entries pushed into the telemetry buffers.
type TelemetryEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Buffer    string    `json:"buffer"` // "logs" or "rows"
	Accepted  int       `json:"accepted"`
	Dropped   int       `json:"dropped"`
}

// LifecycleHooks defines callbacks for editor observability.
// Hooks run synchronously on the caller's goroutine and must not call back into the editor.
type LifecycleHooks struct {
	OnMutation  func(*MutationEvent)
	OnHistory   func(*HistoryEvent)
	OnTelemetry func(*TelemetryEvent)
}
