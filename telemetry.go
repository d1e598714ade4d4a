package tapestry

import "github.com/aretw0/tapestry/pkg/domain"

// Telemetry buffer names reported in domain.TelemetryEvent.
const (
	BufferLogs = "logs"
	BufferRows = "rows"
)

// AddLog appends one execution log entry, evicting the oldest beyond the capacity.
// Safe to call from the runtime's goroutines when no hooks are set.
func (e *Editor) AddLog(entry domain.LogEntry) {
	e.AddLogs([]domain.LogEntry{entry})
}

// AddLogs appends entries in order.
func (e *Editor) AddLogs(entries []domain.LogEntry) {
	if len(entries) == 0 {
		return
	}
	now := e.clock()
	stamped := make([]domain.LogEntry, len(entries))
	for i, entry := range entries {
		if entry.Timestamp.IsZero() {
			entry.Timestamp = now
		}
		stamped[i] = entry
	}
	evicted := e.logs.AddAll(stamped)
	e.emitTelemetry(BufferLogs, len(entries), evicted)
}

// Logs returns the buffered entries, oldest first.
func (e *Editor) Logs() []domain.LogEntry {
	return e.logs.Entries()
}

// AddDataRow appends one preview row. It reports false once the preview is full.
func (e *Editor) AddDataRow(row domain.DataRow) bool {
	return e.AddDataRows([]domain.DataRow{row}) == 1
}

// AddDataRows appends rows until the preview is full and returns how many were accepted.
func (e *Editor) AddDataRows(rows []domain.DataRow) int {
	if len(rows) == 0 {
		return 0
	}
	accepted := e.preview.AddAll(rows)
	e.emitTelemetry(BufferRows, accepted, len(rows)-accepted)
	return accepted
}

// DataRows returns the accepted preview rows.
func (e *Editor) DataRows() []domain.DataRow {
	return e.preview.Rows()
}

// TelemetryStats describes the fill state of the telemetry sinks.
type TelemetryStats struct {
	Logs        int   `json:"logs"`
	LogCapacity int   `json:"log_capacity"`
	LogsWritten int64 `json:"logs_written"` // since the last clear, evicted entries included
	Rows        int   `json:"rows"`
	RowCapacity int   `json:"row_capacity"`
	RowsFull    bool  `json:"rows_full"`
}

// TelemetryStats reports how full the log ring and the data preview are.
func (e *Editor) TelemetryStats() TelemetryStats {
	return TelemetryStats{
		Logs:        e.logs.Len(),
		LogCapacity: e.logs.Capacity(),
		LogsWritten: e.logs.TotalWritten(),
		Rows:        len(e.preview.Rows()),
		RowCapacity: e.preview.Capacity(),
		RowsFull:    e.preview.Full(),
	}
}

// ClearTelemetry empties both buffers, e.g. before a new run.
func (e *Editor) ClearTelemetry() {
	e.logs.Clear()
	e.preview.Clear()
}
