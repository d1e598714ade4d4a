// Package telemetry provides the bounded sinks the execution runtime writes into.
package telemetry

import (
	"sync"

	"github.com/aretw0/tapestry/pkg/domain"
)

// Default bounds.
const (
	DefaultLogCapacity = 100
	DefaultPreviewRows = 20
)

// LogBuffer keeps the most recent log entries, evicting the oldest first.
// Safe for concurrent use: the runtime pushes from its own goroutines.
type LogBuffer struct {
	mu      sync.Mutex
	entries []domain.LogEntry
	max     int
	written int64 // total entries ever added (including evicted)
}

// NewLogBuffer creates a log ring. A capacity below 1 uses DefaultLogCapacity.
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity < 1 {
		capacity = DefaultLogCapacity
	}
	return &LogBuffer{
		entries: make([]domain.LogEntry, 0, min(capacity, 64)),
		max:     capacity,
	}
}

// Add appends one entry. It returns how many older entries were evicted.
func (b *LogBuffer) Add(e domain.LogEntry) int {
	return b.AddAll([]domain.LogEntry{e})
}

// AddAll appends entries in order. It returns how many entries were evicted,
// counting incoming entries that were pushed out by later ones in the same batch.
func (b *LogBuffer) AddAll(entries []domain.LogEntry) int {
	if len(entries) == 0 {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, entries...)
	b.written += int64(len(entries))
	evicted := 0
	if over := len(b.entries) - b.max; over > 0 {
		kept := make([]domain.LogEntry, b.max)
		copy(kept, b.entries[over:])
		b.entries = kept
		evicted = over
	}
	return evicted
}

// Entries returns a copy of the buffered entries, oldest first.
func (b *LogBuffer) Entries() []domain.LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.LogEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of buffered entries.
func (b *LogBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// TotalWritten returns the number of entries ever added, evicted ones included.
func (b *LogBuffer) TotalWritten() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.written
}

// Capacity returns the maximum number of buffered entries.
func (b *LogBuffer) Capacity() int { return b.max }

// Clear drops every entry.
func (b *LogBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = b.entries[:0]
	b.written = 0
}

// Preview collects the first rows of a data extraction run. Once full it
// stops accepting rows; nothing is ever evicted.
type Preview struct {
	mu   sync.Mutex
	rows []domain.DataRow
	max  int
}

// NewPreview creates a preview sink. A capacity below 1 uses DefaultPreviewRows.
func NewPreview(capacity int) *Preview {
	if capacity < 1 {
		capacity = DefaultPreviewRows
	}
	return &Preview{rows: make([]domain.DataRow, 0, capacity), max: capacity}
}

// Add appends one row. It reports whether the row was accepted.
func (p *Preview) Add(row domain.DataRow) bool {
	return p.AddAll([]domain.DataRow{row}) == 1
}

// AddAll appends rows until the preview is full and returns how many were accepted.
func (p *Preview) AddAll(rows []domain.DataRow) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	room := p.max - len(p.rows)
	if room <= 0 {
		return 0
	}
	n := min(room, len(rows))
	for _, r := range rows[:n] {
		p.rows = append(p.rows, cloneRow(r))
	}
	return n
}

// Rows returns a copy of the accepted rows.
func (p *Preview) Rows() []domain.DataRow {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.DataRow, len(p.rows))
	for i, r := range p.rows {
		out[i] = cloneRow(r)
	}
	return out
}

// Full reports whether the preview stopped accepting rows.
func (p *Preview) Full() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.rows) >= p.max
}

// Capacity returns the maximum number of rows.
func (p *Preview) Capacity() int { return p.max }

// Clear drops every row so the preview accepts again.
func (p *Preview) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows = p.rows[:0]
}

func cloneRow(r domain.DataRow) domain.DataRow {
	if r == nil {
		return nil
	}
	out := make(domain.DataRow, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
