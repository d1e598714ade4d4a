// Package history implements a bounded, linear undo/redo stack of document snapshots.
package history

import "github.com/aretw0/tapestry/pkg/domain"

// DefaultCapacity is the maximum number of retained snapshots.
const DefaultCapacity = 50

// History keeps deep snapshots of the document and a cursor into them.
//
// Invariants: 1 <= Len() <= capacity and 0 <= Cursor() < Len().
// Snapshots are cloned on the way in and on the way out, so neither the
// caller nor the live document can alias archived state.
type History struct {
	entries  []domain.Snapshot
	cursor   int
	capacity int
}

// New creates a history seeded with one snapshot.
// A capacity below 1 falls back to DefaultCapacity.
func New(capacity int, seed domain.Snapshot) *History {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	h := &History{capacity: capacity}
	h.Reset(seed)
	return h
}

// Reset discards every entry and seeds the history with snap.
func (h *History) Reset(snap domain.Snapshot) {
	h.entries = []domain.Snapshot{snap.Clone()}
	h.cursor = 0
}

// Record appends snap as the newest entry. Entries after the cursor (the
// redo branch) are discarded first, and the oldest entry is evicted when the
// capacity is reached. If snap equals the entry at the cursor nothing happens
// and Record returns false.
func (h *History) Record(snap domain.Snapshot) bool {
	if h.entries[h.cursor].Equal(snap) {
		return false
	}

	h.entries = h.entries[:h.cursor+1]
	if len(h.entries) >= h.capacity {
		// shift instead of reslicing so the backing array does not grow forever
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, snap.Clone())
	h.cursor = len(h.entries) - 1
	return true
}

// Undo moves the cursor back one entry and returns a copy of it.
// It returns false when already at the oldest entry.
func (h *History) Undo() (domain.Snapshot, bool) {
	if !h.CanUndo() {
		return domain.Snapshot{}, false
	}
	h.cursor--
	return h.entries[h.cursor].Clone(), true
}

// Redo moves the cursor forward one entry and returns a copy of it.
// It returns false when already at the newest entry.
func (h *History) Redo() (domain.Snapshot, bool) {
	if !h.CanRedo() {
		return domain.Snapshot{}, false
	}
	h.cursor++
	return h.entries[h.cursor].Clone(), true
}

// Current returns a copy of the entry at the cursor.
func (h *History) Current() domain.Snapshot {
	return h.entries[h.cursor].Clone()
}

// CanUndo reports whether Undo would move the cursor.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether Redo would move the cursor.
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }

// Len returns the number of retained entries.
func (h *History) Len() int { return len(h.entries) }

// Cursor returns the index of the current entry.
func (h *History) Cursor() int { return h.cursor }

// Capacity returns the configured bound.
func (h *History) Capacity() int { return h.capacity }
