package history

import (
	"github.com/mav/genflow/internal/workflow"
)

// DefaultLimit caps how many snapshots are retained.
const DefaultLimit = 50

// Snapshot is a deep copy of the undoable graph state.
type Snapshot struct {
	Nodes  []workflow.Node
	Edges  []workflow.Edge
	Groups []workflow.Group
}

// Capture deep-copies the given state into a snapshot.
func Capture(nodes []workflow.Node, edges []workflow.Edge, groups []workflow.Group) Snapshot {
	return Snapshot{
		Nodes:  workflow.CloneNodes(nodes),
		Edges:  workflow.CloneEdges(edges),
		Groups: workflow.CloneGroups(groups),
	}
}

// Clone deep-copies the snapshot so handing it out cannot alias history.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Nodes:  workflow.CloneNodes(s.Nodes),
		Edges:  workflow.CloneEdges(s.Edges),
		Groups: workflow.CloneGroups(s.Groups),
	}
}

// History is an explicit bounded list of snapshots with an undo cursor.
type History struct {
	entries []Snapshot
	// index points at the entry representing current state.
	index int
	limit int
}

// New creates a history seeded with the initial state.
func New(initial Snapshot) *History {
	return &History{entries: []Snapshot{initial}, limit: DefaultLimit}
}

// Push records a new state if it differs from the current entry under the
// snapshot equality rules. Any redo tail is discarded. Returns whether an
// entry was recorded.
func (h *History) Push(s Snapshot) bool {
	if Equal(h.entries[h.index], s) {
		return false
	}
	h.entries = append(h.entries[:h.index+1], s)
	if len(h.entries) > h.limit {
		overflow := len(h.entries) - h.limit
		h.entries = append([]Snapshot(nil), h.entries[overflow:]...)
	}
	h.index = len(h.entries) - 1
	return true
}

// CanUndo reports whether an older state exists.
func (h *History) CanUndo() bool { return h.index > 0 }

// CanRedo reports whether a newer state exists.
func (h *History) CanRedo() bool { return h.index < len(h.entries)-1 }

// Undo steps back one entry and returns a copy of it.
func (h *History) Undo() (Snapshot, bool) {
	if !h.CanUndo() {
		return Snapshot{}, false
	}
	h.index--
	return h.entries[h.index].Clone(), true
}

// Redo steps forward one entry and returns a copy of it.
func (h *History) Redo() (Snapshot, bool) {
	if !h.CanRedo() {
		return Snapshot{}, false
	}
	h.index++
	return h.entries[h.index].Clone(), true
}

// Len returns the number of retained entries.
func (h *History) Len() int { return len(h.entries) }
