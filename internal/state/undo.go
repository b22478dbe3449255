package state

import (
	"github.com/mav/genflow/internal/history"
)

// CanUndo reports whether an undo step is available.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// Undo restores the previous history entry.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

// Redo restores the next history entry.
func (s *Store) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

// CaptureBatch takes the one-shot revert snapshot before an external bulk
// edit begins.
func (s *Store) CaptureBatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch.Capture(history.Capture(s.nodes, s.edges, s.groups))
}

// RevertBatch atomically restores the pre-batch state, if a snapshot is
// still available.
func (s *Store) RevertBatch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.batch.Revert()
	if !ok {
		return false
	}
	s.restore(snap)
	s.history.Push(history.Capture(s.nodes, s.edges, s.groups))
	return true
}

// BatchAvailable reports whether a batch revert is currently possible.
func (s *Store) BatchAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.Available()
}

// restore replaces current graph state with a snapshot. Callers hold s.mu.
func (s *Store) restore(snap history.Snapshot) {
	s.nodes = snap.Nodes
	s.edges = snap.Edges
	s.groups = snap.Groups
	s.dirty = true
}
