// Package history implements bounded undo/redo over graph snapshots, plus
// the one-shot batch-revert snapshot used by externally driven bulk edits.
// Only durable graph state is tracked: nodes, edges, and groups. Transient
// run-state flags never create history entries.
package history
