// Package workflow defines the graph data model: nodes, edges, groups, node
// data records, and the persisted file format. Everything here is plain
// data plus pure helper functions; the mutable state container lives in
// internal/state.
package workflow
