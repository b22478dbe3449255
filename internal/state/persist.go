package state

import (
	"time"

	"github.com/mav/genflow/internal/history"
	"github.com/mav/genflow/internal/propagate"
	"github.com/mav/genflow/internal/workflow"
)

// Load replaces the store contents with a persisted workflow file. Every
// node that already carries an output has its propagation replayed once so
// freshly loaded downstream inputs agree with stored outputs; the replay
// is not a dirtying edit and the history is reseeded from the loaded
// state.
func (s *Store) Load(f workflow.File) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := workflow.CloneNodes(f.Nodes)
	edges := workflow.CloneEdges(f.Edges)
	nodes = propagate.Replay(s.catalog, nodes, edges)

	s.nodes = nodes
	s.edges = edges
	s.groups = workflow.CloneGroups(f.Groups)
	s.edgeStyle = f.EdgeStyle
	if s.edgeStyle == "" {
		s.edgeStyle = "default"
	}
	s.name = f.Name
	s.description = f.Description
	s.dirty = false
	s.history = history.New(history.Capture(s.nodes, s.edges, s.groups))
	s.batch = history.Batch{}
}

// Export captures the current state as a persisted workflow file.
func (s *Store) Export() workflow.File {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	return workflow.File{
		Version:     workflow.FileVersion,
		Name:        s.name,
		Description: s.description,
		Nodes:       workflow.CloneNodes(s.nodes),
		Edges:       workflow.CloneEdges(s.edges),
		EdgeStyle:   s.edgeStyle,
		Groups:      workflow.CloneGroups(s.groups),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SetName updates the workflow's name and description.
func (s *Store) SetName(name, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.name == name && s.description == description {
		return
	}
	s.name = name
	s.description = description
	s.dirty = true
}

// Name returns the workflow name.
func (s *Store) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}
