package state

import (
	"errors"
	"sync"

	"github.com/mav/genflow/internal/catalog"
	"github.com/mav/genflow/internal/history"
	"github.com/mav/genflow/internal/propagate"
	"github.com/mav/genflow/internal/schedule"
	"github.com/mav/genflow/internal/validate"
	"github.com/mav/genflow/internal/workflow"
)

var (
	// ErrUnknownKind is returned when adding a node of a kind the catalog
	// does not declare.
	ErrUnknownKind = errors.New("unknown node kind")
	// ErrInvalidConnection is returned when a proposed edge fails the
	// typed-handle compatibility rules.
	ErrInvalidConnection = errors.New("invalid connection")
	// ErrNodeNotFound is returned when a mutation names a missing node.
	ErrNodeNotFound = errors.New("node not found")
)

// Store is the workflow state container.
type Store struct {
	mu sync.Mutex

	catalog *catalog.Catalog

	nodes     []workflow.Node
	edges     []workflow.Edge
	groups    []workflow.Group
	edgeStyle string

	name        string
	description string

	// dirty marks unsaved durable changes; transient run-state commits
	// never set it.
	dirty bool

	history *history.History
	batch   history.Batch
}

// NewStore creates an empty store over the given catalog.
func NewStore(cat *catalog.Catalog) *Store {
	s := &Store{catalog: cat, edgeStyle: "default"}
	s.history = history.New(history.Capture(nil, nil, nil))
	return s
}

// Catalog returns the node-type catalog the store validates against.
func (s *Store) Catalog() *catalog.Catalog { return s.catalog }

// Nodes returns a deep copy of the current node list.
func (s *Store) Nodes() []workflow.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return workflow.CloneNodes(s.nodes)
}

// Edges returns a copy of the current edge list.
func (s *Store) Edges() []workflow.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return workflow.CloneEdges(s.edges)
}

// Groups returns a deep copy of the current group list.
func (s *Store) Groups() []workflow.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return workflow.CloneGroups(s.groups)
}

// Node returns a deep copy of one node.
func (s *Store) Node(id string) (workflow.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := workflow.FindNode(s.nodes, id)
	if i < 0 {
		return workflow.Node{}, false
	}
	return s.nodes[i].Clone(), true
}

// Dirty reports whether durable state changed since the last save/load.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// MarkSaved clears the dirty flag after a successful persistence call.
func (s *Store) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

// commit finishes a durable mutation: it marks the graph dirty, offers the
// new state to history (the equality gate decides whether an entry is
// minted), and counts a manual edit against any pending batch snapshot.
// Callers hold s.mu.
func (s *Store) commit() {
	s.dirty = true
	s.history.Push(history.Capture(s.nodes, s.edges, s.groups))
	s.batch.NoteManualEdit()
}

// AddNode creates a node of the given kind with its declared defaults and
// an idle status, and returns its id.
func (s *Store) AddNode(kind string, pos workflow.Position) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nt, ok := s.catalog.Lookup(kind)
	if !ok {
		return "", ErrUnknownKind
	}
	n := workflow.NewNode(workflow.NewID(), nt, pos)
	s.nodes = append(workflow.CloneNodes(s.nodes), n)
	s.commit()
	return n.ID, nil
}

// UpdateNodeData shallow-merges patch into the node's data and propagates
// the node's (possibly changed) output downstream in the same commit.
func (s *Store) UpdateNodeData(id string, patch workflow.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := workflow.FindNode(s.nodes, id)
	if i < 0 {
		return ErrNodeNotFound
	}

	nodes := workflow.CloneNodes(s.nodes)
	nodes[i] = workflow.MergeData(nodes[i], patch)

	if out := propagate.NodeOutput(s.catalog, nodes[i]); out != nil {
		updates := propagate.ComputeDownstreamUpdates(s.catalog, id, out, nodes, s.edges)
		if len(updates) > 0 && propagate.HasStateChanged(nodes, updates) {
			nodes = propagate.ApplyNodeUpdates(nodes, updates)
		}
	}

	s.nodes = nodes
	s.commit()
	return nil
}

// RemoveNode deletes the node, every edge touching it, and its membership
// in any group.
func (s *Store) RemoveNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if workflow.FindNode(s.nodes, id) < 0 {
		return ErrNodeNotFound
	}
	s.nodes, s.edges = workflow.RemoveNode(s.nodes, s.edges, id)

	groups := workflow.CloneGroups(s.groups)
	for gi := range groups {
		members := groups[gi].NodeIDs[:0]
		for _, m := range groups[gi].NodeIDs {
			if m != id {
				members = append(members, m)
			}
		}
		groups[gi].NodeIDs = members
	}
	s.groups = groups

	s.commit()
	return nil
}

// DuplicateNode clones a node under a fresh id, resetting status and
// outputs and cloning only its incoming edges. Returns the new id.
func (s *Store) DuplicateNode(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	newID := workflow.NewID()
	dup, incoming, ok := workflow.DuplicateNode(s.nodes, s.edges, id, newID)
	if !ok {
		return "", ErrNodeNotFound
	}
	s.nodes = append(workflow.CloneNodes(s.nodes), dup)
	s.edges = append(workflow.CloneEdges(s.edges), incoming...)
	s.commit()
	return newID, nil
}

// Connect commits the proposed edge if the connection validator accepts
// it, then propagates the source's current output across the new edge.
func (s *Store) Connect(e workflow.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validate.IsValidConnection(s.catalog, s.nodes, e) {
		return ErrInvalidConnection
	}
	if e.ID == "" {
		e.ID = workflow.NewID()
	}
	if e.Style == "" {
		e.Style = s.edgeStyle
	}

	nodes := workflow.CloneNodes(s.nodes)
	edges := append(workflow.CloneEdges(s.edges), e)

	si := workflow.FindNode(nodes, e.Source)
	if out := propagate.NodeOutput(s.catalog, nodes[si]); out != nil {
		updates := propagate.ComputeDownstreamUpdates(s.catalog, e.Source, out, nodes, edges)
		if len(updates) > 0 && propagate.HasStateChanged(nodes, updates) {
			nodes = propagate.ApplyNodeUpdates(nodes, updates)
		}
	}

	s.nodes = nodes
	s.edges = edges
	s.commit()
	return nil
}

// RemoveEdge deletes one edge by id.
func (s *Store) RemoveEdge(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := workflow.FindEdge(s.edges, id)
	if i < 0 {
		return
	}
	edges := workflow.CloneEdges(s.edges)
	s.edges = append(edges[:i], edges[i+1:]...)
	s.commit()
}

// SetEdgeStyle changes the default style applied to new edges.
func (s *Store) SetEdgeStyle(style string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edgeStyle == style {
		return
	}
	s.edgeStyle = style
	s.dirty = true
}

// Validate runs whole-workflow validation against the current state.
func (s *Store) Validate() validate.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return validate.Workflow(s.catalog, s.nodes, s.edges)
}

// TopologicalOrder returns the node ids in dependency order.
func (s *Store) TopologicalOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return schedule.TopologicalSort(s.nodes, s.edges)
}

// DependencyMap returns each node's direct upstream sources.
func (s *Store) DependencyMap() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return schedule.BuildDependencyMap(s.nodes, s.edges)
}
