package state

import (
	"time"

	"github.com/mav/genflow/internal/propagate"
	"github.com/mav/genflow/internal/workflow"
)

// ApplyRunState merges transient execution state (status, progress, error)
// into a node. It neither dirties the graph nor offers the result to
// history: a progress tick is not an edit.
func (s *Store) ApplyRunState(id string, patch workflow.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := workflow.FindNode(s.nodes, id)
	if i < 0 {
		return ErrNodeNotFound
	}
	nodes := workflow.CloneNodes(s.nodes)
	nodes[i] = workflow.MergeData(nodes[i], patch)
	s.nodes = nodes
	return nil
}

// ApplyNodeOutput merges a completed node's result patch and, when doPropagate
// is set, pushes the node's new canonical output downstream in the same
// commit. Output changes are durable (they persist with the graph) so the
// dirty flag is set, but no history entry is minted: run results are not
// undoable edits.
func (s *Store) ApplyNodeOutput(id string, patch workflow.Data, doPropagate bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := workflow.FindNode(s.nodes, id)
	if i < 0 {
		return ErrNodeNotFound
	}
	nodes := workflow.CloneNodes(s.nodes)
	nodes[i] = workflow.MergeData(nodes[i], patch)

	if doPropagate {
		if out := propagate.NodeOutput(s.catalog, nodes[i]); out != nil {
			updates := propagate.ComputeDownstreamUpdates(s.catalog, id, out, nodes, s.edges)
			if len(updates) > 0 && propagate.HasStateChanged(nodes, updates) {
				nodes = propagate.ApplyNodeUpdates(nodes, updates)
			}
		}
	}

	s.nodes = nodes
	s.dirty = true
	return nil
}

// ResetNodes forces the given nodes back to idle, clearing progress and
// error. Used by cancellation, which is never reported as a failure.
func (s *Store) ResetNodes(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := workflow.CloneNodes(s.nodes)
	for _, id := range ids {
		i := workflow.FindNode(nodes, id)
		if i < 0 {
			continue
		}
		nodes[i] = workflow.MergeData(nodes[i], workflow.Data{
			workflow.FieldStatus: string(workflow.StatusIdle),
		})
		delete(nodes[i].Data, workflow.FieldProgress)
		delete(nodes[i].Data, workflow.FieldError)
	}
	s.nodes = nodes
}

// LockNode freezes a node and caches its current output so consumers keep
// seeing it while locked.
func (s *Store) LockNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := workflow.FindNode(s.nodes, id)
	if i < 0 {
		return ErrNodeNotFound
	}
	nodes := workflow.CloneNodes(s.nodes)
	patch := workflow.Data{
		workflow.FieldIsLocked:      true,
		workflow.FieldLockTimestamp: time.Now().UnixMilli(),
	}
	if out, ok := propagate.NodeOutput(s.catalog, nodes[i]).(string); ok {
		patch[workflow.FieldCachedOutput] = out
	}
	nodes[i] = workflow.MergeData(nodes[i], patch)
	s.nodes = nodes
	s.dirty = true
	return nil
}

// UnlockNode releases a locked node and drops its cached output.
func (s *Store) UnlockNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := workflow.FindNode(s.nodes, id)
	if i < 0 {
		return ErrNodeNotFound
	}
	nodes := workflow.CloneNodes(s.nodes)
	nodes[i] = workflow.MergeData(nodes[i], workflow.Data{workflow.FieldIsLocked: false})
	delete(nodes[i].Data, workflow.FieldCachedOutput)
	delete(nodes[i].Data, workflow.FieldLockTimestamp)
	s.nodes = nodes
	s.dirty = true
	return nil
}
