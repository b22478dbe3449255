package workflow

import (
	"github.com/google/uuid"

	"github.com/mav/genflow/internal/catalog"
)

// NewNode builds a node of the given type with its declared default data
// and an idle status. The caller owns id uniqueness; NewID is the usual
// source.
func NewNode(id string, nt catalog.NodeType, pos Position) Node {
	data := Data{}
	for k, v := range nt.Defaults {
		data[k] = deepCopyValue(v)
	}
	data[FieldStatus] = string(StatusIdle)
	return Node{
		ID:       id,
		Type:     nt.Kind,
		Position: pos,
		Data:     data,
	}
}

// NewID returns a fresh unique identifier for a node, edge, or group.
func NewID() string {
	return uuid.NewString()
}

// MergeData shallow-merges patch into a copy of the node's data record,
// returning the node with the merged copy. The original record is untouched.
func MergeData(n Node, patch Data) Node {
	merged := make(Data, len(n.Data)+len(patch))
	for k, v := range n.Data {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	n.Data = merged
	return n
}

// RemoveNode removes the node and every edge touching it. The input slices
// are not modified.
func RemoveNode(nodes []Node, edges []Edge, id string) ([]Node, []Edge) {
	outNodes := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.ID != id {
			outNodes = append(outNodes, n)
		}
	}
	outEdges := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if e.Source != id && e.Target != id {
			outEdges = append(outEdges, e)
		}
	}
	return outNodes, outEdges
}

// DuplicateNode clones the node under a fresh id with its status and output
// fields reset, and clones only its incoming edges onto the new id.
// Outgoing edges are never duplicated: the copy exists to be re-run, and
// its stale output must not feed the old node's consumers.
func DuplicateNode(nodes []Node, edges []Edge, id, newID string) (Node, []Edge, bool) {
	i := FindNode(nodes, id)
	if i < 0 {
		return Node{}, nil, false
	}

	dup := nodes[i].Clone()
	dup.ID = newID
	dup.Position.X += 40
	dup.Position.Y += 40
	dup.Data[FieldStatus] = string(StatusIdle)
	delete(dup.Data, FieldProgress)
	delete(dup.Data, FieldError)
	for _, f := range OutputFields {
		delete(dup.Data, f)
	}

	var incoming []Edge
	for _, e := range edges {
		if e.Target == id {
			clone := e
			clone.ID = NewID()
			clone.Target = newID
			incoming = append(incoming, clone)
		}
	}
	return dup, incoming, true
}

// LockedNodeIDs returns the set of node ids locked either directly or via a
// locked group.
func LockedNodeIDs(nodes []Node, groups []Group) map[string]bool {
	locked := make(map[string]bool)
	for _, n := range nodes {
		if n.Data.Bool(FieldIsLocked) {
			locked[n.ID] = true
		}
	}
	for _, g := range groups {
		if !g.IsLocked {
			continue
		}
		for _, id := range g.NodeIDs {
			locked[id] = true
		}
	}
	return locked
}
