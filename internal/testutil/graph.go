package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mav/genflow/internal/catalog"
	"github.com/mav/genflow/internal/state"
	"github.com/mav/genflow/internal/workflow"
)

// Node builds a workflow node of the given builtin kind with extra data
// fields merged over the kind's defaults.
func Node(t *testing.T, id, kind string, fields workflow.Data) workflow.Node {
	t.Helper()
	nt, ok := catalog.Builtin().Lookup(kind)
	require.True(t, ok, "unknown builtin kind %q", kind)
	n := workflow.NewNode(id, nt, workflow.Position{})
	for k, v := range fields {
		n.Data[k] = v
	}
	return n
}

// Edge builds an edge between two nodes. The edge id is derived from the
// endpoints so tests stay readable.
func Edge(source, sourceHandle, target, targetHandle string) workflow.Edge {
	return workflow.Edge{
		ID:           fmt.Sprintf("%s-%s", source, target),
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	}
}

// NewStore builds a store over the builtin catalog preloaded with the given
// nodes and edges. The loaded state counts as saved, matching a workflow
// freshly read from disk.
func NewStore(t *testing.T, nodes []workflow.Node, edges []workflow.Edge) *state.Store {
	t.Helper()
	s := state.NewStore(catalog.Builtin())
	s.Load(workflow.File{
		Version: workflow.FileVersion,
		Name:    "test",
		Nodes:   nodes,
		Edges:   edges,
	})
	return s
}
