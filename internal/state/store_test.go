package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mav/genflow/internal/catalog"
	"github.com/mav/genflow/internal/state"
	"github.com/mav/genflow/internal/testutil"
	"github.com/mav/genflow/internal/workflow"
)

// promptToGen returns a store holding a populated prompt wired into an
// image generator.
func promptToGen(t *testing.T) *state.Store {
	t.Helper()
	return testutil.NewStore(t,
		[]workflow.Node{
			testutil.Node(t, "p", catalog.KindPrompt, workflow.Data{workflow.FieldPrompt: "cat"}),
			testutil.Node(t, "gen", catalog.KindImageGen, workflow.Data{workflow.FieldInputPrompt: "cat"}),
		},
		[]workflow.Edge{testutil.Edge("p", "text", "gen", "prompt")},
	)
}

func TestStore_AddNode(t *testing.T) {
	s := state.NewStore(catalog.Builtin())

	id, err := s.AddNode(catalog.KindPrompt, workflow.Position{X: 1, Y: 2})
	require.NoError(t, err)

	n, ok := s.Node(id)
	require.True(t, ok)
	assert.Equal(t, catalog.KindPrompt, n.Type)
	assert.Equal(t, workflow.StatusIdle, n.Data.Status())
	assert.True(t, s.Dirty())
	assert.True(t, s.CanUndo())

	t.Run("unknown kind", func(t *testing.T) {
		_, err := s.AddNode("teleporter", workflow.Position{})
		assert.ErrorIs(t, err, state.ErrUnknownKind)
	})
}

func TestStore_UpdateNodeData(t *testing.T) {
	s := promptToGen(t)

	require.NoError(t, s.UpdateNodeData("p", workflow.Data{workflow.FieldPrompt: "dog"}))

	t.Run("edit and ripple land in one commit", func(t *testing.T) {
		gen, _ := s.Node("gen")
		assert.Equal(t, "dog", gen.Data.String(workflow.FieldInputPrompt))

		// One undo removes both the edit and its ripple.
		require.True(t, s.Undo())
		p, _ := s.Node("p")
		gen, _ = s.Node("gen")
		assert.Equal(t, "cat", p.Data.String(workflow.FieldPrompt))
		assert.Equal(t, "cat", gen.Data.String(workflow.FieldInputPrompt))
	})

	t.Run("missing node", func(t *testing.T) {
		assert.ErrorIs(t, s.UpdateNodeData("ghost", nil), state.ErrNodeNotFound)
	})
}

func TestStore_Connect(t *testing.T) {
	t.Run("valid edge propagates existing output", func(t *testing.T) {
		s := testutil.NewStore(t,
			[]workflow.Node{
				testutil.Node(t, "gen", catalog.KindImageGen, workflow.Data{workflow.FieldOutputImage: "x.png"}),
				testutil.Node(t, "vid", catalog.KindVideoGen, nil),
			},
			nil,
		)

		require.NoError(t, s.Connect(testutil.Edge("gen", "image", "vid", "image")))
		vid, _ := s.Node("vid")
		assert.Equal(t, "x.png", vid.Data.String(workflow.FieldInputImage))
		assert.Len(t, s.Edges(), 1)
	})

	t.Run("incompatible categories rejected", func(t *testing.T) {
		s := promptToGen(t)
		err := s.Connect(testutil.Edge("p", "text", "gen", "images"))
		assert.ErrorIs(t, err, state.ErrInvalidConnection)
		assert.Len(t, s.Edges(), 1)
	})

	t.Run("new edge inherits the default style", func(t *testing.T) {
		s := promptToGen(t)
		s.SetEdgeStyle("step")
		require.NoError(t, s.Connect(workflow.Edge{
			Source: "p", SourceHandle: "text",
			Target: "gen", TargetHandle: "prompt",
		}))
		edges := s.Edges()
		last := edges[len(edges)-1]
		assert.Equal(t, "step", last.Style)
		assert.NotEmpty(t, last.ID)
	})
}

func TestStore_RemoveNode(t *testing.T) {
	s := promptToGen(t)
	gid := s.AddGroup("pair", "", []string{"p", "gen"})

	require.NoError(t, s.RemoveNode("gen"))

	assert.Len(t, s.Nodes(), 1)
	assert.Empty(t, s.Edges())
	groups := s.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, gid, groups[0].ID)
	assert.Equal(t, []string{"p"}, groups[0].NodeIDs)
}

func TestStore_DuplicateNode(t *testing.T) {
	s := promptToGen(t)
	require.NoError(t, s.ApplyNodeOutput("gen", workflow.Data{workflow.FieldOutputImage: "x.png"}, false))

	dupID, err := s.DuplicateNode("gen")
	require.NoError(t, err)

	dup, ok := s.Node(dupID)
	require.True(t, ok)
	assert.NotContains(t, dup.Data, workflow.FieldOutputImage)
	assert.Equal(t, workflow.StatusIdle, dup.Data.Status())

	// The incoming prompt edge was cloned onto the duplicate.
	incoming := 0
	for _, e := range s.Edges() {
		if e.Target == dupID {
			incoming++
			assert.Equal(t, "p", e.Source)
		}
	}
	assert.Equal(t, 1, incoming)
}

func TestStore_RunStateIsTransient(t *testing.T) {
	s := promptToGen(t)
	require.False(t, s.Dirty())
	require.False(t, s.CanUndo())

	require.NoError(t, s.ApplyRunState("gen", workflow.Data{
		workflow.FieldStatus:   string(workflow.StatusProcessing),
		workflow.FieldProgress: 0.4,
	}))

	gen, _ := s.Node("gen")
	assert.Equal(t, workflow.StatusProcessing, gen.Data.Status())
	// Progress ticks are not edits.
	assert.False(t, s.Dirty())
	assert.False(t, s.CanUndo())
}

func TestStore_ApplyNodeOutput(t *testing.T) {
	s := testutil.NewStore(t,
		[]workflow.Node{
			testutil.Node(t, "gen", catalog.KindImageGen, nil),
			testutil.Node(t, "vid", catalog.KindVideoGen, nil),
		},
		[]workflow.Edge{testutil.Edge("gen", "image", "vid", "image")},
	)

	require.NoError(t, s.ApplyNodeOutput("gen", workflow.Data{
		workflow.FieldStatus:      string(workflow.StatusComplete),
		workflow.FieldOutputImage: "x.png",
	}, true))

	vid, _ := s.Node("vid")
	assert.Equal(t, "x.png", vid.Data.String(workflow.FieldInputImage))
	// Durable but not undoable.
	assert.True(t, s.Dirty())
	assert.False(t, s.CanUndo())

	t.Run("propagation can be suppressed", func(t *testing.T) {
		require.NoError(t, s.ApplyNodeOutput("gen", workflow.Data{
			workflow.FieldOutputImage: "y.png",
		}, false))
		vid, _ := s.Node("vid")
		assert.Equal(t, "x.png", vid.Data.String(workflow.FieldInputImage))
	})
}

func TestStore_ResetNodes(t *testing.T) {
	s := promptToGen(t)
	require.NoError(t, s.ApplyRunState("gen", workflow.Data{
		workflow.FieldStatus:   string(workflow.StatusProcessing),
		workflow.FieldProgress: 0.7,
		workflow.FieldError:    "boom",
	}))

	s.ResetNodes("gen", "ghost")

	gen, _ := s.Node("gen")
	assert.Equal(t, workflow.StatusIdle, gen.Data.Status())
	assert.NotContains(t, gen.Data, workflow.FieldProgress)
	assert.NotContains(t, gen.Data, workflow.FieldError)
}

func TestStore_LockUnlock(t *testing.T) {
	s := promptToGen(t)
	require.NoError(t, s.ApplyNodeOutput("gen", workflow.Data{workflow.FieldOutputImage: "x.png"}, false))

	require.NoError(t, s.LockNode("gen"))
	gen, _ := s.Node("gen")
	assert.True(t, gen.Data.Bool(workflow.FieldIsLocked))
	assert.Equal(t, "x.png", gen.Data.String(workflow.FieldCachedOutput))
	assert.Contains(t, gen.Data, workflow.FieldLockTimestamp)

	require.NoError(t, s.UnlockNode("gen"))
	gen, _ = s.Node("gen")
	assert.False(t, gen.Data.Bool(workflow.FieldIsLocked))
	assert.NotContains(t, gen.Data, workflow.FieldCachedOutput)
	assert.NotContains(t, gen.Data, workflow.FieldLockTimestamp)
}

func TestStore_Groups(t *testing.T) {
	s := promptToGen(t)

	id := s.AddGroup("pair", "blue", []string{"p", "gen", "ghost"})
	groups := s.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"p", "gen"}, groups[0].NodeIDs)

	t.Run("locking a group locks its members", func(t *testing.T) {
		s.SetGroupLocked(id, true)
		locked := s.LockedNodes()
		assert.True(t, locked["p"])
		assert.True(t, locked["gen"])

		s.SetGroupLocked(id, false)
		assert.Empty(t, s.LockedNodes())
	})

	t.Run("rename", func(t *testing.T) {
		s.RenameGroup(id, "renamed", "red")
		groups := s.Groups()
		assert.Equal(t, "renamed", groups[0].Name)
		assert.Equal(t, "red", groups[0].Color)
	})

	t.Run("remove leaves members in place", func(t *testing.T) {
		s.RemoveGroup(id)
		assert.Empty(t, s.Groups())
		assert.Len(t, s.Nodes(), 2)
	})
}

func TestStore_UndoRedo(t *testing.T) {
	s := promptToGen(t)

	require.NoError(t, s.UpdateNodeData("p", workflow.Data{workflow.FieldPrompt: "dog"}))
	require.NoError(t, s.UpdateNodeData("p", workflow.Data{workflow.FieldPrompt: "fox"}))

	require.True(t, s.Undo())
	p, _ := s.Node("p")
	assert.Equal(t, "dog", p.Data.String(workflow.FieldPrompt))

	require.True(t, s.Redo())
	p, _ = s.Node("p")
	assert.Equal(t, "fox", p.Data.String(workflow.FieldPrompt))

	t.Run("new edit truncates the redo branch", func(t *testing.T) {
		require.True(t, s.Undo())
		require.NoError(t, s.UpdateNodeData("p", workflow.Data{workflow.FieldPrompt: "owl"}))
		assert.False(t, s.CanRedo())
	})
}

func TestStore_Batch(t *testing.T) {
	s := promptToGen(t)

	s.CaptureBatch()
	require.NoError(t, s.UpdateNodeData("p", workflow.Data{workflow.FieldPrompt: "rewritten"}))
	require.NoError(t, s.RemoveNode("gen"))

	require.True(t, s.BatchAvailable())
	require.True(t, s.RevertBatch())

	p, _ := s.Node("p")
	assert.Equal(t, "cat", p.Data.String(workflow.FieldPrompt))
	assert.Len(t, s.Nodes(), 2)
	// The restored state is itself undoable.
	assert.True(t, s.CanUndo())

	t.Run("expires after five manual edits", func(t *testing.T) {
		s := promptToGen(t)
		s.CaptureBatch()
		for i := 0; i < 5; i++ {
			require.NoError(t, s.UpdateNodeData("p", workflow.Data{"note": i}))
		}
		assert.False(t, s.BatchAvailable())
		assert.False(t, s.RevertBatch())
	})
}

func TestStore_LoadExport(t *testing.T) {
	s := promptToGen(t)
	require.NoError(t, s.ApplyNodeOutput("gen", workflow.Data{workflow.FieldOutputImage: "x.png"}, true))
	s.SetName("demo", "round trip")

	f := s.Export()
	assert.Equal(t, workflow.FileVersion, f.Version)
	assert.Equal(t, "demo", f.Name)
	assert.False(t, f.CreatedAt.IsZero())

	reloaded := state.NewStore(catalog.Builtin())
	reloaded.Load(f)

	assert.Equal(t, "demo", reloaded.Name())
	assert.False(t, reloaded.Dirty())
	assert.False(t, reloaded.CanUndo())
	gen, ok := reloaded.Node("gen")
	require.True(t, ok)
	assert.Equal(t, "x.png", gen.Data.String(workflow.FieldOutputImage))

	t.Run("replay on load restages downstream inputs", func(t *testing.T) {
		f := s.Export()
		for i, n := range f.Nodes {
			if n.ID == "gen" {
				// Simulate a file whose downstream inputs drifted.
				delete(f.Nodes[i].Data, workflow.FieldInputPrompt)
			}
		}
		fresh := state.NewStore(catalog.Builtin())
		fresh.Load(f)
		gen, _ := fresh.Node("gen")
		assert.Equal(t, "cat", gen.Data.String(workflow.FieldInputPrompt))
		assert.False(t, fresh.Dirty())
	})
}

func TestStore_TopologicalOrder(t *testing.T) {
	s := promptToGen(t)
	assert.Equal(t, []string{"p", "gen"}, s.TopologicalOrder())
	deps := s.DependencyMap()
	assert.Equal(t, []string{"p"}, deps["gen"])
}
