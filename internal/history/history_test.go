package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mav/genflow/internal/workflow"
)

func snapWithPrompt(prompt string) Snapshot {
	return Capture(
		[]workflow.Node{{ID: "p", Type: "prompt", Data: workflow.Data{workflow.FieldPrompt: prompt}}},
		nil, nil,
	)
}

func TestHistory_PushUndoRedo(t *testing.T) {
	h := New(snapWithPrompt(""))

	require.True(t, h.Push(snapWithPrompt("cat")))
	require.True(t, h.Push(snapWithPrompt("dog")))
	assert.Equal(t, 3, h.Len())
	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	s, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, "cat", s.Nodes[0].Data.String(workflow.FieldPrompt))
	assert.True(t, h.CanRedo())

	s, ok = h.Redo()
	require.True(t, ok)
	assert.Equal(t, "dog", s.Nodes[0].Data.String(workflow.FieldPrompt))
	assert.False(t, h.CanRedo())

	t.Run("undo past the start", func(t *testing.T) {
		h := New(snapWithPrompt(""))
		_, ok := h.Undo()
		assert.False(t, ok)
	})
}

func TestHistory_PushDedup(t *testing.T) {
	h := New(snapWithPrompt("cat"))

	t.Run("identical state is not recorded", func(t *testing.T) {
		assert.False(t, h.Push(snapWithPrompt("cat")))
		assert.Equal(t, 1, h.Len())
	})

	t.Run("untracked field changes are not recorded", func(t *testing.T) {
		s := snapWithPrompt("cat")
		s.Nodes[0].Data[workflow.FieldProgress] = 0.5
		s.Nodes[0].Data[workflow.FieldError] = "transient"
		assert.False(t, h.Push(s))
	})

	t.Run("tracked field changes are recorded", func(t *testing.T) {
		s := snapWithPrompt("cat")
		s.Nodes[0].Data[workflow.FieldStatus] = string(workflow.StatusComplete)
		assert.True(t, h.Push(s))
	})
}

func TestHistory_PushTruncatesRedoTail(t *testing.T) {
	h := New(snapWithPrompt(""))
	h.Push(snapWithPrompt("cat"))
	h.Push(snapWithPrompt("dog"))

	_, ok := h.Undo()
	require.True(t, ok)
	require.True(t, h.CanRedo())

	require.True(t, h.Push(snapWithPrompt("fox")))
	assert.False(t, h.CanRedo())

	s, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, "cat", s.Nodes[0].Data.String(workflow.FieldPrompt))
}

func TestHistory_Bounded(t *testing.T) {
	h := New(snapWithPrompt("start"))
	for i := 0; i < DefaultLimit+20; i++ {
		require.True(t, h.Push(snapWithPrompt(fmt.Sprintf("edit-%d", i))))
	}
	assert.Equal(t, DefaultLimit, h.Len())

	// The oldest retained entry is no longer the seed state.
	for h.CanUndo() {
		h.Undo()
	}
	s, _ := h.Redo()
	assert.NotEqual(t, "start", s.Nodes[0].Data.String(workflow.FieldPrompt))
}

func TestEqual(t *testing.T) {
	base := snapWithPrompt("cat")

	t.Run("node count difference", func(t *testing.T) {
		two := base.Clone()
		two.Nodes = append(two.Nodes, workflow.Node{ID: "x"})
		assert.False(t, Equal(base, two))
	})

	t.Run("edge rewire", func(t *testing.T) {
		a := base.Clone()
		a.Edges = []workflow.Edge{{ID: "e", Source: "p", Target: "x"}}
		b := base.Clone()
		b.Edges = []workflow.Edge{{ID: "e", Source: "p", Target: "y"}}
		assert.False(t, Equal(a, b))
	})

	t.Run("position move", func(t *testing.T) {
		moved := base.Clone()
		moved.Nodes[0].Position.X = 99
		assert.False(t, Equal(base, moved))
	})

	t.Run("image list content", func(t *testing.T) {
		a := base.Clone()
		a.Nodes[0].Data[workflow.FieldImages] = []any{"x.png"}
		b := base.Clone()
		b.Nodes[0].Data[workflow.FieldImages] = []string{"x.png"}
		// []any and []string shapes of the same list are the same state.
		assert.True(t, Equal(a, b))

		b.Nodes[0].Data[workflow.FieldImages] = []string{"y.png"}
		assert.False(t, Equal(a, b))
	})

	t.Run("schema params by value", func(t *testing.T) {
		a := base.Clone()
		a.Nodes[0].Data[workflow.FieldSchemaParams] = map[string]any{"steps": 20}
		b := base.Clone()
		b.Nodes[0].Data[workflow.FieldSchemaParams] = map[string]any{"steps": 20}
		assert.True(t, Equal(a, b))

		b.Nodes[0].Data[workflow.FieldSchemaParams] = map[string]any{"steps": 30}
		assert.False(t, Equal(a, b))
	})

	t.Run("group membership", func(t *testing.T) {
		a := base.Clone()
		a.Groups = []workflow.Group{{ID: "g", NodeIDs: []string{"p"}}}
		b := base.Clone()
		b.Groups = []workflow.Group{{ID: "g", NodeIDs: []string{"p", "q"}}}
		assert.False(t, Equal(a, b))
	})
}

func TestBatch(t *testing.T) {
	t.Run("capture and revert", func(t *testing.T) {
		var b Batch
		assert.False(t, b.Available())

		b.Capture(snapWithPrompt("before"))
		require.True(t, b.Available())

		s, ok := b.Revert()
		require.True(t, ok)
		assert.Equal(t, "before", s.Nodes[0].Data.String(workflow.FieldPrompt))

		// Revert is one-shot.
		_, ok = b.Revert()
		assert.False(t, ok)
	})

	t.Run("expires after enough manual edits", func(t *testing.T) {
		var b Batch
		b.Capture(snapWithPrompt("before"))

		for i := 0; i < batchDiscardAfter-1; i++ {
			b.NoteManualEdit()
			assert.True(t, b.Available(), "edit %d", i)
		}
		b.NoteManualEdit()
		assert.False(t, b.Available())

		_, ok := b.Revert()
		assert.False(t, ok)
	})

	t.Run("recapture resets the edit count", func(t *testing.T) {
		var b Batch
		b.Capture(snapWithPrompt("one"))
		b.NoteManualEdit()
		b.NoteManualEdit()

		b.Capture(snapWithPrompt("two"))
		for i := 0; i < batchDiscardAfter-1; i++ {
			b.NoteManualEdit()
		}
		assert.True(t, b.Available())
	})
}
