package execution_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mav/genflow/internal/execution"
	"github.com/mav/genflow/internal/testutil"
	"github.com/mav/genflow/internal/workflow"
)

func TestRunNodeDirect(t *testing.T) {
	ctx := context.Background()

	t.Run("polls until completion and propagates", func(t *testing.T) {
		store := runnableStore(t)
		svc := &testutil.ScriptedService{
			JobStatuses: []execution.JobStatus{
				{Status: "processing", Progress: 0.3},
				{Status: "processing", Progress: 0.9},
				{Status: "succeeded", Output: "x.png"},
			},
		}
		coord := execution.NewCoordinator(store, svc, nil)
		coord.SetPollCadenceForTest(time.Millisecond, 10)

		require.NoError(t, coord.RunNodeDirect(ctx, "gen", map[string]any{"prompt": "cat"}))
		coord.WaitNode("gen")

		gen, _ := store.Node("gen")
		assert.Equal(t, workflow.StatusComplete, gen.Data.Status())
		assert.Equal(t, "x.png", gen.Data.String(workflow.FieldOutputImage))

		vid, _ := store.Node("vid")
		assert.Equal(t, "x.png", vid.Data.String(workflow.FieldInputImage))
	})

	t.Run("provider failure marks the node", func(t *testing.T) {
		store := runnableStore(t)
		svc := &testutil.ScriptedService{
			JobStatuses: []execution.JobStatus{
				{Status: "processing"},
				{Status: "failed", Error: "model rejected input"},
			},
		}
		coord := execution.NewCoordinator(store, svc, nil)
		coord.SetPollCadenceForTest(time.Millisecond, 10)

		require.NoError(t, coord.RunNodeDirect(ctx, "gen", nil))
		coord.WaitNode("gen")

		gen, _ := store.Node("gen")
		assert.Equal(t, workflow.StatusError, gen.Data.Status())
		assert.Equal(t, "model rejected input", gen.Data.String(workflow.FieldError))
	})

	t.Run("exhausted attempts mark a timeout", func(t *testing.T) {
		store := runnableStore(t)
		svc := &testutil.ScriptedService{
			JobStatuses: []execution.JobStatus{{Status: "processing"}},
		}
		coord := execution.NewCoordinator(store, svc, nil)
		coord.SetPollCadenceForTest(time.Millisecond, 3)

		require.NoError(t, coord.RunNodeDirect(ctx, "gen", nil))
		coord.WaitNode("gen")

		gen, _ := store.Node("gen")
		assert.Equal(t, workflow.StatusError, gen.Data.Status())
		assert.Equal(t, "timed out", gen.Data.String(workflow.FieldError))
	})

	t.Run("stop resets the node to idle", func(t *testing.T) {
		store := runnableStore(t)
		svc := &testutil.ScriptedService{
			JobStatuses: []execution.JobStatus{{Status: "processing"}},
		}
		coord := execution.NewCoordinator(store, svc, nil)
		coord.SetPollCadenceForTest(50*time.Millisecond, 1000)

		require.NoError(t, coord.RunNodeDirect(ctx, "gen", nil))
		require.Eventually(t, func() bool {
			n, _ := store.Node("gen")
			return n.Data.Status() == workflow.StatusProcessing
		}, time.Second, time.Millisecond)

		coord.StopNode(ctx, "gen")

		require.Eventually(t, func() bool {
			n, _ := store.Node("gen")
			return n.Data.Status() == workflow.StatusIdle
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("second run of the same node is rejected", func(t *testing.T) {
		store := runnableStore(t)
		svc := &testutil.ScriptedService{
			JobStatuses: []execution.JobStatus{{Status: "processing"}},
		}
		coord := execution.NewCoordinator(store, svc, nil)
		coord.SetPollCadenceForTest(50*time.Millisecond, 1000)

		require.NoError(t, coord.RunNodeDirect(ctx, "gen", nil))
		assert.ErrorIs(t, coord.RunNodeDirect(ctx, "gen", nil), execution.ErrAlreadyRunning)
		coord.StopNode(ctx, "gen")
	})
}
