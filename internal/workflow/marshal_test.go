package workflow

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoFile() File {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return File{
		Version:     FileVersion,
		Name:        "demo",
		Description: "two node smoke workflow",
		Nodes: []Node{
			{
				ID:       "prompt-1",
				Type:     "prompt",
				Position: Position{X: 0, Y: 0},
				Data:     Data{"prompt": "a red fox", "status": "idle"},
			},
			{
				ID:       "image-1",
				Type:     "imageGen",
				Position: Position{X: 260, Y: 40},
				Data:     Data{"selectedModel": "flux-dev", "status": "idle"},
			},
		},
		Edges: []Edge{
			{ID: "e1", Source: "prompt-1", Target: "image-1", SourceHandle: "text", TargetHandle: "prompt"},
		},
		EdgeStyle: "bezier",
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestMarshal_Golden(t *testing.T) {
	raw, err := Marshal(demoFile())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "demo_workflow", raw)
}

func TestUnmarshal(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		raw, err := Marshal(demoFile())
		require.NoError(t, err)

		f, err := Unmarshal(raw)
		require.NoError(t, err)
		assert.Equal(t, demoFile(), f)
	})

	t.Run("rejects newer version", func(t *testing.T) {
		_, err := Unmarshal([]byte(`{"version": 99, "nodes": [], "edges": []}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported workflow file version 99")
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		_, err := Unmarshal([]byte(`{"version": `))
		assert.Error(t, err)
	})
}
