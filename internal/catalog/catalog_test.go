package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	cat := Builtin()

	t.Run("every kind constant is registered", func(t *testing.T) {
		for _, kind := range []string{
			KindPrompt, KindImageGen, KindVideoGen, KindUpscale, KindReframe,
			KindLipSync, KindTextToSpeech, KindTranscribe, KindImageInput,
			KindVideoInput, KindAudioInput, KindDownload, KindGallery,
			KindSubworkflow,
		} {
			_, ok := cat.Lookup(kind)
			assert.True(t, ok, "missing builtin kind %q", kind)
		}
	})

	t.Run("source kinds declare trigger fields", func(t *testing.T) {
		for kind, field := range map[string]string{
			KindPrompt:     "prompt",
			KindImageInput: "image",
			KindVideoInput: "video",
			KindAudioInput: "audio",
		} {
			nt, ok := cat.Lookup(kind)
			require.True(t, ok)
			assert.Equal(t, field, nt.TriggerField, kind)
		}
	})

	t.Run("sinks have no output category", func(t *testing.T) {
		for _, kind := range []string{KindDownload, KindGallery} {
			nt, ok := cat.Lookup(kind)
			require.True(t, ok)
			assert.True(t, nt.Sink)
			assert.Empty(t, nt.Output)
		}
	})

	t.Run("builtin types pass structural validation", func(t *testing.T) {
		for _, kind := range cat.Kinds() {
			nt, _ := cat.Lookup(kind)
			assert.NoError(t, validateType(nt), kind)
		}
	})
}

func TestNodeType_Handles(t *testing.T) {
	nt, ok := Builtin().Lookup(KindImageGen)
	require.True(t, ok)

	h, ok := nt.Input("images")
	require.True(t, ok)
	assert.True(t, h.Multiple)
	assert.Equal(t, CategoryImage, h.Type)

	_, ok = nt.Input("nonexistent")
	assert.False(t, ok)

	h, ok = nt.OutputHandle("image")
	require.True(t, ok)
	assert.Equal(t, CategoryImage, h.Type)
}

func TestCatalog_Merge(t *testing.T) {
	base := Builtin()
	merged := base.Merge(NodeType{
		Kind:     KindPrompt,
		Label:    "Custom Prompt",
		Output:   CategoryText,
		Defaults: map[string]any{"prompt": "override"},
	})

	nt, ok := merged.Lookup(KindPrompt)
	require.True(t, ok)
	assert.Equal(t, "Custom Prompt", nt.Label)

	// The base catalog is untouched.
	nt, _ = base.Lookup(KindPrompt)
	assert.Equal(t, "Prompt", nt.Label)
}

func TestValidateType(t *testing.T) {
	testCases := []struct {
		name    string
		nt      NodeType
		wantErr string
	}{
		{
			name:    "empty kind",
			nt:      NodeType{},
			wantErr: "empty kind",
		},
		{
			name: "unknown handle category",
			nt: NodeType{
				Kind:   "custom",
				Inputs: []Handle{{ID: "in", Type: "hologram"}},
			},
			wantErr: `unknown category "hologram"`,
		},
		{
			name: "duplicate input handle",
			nt: NodeType{
				Kind:   "custom",
				Inputs: []Handle{{ID: "in", Type: CategoryText}, {ID: "in", Type: CategoryImage}},
			},
			wantErr: `duplicate handle "in"`,
		},
		{
			name: "same id across directions is allowed",
			nt: NodeType{
				Kind:    "custom",
				Output:  CategoryImage,
				Inputs:  []Handle{{ID: "image", Type: CategoryImage}},
				Outputs: []Handle{{ID: "image", Type: CategoryImage}},
			},
		},
		{
			name: "unknown output category",
			nt: NodeType{
				Kind:   "custom",
				Output: "hologram",
			},
			wantErr: `unknown output category "hologram"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateType(tc.nt)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
