package catalog

// Node kind tags for the builtin catalog.
const (
	KindPrompt       = "prompt"
	KindImageGen     = "imageGen"
	KindVideoGen     = "videoGen"
	KindUpscale      = "upscale"
	KindReframe      = "reframe"
	KindLipSync      = "lipSync"
	KindTextToSpeech = "textToSpeech"
	KindTranscribe   = "transcribe"
	KindImageInput   = "imageInput"
	KindVideoInput   = "videoInput"
	KindAudioInput   = "audioInput"
	KindDownload     = "download"
	KindGallery      = "gallery"
	KindSubworkflow  = "subworkflowRef"
)

// Builtin returns the catalog of node kinds compiled into the binary.
// Manifest files layered on top may override any of these (see Load).
func Builtin() *Catalog {
	return New(
		NodeType{
			Kind:         KindPrompt,
			Label:        "Prompt",
			Output:       CategoryText,
			Outputs:      []Handle{{ID: "text", Type: CategoryText}},
			Defaults:     map[string]any{"prompt": ""},
			TriggerField: "prompt",
		},
		NodeType{
			Kind:   KindImageGen,
			Label:  "Image Generator",
			Output: CategoryImage,
			Inputs: []Handle{
				{ID: "prompt", Type: CategoryText, Required: true},
				{ID: "images", Type: CategoryImage, Multiple: true},
			},
			Outputs:  []Handle{{ID: "image", Type: CategoryImage}},
			Defaults: map[string]any{"selectedModel": "flux-dev", "schemaParams": map[string]any{}},
		},
		NodeType{
			Kind:   KindVideoGen,
			Label:  "Video Generator",
			Output: CategoryVideo,
			Inputs: []Handle{
				{ID: "prompt", Type: CategoryText, Required: true},
				{ID: "image", Type: CategoryImage},
			},
			Outputs:  []Handle{{ID: "video", Type: CategoryVideo}},
			Defaults: map[string]any{"selectedModel": "veo-3", "schemaParams": map[string]any{}},
		},
		NodeType{
			Kind:   KindUpscale,
			Label:  "Upscale",
			Output: CategoryImage,
			Inputs: []Handle{
				{ID: "image", Type: CategoryImage},
				{ID: "video", Type: CategoryVideo},
			},
			Outputs: []Handle{
				{ID: "image", Type: CategoryImage},
				{ID: "video", Type: CategoryVideo},
			},
			Defaults: map[string]any{"selectedModel": "topaz"},
		},
		NodeType{
			Kind:   KindReframe,
			Label:  "Reframe",
			Output: CategoryVideo,
			Inputs: []Handle{
				{ID: "image", Type: CategoryImage},
				{ID: "video", Type: CategoryVideo},
			},
			Outputs: []Handle{
				{ID: "image", Type: CategoryImage},
				{ID: "video", Type: CategoryVideo},
			},
			Defaults: map[string]any{"selectedModel": "luma-reframe"},
		},
		NodeType{
			Kind:   KindLipSync,
			Label:  "Lip Sync",
			Output: CategoryVideo,
			Inputs: []Handle{
				{ID: "video", Type: CategoryVideo, Required: true},
				{ID: "audio", Type: CategoryAudio, Required: true},
			},
			Outputs:  []Handle{{ID: "video", Type: CategoryVideo}},
			Defaults: map[string]any{"selectedModel": "sync-lipsync"},
		},
		NodeType{
			Kind:     KindTextToSpeech,
			Label:    "Text to Speech",
			Output:   CategoryAudio,
			Inputs:   []Handle{{ID: "text", Type: CategoryText, Required: true}},
			Outputs:  []Handle{{ID: "audio", Type: CategoryAudio}},
			Defaults: map[string]any{"selectedModel": "eleven-multilingual", "voice": ""},
		},
		NodeType{
			Kind:    KindTranscribe,
			Label:   "Transcribe",
			Output:  CategoryText,
			Inputs:  []Handle{{ID: "audio", Type: CategoryAudio, Required: true}},
			Outputs: []Handle{{ID: "text", Type: CategoryText}},
		},
		NodeType{
			Kind:         KindImageInput,
			Label:        "Image",
			Output:       CategoryImage,
			Outputs:      []Handle{{ID: "image", Type: CategoryImage}},
			Defaults:     map[string]any{"image": ""},
			TriggerField: "image",
		},
		NodeType{
			Kind:         KindVideoInput,
			Label:        "Video",
			Output:       CategoryVideo,
			Outputs:      []Handle{{ID: "video", Type: CategoryVideo}},
			Defaults:     map[string]any{"video": ""},
			TriggerField: "video",
		},
		NodeType{
			Kind:         KindAudioInput,
			Label:        "Audio",
			Output:       CategoryAudio,
			Outputs:      []Handle{{ID: "audio", Type: CategoryAudio}},
			Defaults:     map[string]any{"audio": ""},
			TriggerField: "audio",
		},
		NodeType{
			Kind:  KindDownload,
			Label: "Download",
			Inputs: []Handle{
				{ID: "image", Type: CategoryImage},
				{ID: "video", Type: CategoryVideo},
				{ID: "audio", Type: CategoryAudio},
			},
			Sink: true,
		},
		NodeType{
			Kind:      KindGallery,
			Label:     "Gallery",
			Inputs:    []Handle{{ID: "images", Type: CategoryImage, Multiple: true}},
			Defaults:  map[string]any{"images": []any{}},
			Sink:      true,
			Aggregate: true,
		},
		NodeType{
			Kind:     KindSubworkflow,
			Label:    "Subworkflow",
			Defaults: map[string]any{"workflowId": ""},
		},
	)
}
