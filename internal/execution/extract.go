package execution

import (
	"github.com/mav/genflow/internal/catalog"
	"github.com/mav/genflow/internal/workflow"
)

// payloadKeys are the object keys providers use to wrap a result value,
// checked in order.
var payloadKeys = []string{"url", "image", "video", "audio"}

// scalarField maps a node's output category to the data field a scalar
// result lands in.
func scalarField(cat catalog.Category) string {
	switch cat {
	case catalog.CategoryText:
		return workflow.FieldOutputText
	case catalog.CategoryImage:
		return workflow.FieldOutputImage
	case catalog.CategoryVideo:
		return workflow.FieldOutputVideo
	case catalog.CategoryAudio:
		return workflow.FieldOutputAudio
	}
	return ""
}

// extractOutput turns a provider result payload into a node data patch.
// Providers are inconsistent: the payload may be a bare string, a
// one-element array, or an object keyed by url/image/video/audio/images.
// Multi-image outputs populate the array field; everything else lands in
// the scalar field for the node's output category. A payload that cannot
// be interpreted yields nil and the node keeps its previous output.
func extractOutput(cat catalog.Category, payload any) workflow.Data {
	switch v := payload.(type) {
	case nil:
		return nil

	case string:
		if v == "" {
			return nil
		}
		if f := scalarField(cat); f != "" {
			return workflow.Data{f: v}
		}
		return nil

	case []any:
		if len(v) == 0 {
			return nil
		}
		if cat == catalog.CategoryImage && len(v) > 1 {
			return workflow.Data{workflow.FieldOutputImages: v}
		}
		return extractOutput(cat, v[0])

	case []string:
		anys := make([]any, len(v))
		for i, s := range v {
			anys[i] = s
		}
		return extractOutput(cat, anys)

	case map[string]any:
		if images, ok := v["images"].([]any); ok && len(images) > 0 {
			return workflow.Data{workflow.FieldOutputImages: images}
		}
		for _, key := range payloadKeys {
			if inner, ok := v[key]; ok {
				if patch := extractOutput(cat, inner); patch != nil {
					return patch
				}
			}
		}
		return nil
	}
	return nil
}
