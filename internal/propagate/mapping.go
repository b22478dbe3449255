package propagate

import (
	"github.com/mav/genflow/internal/catalog"
	"github.com/mav/genflow/internal/workflow"
)

// MapOutputToInput decides which input fields on the target node type
// receive a propagated value, given the classified source category. The
// returned record may contain explicit nils: unified image/video consumers
// keep exactly one media branch active, so routing one branch nulls the
// other and sets the inputType discriminator. A pairing with no rule
// returns nil and the edge is a no-op.
func MapOutputToInput(output any, sourceCat catalog.Category, target catalog.NodeType) workflow.Data {
	_, hasImage := target.Input(workflow.FieldImage)
	_, hasVideo := target.Input(workflow.FieldVideo)
	unified := hasImage && hasVideo

	switch sourceCat {
	case catalog.CategoryText:
		if _, ok := target.Input(workflow.FieldPrompt); ok {
			return workflow.Data{workflow.FieldInputPrompt: output}
		}
		if _, ok := target.Input("text"); ok {
			return workflow.Data{workflow.FieldInputText: output}
		}

	case catalog.CategoryImage:
		if _, ok := target.Input(workflow.FieldImages); ok {
			// Image generators fan in references as a list.
			return workflow.Data{workflow.FieldInputImages: []any{output}}
		}
		if unified {
			return workflow.Data{
				workflow.FieldInputImage: output,
				workflow.FieldInputVideo: nil,
				workflow.FieldInputType:  "image",
			}
		}
		if hasImage {
			return workflow.Data{workflow.FieldInputImage: output}
		}

	case catalog.CategoryVideo:
		if unified {
			return workflow.Data{
				workflow.FieldInputVideo: output,
				workflow.FieldInputImage: nil,
				workflow.FieldInputType:  "video",
			}
		}
		if hasVideo {
			return workflow.Data{workflow.FieldInputVideo: output}
		}

	case catalog.CategoryAudio:
		if _, ok := target.Input(workflow.FieldAudio); ok {
			return workflow.Data{workflow.FieldInputAudio: output}
		}
	}
	return nil
}

// mergeStaged folds a new update into whatever is already staged for the
// same target in this pass. List-valued fields are unioned with ordered-set
// semantics. On sinks, video outranks image: once a video branch is staged,
// a later image offer in the same pass is dropped rather than flapping the
// discriminator.
func mergeStaged(staged, update workflow.Data, target catalog.NodeType) workflow.Data {
	if staged == nil {
		return update
	}
	if target.Sink && staged[workflow.FieldInputType] == "video" && update[workflow.FieldInputType] == "image" {
		return staged
	}
	for k, v := range update {
		if k == workflow.FieldInputImages {
			staged[k] = unionAny(staged.Strings(k), toStrings(v))
			continue
		}
		staged[k] = v
	}
	return staged
}

// CollectGalleryUpdate produces the images field for an aggregation sink:
// the ordered-set union of what the node already stores, what earlier edges
// in the same pass staged for it, and the new images. First occurrence
// wins position; no duplicates ever result.
func CollectGalleryUpdate(node workflow.Node, staged workflow.Data, newImages []string) workflow.Data {
	stored := node.Data.Strings(workflow.FieldImages)
	var pending []string
	if staged != nil {
		pending = staged.Strings(workflow.FieldImages)
	}

	union := make([]string, 0, len(stored)+len(pending)+len(newImages))
	seen := make(map[string]bool)
	for _, set := range [][]string{stored, pending, newImages} {
		for _, img := range set {
			if img == "" || seen[img] {
				continue
			}
			seen[img] = true
			union = append(union, img)
		}
	}
	return workflow.Data{workflow.FieldImages: stringsToAny(union)}
}

func unionAny(existing []string, next []string) []any {
	seen := make(map[string]bool, len(existing))
	merged := make([]string, 0, len(existing)+len(next))
	for _, s := range existing {
		if !seen[s] {
			seen[s] = true
			merged = append(merged, s)
		}
	}
	for _, s := range next {
		if !seen[s] {
			seen[s] = true
			merged = append(merged, s)
		}
	}
	return stringsToAny(merged)
}

func toStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{t}
	}
	return nil
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
