package propagate

import (
	"github.com/mav/genflow/internal/catalog"
	"github.com/mav/genflow/internal/workflow"
)

// NodeOutput returns the single canonical value a node currently produces,
// or nil if nothing is populated. The priority order is fixed and load
// bearing: a populated output-images list (first element) wins over a
// single output image, then video, text, audio, then the kind's literal
// passthrough field (a prompt's own text, an input node's media value).
// A locked node keeps serving its cached output.
func NodeOutput(cat *catalog.Catalog, n workflow.Node) any {
	if n.Data.Bool(workflow.FieldIsLocked) {
		if cached := n.Data.String(workflow.FieldCachedOutput); cached != "" {
			return cached
		}
	}

	if images := n.Data.Strings(workflow.FieldOutputImages); len(images) > 0 {
		return images[0]
	}
	for _, f := range []string{
		workflow.FieldOutputImage,
		workflow.FieldOutputVideo,
		workflow.FieldOutputText,
		workflow.FieldOutputAudio,
	} {
		if v := n.Data.String(f); v != "" {
			return v
		}
	}

	nt, ok := cat.Lookup(n.Type)
	if !ok || nt.TriggerField == "" {
		return nil
	}
	if v := n.Data.String(nt.TriggerField); v != "" {
		return v
	}
	return nil
}

// OutputType classifies a node kind into exactly one media category, or ""
// for sinks and other non-media kinds. Downstream routing keys off this
// classification, not the handle declarations.
func OutputType(cat *catalog.Catalog, kind string) catalog.Category {
	nt, ok := cat.Lookup(kind)
	if !ok {
		return ""
	}
	return nt.Output
}

// sourceImages returns the image set a node offers to an aggregation sink:
// its output-images list when populated, otherwise its single current
// output.
func sourceImages(cat *catalog.Catalog, n workflow.Node) []string {
	if images := n.Data.Strings(workflow.FieldOutputImages); len(images) > 0 {
		return images
	}
	if out, ok := NodeOutput(cat, n).(string); ok && out != "" {
		return []string{out}
	}
	return nil
}
