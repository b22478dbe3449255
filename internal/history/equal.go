package history

import (
	"reflect"

	"github.com/mav/genflow/internal/workflow"
)

// trackedFields is the allow-list of node data fields that count toward
// history equality. Transient run state (progress, error, job ids) is
// deliberately absent: a progress tick must never mint an undo entry.
var trackedFields = []string{
	workflow.FieldStatus,
	workflow.FieldSelectedModel,
	workflow.FieldPrompt,
	workflow.FieldImage,
	workflow.FieldVideo,
	workflow.FieldAudio,
	workflow.FieldImages,
	workflow.FieldInputPrompt,
	workflow.FieldInputText,
	workflow.FieldInputImage,
	workflow.FieldInputImages,
	workflow.FieldInputVideo,
	workflow.FieldInputAudio,
	workflow.FieldInputType,
	workflow.FieldOutputText,
	workflow.FieldOutputImage,
	workflow.FieldOutputImages,
	workflow.FieldOutputVideo,
	workflow.FieldOutputAudio,
}

// Equal decides whether two snapshots represent the same undoable state.
// It fast-fails on length differences, then compares per item.
func Equal(a, b Snapshot) bool {
	if len(a.Nodes) != len(b.Nodes) || len(a.Edges) != len(b.Edges) || len(a.Groups) != len(b.Groups) {
		return false
	}
	for i := range a.Nodes {
		if !nodeEqual(a.Nodes[i], b.Nodes[i]) {
			return false
		}
	}
	for i := range a.Edges {
		if !edgeEqual(a.Edges[i], b.Edges[i]) {
			return false
		}
	}
	for i := range a.Groups {
		if !groupEqual(a.Groups[i], b.Groups[i]) {
			return false
		}
	}
	return true
}

func nodeEqual(a, b workflow.Node) bool {
	if a.ID != b.ID || a.Type != b.Type || a.Position != b.Position ||
		a.Width != b.Width || a.Height != b.Height {
		return false
	}
	for _, f := range trackedFields {
		if !fieldEqual(a.Data[f], b.Data[f]) {
			return false
		}
	}
	// schemaParams is the one complex record: compare by value, never by
	// reference.
	return reflect.DeepEqual(a.Data[workflow.FieldSchemaParams], b.Data[workflow.FieldSchemaParams])
}

func edgeEqual(a, b workflow.Edge) bool {
	return a.ID == b.ID && a.Source == b.Source && a.Target == b.Target &&
		a.SourceHandle == b.SourceHandle && a.TargetHandle == b.TargetHandle
}

func groupEqual(a, b workflow.Group) bool {
	if a.ID != b.ID || a.Name != b.Name || a.Color != b.Color || a.IsLocked != b.IsLocked {
		return false
	}
	if len(a.NodeIDs) != len(b.NodeIDs) {
		return false
	}
	for i := range a.NodeIDs {
		if a.NodeIDs[i] != b.NodeIDs[i] {
			return false
		}
	}
	return true
}

// fieldEqual compares one tracked field. Array fields compare by length
// then value; scalars by equality.
func fieldEqual(a, b any) bool {
	as, aok := anySlice(a)
	bs, bok := anySlice(b)
	if aok || bok {
		if !aok || !bok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if as[i] != bs[i] {
				return false
			}
		}
		return true
	}
	return a == b
}

func anySlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}
