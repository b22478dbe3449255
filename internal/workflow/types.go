package workflow

// Status is the lifecycle state of a node.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Well-known node data fields. Node data is an open record because each
// kind carries its own inputs and outputs, but these keys are the shared
// vocabulary the validator, propagation engine, and coordinator agree on.
const (
	FieldStatus   = "status"
	FieldProgress = "progress"
	FieldError    = "error"

	// Literal fields on source kinds.
	FieldPrompt = "prompt"
	FieldImage  = "image"
	FieldVideo  = "video"
	FieldAudio  = "audio"

	// Input fields written by propagation.
	FieldInputPrompt = "inputPrompt"
	FieldInputText   = "inputText"
	FieldInputImage  = "inputImage"
	FieldInputImages = "inputImages"
	FieldInputVideo  = "inputVideo"
	FieldInputAudio  = "inputAudio"
	FieldInputType   = "inputType"

	// Output fields written by the coordinator.
	FieldOutputText   = "outputText"
	FieldOutputImage  = "outputImage"
	FieldOutputImages = "outputImages"
	FieldOutputVideo  = "outputVideo"
	FieldOutputAudio  = "outputAudio"

	// FieldImages is the gallery node's accumulated image list.
	FieldImages = "images"

	FieldSchemaParams  = "schemaParams"
	FieldSelectedModel = "selectedModel"

	// Lock state.
	FieldIsLocked      = "isLocked"
	FieldCachedOutput  = "cachedOutput"
	FieldLockTimestamp = "lockTimestamp"
)

// OutputFields lists the fields cleared when a node is reset or duplicated.
var OutputFields = []string{
	FieldOutputText,
	FieldOutputImage,
	FieldOutputImages,
	FieldOutputVideo,
	FieldOutputAudio,
}

// Data is a node's type-specific record. Values are JSON-shaped: strings,
// float64 numbers, bools, []any and map[string]any.
type Data map[string]any

// String returns the string value of a field, or "" if absent or not a string.
func (d Data) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Strings returns a field as a string slice. It tolerates both []string and
// the []any shape produced by JSON decoding.
func (d Data) Strings(key string) []string {
	switch v := d[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Bool returns the bool value of a field.
func (d Data) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// Status returns the node status field, defaulting to idle.
func (d Data) Status() Status {
	if s, ok := d[FieldStatus].(string); ok && s != "" {
		return Status(s)
	}
	return StatusIdle
}

// Clone deep-copies the record.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	return deepCopyMap(d)
}

// Position is a node's canvas location.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a typed unit in the workflow graph.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
	Width    float64  `json:"width,omitempty"`
	Height   float64  `json:"height,omitempty"`
	Data     Data     `json:"data"`
}

// Clone deep-copies the node, including its data record.
func (n Node) Clone() Node {
	c := n
	c.Data = n.Data.Clone()
	return c
}

// Edge connects a source node's output handle to a target node's input handle.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
	Style        string `json:"style,omitempty"`
	HasPause     bool   `json:"hasPause,omitempty"`
}

// Group is a named collection of nodes. Locking a group locks its members.
type Group struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	NodeIDs  []string `json:"nodeIds"`
	IsLocked bool     `json:"isLocked"`
	Color    string   `json:"color,omitempty"`
}

// Clone deep-copies the group.
func (g Group) Clone() Group {
	c := g
	c.NodeIDs = append([]string(nil), g.NodeIDs...)
	return c
}

// FindNode returns the index of the node with the given id, or -1.
func FindNode(nodes []Node, id string) int {
	for i := range nodes {
		if nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// FindEdge returns the index of the edge with the given id, or -1.
func FindEdge(edges []Edge, id string) int {
	for i := range edges {
		if edges[i].ID == id {
			return i
		}
	}
	return -1
}

// CloneNodes deep-copies a node list.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i := range nodes {
		out[i] = nodes[i].Clone()
	}
	return out
}

// CloneEdges copies an edge list. Edges hold no reference types.
func CloneEdges(edges []Edge) []Edge {
	return append([]Edge(nil), edges...)
}

// CloneGroups deep-copies a group list.
func CloneGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i := range groups {
		out[i] = groups[i].Clone()
	}
	return out
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case Data:
		return Data(deepCopyMap(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
