package validate

import (
	"github.com/mav/genflow/internal/catalog"
	"github.com/mav/genflow/internal/workflow"
)

// compatible maps each media category to the set of categories it may
// connect to. The base model allows no cross-category connections; the
// table exists so a future relaxation is a data change, not a code change.
var compatible = map[catalog.Category]map[catalog.Category]bool{
	catalog.CategoryText:   {catalog.CategoryText: true},
	catalog.CategoryImage:  {catalog.CategoryImage: true},
	catalog.CategoryVideo:  {catalog.CategoryVideo: true},
	catalog.CategoryAudio:  {catalog.CategoryAudio: true},
	catalog.CategoryNumber: {catalog.CategoryNumber: true},
}

// IsValidConnection reports whether the proposed edge connects a declared
// output handle to a declared, compatible input handle. Undeclared handles
// and unknown node kinds are rejected.
func IsValidConnection(cat *catalog.Catalog, nodes []workflow.Node, e workflow.Edge) bool {
	si := workflow.FindNode(nodes, e.Source)
	ti := workflow.FindNode(nodes, e.Target)
	if si < 0 || ti < 0 {
		return false
	}

	sourceType, ok := cat.Lookup(nodes[si].Type)
	if !ok {
		return false
	}
	targetType, ok := cat.Lookup(nodes[ti].Type)
	if !ok {
		return false
	}

	out, ok := sourceType.OutputHandle(e.SourceHandle)
	if !ok {
		return false
	}
	in, ok := targetType.Input(e.TargetHandle)
	if !ok {
		return false
	}

	return compatible[out.Type][in.Type]
}
