package catalog

import (
	"fmt"
)

// Category is one of the fixed media categories used for handle and
// output typing.
type Category string

const (
	CategoryText   Category = "text"
	CategoryImage  Category = "image"
	CategoryVideo  Category = "video"
	CategoryAudio  Category = "audio"
	CategoryNumber Category = "number"
)

// knownCategories is the set of categories a manifest may declare.
var knownCategories = map[Category]bool{
	CategoryText:   true,
	CategoryImage:  true,
	CategoryVideo:  true,
	CategoryAudio:  true,
	CategoryNumber: true,
}

// Handle is a named, typed port declared by a node type. Required and
// Multiple are only meaningful on inputs.
type Handle struct {
	ID       string
	Type     Category
	Required bool
	Multiple bool
}

// NodeType describes one node kind.
type NodeType struct {
	// Kind is the unique tag, e.g. "imageGen".
	Kind string
	// Label is the human-readable name used in validation messages.
	Label string
	// Output is the single media category this kind produces, or "" for
	// sinks and other non-media kinds. Downstream routing keys off this
	// classification, not the handle declarations.
	Output Category
	// Inputs and Outputs are the declared handle sets.
	Inputs  []Handle
	Outputs []Handle
	// Defaults is the initial data record for a freshly added node.
	Defaults map[string]any
	// TriggerField names the literal data field that must be populated for
	// this kind to count as a valid upstream source (e.g. "prompt" on a
	// prompt node). Empty means the kind computes its output at run time.
	TriggerField string
	// Sink marks terminal kinds (download) that require at least one
	// populated media input to run.
	Sink bool
	// Aggregate marks kinds that accumulate every image routed to them
	// instead of replacing their input.
	Aggregate bool
}

// Input returns the declared input handle with the given id.
func (nt NodeType) Input(id string) (Handle, bool) {
	for _, h := range nt.Inputs {
		if h.ID == id {
			return h, true
		}
	}
	return Handle{}, false
}

// OutputHandle returns the declared output handle with the given id.
func (nt NodeType) OutputHandle(id string) (Handle, bool) {
	for _, h := range nt.Outputs {
		if h.ID == id {
			return h, true
		}
	}
	return Handle{}, false
}

// Catalog is an immutable lookup table of node types keyed by kind.
type Catalog struct {
	types map[string]NodeType
}

// New builds a catalog from the given node types. Later entries override
// earlier ones with the same kind, which is how manifest overlays work.
func New(types ...NodeType) *Catalog {
	c := &Catalog{types: make(map[string]NodeType, len(types))}
	for _, nt := range types {
		c.types[nt.Kind] = nt
	}
	return c
}

// Lookup returns the node type for a kind.
func (c *Catalog) Lookup(kind string) (NodeType, bool) {
	nt, ok := c.types[kind]
	return nt, ok
}

// Kinds returns all registered kind tags, in no particular order.
func (c *Catalog) Kinds() []string {
	kinds := make([]string, 0, len(c.types))
	for k := range c.types {
		kinds = append(kinds, k)
	}
	return kinds
}

// Merge returns a new catalog with the given types layered over c.
func (c *Catalog) Merge(types ...NodeType) *Catalog {
	merged := &Catalog{types: make(map[string]NodeType, len(c.types)+len(types))}
	for k, v := range c.types {
		merged.types[k] = v
	}
	for _, nt := range types {
		merged.types[nt.Kind] = nt
	}
	return merged
}

// validateType checks the structural integrity of a single node type
// declaration. It is applied to manifest-loaded types; the builtin table is
// trusted.
func validateType(nt NodeType) error {
	if nt.Kind == "" {
		return fmt.Errorf("node type with empty kind")
	}
	// Handle ids are unique per direction. The same id may appear on both
	// sides, as with upscale's image in/out pair.
	for _, handles := range [][]Handle{nt.Inputs, nt.Outputs} {
		seen := map[string]bool{}
		for _, h := range handles {
			if !knownCategories[h.Type] {
				return fmt.Errorf("node type %q: handle %q has unknown category %q", nt.Kind, h.ID, h.Type)
			}
			if seen[h.ID] {
				return fmt.Errorf("node type %q: duplicate handle %q", nt.Kind, h.ID)
			}
			seen[h.ID] = true
		}
	}
	if nt.Output != "" && !knownCategories[nt.Output] {
		return fmt.Errorf("node type %q: unknown output category %q", nt.Kind, nt.Output)
	}
	return nil
}
