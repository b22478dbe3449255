package catalog

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ctyToNative recursively converts a cty.Value into its most natural Go
// counterpart. Manifest defaults are arbitrary object literals, so this is
// the engine for turning them into the map[string]any records node data
// expects.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		// float64 is the representation node data uses for numbers, matching
		// what a JSON round trip produces.
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number to float64: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0)
		it := v.ElementIterator()
		for it.Next() {
			_, val := it.Element()
			native, err := ctyToNative(val)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, val := it.Element()
			native, err := ctyToNative(val)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			m[key.AsString()] = native
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported type %s in defaults", ty.FriendlyName())
	}
}
