package propagate

import (
	"reflect"

	"github.com/mav/genflow/internal/catalog"
	"github.com/mav/genflow/internal/workflow"
)

// Updates is the set of staged data patches produced by one propagation
// pass, keyed by target node id.
type Updates map[string]workflow.Data

// ComputeDownstreamUpdates walks the graph breadth-first from the source
// node and stages an input update for every reachable consumer of its
// output. The traversal is pure: nothing is committed here.
//
// Passthrough cascade: a target that already holds a non-null output (it
// executed before and is now stale) is re-enqueued with its own output, so
// the ripple reaches everything downstream even through nodes that have
// not re-run. The stale node's own output is NOT recomputed here; that is
// an execution concern. Whether this cache-refresh reuse of the BFS is
// intended product behavior is an open product question; the behavior is
// preserved as observed.
//
// The visited set guarantees termination across cycles: a node already
// visited in this pass is never re-enqueued, and edges into it are not
// re-staged.
func ComputeDownstreamUpdates(cat *catalog.Catalog, sourceID string, initialOutput any, nodes []workflow.Node, edges []workflow.Edge) Updates {
	si := workflow.FindNode(nodes, sourceID)
	if si < 0 || initialOutput == nil {
		return nil
	}

	type frontier struct {
		id     string
		output any
		cat    catalog.Category
	}

	updates := make(Updates)
	visited := map[string]bool{sourceID: true}
	queue := []frontier{{
		id:     sourceID,
		output: initialOutput,
		cat:    OutputType(cat, nodes[si].Type),
	}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.cat == "" {
			continue
		}

		for _, e := range edges {
			if e.Source != cur.id {
				continue
			}
			ti := workflow.FindNode(nodes, e.Target)
			if ti < 0 || visited[e.Target] {
				continue
			}
			target := nodes[ti]
			nt, ok := cat.Lookup(target.Type)
			if !ok {
				continue
			}

			if nt.Aggregate {
				if cur.cat == catalog.CategoryImage {
					fi := workflow.FindNode(nodes, cur.id)
					updates[target.ID] = CollectGalleryUpdate(target, updates[target.ID], sourceImages(cat, nodes[fi]))
				}
				continue
			}

			if update := MapOutputToInput(cur.output, cur.cat, nt); update != nil {
				updates[target.ID] = mergeStaged(updates[target.ID], update, nt)
			}

			if ownOutput := NodeOutput(cat, target); ownOutput != nil {
				visited[target.ID] = true
				queue = append(queue, frontier{
					id:     target.ID,
					output: ownOutput,
					cat:    OutputType(cat, target.Type),
				})
			}
		}
	}
	return updates
}

// HasStateChanged reports whether committing the staged updates would
// change any node's data. Array fields compare element-wise; everything
// else by equality. A commit that changes nothing is skipped entirely so
// no-op ripples never dirty history.
func HasStateChanged(nodes []workflow.Node, updates Updates) bool {
	for id, patch := range updates {
		i := workflow.FindNode(nodes, id)
		if i < 0 {
			continue
		}
		data := nodes[i].Data
		for field, next := range patch {
			if !valueEqual(data[field], next) {
				return true
			}
		}
	}
	return false
}

// ApplyNodeUpdates commits staged updates in one atomic merge pass,
// returning a new node list. Untouched nodes keep their original data
// record; touched nodes get a shallow-merged copy.
func ApplyNodeUpdates(nodes []workflow.Node, updates Updates) []workflow.Node {
	if len(updates) == 0 {
		return nodes
	}
	out := make([]workflow.Node, len(nodes))
	for i, n := range nodes {
		patch, ok := updates[n.ID]
		if !ok {
			out[i] = n
			continue
		}
		out[i] = workflow.MergeData(n, patch)
	}
	return out
}

// Replay re-propagates the stored output of every node that has one. It is
// run once on workflow load so freshly loaded downstream inputs agree with
// stored outputs; the caller treats the result as non-dirtying.
func Replay(cat *catalog.Catalog, nodes []workflow.Node, edges []workflow.Edge) []workflow.Node {
	for _, n := range nodes {
		out := NodeOutput(cat, n)
		if out == nil {
			continue
		}
		updates := ComputeDownstreamUpdates(cat, n.ID, out, nodes, edges)
		if len(updates) == 0 || !HasStateChanged(nodes, updates) {
			continue
		}
		nodes = ApplyNodeUpdates(nodes, updates)
	}
	return nodes
}

// valueEqual compares a node data value against a staged value. Slices are
// compared by length then element; nil matches an absent field.
func valueEqual(current, next any) bool {
	if current == nil && next == nil {
		return true
	}
	cs, cok := asAnySlice(current)
	ns, nok := asAnySlice(next)
	if cok || nok {
		if !cok || !nok || len(cs) != len(ns) {
			return false
		}
		for i := range cs {
			if !valueEqual(cs[i], ns[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(current, next)
}

func asAnySlice(v any) ([]any, bool) {
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
