package schedule

import (
	"github.com/mav/genflow/internal/workflow"
)

// TopologicalSort returns the node ids in dependency order using Kahn's
// algorithm. If the graph contains a cycle the result is shorter than the
// node count; that is the documented, non-exceptional way cycles manifest
// here. Flagging cycles as an error is the validator's job.
func TopologicalSort(nodes []workflow.Node, edges []workflow.Edge) []string {
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}

	inDegree := make(map[string]int, len(nodes))
	adjacency := make(map[string][]string, len(nodes))
	for _, e := range edges {
		// Edges to missing nodes are tolerated during traversal.
		if !known[e.Source] || !known[e.Target] {
			continue
		}
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		inDegree[e.Target]++
	}

	var queue []string
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order := make([]string, 0, len(nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, next := range adjacency[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return order
}

// BuildDependencyMap returns, for each node id, the ids of its direct
// upstream sources. Consumers that only need "what must already be done"
// use this instead of a full ordering.
func BuildDependencyMap(nodes []workflow.Node, edges []workflow.Edge) map[string][]string {
	deps := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		deps[n.ID] = nil
	}
	for _, e := range edges {
		if _, ok := deps[e.Target]; !ok {
			continue
		}
		deps[e.Target] = append(deps[e.Target], e.Source)
	}
	return deps
}
