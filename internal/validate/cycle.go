package validate

import (
	"github.com/mav/genflow/internal/workflow"
)

// DetectCycles reports whether the edge set contains a directed cycle and,
// if so, returns the ids of nodes on the recursion stack when the back edge
// was found. The DFS uses an explicit stack so pathologically deep graphs
// cannot overflow the goroutine stack.
func DetectCycles(nodes []workflow.Node, edges []workflow.Edge) (bool, []string) {
	adjacency := make(map[string][]string, len(nodes))
	for _, e := range edges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
	}

	const (
		unvisited = 0
		onStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(nodes))

	// frame tracks how far into a node's adjacency list the traversal is,
	// which is what lets the recursion become a loop.
	type frame struct {
		id   string
		next int
	}

	for _, root := range nodes {
		if state[root.ID] != unvisited {
			continue
		}
		stack := []frame{{id: root.ID}}
		state[root.ID] = onStack

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			targets := adjacency[top.id]

			if top.next >= len(targets) {
				state[top.id] = done
				stack = stack[:len(stack)-1]
				continue
			}

			next := targets[top.next]
			top.next++

			switch state[next] {
			case onStack:
				// Back edge: everything currently on the stack from the
				// first occurrence of next onward forms the cycle.
				var cycle []string
				for _, f := range stack {
					if len(cycle) > 0 || f.id == next {
						cycle = append(cycle, f.id)
					}
				}
				return true, cycle
			case unvisited:
				state[next] = onStack
				stack = append(stack, frame{id: next})
			}
		}
	}
	return false, nil
}
