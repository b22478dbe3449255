// Package propagate implements the output-propagation engine: computing a
// node's canonical output, deciding which downstream input fields receive
// it, and walking the graph breadth-first to stage and commit the derived
// updates. All functions are pure over the node/edge slices they are given.
package propagate
