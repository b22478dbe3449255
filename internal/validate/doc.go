// Package validate implements the typed-connection rules, cycle detection,
// and whole-workflow validation that gate a run. All functions are pure;
// they never mutate the graph.
package validate
