// Package state holds the mutable workflow graph behind one explicit
// container. Every mutation validates and commits against the same locked
// snapshot, so one triggering change produces exactly one propagation pass
// and one state commit. The pure per-concern functions live in
// internal/validate, internal/schedule, internal/propagate, and
// internal/history; this package only composes them.
package state
