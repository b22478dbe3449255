// Package execution coordinates runs against the remote execution service:
// submitting them, consuming the streamed status channel, reconciling
// against an authoritative fetch when the stream ends, and keeping node
// run state in the workflow store consistent throughout.
package execution
