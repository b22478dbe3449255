package execution

import (
	"time"

	"github.com/mav/genflow/internal/workflow"
)

// NodeResult is one node's reported state inside an ExecutionData snapshot.
type NodeResult struct {
	NodeID string `json:"nodeId"`
	Status string `json:"status"`
	Output any    `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// JobResult carries optional provider extras for one job, most notably the
// input payload snapshot captured in debug mode.
type JobResult struct {
	DebugPayload any `json:"debugPayload,omitempty"`
}

// Job is a lightweight record of one remote unit of work tied to a node.
type Job struct {
	PredictionID string     `json:"predictionId"`
	NodeID       string     `json:"nodeId"`
	Status       string     `json:"status"`
	Progress     float64    `json:"progress,omitempty"`
	Output       any        `json:"output,omitempty"`
	Error        string     `json:"error,omitempty"`
	Result       *JobResult `json:"result,omitempty"`
	CreatedAt    time.Time  `json:"createdAt,omitempty"`
}

// ExecutionData is a snapshot of an entire run so far. Stream messages and
// the reconciliation fetch share this shape; messages are snapshots, not
// deltas.
type ExecutionData struct {
	ID           string       `json:"_id,omitempty"`
	Status       string       `json:"status"`
	NodeResults  []NodeResult `json:"nodeResults"`
	Jobs         []Job        `json:"jobs"`
	PendingNodes []string     `json:"pendingNodes"`
	DebugMode    bool         `json:"debugMode"`
}

// RunRequest is the submit-run payload.
type RunRequest struct {
	DebugMode       bool     `json:"debugMode"`
	SelectedNodeIDs []string `json:"selectedNodeIds,omitempty"`
}

// JobStatus is the response shape of the single-node poll endpoint.
type JobStatus struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	Output   any     `json:"output,omitempty"`
	Error    string  `json:"error,omitempty"`
	Progress float64 `json:"progress,omitempty"`
}

// mapStatus maps the remote status vocabulary onto the local node status
// enum. Both "complete" and "succeeded" mean complete.
func mapStatus(remote string) workflow.Status {
	switch remote {
	case "complete", "completed", "succeeded":
		return workflow.StatusComplete
	case "error", "failed":
		return workflow.StatusError
	case "pending", "processing", "running":
		return workflow.StatusProcessing
	default:
		return workflow.StatusIdle
	}
}

// isTerminal reports whether an overall execution status ends the run.
func isTerminal(status string) bool {
	switch status {
	case "completed", "failed", "cancelled", "error":
		return true
	}
	return false
}

// runFinished implements completion detection: the overall status is
// terminal, or at least one node failed with nothing pending and nothing
// processing. The second condition exists because some failure paths never
// emit an overall terminal status, only a per-node error.
func runFinished(data ExecutionData) bool {
	if isTerminal(data.Status) {
		return true
	}
	failed := false
	processing := false
	for _, nr := range data.NodeResults {
		switch mapStatus(nr.Status) {
		case workflow.StatusError:
			failed = true
		case workflow.StatusProcessing:
			if nr.Status != "pending" {
				processing = true
			}
		}
	}
	return failed && !processing && len(data.PendingNodes) == 0
}
