package validate

import (
	"fmt"

	"github.com/mav/genflow/internal/catalog"
	"github.com/mav/genflow/internal/workflow"
)

// Severity distinguishes blocking problems from advisories.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one structured validation finding.
type Issue struct {
	NodeID   string   `json:"nodeId,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Result aggregates the findings for a whole workflow.
type Result struct {
	IsValid  bool    `json:"isValid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Workflow checks the whole graph and returns every blocking error and
// advisory warning. Errors block only the run action; the graph stays
// editable regardless.
func Workflow(cat *catalog.Catalog, nodes []workflow.Node, edges []workflow.Edge) Result {
	res := Result{IsValid: true}
	addError := func(nodeID, msg string) {
		res.IsValid = false
		res.Errors = append(res.Errors, Issue{NodeID: nodeID, Message: msg, Severity: SeverityError})
	}
	addWarning := func(nodeID, msg string) {
		res.Warnings = append(res.Warnings, Issue{NodeID: nodeID, Message: msg, Severity: SeverityWarning})
	}

	incident := make(map[string]int, len(nodes))
	incoming := make(map[string][]workflow.Edge)
	for _, e := range edges {
		incident[e.Source]++
		incident[e.Target]++
		incoming[e.Target] = append(incoming[e.Target], e)
	}

	for _, n := range nodes {
		nt, ok := cat.Lookup(n.Type)
		if !ok {
			addError(n.ID, fmt.Sprintf("Unknown node type: %s", n.Type))
			continue
		}

		for _, h := range nt.Inputs {
			if !h.Required {
				continue
			}
			connected := false
			populated := false
			for _, e := range incoming[n.ID] {
				if e.TargetHandle != h.ID {
					continue
				}
				connected = true
				if sourceHasTriggerData(cat, nodes, e.Source) {
					populated = true
					break
				}
			}
			if !connected || !populated {
				addError(n.ID, fmt.Sprintf("Missing required input: %s", h.ID))
			}
		}

		if nt.Sink && !hasMediaInput(n) {
			addError(n.ID, fmt.Sprintf("%s requires at least one media input", nt.Label))
		}

		if len(nodes) > 1 && incident[n.ID] == 0 {
			addWarning(n.ID, "Node is not connected to the workflow")
		}
	}

	if hasCycle, cycle := DetectCycles(nodes, edges); hasCycle {
		nodeID := ""
		if len(cycle) > 0 {
			nodeID = cycle[0]
		}
		addError(nodeID, "Workflow contains a cycle")
	}

	return res
}

// sourceHasTriggerData reports whether an upstream node can actually feed
// its consumers: source kinds with a literal trigger field (a prompt's
// text, an input node's media) must have it populated, while computed kinds
// always pass because their output appears at run time.
func sourceHasTriggerData(cat *catalog.Catalog, nodes []workflow.Node, sourceID string) bool {
	i := workflow.FindNode(nodes, sourceID)
	if i < 0 {
		return false
	}
	nt, ok := cat.Lookup(nodes[i].Type)
	if !ok {
		return false
	}
	if nt.TriggerField == "" {
		return true
	}
	return nodes[i].Data.String(nt.TriggerField) != ""
}

// hasMediaInput reports whether a sink node has any populated media input.
func hasMediaInput(n workflow.Node) bool {
	for _, f := range []string{
		workflow.FieldInputImage,
		workflow.FieldInputVideo,
		workflow.FieldInputAudio,
	} {
		if n.Data.String(f) != "" {
			return true
		}
	}
	if imgs := n.Data.Strings(workflow.FieldInputImages); len(imgs) > 0 {
		return true
	}
	if imgs := n.Data.Strings(workflow.FieldImages); len(imgs) > 0 {
		return true
	}
	return false
}
