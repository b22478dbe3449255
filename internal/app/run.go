package app

import (
	"context"
	"fmt"
	"os"

	"github.com/mav/genflow/internal/ctxlog"
	"github.com/mav/genflow/internal/execution"
	"github.com/mav/genflow/internal/workflow"
)

// filePersister writes the workflow back to the file it was loaded from.
// The coordinator invokes it before a run when the store holds unsaved
// edits, and owns the dirty-flag transition after a successful save.
type filePersister struct {
	path string
}

func (p *filePersister) Save(_ context.Context, f workflow.File) error {
	raw, err := workflow.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(p.path, raw, 0o644)
}

// Run executes the requested command against the loaded workflow.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	switch a.config.Command {
	case "validate":
		return a.runValidate()
	case "run":
		return a.runExecute(ctx)
	default:
		return fmt.Errorf("unknown command: %q", a.config.Command)
	}
}

func (a *App) runValidate() error {
	res := a.store.Validate()
	for _, w := range res.Warnings {
		fmt.Fprintf(a.outW, "warning: %s (node %s)\n", w.Message, w.NodeID)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(a.outW, "error: %s (node %s)\n", e.Message, e.NodeID)
	}
	if !res.IsValid {
		return fmt.Errorf("workflow is invalid: %d error(s)", len(res.Errors))
	}
	fmt.Fprintln(a.outW, "workflow is valid")
	return nil
}

func (a *App) runExecute(ctx context.Context) error {
	if a.config.ServiceURL == "" {
		return fmt.Errorf("a service URL is required to run a workflow (flag --service-url or GENFLOW_API_URL)")
	}
	client := execution.NewClient(a.config.ServiceURL, a.config.APIKey)
	defer client.Close()

	persister := &filePersister{path: a.config.WorkflowPath}
	coord := execution.NewCoordinator(a.store, client, persister)

	a.logger.Info("🚀 Starting workflow execution...")
	res := coord.RunWorkflow(ctx, execution.RunOptions{DebugMode: a.config.DebugMode})
	if !res.IsValid {
		for _, e := range res.Errors {
			fmt.Fprintf(a.outW, "error: %s (node %s)\n", e.Message, e.NodeID)
		}
		return fmt.Errorf("run was not started: %d error(s)", len(res.Errors))
	}
	coord.Wait()

	if failed := coord.LastFailedNode(); failed != "" {
		return fmt.Errorf("execution failed at node %s", failed)
	}
	a.logger.Info("🏁 Execution finished.")
	return nil
}
