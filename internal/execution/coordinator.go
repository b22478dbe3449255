package execution

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/mav/genflow/internal/ctxlog"
	"github.com/mav/genflow/internal/propagate"
	"github.com/mav/genflow/internal/state"
	"github.com/mav/genflow/internal/validate"
	"github.com/mav/genflow/internal/workflow"
)

var (
	// ErrAlreadyRunning is returned when a whole-graph run is requested
	// while one is active, or a node run while that node is running.
	ErrAlreadyRunning = errors.New("execution already running")
	// ErrNothingToResume is returned by Resume when no node has failed.
	ErrNothingToResume = errors.New("no failed node to resume from")
)

// Persister saves the workflow before a run when it has unsaved changes.
// It is an external collaborator; a nil Persister skips the save.
type Persister interface {
	Save(ctx context.Context, f workflow.File) error
}

// Coordinator submits runs, consumes their status streams, and reconciles
// the workflow store against the authoritative execution state.
type Coordinator struct {
	store     *state.Store
	service   Service
	persister Persister

	// reconcileTimeout bounds the post-stream authoritative fetch.
	reconcileTimeout time.Duration

	mu          sync.Mutex
	running     bool
	executionID string
	cancelRun   context.CancelFunc
	runStream   Stream
	runDone     chan struct{}
	debugMode   bool

	lastFailed string

	// nodeRuns tracks independent per-node executions by node id, so
	// several nodes can run concurrently and each can be stopped on its
	// own.
	nodeRuns map[string]*nodeRun

	jobs          map[string]Job
	debugPayloads []any
	debugSeen     map[string]bool

	pollInterval time.Duration
	pollAttempts uint64
}

type nodeRun struct {
	executionID string
	cancel      context.CancelFunc
	stream      Stream
	done        chan struct{}
}

// RunOptions configures a whole-graph run.
type RunOptions struct {
	DebugMode       bool
	SelectedNodeIDs []string
}

// NewCoordinator wires a coordinator over the given store and service.
func NewCoordinator(store *state.Store, service Service, persister Persister) *Coordinator {
	return &Coordinator{
		store:            store,
		service:          service,
		persister:        persister,
		reconcileTimeout: 10 * time.Second,
		nodeRuns:         make(map[string]*nodeRun),
		jobs:             make(map[string]Job),
		debugSeen:        make(map[string]bool),
		pollInterval:     2 * time.Second,
		pollAttempts:     60,
	}
}

// Running reports whether a whole-graph run is active.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// ExecutionID returns the id of the tracked whole-graph run, if any.
func (c *Coordinator) ExecutionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.executionID
}

// LastFailedNode returns the node id recorded by the most recent per-node
// failure, used by Resume.
func (c *Coordinator) LastFailedNode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFailed
}

// Jobs returns the merged job records observed so far.
func (c *Coordinator) Jobs() []Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Job, 0, len(c.jobs))
	for _, j := range c.jobs {
		out = append(out, j)
	}
	return out
}

// DebugPayloads returns the captured debug input snapshots.
func (c *Coordinator) DebugPayloads() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.debugPayloads...)
}

// RunWorkflow validates, persists if needed, submits the run, and starts
// consuming its stream. All failure modes are reported through the
// returned validation result so callers have one reporting channel; the
// graph itself stays editable throughout.
func (c *Coordinator) RunWorkflow(ctx context.Context, opts RunOptions) validate.Result {
	logger := ctxlog.FromContext(ctx)

	res := c.store.Validate()
	if !res.IsValid {
		return res
	}

	fail := func(msg string) validate.Result {
		res.IsValid = false
		res.Errors = append(res.Errors, validate.Issue{Message: msg, Severity: validate.SeverityError})
		return res
	}

	if c.store.Dirty() && c.persister != nil {
		if err := c.persister.Save(ctx, c.store.Export()); err != nil {
			return fail("Failed to save workflow: " + err.Error())
		}
		c.store.MarkSaved()
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fail("Workflow is already running")
	}
	c.mu.Unlock()

	execID, err := c.service.Submit(ctx, RunRequest{
		DebugMode:       opts.DebugMode,
		SelectedNodeIDs: opts.SelectedNodeIDs,
	})
	if err != nil {
		return fail("Failed to start execution: " + err.Error())
	}

	stream, err := c.service.OpenStream(ctx, execID)
	if err != nil {
		return fail("Failed to subscribe to execution: " + err.Error())
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	c.mu.Lock()
	c.running = true
	c.executionID = execID
	c.cancelRun = cancel
	c.runStream = stream
	c.runDone = done
	c.debugMode = opts.DebugMode
	c.lastFailed = ""
	c.mu.Unlock()

	logger.Info("Execution started.", "executionID", execID, "debug", opts.DebugMode)

	go func() {
		defer close(done)
		c.consume(runCtx, execID, stream)
		c.mu.Lock()
		// A stopped run's goroutine may outlive a newer run; only the run
		// that still owns the slot clears it.
		if c.runDone == done {
			c.running = false
			c.runStream = nil
		}
		c.mu.Unlock()
	}()
	return res
}

// Wait blocks until the current whole-graph run has fully finished,
// including reconciliation. It returns immediately if nothing is running.
func (c *Coordinator) Wait() {
	c.mu.Lock()
	done := c.runDone
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// consume drives one subscription to completion: streamed snapshots are
// applied as they arrive, and when the stream ends for any reason other
// than cancellation a single authoritative fetch is reapplied the same
// way. The visited set caps propagation at once per node per
// subscription, so a resend of an already-applied completion never
// double-cascades.
func (c *Coordinator) consume(ctx context.Context, executionID string, stream Stream) {
	logger := ctxlog.FromContext(ctx)
	visited := make(map[string]bool)

	for {
		data, err := stream.Next(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
				logger.Debug("Stream ended abnormally.", "executionID", executionID, "error", err)
			}
			break
		}
		if ctx.Err() != nil {
			// A frame can already be in flight when the run is stopped;
			// applying it would overwrite the forced idle write.
			break
		}
		c.apply(ctx, data, visited)
		if runFinished(data) {
			break
		}
	}
	stream.Close()

	if ctx.Err() != nil {
		// Cancelled: the stop path already forced idle state, and a
		// reconcile here would resurrect it.
		return
	}

	rctx, rcancel := context.WithTimeout(context.WithoutCancel(ctx), c.reconcileTimeout)
	defer rcancel()
	data, err := c.service.Reconcile(rctx, executionID)
	if err != nil {
		logger.Warn("Reconciliation fetch failed; node state may lag until next run.",
			"executionID", executionID, "error", err)
		return
	}
	c.apply(ctx, data, visited)
	logger.Info("Execution finished.", "executionID", executionID, "status", data.Status)
}

// apply folds one ExecutionData snapshot into the workflow store.
func (c *Coordinator) apply(ctx context.Context, data ExecutionData, visited map[string]bool) {
	logger := ctxlog.FromContext(ctx)

	for _, nr := range data.NodeResults {
		switch mapStatus(nr.Status) {
		case workflow.StatusComplete:
			patch := workflow.Data{
				workflow.FieldStatus: string(workflow.StatusComplete),
				workflow.FieldError:  nil,
			}
			if n, ok := c.store.Node(nr.NodeID); ok {
				cat := propagate.OutputType(c.store.Catalog(), n.Type)
				for k, v := range extractOutput(cat, nr.Output) {
					patch[k] = v
				}
			}
			doPropagate := !visited[nr.NodeID]
			visited[nr.NodeID] = true
			if err := c.store.ApplyNodeOutput(nr.NodeID, patch, doPropagate); err != nil {
				logger.Debug("Dropping result for unknown node.", "nodeID", nr.NodeID)
			}

		case workflow.StatusError:
			c.store.ApplyRunState(nr.NodeID, workflow.Data{
				workflow.FieldStatus: string(workflow.StatusError),
				workflow.FieldError:  nr.Error,
			})
			c.mu.Lock()
			c.lastFailed = nr.NodeID
			c.mu.Unlock()

		case workflow.StatusProcessing:
			c.store.ApplyRunState(nr.NodeID, workflow.Data{
				workflow.FieldStatus: string(workflow.StatusProcessing),
			})
		}
	}

	c.mu.Lock()
	for _, job := range data.Jobs {
		if job.PredictionID != "" {
			c.jobs[job.PredictionID] = job
		}
		if data.DebugMode && job.Result != nil && job.Result.DebugPayload != nil && !c.debugSeen[job.PredictionID] {
			c.debugSeen[job.PredictionID] = true
			c.debugPayloads = append(c.debugPayloads, job.Result.DebugPayload)
		}
	}
	c.mu.Unlock()

	for _, job := range data.Jobs {
		if job.Progress > 0 && mapStatus(job.Status) == workflow.StatusProcessing {
			c.store.ApplyRunState(job.NodeID, workflow.Data{workflow.FieldProgress: job.Progress})
		}
	}
}

// Resume re-submits a fresh run after a failure, resetting only the
// previously failed node back to idle and replacing the tracked execution
// id. Already-complete nodes are untouched.
func (c *Coordinator) Resume(ctx context.Context) error {
	c.mu.Lock()
	failed := c.lastFailed
	running := c.running
	debug := c.debugMode
	c.mu.Unlock()

	if running {
		return ErrAlreadyRunning
	}
	if failed == "" {
		return ErrNothingToResume
	}

	c.store.ResetNodes(failed)

	res := c.RunWorkflow(ctx, RunOptions{DebugMode: debug})
	if !res.IsValid {
		if len(res.Errors) > 0 {
			return errors.New(res.Errors[0].Message)
		}
		return errors.New("resume failed validation")
	}
	return nil
}

// StopRun cancels the whole-graph run: the stream is closed immediately,
// the service is notified best-effort, and every node still processing is
// forced back to idle. Cancellation is never reported as an error.
func (c *Coordinator) StopRun(ctx context.Context) {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	cancel := c.cancelRun
	stream := c.runStream
	execID := c.executionID
	c.running = false
	c.runStream = nil
	c.mu.Unlock()

	cancel()
	if stream != nil {
		// Unblocks a reader stuck mid-frame; cancellation alone only takes
		// effect between frames.
		stream.Close()
	}
	go func() {
		sctx, scancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer scancel()
		c.service.Stop(sctx, execID)
	}()

	var ids []string
	for _, n := range c.store.Nodes() {
		if n.Data.Status() == workflow.StatusProcessing {
			ids = append(ids, n.ID)
		}
	}
	c.store.ResetNodes(ids...)
}

// RunNode executes one node in isolation for iterative editing. It never
// touches the whole-graph running flag; each node run has its own
// subscription and can be stopped independently.
func (c *Coordinator) RunNode(ctx context.Context, nodeID string) error {
	c.mu.Lock()
	if _, exists := c.nodeRuns[nodeID]; exists {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.mu.Unlock()

	execID, err := c.service.Submit(ctx, RunRequest{SelectedNodeIDs: []string{nodeID}})
	if err != nil {
		return err
	}
	stream, err := c.service.OpenStream(ctx, execID)
	if err != nil {
		return err
	}

	c.store.ApplyRunState(nodeID, workflow.Data{
		workflow.FieldStatus: string(workflow.StatusProcessing),
	})

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	nr := &nodeRun{executionID: execID, cancel: cancel, stream: stream, done: done}
	c.mu.Lock()
	c.nodeRuns[nodeID] = nr
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.consume(runCtx, execID, stream)
		c.mu.Lock()
		if c.nodeRuns[nodeID] == nr {
			delete(c.nodeRuns, nodeID)
		}
		c.mu.Unlock()
	}()
	return nil
}

// WaitNode blocks until the given node's independent run finishes.
func (c *Coordinator) WaitNode(nodeID string) {
	c.mu.Lock()
	nr := c.nodeRuns[nodeID]
	c.mu.Unlock()
	if nr != nil {
		<-nr.done
	}
}

// StopNode cancels one node's independent run and forces it back to idle.
func (c *Coordinator) StopNode(ctx context.Context, nodeID string) {
	c.mu.Lock()
	nr := c.nodeRuns[nodeID]
	if nr != nil {
		delete(c.nodeRuns, nodeID)
	}
	c.mu.Unlock()
	if nr == nil {
		return
	}

	nr.cancel()
	if nr.stream != nil {
		nr.stream.Close()
	}
	if nr.executionID != "" {
		go func() {
			sctx, scancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer scancel()
			c.service.Stop(sctx, nr.executionID)
		}()
	}
	c.store.ResetNodes(nodeID)
}
