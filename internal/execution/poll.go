package execution

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"

	"github.com/mav/genflow/internal/ctxlog"
	"github.com/mav/genflow/internal/propagate"
	"github.com/mav/genflow/internal/workflow"
)

// ErrPollTimeout is recorded on a node whose direct job never reached a
// terminal state within the attempt bound.
var ErrPollTimeout = errors.New("timed out")

// errStillRunning keeps the backoff loop polling.
var errStillRunning = errors.New("job still running")

// errJobFailed stops the loop once the provider reported a failure.
var errJobFailed = errors.New("job failed")

// RunNodeDirect submits one node straight to the provider, bypassing the
// streaming execution service, and polls the returned job id on a fixed
// interval up to a bounded number of attempts. On success the result flows
// through the same extraction and propagation path as streamed results.
// Cancellation stops the loop without propagating and forces the node back
// to idle; exhausting the attempt bound marks the node with a timeout
// error so it is never left hanging.
func (c *Coordinator) RunNodeDirect(ctx context.Context, nodeID string, payload any) error {
	c.mu.Lock()
	if _, exists := c.nodeRuns[nodeID]; exists {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.mu.Unlock()

	jobID, err := c.service.SubmitNode(ctx, nodeID, payload)
	if err != nil {
		return err
	}

	c.store.ApplyRunState(nodeID, workflow.Data{
		workflow.FieldStatus: string(workflow.StatusProcessing),
	})

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	nr := &nodeRun{cancel: cancel, done: done}
	c.mu.Lock()
	c.nodeRuns[nodeID] = nr
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.pollJob(pollCtx, nodeID, jobID)
		c.mu.Lock()
		if c.nodeRuns[nodeID] == nr {
			delete(c.nodeRuns, nodeID)
		}
		c.mu.Unlock()
	}()
	return nil
}

func (c *Coordinator) pollJob(ctx context.Context, nodeID, jobID string) {
	logger := ctxlog.FromContext(ctx).With("nodeID", nodeID, "jobID", jobID)

	operation := func() error {
		status, err := c.service.PollJob(ctx, jobID)
		if err != nil {
			// A flaky poll counts as an attempt; the bound decides when to
			// give up.
			return err
		}

		switch mapStatus(status.Status) {
		case workflow.StatusComplete:
			patch := workflow.Data{
				workflow.FieldStatus: string(workflow.StatusComplete),
				workflow.FieldError:  nil,
			}
			if n, ok := c.store.Node(nodeID); ok {
				cat := propagate.OutputType(c.store.Catalog(), n.Type)
				for k, v := range extractOutput(cat, status.Output) {
					patch[k] = v
				}
			}
			if err := c.store.ApplyNodeOutput(nodeID, patch, true); err != nil {
				logger.Debug("Dropping poll result for unknown node.")
			}
			return nil

		case workflow.StatusError:
			c.store.ApplyRunState(nodeID, workflow.Data{
				workflow.FieldStatus: string(workflow.StatusError),
				workflow.FieldError:  status.Error,
			})
			return backoff.Permanent(errJobFailed)

		default:
			if status.Progress > 0 {
				c.store.ApplyRunState(nodeID, workflow.Data{workflow.FieldProgress: status.Progress})
			}
			return errStillRunning
		}
	}

	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.pollInterval), c.pollAttempts),
		ctx,
	))
	switch {
	case err == nil:
		logger.Debug("Direct job completed.")
	case ctx.Err() != nil:
		// Cancellation is never an error.
		c.store.ResetNodes(nodeID)
	case errors.Is(err, errJobFailed):
		logger.Debug("Direct job failed.")
	default:
		c.store.ApplyRunState(nodeID, workflow.Data{
			workflow.FieldStatus: string(workflow.StatusError),
			workflow.FieldError:  ErrPollTimeout.Error(),
		})
	}
}
