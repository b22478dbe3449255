package execution

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"github.com/mav/genflow/internal/ctxlog"
)

// Service is the remote execution service boundary. The coordinator
// depends only on this interface; tests substitute scripted fakes.
type Service interface {
	// Submit starts a run and returns its execution id.
	Submit(ctx context.Context, req RunRequest) (string, error)
	// OpenStream subscribes to the run's status channel.
	OpenStream(ctx context.Context, executionID string) (Stream, error)
	// Reconcile fetches the authoritative point-in-time execution state.
	Reconcile(ctx context.Context, executionID string) (ExecutionData, error)
	// Stop asks the service to cancel a run. Best effort: failures are
	// ignored.
	Stop(ctx context.Context, executionID string)
	// SubmitNode submits one node directly, bypassing the streaming
	// service, and returns the bare provider job id.
	SubmitNode(ctx context.Context, nodeID string, payload any) (string, error)
	// PollJob fetches the current status of a direct job submission.
	PollJob(ctx context.Context, jobID string) (JobStatus, error)
}

// Client implements Service over HTTP.
type Client struct {
	http *resty.Client
}

// NewClient builds a client for the execution service at baseURL. The api
// key may be empty for unauthenticated deployments.
func NewClient(baseURL, apiKey string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &Client{http: c}
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.http.Close()
}

type submitResponse struct {
	ID string `json:"_id"`
}

// Submit implements Service.
func (c *Client) Submit(ctx context.Context, req RunRequest) (string, error) {
	var out submitResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/executions")
	if err != nil {
		return "", fmt.Errorf("failed to submit run: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("failed to submit run: service returned %s", res.Status())
	}
	if out.ID == "" {
		return "", fmt.Errorf("failed to submit run: service returned no execution id")
	}
	return out.ID, nil
}

// OpenStream implements Service. The response body is handed to the SSE
// reader unparsed.
func (c *Client) OpenStream(ctx context.Context, executionID string) (Stream, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "text/event-stream").
		Get("/executions/" + executionID + "/stream")
	if err != nil {
		return nil, fmt.Errorf("failed to open execution stream: %w", err)
	}
	if res.IsError() {
		res.Body.Close()
		return nil, fmt.Errorf("failed to open execution stream: service returned %s", res.Status())
	}
	return newSSEStream(res.Body), nil
}

// Reconcile implements Service.
func (c *Client) Reconcile(ctx context.Context, executionID string) (ExecutionData, error) {
	var out ExecutionData
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/executions/" + executionID)
	if err != nil {
		return ExecutionData{}, fmt.Errorf("failed to fetch execution state: %w", err)
	}
	if res.IsError() {
		return ExecutionData{}, fmt.Errorf("failed to fetch execution state: service returned %s", res.Status())
	}
	return out, nil
}

// Stop implements Service. Fire and forget.
func (c *Client) Stop(ctx context.Context, executionID string) {
	logger := ctxlog.FromContext(ctx)
	res, err := c.http.R().
		SetContext(ctx).
		Post("/executions/" + executionID + "/stop")
	if err != nil {
		logger.Debug("Stop request failed, ignoring.", "executionID", executionID, "error", err)
		return
	}
	if res.IsError() {
		logger.Debug("Stop request rejected, ignoring.", "executionID", executionID, "status", res.Status())
	}
}

type submitNodeResponse struct {
	ID string `json:"id"`
}

// SubmitNode implements Service.
func (c *Client) SubmitNode(ctx context.Context, nodeID string, payload any) (string, error) {
	var out submitNodeResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"nodeId": nodeID, "input": payload}).
		SetResult(&out).
		Post("/predictions")
	if err != nil {
		return "", fmt.Errorf("failed to submit node job: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("failed to submit node job: service returned %s", res.Status())
	}
	if out.ID == "" {
		return "", fmt.Errorf("failed to submit node job: service returned no job id")
	}
	return out.ID, nil
}

// PollJob implements Service.
func (c *Client) PollJob(ctx context.Context, jobID string) (JobStatus, error) {
	var out JobStatus
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/predictions/" + jobID)
	if err != nil {
		return JobStatus{}, fmt.Errorf("failed to poll job: %w", err)
	}
	if res.IsError() {
		return JobStatus{}, fmt.Errorf("failed to poll job: service returned %s", res.Status())
	}
	return out, nil
}
