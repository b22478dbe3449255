package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/mav/genflow/internal/execution"
)

// ScriptedStream replays a fixed sequence of execution snapshots and then
// reports the scripted terminal error (io.EOF for a clean close).
type ScriptedStream struct {
	Frames []execution.ExecutionData
	// Err is returned after the frames are exhausted. Nil means io.EOF.
	Err error
	// Block makes Next wait for cancellation once the frames run out,
	// imitating a live stream with nothing more to say yet.
	Block bool

	mu     sync.Mutex
	next   int
	closed bool
}

// Next implements execution.Stream.
func (s *ScriptedStream) Next(ctx context.Context) (execution.ExecutionData, error) {
	if err := ctx.Err(); err != nil {
		return execution.ExecutionData{}, err
	}
	s.mu.Lock()
	if s.next < len(s.Frames) {
		frame := s.Frames[s.next]
		s.next++
		s.mu.Unlock()
		return frame, nil
	}
	s.mu.Unlock()

	if s.Block {
		<-ctx.Done()
		return execution.ExecutionData{}, ctx.Err()
	}
	if s.Err != nil {
		return execution.ExecutionData{}, s.Err
	}
	return execution.ExecutionData{}, io.EOF
}

// Close implements execution.Stream.
func (s *ScriptedStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *ScriptedStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// ScriptedService is an in-memory execution.Service whose responses are
// fixed up front. It records the calls the coordinator makes.
type ScriptedService struct {
	ExecutionID string
	Stream      *ScriptedStream
	// Streams, when set, serves successive OpenStream calls in order and
	// takes precedence over Stream. The last entry repeats.
	Streams []execution.Stream
	// Final is returned by Reconcile.
	Final execution.ExecutionData
	// SubmitErr, if set, fails Submit.
	SubmitErr error
	// JobStatuses feeds successive PollJob calls for direct node runs.
	// The last entry repeats once the script runs out.
	JobStatuses []execution.JobStatus

	mu         sync.Mutex
	submits    []execution.RunRequest
	stops      []string
	reconciles int
	polls      int
	opened     int
}

// Submit implements execution.Service.
func (s *ScriptedService) Submit(_ context.Context, req execution.RunRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SubmitErr != nil {
		return "", s.SubmitErr
	}
	s.submits = append(s.submits, req)
	if s.ExecutionID == "" {
		return "exec-1", nil
	}
	return s.ExecutionID, nil
}

// OpenStream implements execution.Service.
func (s *ScriptedService) OpenStream(_ context.Context, _ string) (execution.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Streams) > 0 {
		i := s.opened
		if i >= len(s.Streams) {
			i = len(s.Streams) - 1
		}
		s.opened++
		return s.Streams[i], nil
	}
	if s.Stream == nil {
		return &ScriptedStream{}, nil
	}
	return s.Stream, nil
}

// Reconcile implements execution.Service.
func (s *ScriptedService) Reconcile(_ context.Context, _ string) (execution.ExecutionData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconciles++
	return s.Final, nil
}

// Stop implements execution.Service.
func (s *ScriptedService) Stop(_ context.Context, executionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops = append(s.stops, executionID)
}

// SubmitNode implements execution.Service.
func (s *ScriptedService) SubmitNode(_ context.Context, nodeID string, _ any) (string, error) {
	return "job-" + nodeID, nil
}

// PollJob implements execution.Service.
func (s *ScriptedService) PollJob(_ context.Context, _ string) (execution.JobStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.JobStatuses) == 0 {
		return execution.JobStatus{Status: "processing"}, nil
	}
	i := s.polls
	if i >= len(s.JobStatuses) {
		i = len(s.JobStatuses) - 1
	}
	s.polls++
	return s.JobStatuses[i], nil
}

// Submits returns the recorded run submissions.
func (s *ScriptedService) Submits() []execution.RunRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]execution.RunRequest(nil), s.submits...)
}

// Stops returns the execution ids passed to Stop.
func (s *ScriptedService) Stops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.stops...)
}

// Reconciles returns how many times Reconcile was called.
func (s *ScriptedService) Reconciles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciles
}
