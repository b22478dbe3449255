package execution

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/mav/genflow/internal/ctxlog"
)

// Stream is a server-streamed status channel for one execution. It is
// deliberately transport-agnostic so the reconciliation and dedup logic
// never cares what carried the bytes.
type Stream interface {
	// Next blocks for the next snapshot. It returns io.EOF when the remote
	// side ends the stream cleanly, or ctx.Err() on cancellation.
	Next(ctx context.Context) (ExecutionData, error)
	// Close releases the underlying transport. It is safe to call more
	// than once.
	Close() error
}

// sseStream reads ExecutionData snapshots from a server-sent-events body.
// Malformed events are skipped rather than retried: the mandatory
// post-stream reconciliation fetch repairs anything a bad frame dropped.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func newSSEStream(body io.ReadCloser) *sseStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &sseStream{body: body, scanner: scanner}
}

// Next reads SSE frames until one carries a decodable snapshot. Frames are
// newline-delimited blocks of "data:" lines; anything else (comments,
// event names, retry hints) is ignored.
func (s *sseStream) Next(ctx context.Context) (ExecutionData, error) {
	logger := ctxlog.FromContext(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return ExecutionData{}, err
		}

		payload, err := s.nextFrame()
		if err != nil {
			return ExecutionData{}, err
		}
		if payload == "" {
			continue
		}

		var data ExecutionData
		if err := sonic.UnmarshalString(payload, &data); err != nil {
			logger.Debug("Skipping malformed stream event.", "error", err)
			continue
		}
		return data, nil
	}
}

// nextFrame accumulates one SSE event's data lines. io.EOF means the
// stream ended.
func (s *sseStream) nextFrame() (string, error) {
	var data []string
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if line == "" {
			if len(data) > 0 {
				return strings.Join(data, "\n"), nil
			}
			continue
		}
		if rest, ok := strings.CutPrefix(line, "data:"); ok {
			data = append(data, strings.TrimPrefix(rest, " "))
		}
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	if len(data) > 0 {
		return strings.Join(data, "\n"), nil
	}
	return "", io.EOF
}

func (s *sseStream) Close() error {
	return s.body.Close()
}
