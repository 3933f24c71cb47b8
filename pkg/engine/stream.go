package engine

import (
	"errors"
	"io"
	"sync"

	"github.com/promptlane/promptlane/pkg/llm"
	"github.com/promptlane/promptlane/pkg/sse"
)

// doneSentinel is the SSE data payload marking the end of an
// OpenAI-compatible completion stream.
const doneSentinel = "[DONE]"

// Stream delivers parsed streaming events from an in-flight execution.
type Stream struct {
	executionID string
	events      chan llm.StreamEvent
	err         error
	closed      chan struct{}
	closeOnce   sync.Once
	body        io.ReadCloser
}

func newStream(executionID string, body io.ReadCloser) *Stream {
	s := &Stream{
		executionID: executionID,
		events:      make(chan llm.StreamEvent),
		closed:      make(chan struct{}),
		body:        body,
	}
	go s.run()
	return s
}

// Events returns the event channel. It is closed when the stream ends,
// whether by the done sentinel, error, or Close. After it closes, Err
// reports how the stream ended.
func (s *Stream) Events() <-chan llm.StreamEvent { return s.events }

// Err reports the stream's terminal error. It is valid once Events is
// closed. A stream that ended without the provider's done sentinel
// reports an ExecutionError.
func (s *Stream) Err() error { return s.err }

// Close abandons the stream and releases the upstream connection.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return s.body.Close()
}

func (s *Stream) run() {
	defer close(s.events)
	defer s.body.Close()

	reader := sse.NewReader(s.body)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			// Upstream closed without the done sentinel.
			s.err = &ExecutionError{ExecutionID: s.executionID, Err: errors.New("stream truncated before done sentinel")}
			return
		}
		if err != nil {
			s.err = &ExecutionError{ExecutionID: s.executionID, Err: err}
			return
		}

		if event.Data == doneSentinel {
			s.emit(llm.StreamEvent{Type: llm.EventDone})
			return
		}

		delta, err := llm.ParseChunk([]byte(event.Data))
		if err != nil {
			s.err = &ExecutionError{ExecutionID: s.executionID, Err: err}
			return
		}
		if !s.emit(llm.StreamEvent{Type: llm.EventMessage, Delta: delta}) {
			return
		}
	}
}

// emit delivers an event unless the stream has been closed.
func (s *Stream) emit(ev llm.StreamEvent) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.closed:
		return false
	}
}

// Collect drains a stream into a buffered completion. The result is
// equivalent to what a non-streaming request would have returned.
func Collect(s *Stream) (*llm.Completion, error) {
	acc := llm.NewAccumulator()
	for ev := range s.Events() {
		acc.Add(ev)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if !acc.Done() {
		return nil, &ExecutionError{ExecutionID: s.executionID, Err: errors.New("stream ended without done sentinel")}
	}
	return acc.Completion(), nil
}
