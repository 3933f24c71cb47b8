package sse

import (
	"bufio"
	"io"
	"strings"
)

// Reader parses SSE events from an upstream response body.
//
// It understands the subset of the SSE wire format emitted by
// OpenAI-compatible providers: "event:", "data:" and "id:" fields,
// comment lines, and blank-line event termination.
type Reader struct {
	scanner *bufio.Scanner

	// current accumulates fields for the event being parsed.
	current Event
	// hasData tracks whether the current event has any data lines,
	// so a trailing unterminated event is still yielded at EOF.
	hasData bool
	// dataLines collects data field values, joined with "\n".
	dataLines []string

	done bool
}

// NewReader wraps r for SSE parsing. The reader does not close r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	// Provider chunks can carry large tool-call argument payloads.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Next returns the next complete event from the stream. It blocks until
// an event is available, the stream ends, or the underlying reader
// errors. At end of stream it returns io.EOF; an in-progress event with
// data is yielded first.
func (r *Reader) Next() (*Event, error) {
	if r.done {
		return nil, io.EOF
	}

	for r.scanner.Scan() {
		line := r.scanner.Text()

		// Blank line terminates the current event.
		if line == "" {
			if r.hasData {
				return r.flush(), nil
			}
			continue
		}

		// Comment line, used by some providers as a keep-alive.
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := splitField(line)
		switch field {
		case "event":
			r.current.Type = value
		case "data":
			r.dataLines = append(r.dataLines, value)
			r.hasData = true
		case "id":
			r.current.ID = value
		}
		// Unknown fields are ignored per the SSE spec.
	}

	r.done = true
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	if r.hasData {
		return r.flush(), nil
	}
	return nil, io.EOF
}

func (r *Reader) flush() *Event {
	ev := r.current
	ev.Data = strings.Join(r.dataLines, "\n")

	r.current = Event{}
	r.dataLines = nil
	r.hasData = false
	return &ev
}

// splitField splits an SSE line into its field name and value,
// stripping the single optional leading space from the value.
func splitField(line string) (string, string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}
	value = strings.TrimPrefix(value, " ")
	return field, value
}
