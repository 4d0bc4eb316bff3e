package responses

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

// sseStream decodes server-sent events from a streaming response body into
// StreamEvent values. Iteration is single-consumer; Close may be called from
// another goroutine to abort the stream mid-flight.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	cancel  context.CancelFunc

	closeOnce sync.Once
	closed    atomic.Bool

	cur StreamEvent
	err error
}

func newSSEStream(body io.ReadCloser, cancel context.CancelFunc) *sseStream {
	scanner := bufio.NewScanner(body)
	// Terminal events embed a full response snapshot, so lines can grow well
	// past the default scanner limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	return &sseStream{body: body, scanner: scanner, cancel: cancel}
}

// Next advances to the next decoded event, returning false when the stream
// ends, fails, or was closed.
func (s *sseStream) Next() bool {
	if s.err != nil || s.closed.Load() {
		return false
	}

	var eventName string
	var data []string
	for s.scanner.Scan() {
		line := s.scanner.Text()
		switch {
		case line == "":
			// Blank line terminates one event.
			if len(data) == 0 {
				eventName = ""
				continue
			}
			return s.emit(eventName, strings.Join(data, "\n"))
		case strings.HasPrefix(line, ":"):
			// Comment / keep-alive line.
		default:
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				eventName = value
			case "data":
				data = append(data, value)
			}
		}
	}

	if err := s.scanner.Err(); err != nil {
		// Reader errors after an explicit Close are the abort surfacing, not
		// a failure.
		if !s.closed.Load() && !errors.Is(err, context.Canceled) {
			s.err = err
		}
		return false
	}

	// Stream ended without a trailing blank line; flush the pending event.
	if len(data) > 0 {
		return s.emit(eventName, strings.Join(data, "\n"))
	}
	return false
}

func (s *sseStream) emit(eventName, data string) bool {
	var ev StreamEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		s.err = fmt.Errorf("decode stream event %q: %w", eventName, err)
		return false
	}
	if ev.Type == "" {
		ev.Type = eventName
	}
	s.cur = ev
	return true
}

// Current returns the event decoded by the last successful Next.
func (s *sseStream) Current() StreamEvent {
	return s.cur
}

// Err reports a stream failure, or nil after a clean end or an abort.
func (s *sseStream) Err() error {
	if s.closed.Load() {
		return nil
	}
	return s.err
}

// Close aborts event delivery and releases the underlying connection. Safe to
// call multiple times and concurrently with Next.
func (s *sseStream) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if s.cancel != nil {
			s.cancel()
		}
		_ = s.body.Close()
	})
	return nil
}
