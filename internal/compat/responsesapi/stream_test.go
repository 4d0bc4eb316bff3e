package responsesapi

import (
	"context"
	"iter"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"completions-bridge/internal/compat"
	"completions-bridge/internal/compat/types"
	"completions-bridge/internal/responses"
)

// scriptedStream replays a fixed event sequence. Close mimics the abort
// semantics of a live stream: delivery stops and Err reports nil.
type scriptedStream struct {
	mu     sync.Mutex
	events []responses.StreamEvent
	pos    int
	failed error
	closed bool
}

func (s *scriptedStream) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.pos >= len(s.events) {
		return false
	}
	s.pos++
	return true
}

func (s *scriptedStream) Current() responses.StreamEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[s.pos-1]
}

func (s *scriptedStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.failed
}

func (s *scriptedStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *scriptedStream) consumed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

func itemAdded(role string) responses.StreamEvent {
	return responses.StreamEvent{
		Type: responses.EventOutputItemAdded,
		Item: &responses.OutputItem{Type: "message", Role: role},
	}
}

func textDelta(delta string) responses.StreamEvent {
	return responses.StreamEvent{Type: responses.EventOutputTextDelta, Delta: delta}
}

// collect drains a chunk sequence into chunks and the first error, if any.
func collect(seq iter.Seq2[*types.CompletionChunk, error]) ([]*types.CompletionChunk, error) {
	var chunks []*types.CompletionChunk
	for chunk, err := range seq {
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func TestTranslateEvents_DeltaOrdering(t *testing.T) {
	t.Parallel()

	completed := textResponse("Hello world")
	events := &scriptedStream{events: []responses.StreamEvent{
		itemAdded("assistant"),
		textDelta("Hel"),
		textDelta("lo "),
		textDelta("world"),
		{Type: responses.EventOutputTextDone, Text: "Hello world"},
		{Type: responses.EventCompleted, Response: completed},
	}}

	chunks, err := collect(translateEvents(events, "gpt-test"))
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	var accumulated strings.Builder
	for i, want := range []string{"Hel", "lo ", "world"} {
		require.Len(t, chunks[i].Choices, 1)
		choice := chunks[i].Choices[0]
		assert.Equal(t, want, choice.Text)
		assert.Equal(t, int64(0), choice.Index)
		assert.Nil(t, choice.FinishReason)
		assert.Equal(t, types.ObjectCompletionChunk, chunks[i].Object)
		accumulated.WriteString(choice.Text)
	}
	assert.Equal(t, "Hello world", accumulated.String())

	// Role is reported once, on the first delta.
	assert.Equal(t, "assistant", chunks[0].Choices[0].Role)
	assert.Empty(t, chunks[1].Choices[0].Role)

	// The final chunk carries no content, only the terminal finish reason.
	final := chunks[3]
	assert.Equal(t, "resp_1", final.ID)
	require.Len(t, final.Choices, 1)
	assert.Empty(t, final.Choices[0].Text)
	require.NotNil(t, final.Choices[0].FinishReason)
	assert.Equal(t, "stop", *final.Choices[0].FinishReason)
}

func TestTranslateEvents_AbortAfterPartialOutput(t *testing.T) {
	t.Parallel()

	events := &scriptedStream{events: []responses.StreamEvent{
		itemAdded("assistant"),
		textDelta("partial"),
		textDelta("never delivered"),
	}}
	backend := &fakeBackend{
		stream: func(*responses.Request) (responses.EventStream, error) { return events, nil },
	}
	adapter, err := New(backend)
	require.NoError(t, err)

	stream, err := adapter.CreateCompletionStream(t.Context(), userRequest(1))
	require.NoError(t, err)

	next, stop := iter.Pull2(stream.Seq())
	defer stop()

	chunk, chunkErr, ok := pull(t, next)
	require.True(t, ok)
	require.NoError(t, chunkErr)
	assert.Equal(t, "partial", chunk.Choices[0].Text)

	// Abort between pulls: the generator must terminate with one synthetic
	// final record carrying the accumulated text, then end.
	stream.Cancel()

	chunk, chunkErr, ok = pull(t, next)
	require.True(t, ok)
	require.NoError(t, chunkErr)
	require.Len(t, chunk.Choices, 1)
	assert.Equal(t, "partial", chunk.Choices[0].Text)
	require.NotNil(t, chunk.Choices[0].FinishReason)
	assert.Equal(t, "stop", *chunk.Choices[0].FinishReason)
	assert.True(t, strings.HasPrefix(chunk.ID, "cmpl-"), "unexpected id %q", chunk.ID)
	require.NotNil(t, chunk.Usage)
	assert.Nil(t, chunk.Usage.CompletionTokens)

	_, _, ok = pull(t, next)
	assert.False(t, ok, "no chunks may follow the synthetic final record")
}

func TestTranslateEvents_AbortWithoutOutput(t *testing.T) {
	t.Parallel()

	events := &scriptedStream{events: []responses.StreamEvent{
		itemAdded("assistant"),
	}}

	chunks, err := collect(translateEvents(events, "gpt-test"))
	require.NoError(t, err)
	// No text accumulated: a valid empty-result outcome, nothing emitted.
	assert.Empty(t, chunks)
}

func TestTranslateEvents_FailureStopsConsumption(t *testing.T) {
	t.Parallel()

	events := &scriptedStream{events: []responses.StreamEvent{
		textDelta("so far"),
		{
			Type: responses.EventFailed,
			Response: &responses.Response{
				Status: "failed",
				Error:  &responses.ResponseError{Code: "server_error", Message: "backend exploded"},
			},
		},
		textDelta("unreachable"),
	}}

	chunks, err := collect(translateEvents(events, "gpt-test"))

	require.Len(t, chunks, 1)
	assert.Equal(t, "so far", chunks[0].Choices[0].Text)

	var envelope *compat.ErrorResponse
	require.ErrorAs(t, err, &envelope)
	assert.Equal(t, "backend exploded", envelope.Err.Message)

	// Early termination: events after the failure are never read.
	assert.Equal(t, 2, events.consumed())
}

func TestTranslateEvents_TransportError(t *testing.T) {
	t.Parallel()

	events := &scriptedStream{
		events: []responses.StreamEvent{textDelta("x")},
		failed: context.DeadlineExceeded,
	}

	chunks, err := collect(translateEvents(events, "gpt-test"))

	require.Len(t, chunks, 1)
	var envelope *compat.ErrorResponse
	require.ErrorAs(t, err, &envelope)
	assert.Equal(t, "server_error", envelope.Err.Type)
}

func TestCreateCompletionStream_StartFailure(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{
		stream: func(*responses.Request) (responses.EventStream, error) {
			return nil, &responses.APIError{StatusCode: 401, Type: "authentication_error", Message: "bad key"}
		},
	}
	adapter, err := New(backend)
	require.NoError(t, err)

	stream, err := adapter.CreateCompletionStream(t.Context(), userRequest(1))
	assert.Nil(t, stream)

	var envelope *compat.ErrorResponse
	require.ErrorAs(t, err, &envelope)
	assert.Equal(t, "authentication_error", envelope.Err.Type)
}

func pull(t *testing.T, next func() (*types.CompletionChunk, error, bool)) (*types.CompletionChunk, error, bool) {
	t.Helper()
	return next()
}
