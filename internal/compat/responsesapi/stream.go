package responsesapi

import (
	"context"
	"iter"
	"time"

	"completions-bridge/internal/compat"
	"completions-bridge/internal/compat/types"
	"completions-bridge/internal/responses"
)

// CreateCompletionStream handles a streaming legacy request. The returned
// stream translates backend events into legacy chunks lazily; its Cancel
// handle aborts the backend stream, after which the translator still
// terminates through the partial-result path rather than hanging.
//
// Multi-result strategies do not apply to streaming: a streamed response is
// always a single choice at index 0, regardless of n.
func (a *CompletionAdapter) CreateCompletionStream(ctx context.Context, req compat.CompletionRequest) (*compat.Stream[types.CompletionChunk], error) {
	events, err := a.backend.StreamResponse(ctx, toBackendRequest(req))
	if err != nil {
		return nil, toCompletionError(err)
	}

	seq := translateEvents(events, req.Model)
	return compat.NewStream(seq, func() { _ = events.Close() }), nil
}

// translateEvents converts a live backend event stream into a lazy sequence
// of legacy chunks. Events are processed strictly in arrival order with no
// buffering beyond the current event.
//
// State across the stream's lifetime: accumulated text (grows
// monotonically), the role from the first item-added event, and the terminal
// response snapshot recorded by a completed event.
func translateEvents(events responses.EventStream, model string) iter.Seq2[*types.CompletionChunk, error] {
	return func(yield func(*types.CompletionChunk, error) bool) {
		defer func() { _ = events.Close() }()

		var (
			accumulated []byte
			role        string
			itemType    string
			final       *responses.Response
			emitted     bool
		)

		for events.Next() {
			ev := events.Current()
			switch ev.Type {
			case responses.EventOutputItemAdded:
				// Recorded for chunk labelling; no chunk is emitted. Only
				// message items carry a role worth reporting.
				if ev.Item != nil {
					itemType = ev.Item.Type
					if itemType == "message" && role == "" {
						role = ev.Item.Role
					}
				}

			case responses.EventOutputTextDelta:
				accumulated = append(accumulated, ev.Delta...)
				chunk := deltaChunk(ev.Delta, model)
				if !emitted {
					chunk.Choices[0].Role = role
					emitted = true
				}
				if !yield(chunk, nil) {
					return
				}

			case responses.EventOutputTextDone:
				// Segment boundary; the legacy contract has no use for it.

			case responses.EventCompleted:
				// The final chunk is derived after the stream drains.
				final = ev.Response

			case responses.EventFailed:
				// Terminal: surface the failure and stop consuming
				// immediately; remaining upstream events are never read.
				yield(nil, failedEventError(ev))
				return

			default:
				// Unknown event kinds pass without effect.
			}
		}

		if err := events.Err(); err != nil && !isCanceled(err) {
			yield(nil, toCompletionError(err))
			return
		}

		switch {
		case final != nil:
			// Content was already delivered via deltas; the final chunk
			// carries only the terminal finish reason and usage.
			yield(finalChunk(final), nil)
		case len(accumulated) > 0:
			// Stream ended without a completed event (e.g. cancelled
			// mid-flight): surface the partial text as one synthetic record.
			yield(syntheticFinalChunk(string(accumulated), model), nil)
		default:
			// Nothing accumulated: a valid empty-result outcome.
		}
	}
}

// deltaChunk builds an intermediate chunk carrying one text fragment.
func deltaChunk(delta, model string) *types.CompletionChunk {
	return &types.CompletionChunk{
		Object: types.ObjectCompletionChunk,
		Model:  model,
		Choices: []types.ChunkChoice{{
			Text:  delta,
			Index: 0,
		}},
	}
}

// finalChunk flattens the recorded terminal response into the closing chunk,
// with its content replaced by the empty string.
func finalChunk(final *responses.Response) *types.CompletionChunk {
	flat := toCompletionResponse(final)
	reason := flat.Choices[0].FinishReason

	return &types.CompletionChunk{
		ID:      flat.ID,
		Object:  types.ObjectCompletionChunk,
		Created: flat.Created,
		Model:   flat.Model,
		Choices: []types.ChunkChoice{{
			Text:         "",
			Index:        0,
			FinishReason: &reason,
		}},
		Usage: flat.Usage,
	}
}

// syntheticFinalChunk closes a stream that never completed: full accumulated
// text, placeholder identifier, finish_reason "stop", empty usage.
func syntheticFinalChunk(text, model string) *types.CompletionChunk {
	reason := finishReasonStop
	return &types.CompletionChunk{
		ID:      newCompletionID(),
		Object:  types.ObjectCompletionChunk,
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []types.ChunkChoice{{
			Text:         text,
			Index:        0,
			FinishReason: &reason,
		}},
		Usage: &types.CompletionUsage{},
	}
}
