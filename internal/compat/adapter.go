package compat

import (
	"context"

	"completions-bridge/internal/compat/types"
)

// Adapter defines the contract for serving a legacy-shaped API on top of a
// richer backend.
//
// Type parameters:
//   - TRequest:  legacy request structure
//   - TResponse: legacy response structure
//   - TChunk:    legacy streaming chunk protocol
type Adapter[TRequest, TResponse, TChunk any] interface {
	// CreateCompletion translates the legacy request, calls the backend, and
	// returns the translated response. Implementations keep no per-call state
	// between invocations and are safe for concurrent use.
	CreateCompletion(ctx context.Context, req TRequest) (*TResponse, error)

	// CreateCompletionStream translates the legacy request, starts a backend
	// stream, and returns a lazily translated chunk sequence with an attached
	// cancellation handle.
	CreateCompletionStream(ctx context.Context, req TRequest) (*Stream[TChunk], error)
}

// Type aliases for the legacy completion operation (see package types).
// CompletionAdapter is the concrete adapter contract for this operation.
type (
	CompletionRequest  = types.CompletionRequest
	CompletionResponse = types.CompletionResponse
	CompletionChunk    = types.CompletionChunk

	CompletionAdapter = Adapter[
		CompletionRequest,
		CompletionResponse,
		CompletionChunk,
	]
)
