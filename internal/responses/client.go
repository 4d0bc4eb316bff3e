package responses

import "context"

// Client is the backend collaborator contract: a single-shot create plus a
// streaming create with an abort capability. Implementations must be safe
// for concurrent use by multiple simultaneous translations.
type Client interface {
	// CreateResponse performs one generation call and returns the finished
	// response. Failures are returned as-is; the adapter layer normalizes
	// them for legacy clients.
	CreateResponse(ctx context.Context, req *Request) (*Response, error)

	// StreamResponse starts a streaming generation call. The returned stream
	// must be closed by the caller; Close doubles as the abort handle for an
	// in-flight stream.
	StreamResponse(ctx context.Context, req *Request) (EventStream, error)
}

// EventStream is a single-consumer cursor over a live backend event stream.
//
// Usage follows the conventional SDK shape:
//
//	for stream.Next() {
//	    ev := stream.Current()
//	    ...
//	}
//	if err := stream.Err(); err != nil { ... }
//
// Close aborts delivery; after Close, Next returns false and Err reports nil
// so a caller-initiated abort is indistinguishable from a clean upstream end.
type EventStream interface {
	Next() bool
	Current() StreamEvent
	Err() error
	Close() error
}
