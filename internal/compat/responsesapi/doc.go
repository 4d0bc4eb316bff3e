// Package responsesapi serves the legacy completion contract on top of a
// responses-style generation backend, letting legacy clients work with the
// newer API without code changes.
//
// The adapter handles:
//
//   - Request translation: flat completion requests map onto the backend's
//     conversational input shape (messages→input, max_tokens→max_output_tokens),
//     with absent fields omitted entirely and unknown extra-body keys passed
//     through verbatim.
//
//   - Multi-result emulation: the backend produces one completion per call,
//     while the legacy contract supports n-many. Three strategies bridge the
//     gap: parallel fan-out, single-call prompt splitting, and first-only
//     degradation (see Strategy).
//
//   - Streaming: translates the backend's item/event protocol into ordered
//     legacy chunks, including early termination on failure and a synthetic
//     final chunk when a stream is cancelled after partial output.
//
//   - Known degradations: per-token logprobs do not exist on the backend, so
//     choice logprobs are always null. Prompt splitting is a best-effort
//     heuristic with no guarantee the backend produced n distinct results.
//
// # Adapters
//
// CompletionAdapter: legacy CreateCompletion → backend responses
package responsesapi
