package types

import "encoding/json"

// Object type discriminators for legacy completion payloads.
const (
	ObjectCompletion      = "text_completion"
	ObjectCompletionChunk = "text_completion.chunk"
)

// Message is one role-tagged turn of the legacy conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the legacy completion-style request. Optional fields
// use pointers so that "absent" is distinguishable from a zero value; absent
// fields are never serialized.
type CompletionRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	MaxTokens        *int64    `json:"max_tokens,omitempty"`
	Temperature      *float64  `json:"temperature,omitempty"`
	TopP             *float64  `json:"top_p,omitempty"`
	PresencePenalty  *float64  `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64  `json:"frequency_penalty,omitempty"`

	// Stop is forwarded verbatim; the legacy contract allows either a single
	// string or an array of strings and the backend is the sole validator.
	Stop json.RawMessage `json:"stop,omitempty"`

	// User, N and Logprobs are consumed by the adapter and never forwarded.
	// N defaults to 1 when absent.
	User     *string `json:"user,omitempty"`
	N        *int64  `json:"n,omitempty"`
	Logprobs *int64  `json:"logprobs,omitempty"`

	// ExtraBody is an open-ended pass-through bag: unknown keys are forwarded
	// to the backend verbatim, keys with absent values are removed, nothing
	// is validated.
	ExtraBody map[string]any `json:"extra_body,omitempty"`
}

// Count returns the requested number of completions, defaulting to 1.
func (r CompletionRequest) Count() int64 {
	if r.N == nil || *r.N < 1 {
		return 1
	}
	return *r.N
}

// CompletionChoice is one independent completion result.
//
// Logprobs is always null: the backing API exposes no per-token probability
// data. This is a known, permanent incompatibility with the legacy contract,
// not an omission.
type CompletionChoice struct {
	Text         string   `json:"text"`
	Message      *Message `json:"message,omitempty"`
	Index        int64    `json:"index"`
	Logprobs     any      `json:"logprobs"`
	FinishReason string   `json:"finish_reason"`
}

// CompletionResponse is the legacy completion response envelope.
type CompletionResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
	Usage   *CompletionUsage   `json:"usage,omitempty"`

	// Raw holds the raw backend payload(s) when diagnostics are enabled at
	// adapter construction: one response object for single calls, a slice for
	// parallel fan-out. Never serialized to clients.
	Raw any `json:"-"`
}

// CompletionUsage carries token accounting. All counters are optional and
// stay absent when the backend did not report them; zero-coercion happens
// only when merging parallel results.
type CompletionUsage struct {
	PromptTokens            *int64                   `json:"prompt_tokens,omitempty"`
	CompletionTokens        *int64                   `json:"completion_tokens,omitempty"`
	TotalTokens             *int64                   `json:"total_tokens,omitempty"`
	PromptTokensDetails     *PromptTokensDetails     `json:"prompt_tokens_details,omitempty"`
	CompletionTokensDetails *CompletionTokensDetails `json:"completion_tokens_details,omitempty"`
}

// PromptTokensDetails breaks down prompt token counts.
type PromptTokensDetails struct {
	CachedTokens *int64 `json:"cached_tokens,omitempty"`
}

// CompletionTokensDetails breaks down completion token counts.
type CompletionTokensDetails struct {
	ReasoningTokens *int64 `json:"reasoning_tokens,omitempty"`
}

// ChunkChoice is the delta view of a choice inside a streaming chunk. Text
// carries an incremental fragment for intermediate chunks; FinishReason is
// nil until the terminal chunk. Role is set on the first delta of a stream
// when the backend reported one.
type ChunkChoice struct {
	Text         string  `json:"text"`
	Role         string  `json:"role,omitempty"`
	Index        int64   `json:"index"`
	Logprobs     any     `json:"logprobs"`
	FinishReason *string `json:"finish_reason"`
}

// CompletionChunk is one incremental streaming result. The final chunk of a
// stream has a non-nil FinishReason; when the stream ended without a
// completion event the final chunk carries the fully accumulated text
// instead of a delta.
type CompletionChunk struct {
	ID      string           `json:"id,omitempty"`
	Object  string           `json:"object"`
	Created int64            `json:"created,omitempty"`
	Model   string           `json:"model,omitempty"`
	Choices []ChunkChoice    `json:"choices"`
	Usage   *CompletionUsage `json:"usage,omitempty"`
}
