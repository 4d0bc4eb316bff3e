package responses

import (
	"encoding/json"
	"fmt"
)

// StatusCompleted is the terminal status of a successfully finished response.
// Any other status is reported through IncompleteDetails.
const StatusCompleted = "completed"

// InputMessage is one role-tagged turn of the backend conversation input.
type InputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the backend generation request. The backend rejects unknown and
// null-valued fields, so every optional field is omitted entirely when absent
// and Extra keys with nil values are pruned during marshaling.
type Request struct {
	Model            string            `json:"model"`
	Input            []InputMessage    `json:"input"`
	MaxOutputTokens  *int64            `json:"max_output_tokens,omitempty"`
	Temperature      *float64          `json:"temperature,omitempty"`
	TopP             *float64          `json:"top_p,omitempty"`
	PresencePenalty  *float64          `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64          `json:"frequency_penalty,omitempty"`
	Stop             json.RawMessage   `json:"stop,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	Stream           bool              `json:"stream,omitempty"`

	// Extra holds pass-through fields merged verbatim into the serialized
	// request. Keys whose value is nil are dropped; nested objects whose
	// entries are all nil collapse to absent.
	Extra map[string]any `json:"-"`
}

// MarshalJSON merges Extra into the request body, pruning absent values so
// the wire payload never carries explicit nulls.
func (r Request) MarshalJSON() ([]byte, error) {
	type plain Request
	base, err := json.Marshal(plain(r))
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return base, nil
	}

	var body map[string]any
	if err := json.Unmarshal(base, &body); err != nil {
		return nil, fmt.Errorf("remarshal request: %w", err)
	}
	for k, v := range r.Extra {
		if pruned, ok := pruneAbsent(v); ok {
			body[k] = pruned
		}
	}
	return json.Marshal(body)
}

// pruneAbsent drops nil values and empties nested objects of their nil
// entries. The second return is false when the value should be omitted.
func pruneAbsent(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, nested := range val {
			if pruned, ok := pruneAbsent(nested); ok {
				out[k] = pruned
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	default:
		return v, true
	}
}

// ContentPart is one segment of an output item's content.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ContentTypeOutputText marks the text-bearing content part kind; other part
// kinds are ignored by the adapter.
const ContentTypeOutputText = "output_text"

// OutputItem is one entry of the backend response's ordered output sequence.
type OutputItem struct {
	ID      string        `json:"id,omitempty"`
	Type    string        `json:"type"`
	Role    string        `json:"role,omitempty"`
	Content []ContentPart `json:"content,omitempty"`
}

// IncompleteDetails explains why a response stopped before completion.
type IncompleteDetails struct {
	Reason string `json:"reason,omitempty"`
}

// InputTokensDetails breaks down input token accounting.
type InputTokensDetails struct {
	CachedTokens *int64 `json:"cached_tokens,omitempty"`
}

// OutputTokensDetails breaks down output token accounting.
type OutputTokensDetails struct {
	ReasoningTokens *int64 `json:"reasoning_tokens,omitempty"`
}

// Usage carries the backend's token counters. Counters the backend did not
// report stay nil.
type Usage struct {
	InputTokens         *int64               `json:"input_tokens,omitempty"`
	OutputTokens        *int64               `json:"output_tokens,omitempty"`
	TotalTokens         *int64               `json:"total_tokens,omitempty"`
	InputTokensDetails  *InputTokensDetails  `json:"input_tokens_details,omitempty"`
	OutputTokensDetails *OutputTokensDetails `json:"output_tokens_details,omitempty"`
}

// ResponseError is the structured failure payload carried by failed
// responses and response.failed stream events.
type ResponseError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return e.Message
}

// Response is the backend generation result. Only the fields the adapter
// relies on are modeled; everything else passes through RawJSON untouched.
type Response struct {
	ID                string             `json:"id"`
	Object            string             `json:"object,omitempty"`
	CreatedAt         int64              `json:"created_at,omitempty"`
	Model             string             `json:"model,omitempty"`
	Status            string             `json:"status,omitempty"`
	IncompleteDetails *IncompleteDetails `json:"incomplete_details,omitempty"`
	Output            []OutputItem       `json:"output,omitempty"`
	Error             *ResponseError     `json:"error,omitempty"`
	Usage             *Usage             `json:"usage,omitempty"`
}
