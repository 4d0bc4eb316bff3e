package responsesapi

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"completions-bridge/internal/compat"
	"completions-bridge/internal/compat/types"
	"completions-bridge/internal/responses"
)

// finishReasonStop is the safe finish reason: legacy clients require a
// non-null finish_reason on every terminal choice.
const finishReasonStop = "stop"

// toCompletionResponse flattens one backend response into a legacy response
// with exactly one choice at index 0. Pure function: flattening the same
// response twice yields structurally equal results (modulo the wall-clock
// fallback for responses that carry no creation time).
func toCompletionResponse(resp *responses.Response) *compat.CompletionResponse {
	text := outputText(resp)

	choice := types.CompletionChoice{
		Text:         text,
		Index:        0,
		FinishReason: toFinishReason(resp),
	}
	if role := firstRole(resp); role != "" {
		choice.Message = &types.Message{Role: role, Content: text}
	}

	id := resp.ID
	if id == "" {
		id = newCompletionID()
	}

	// Streaming "completed" snapshots may omit created_at; fall back to
	// wall-clock seconds so the field is never zero.
	created := resp.CreatedAt
	if created == 0 {
		created = time.Now().Unix()
	}

	return &compat.CompletionResponse{
		ID:      id,
		Object:  types.ObjectCompletion,
		Created: created,
		Model:   resp.Model,
		Choices: []types.CompletionChoice{choice},
		Usage:   toCompletionUsage(resp.Usage),
	}
}

// outputText concatenates, in order, every output_text segment of every
// output item. Plain concatenation of ordered fragments; no separators, no
// role-based joining.
func outputText(resp *responses.Response) string {
	var b strings.Builder
	for _, item := range resp.Output {
		for _, part := range item.Content {
			if part.Type == responses.ContentTypeOutputText {
				b.WriteString(part.Text)
			}
		}
	}
	return b.String()
}

// firstRole returns the role of the first output item, or "" when absent.
func firstRole(resp *responses.Response) string {
	if len(resp.Output) == 0 {
		return ""
	}
	return resp.Output[0].Role
}

// toFinishReason maps backend completion status to a legacy finish reason.
// "stop" for completed responses; otherwise the backend's incompleteness
// reason when it supplied one, else "stop" as the safe fallback.
func toFinishReason(resp *responses.Response) string {
	if resp.Status == responses.StatusCompleted {
		return finishReasonStop
	}
	if resp.IncompleteDetails != nil && resp.IncompleteDetails.Reason != "" {
		return resp.IncompleteDetails.Reason
	}
	return finishReasonStop
}

// newCompletionID generates a legacy-compatible completion ID (cmpl-<token>).
// Used as fallback when the backend doesn't provide an ID, and as the
// placeholder ID on synthetic final chunks.
func newCompletionID() string {
	b := make([]byte, 24) // 24 bytes yields 32 URL-safe base64 characters
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	// Use RawURLEncoding to avoid '+', '/' and trailing '='
	token := base64.RawURLEncoding.EncodeToString(b)
	return "cmpl-" + token
}
