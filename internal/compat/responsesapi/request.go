package responsesapi

import (
	"completions-bridge/internal/compat"
	"completions-bridge/internal/compat/types"
	"completions-bridge/internal/responses"
)

// toBackendRequest maps a legacy completion request onto the backend request
// shape. Pure and total: nothing is validated here (malformed input simply
// produces a malformed output the backend will reject), and no absent field
// is ever sent as an explicit null.
//
// Renames: messages→input, max_tokens→max_output_tokens. Sampling parameters
// pass through by name. user, n and logprobs belong to the legacy contract
// only and are consumed by the adapter. Extra-body keys are forwarded
// verbatim with absent-valued entries removed.
func toBackendRequest(req compat.CompletionRequest) *responses.Request {
	breq := &responses.Request{
		Model:            req.Model,
		Input:            toInput(req.Messages),
		MaxOutputTokens:  req.MaxTokens,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		PresencePenalty:  req.PresencePenalty,
		FrequencyPenalty: req.FrequencyPenalty,
		Stop:             req.Stop,
	}

	if len(req.ExtraBody) > 0 {
		breq.Extra = req.ExtraBody
	}

	return breq
}

func toInput(messages []types.Message) []responses.InputMessage {
	if len(messages) == 0 {
		return nil
	}
	input := make([]responses.InputMessage, 0, len(messages))
	for _, m := range messages {
		input = append(input, responses.InputMessage{Role: m.Role, Content: m.Content})
	}
	return input
}
