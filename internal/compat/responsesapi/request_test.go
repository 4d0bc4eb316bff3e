package responsesapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"completions-bridge/internal/compat"
	"completions-bridge/internal/compat/types"
)

// marshalToMap serializes a backend request the way the wire does, so tests
// can assert on the presence and absence of keys.
func marshalToMap(t *testing.T, v any) map[string]any {
	t.Helper()

	raw, err := json.Marshal(v)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestToBackendRequest_Renames(t *testing.T) {
	t.Parallel()

	req := compat.CompletionRequest{
		Model: "gpt-test",
		Messages: []types.Message{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "hello"},
		},
		MaxTokens:        i64(128),
		Temperature:      f64(0.7),
		TopP:             f64(0.9),
		PresencePenalty:  f64(0.1),
		FrequencyPenalty: f64(0.2),
		Stop:             json.RawMessage(`["###"]`),
	}

	body := marshalToMap(t, toBackendRequest(req))

	assert.Equal(t, "gpt-test", body["model"])
	require.Len(t, body["input"], 2)
	assert.Equal(t, float64(128), body["max_output_tokens"])
	assert.InDelta(t, 0.7, body["temperature"], 1e-9)
	assert.InDelta(t, 0.9, body["top_p"], 1e-9)
	assert.InDelta(t, 0.1, body["presence_penalty"], 1e-9)
	assert.InDelta(t, 0.2, body["frequency_penalty"], 1e-9)
	assert.Equal(t, []any{"###"}, body["stop"])

	// Legacy-only fields never reach the wire.
	assert.NotContains(t, body, "messages")
	assert.NotContains(t, body, "max_tokens")
}

func TestToBackendRequest_OmitsAbsentFields(t *testing.T) {
	t.Parallel()

	user := "someone"
	req := compat.CompletionRequest{
		Model:    "gpt-test",
		Messages: []types.Message{{Role: "user", Content: "hi"}},
		User:     &user,
		N:        i64(3),
		Logprobs: i64(5),
	}

	body := marshalToMap(t, toBackendRequest(req))

	// user, n and logprobs are consumed by the adapter.
	assert.NotContains(t, body, "user")
	assert.NotContains(t, body, "n")
	assert.NotContains(t, body, "logprobs")

	// Absent optionals are removed entirely, never serialized as null.
	for key, value := range body {
		assert.NotNil(t, value, "key %q serialized as null", key)
	}
	assert.ElementsMatch(t, []string{"model", "input"}, mapKeys(body))
}

func TestToBackendRequest_ExtraBodyPassthrough(t *testing.T) {
	t.Parallel()

	req := compat.CompletionRequest{
		Model:    "gpt-test",
		Messages: []types.Message{{Role: "user", Content: "hi"}},
		ExtraBody: map[string]any{
			"store":   true,
			"dropped": nil,
			"metadata": map[string]any{
				"tenant": "acme",
				"unset":  nil,
			},
		},
	}

	body := marshalToMap(t, toBackendRequest(req))

	assert.Equal(t, true, body["store"])
	assert.NotContains(t, body, "dropped")
	assert.Equal(t, map[string]any{"tenant": "acme"}, body["metadata"])
}

func TestToBackendRequest_EmptyMetadataOmitted(t *testing.T) {
	t.Parallel()

	req := compat.CompletionRequest{
		Model:    "gpt-test",
		Messages: []types.Message{{Role: "user", Content: "hi"}},
		ExtraBody: map[string]any{
			"metadata": map[string]any{"a": nil, "b": nil},
		},
	}

	body := marshalToMap(t, toBackendRequest(req))
	assert.NotContains(t, body, "metadata")
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func i64(v int64) *int64       { return &v }
func f64(v float64) *float64   { return &v }
func str(v string) *string     { return &v }
