package responsesapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"completions-bridge/internal/compat"
	"completions-bridge/internal/compat/types"
	"completions-bridge/internal/responses"
)

// completeSingle performs exactly one backend call and returns its flattened
// single-choice response. Used for n <= 1 and for StrategyFirstOnly, which
// deliberately degrades n > 1 to one result.
func (a *CompletionAdapter) completeSingle(ctx context.Context, req compat.CompletionRequest) (*compat.CompletionResponse, error) {
	resp, err := a.backend.CreateResponse(ctx, toBackendRequest(req))
	if err != nil {
		return nil, toCompletionError(err)
	}

	out := toCompletionResponse(resp)
	if a.attachRaw {
		out.Raw = resp
	}
	return out, nil
}

// completeParallel emulates n-many completions with n concurrently pending
// backend calls, each derived from the same legacy request. All-or-nothing:
// the first failed branch cancels the siblings and fails the merge.
//
// Choice indices reflect dispatch order, not completion order — each branch
// writes into its pre-assigned slot, so network timing cannot reorder the
// merged choices.
func (a *CompletionAdapter) completeParallel(ctx context.Context, req compat.CompletionRequest, n int64) (*compat.CompletionResponse, error) {
	results := make([]*responses.Response, n)

	g, gCtx := errgroup.WithContext(ctx)
	for i := range results {
		g.Go(func() error {
			resp, err := a.backend.CreateResponse(gCtx, toBackendRequest(req))
			if err != nil {
				return fmt.Errorf("completion %d: %w", i, err)
			}
			results[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, toCompletionError(err)
	}

	flattened := make([]*compat.CompletionResponse, n)
	usages := make([]*types.CompletionUsage, n)
	choices := make([]types.CompletionChoice, n)
	for i, resp := range results {
		flattened[i] = toCompletionResponse(resp)
		usages[i] = flattened[i].Usage

		choice := flattened[i].Choices[0]
		choice.Index = int64(i)
		choices[i] = choice
	}

	// Identity fields come from the first branch; usage is summed across all.
	merged := &compat.CompletionResponse{
		ID:      flattened[0].ID,
		Object:  types.ObjectCompletion,
		Created: flattened[0].Created,
		Model:   flattened[0].Model,
		Choices: choices,
		Usage:   sumUsage(usages),
	}
	if a.attachRaw {
		merged.Raw = results
	}
	return merged, nil
}

// completePromptSplit emulates n-many completions with a single backend call:
// the conversation is collapsed into one combined prompt asking for n
// delimiter-separated results, and the answer is split client-side.
//
// This is a heuristic decomposition. The backend may produce fewer, more, or
// lower-quality segments than requested; results are padded or truncated to
// exactly n and every choice reports finish_reason "stop" regardless.
func (a *CompletionAdapter) completePromptSplit(ctx context.Context, req compat.CompletionRequest, n int64) (*compat.CompletionResponse, error) {
	breq := toBackendRequest(req)
	breq.Input = []responses.InputMessage{{
		Role:    "user",
		Content: a.splitPrompt(req.Messages, n),
	}}

	resp, err := a.backend.CreateResponse(ctx, breq)
	if err != nil {
		return nil, toCompletionError(err)
	}
	flat := toCompletionResponse(resp)

	choices := make([]types.CompletionChoice, 0, n)
	for _, segment := range strings.Split(flat.Choices[0].Text, a.splitDelimiter) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if int64(len(choices)) == n {
			break
		}
		choices = append(choices, types.CompletionChoice{
			Text:         segment,
			Index:        int64(len(choices)),
			FinishReason: finishReasonStop,
		})
	}
	// Pad with empty choices up to exactly n.
	for int64(len(choices)) < n {
		choices = append(choices, types.CompletionChoice{
			Index:        int64(len(choices)),
			FinishReason: finishReasonStop,
		})
	}

	out := &compat.CompletionResponse{
		ID:      flat.ID,
		Object:  types.ObjectCompletion,
		Created: flat.Created,
		Model:   flat.Model,
		Choices: choices,
		Usage:   flat.Usage,
	}
	if a.attachRaw {
		out.Raw = resp
	}
	return out, nil
}

// splitPrompt synthesizes the combined prompt: original message contents
// joined by the configured delimiter, the instruction template with {n}
// substituted, and an explicit count directive.
func (a *CompletionAdapter) splitPrompt(messages []types.Message, n int64) string {
	count := strconv.FormatInt(n, 10)

	parts := make([]string, 0, len(messages)+2)
	for _, m := range messages {
		parts = append(parts, m.Content)
	}
	parts = append(parts, strings.ReplaceAll(a.splitInstruction, countPlaceholder, count))
	parts = append(parts, fmt.Sprintf("Return exactly %s delimiter-separated answers.", count))

	return strings.Join(parts, a.splitDelimiter)
}
