package responsesapi

import (
	"completions-bridge/internal/compat/types"
	"completions-bridge/internal/responses"
)

// toCompletionUsage maps backend token counters onto the legacy usage shape
// 1:1. Counters the backend did not report stay absent; zero-coercion is
// reserved for the parallel merge (see sumUsage).
func toCompletionUsage(u *responses.Usage) *types.CompletionUsage {
	if u == nil {
		return nil
	}

	usage := &types.CompletionUsage{
		PromptTokens:     cloneCount(u.InputTokens),
		CompletionTokens: cloneCount(u.OutputTokens),
		TotalTokens:      cloneCount(u.TotalTokens),
	}

	if u.InputTokensDetails != nil && u.InputTokensDetails.CachedTokens != nil {
		usage.PromptTokensDetails = &types.PromptTokensDetails{
			CachedTokens: cloneCount(u.InputTokensDetails.CachedTokens),
		}
	}
	if u.OutputTokensDetails != nil && u.OutputTokensDetails.ReasoningTokens != nil {
		usage.CompletionTokensDetails = &types.CompletionTokensDetails{
			ReasoningTokens: cloneCount(u.OutputTokensDetails.ReasoningTokens),
		}
	}

	return usage
}

// sumUsage merges per-branch usage for the parallel strategy. Absent fields
// count as zero during summation so the merged response carries whole-call
// totals even when one branch omitted a sub-field. Detail maps are attached
// only when at least one branch reported them. Returns nil when no branch
// reported usage at all.
func sumUsage(usages []*types.CompletionUsage) *types.CompletionUsage {
	var (
		prompt, completion, total int64
		cached, reasoning         int64
		reported                  bool
		anyCached, anyReasoning   bool
	)

	for _, u := range usages {
		if u == nil {
			continue
		}
		reported = true
		prompt += countOrZero(u.PromptTokens)
		completion += countOrZero(u.CompletionTokens)
		total += countOrZero(u.TotalTokens)

		if u.PromptTokensDetails != nil && u.PromptTokensDetails.CachedTokens != nil {
			anyCached = true
			cached += *u.PromptTokensDetails.CachedTokens
		}
		if u.CompletionTokensDetails != nil && u.CompletionTokensDetails.ReasoningTokens != nil {
			anyReasoning = true
			reasoning += *u.CompletionTokensDetails.ReasoningTokens
		}
	}

	if !reported {
		return nil
	}

	merged := &types.CompletionUsage{
		PromptTokens:     &prompt,
		CompletionTokens: &completion,
		TotalTokens:      &total,
	}
	if anyCached {
		merged.PromptTokensDetails = &types.PromptTokensDetails{CachedTokens: &cached}
	}
	if anyReasoning {
		merged.CompletionTokensDetails = &types.CompletionTokensDetails{ReasoningTokens: &reasoning}
	}
	return merged
}

func cloneCount(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func countOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
