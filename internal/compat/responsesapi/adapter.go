package responsesapi

import (
	"context"
	"fmt"
	"strings"

	"completions-bridge/internal/compat"
	"completions-bridge/internal/responses"
)

// Strategy selects how n-many legacy choices are produced from a backend
// that only generates one completion per call.
type Strategy string

const (
	// StrategyFirstOnly performs a single call and returns one choice
	// regardless of n. Default.
	StrategyFirstOnly Strategy = "first_only"
	// StrategyParallel fans out n concurrent backend calls and merges the
	// results. All-or-nothing: one failed branch fails the operation.
	StrategyParallel Strategy = "parallel"
	// StrategyPromptSplit asks the backend for n delimiter-separated results
	// in one call and parses them client-side. Best-effort.
	StrategyPromptSplit Strategy = "prompt_split"
)

// ParseStrategy converts a configuration string into a Strategy. Unknown
// values are an error rather than a silent fall back to first_only.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyFirstOnly, StrategyParallel, StrategyPromptSplit:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown multi-result strategy %q (expected: first_only, parallel, prompt_split)", s)
	}
}

// countPlaceholder is substituted with the requested completion count in the
// prompt-split instruction template.
const countPlaceholder = "{n}"

const (
	defaultSplitDelimiter   = "\n"
	defaultSplitInstruction = "Write {n} independent completions of the conversation above, one per line."
)

// CompletionAdapter implements the legacy completion contract against a
// responses backend. Construct with New; the zero value is not usable.
type CompletionAdapter struct {
	backend responses.Client

	strategy         Strategy
	splitDelimiter   string
	splitInstruction string
	attachRaw        bool
}

// Compile-time check against the adapter contract.
var _ compat.CompletionAdapter = (*CompletionAdapter)(nil)

// Option configures a CompletionAdapter at construction time. Options
// validate their input so misconfiguration fails New instead of degrading
// silently at request time.
type Option func(*CompletionAdapter) error

// WithStrategy sets the multi-result strategy.
func WithStrategy(s Strategy) Option {
	return func(a *CompletionAdapter) error {
		parsed, err := ParseStrategy(string(s))
		if err != nil {
			return err
		}
		a.strategy = parsed
		return nil
	}
}

// WithPromptSplitDelimiter sets the delimiter used to join the combined
// prompt and split the backend's answer under StrategyPromptSplit.
func WithPromptSplitDelimiter(delim string) Option {
	return func(a *CompletionAdapter) error {
		if delim == "" {
			return fmt.Errorf("prompt-split delimiter cannot be empty")
		}
		a.splitDelimiter = delim
		return nil
	}
}

// WithPromptSplitInstruction sets the instruction template appended to the
// combined prompt. The template must contain the {n} placeholder.
func WithPromptSplitInstruction(tpl string) Option {
	return func(a *CompletionAdapter) error {
		if !strings.Contains(tpl, countPlaceholder) {
			return fmt.Errorf("prompt-split instruction must contain the %s placeholder", countPlaceholder)
		}
		a.splitInstruction = tpl
		return nil
	}
}

// WithRawResponses attaches the raw backend payload(s) to returned responses
// for diagnostics: one object for single calls, a slice for parallel calls.
func WithRawResponses(attach bool) Option {
	return func(a *CompletionAdapter) error {
		a.attachRaw = attach
		return nil
	}
}

// New creates a CompletionAdapter over the given backend.
func New(backend responses.Client, opts ...Option) (*CompletionAdapter, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend cannot be nil")
	}

	a := &CompletionAdapter{
		backend:          backend,
		strategy:         StrategyFirstOnly,
		splitDelimiter:   defaultSplitDelimiter,
		splitInstruction: defaultSplitInstruction,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// CreateCompletion handles a non-streaming legacy request, dispatching
// through the configured multi-result strategy when n > 1.
func (a *CompletionAdapter) CreateCompletion(ctx context.Context, req compat.CompletionRequest) (*compat.CompletionResponse, error) {
	n := req.Count()

	switch {
	case n <= 1 || a.strategy == StrategyFirstOnly:
		return a.completeSingle(ctx, req)
	case a.strategy == StrategyParallel:
		return a.completeParallel(ctx, req, n)
	default:
		return a.completePromptSplit(ctx, req, n)
	}
}
