package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"completions-bridge/internal/compat"
	"completions-bridge/internal/compat/responsesapi"
	"completions-bridge/internal/compat/types"
	"completions-bridge/internal/responses"
)

// completeCommand returns the 'complete' subcommand.
func completeCommand() *cli.Command {
	return &cli.Command{
		Name:      "complete",
		Usage:     "Run a completion against the configured backend",
		ArgsUsage: "<prompt...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "model",
				Usage: "model to request (defaults to the configured model)",
			},
			&cli.IntFlag{
				Name:  "n",
				Usage: "number of completions to request",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "strategy",
				Usage: "multi-result strategy override (first_only|parallel|prompt_split)",
			},
			&cli.BoolFlag{
				Name:  "stream",
				Usage: "stream the completion to stdout",
			},
		},
		Action: completeAction,
	}
}

func completeAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	prompt := strings.Join(cmd.Args().Slice(), " ")
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	source, err := apiKeySource()
	if err != nil {
		return err
	}

	backend, err := responses.NewHTTPClient(cfg.BaseURL, source)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	strategyName := cfg.Strategy
	if s := cmd.String("strategy"); s != "" {
		strategyName = s
	}
	strategy, err := responsesapi.ParseStrategy(strategyName)
	if err != nil {
		return err
	}

	adapter, err := responsesapi.New(backend,
		responsesapi.WithStrategy(strategy),
		responsesapi.WithPromptSplitDelimiter(cfg.PromptSplitDelimiter),
		responsesapi.WithPromptSplitInstruction(cfg.PromptSplitInstruction),
		responsesapi.WithRawResponses(cfg.AttachRawResponses),
	)
	if err != nil {
		return fmt.Errorf("failed to create adapter: %w", err)
	}

	model := cfg.Model
	if m := cmd.String("model"); m != "" {
		model = m
	}

	req := compat.CompletionRequest{
		Model:    model,
		Messages: []types.Message{{Role: "user", Content: prompt}},
	}
	if n := cmd.Int("n"); n > 1 {
		count := int64(n)
		req.N = &count
	}

	if cmd.Bool("stream") {
		return streamCompletion(ctx, adapter, req)
	}
	return printCompletion(ctx, adapter, req)
}

// printCompletion runs one buffered completion and writes the legacy
// response JSON to stdout.
func printCompletion(ctx context.Context, adapter compat.CompletionAdapter, req compat.CompletionRequest) error {
	resp, err := adapter.CreateCompletion(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// streamCompletion writes chunk text to stdout as it arrives. Context
// cancellation (Ctrl+C) aborts the backend stream; the partial result path
// still closes the stream with a final chunk.
func streamCompletion(ctx context.Context, adapter compat.CompletionAdapter, req compat.CompletionRequest) error {
	stream, err := adapter.CreateCompletionStream(ctx, req)
	if err != nil {
		return err
	}

	context.AfterFunc(ctx, stream.Cancel)

	var printed bool
	for chunk, err := range stream.Seq() {
		if err != nil {
			return err
		}
		for _, choice := range chunk.Choices {
			// A synthetic terminal chunk repeats the accumulated text; only
			// print it when no deltas made it out before.
			if choice.FinishReason != nil && printed {
				continue
			}
			if choice.Text != "" {
				printed = true
				fmt.Print(choice.Text)
			}
		}
	}
	fmt.Println()
	return nil
}
