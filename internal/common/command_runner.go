package common

import (
	"context"
	"fmt"

	"atsmatch/internal/ai"
	"atsmatch/internal/errors"
	"atsmatch/internal/observability"
)

// ContentLoader produces the input texts of a command.
type ContentLoader func(ctx context.Context) ([]string, error)

// FilesLoader reads refs through fp.
func FilesLoader(fp *FileProcessor, refs ...string) ContentLoader {
	return func(ctx context.Context) ([]string, error) {
		return fp.ReadDocuments(ctx, refs...)
	}
}

// CreateInputFunc defines how to create the specific input from the loaded texts.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc is a deterministic computation over Input.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// AIOperationFunc is a generic function signature for any AI operation with context and token usage.
type AIOperationFunc[Input, Output any] func(context.Context, Input) (Output, *ai.TokenUsage, error)

// Runner carries what every command needs.
type Runner struct {
	Output  *OutputHandler
	Metrics *observability.Metrics
	Logger  *errors.Logger
}

// RunCommand loads the inputs, runs op and writes the formatted result.
func RunCommand[Input, Output any](
	ctx context.Context,
	r *Runner,
	cmdConfig CommandConfig,
	load ContentLoader,
	createInput CreateInputFunc[Input],
	op OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	contents, err := load(ctx)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	result, err := op(ctx, input)
	if err != nil {
		return err
	}

	return r.Output.HandleOutput(result, cmdConfig)
}

// RunAICommand is RunCommand for AI operations: the call is tracked in
// metrics under operation and its token usage is logged.
func RunAICommand[Input, Output any](
	ctx context.Context,
	r *Runner,
	operation string,
	cmdConfig CommandConfig,
	load ContentLoader,
	createInput CreateInputFunc[Input],
	aiOperation AIOperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	contents, err := load(ctx)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	var (
		result     Output
		tokenUsage *ai.TokenUsage
	)
	err = r.Metrics.TrackAIOperation(ctx, operation, func(ctx context.Context) *observability.AIOperationResult {
		var opErr error
		result, tokenUsage, opErr = aiOperation(ctx, input)
		return &observability.AIOperationResult{Error: opErr, TokenUsage: tokenUsage}
	})
	if err != nil {
		return err
	}

	if tokenUsage != nil {
		r.Logger.Info("AI token usage",
			"operation", operation,
			"input_tokens", tokenUsage.InputTokens,
			"output_tokens", tokenUsage.OutputTokens,
			"total_tokens", tokenUsage.TotalTokens)
	}

	return r.Output.HandleOutput(result, cmdConfig)
}
