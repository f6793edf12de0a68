package ai

import (
	"context"

	"atsmatch/internal/observability"
	"atsmatch/internal/types"
)

// AIProvider is a generative text backend. Every call returns token usage,
// which callers may ignore.
type AIProvider interface {
	RewriteSummary(ctx context.Context, input types.RewriteInput) (types.RewriteOutput, *TokenUsage, error)
	InterviewQuestions(ctx context.Context, input types.InterviewInput) (types.InterviewOutput, *TokenUsage, error)
	CoverLetter(ctx context.Context, input types.CoverLetterInput) (types.CoverLetterOutput, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// TokenUsage is shared with the metrics layer, which records it per call.
type TokenUsage = observability.TokenUsage

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
