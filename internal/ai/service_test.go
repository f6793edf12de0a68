package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atsmatch/internal/config"
	"atsmatch/internal/errors"
	"atsmatch/internal/types"
)

func testConfig() *config.Config {
	return &config.Config{
		AI: config.AIConfig{
			Provider:         "gemini",
			Model:            "global-model",
			Timeout:          60 * time.Second,
			APIKey:           "global-api-key",
			MaxRetries:       5,
			Temperature:      0.9,
			UseSystemPrompts: true,
			Rewrite: config.OperationAIConfig{
				Model:       "rewrite-model",
				Timeout:     timePtr(90 * time.Second),
				Temperature: float32Ptr(0.3),
				CircuitBreaker: config.CircuitBreakerConfig{
					Enabled:          true,
					MaxRequests:      5,
					Interval:         30 * time.Second,
					Timeout:          45 * time.Second,
					MinRequests:      2,
					FailureThreshold: 0.8,
				},
			},
		},
	}
}

// stubProvider returns canned outputs without a network.
type stubProvider struct {
	closed bool
}

func (s *stubProvider) RewriteSummary(context.Context, types.RewriteInput) (types.RewriteOutput, *TokenUsage, error) {
	return types.RewriteOutput{Summary: "stub"}, &TokenUsage{TotalTokens: 3}, nil
}

func (s *stubProvider) InterviewQuestions(context.Context, types.InterviewInput) (types.InterviewOutput, *TokenUsage, error) {
	return types.InterviewOutput{Questions: []types.InterviewQuestion{{Question: "Why?", Focus: "motivation"}}}, nil, nil
}

func (s *stubProvider) CoverLetter(context.Context, types.CoverLetterInput) (types.CoverLetterOutput, *TokenUsage, error) {
	return types.CoverLetterOutput{CoverLetterText: "Dear team", Source: SourceAI}, nil, nil
}

func (s *stubProvider) GetModelInfo(context.Context) *ModelInfo {
	return &ModelInfo{Name: "stub", Available: true}
}

func (s *stubProvider) Close() error {
	s.closed = true
	return nil
}

func TestServicesBuildGeminiPerOperation(t *testing.T) {
	services := NewServices(testConfig(), errors.NewNopLogger())

	svc, err := services.Get(config.OperationRewrite)
	require.NoError(t, err)

	g, ok := svc.Provider.(*GeminiProvider)
	require.True(t, ok, "provider should be Gemini")
	assert.Equal(t, "rewrite-model", g.config.Model)
	assert.Equal(t, 90*time.Second, *g.config.Timeout)
	assert.Equal(t, 5, *g.config.MaxRetries, "retries inherit the global value")

	again, err := services.Get(config.OperationRewrite)
	require.NoError(t, err)
	assert.Same(t, svc, again)

	stats := services.Stats()
	rewriteStats, ok := stats[config.OperationRewrite].(map[string]any)
	require.True(t, ok)
	aiOps, ok := rewriteStats["ai_operations"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "AI-rewrite", aiOps["name"])
	assert.Equal(t, true, rewriteStats["overall_healthy"])
}

func TestServicesRequireAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.AI.APIKey = ""
	services := NewServices(cfg, errors.NewNopLogger())

	_, _, err := services.InterviewQuestions(context.Background(), types.InterviewInput{})
	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingAPIKey), "got %v", err)
}

func TestServicesRejectUnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.AI.CoverLetter.Provider = "openai"
	services := NewServices(cfg, errors.NewNopLogger())

	_, err := services.Get(config.OperationCoverLetter)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig), "got %v", err)
}

func TestServicesUseInstalledProvider(t *testing.T) {
	services := NewServices(testConfig(), errors.NewNopLogger())
	stub := &stubProvider{}
	for _, op := range config.Operations {
		services.SetProvider(op, stub)
	}
	ctx := context.Background()

	rewrite, usage, err := services.RewriteSummary(ctx, types.RewriteInput{})
	require.NoError(t, err)
	assert.Equal(t, "stub", rewrite.Summary)
	assert.Equal(t, int64(3), usage.TotalTokens)

	interview, _, err := services.InterviewQuestions(ctx, types.InterviewInput{})
	require.NoError(t, err)
	assert.Len(t, interview.Questions, 1)

	letter, _, err := services.CoverLetter(ctx, types.CoverLetterInput{})
	require.NoError(t, err)
	assert.Equal(t, SourceAI, letter.Source)

	assert.Equal(t, map[string]any{"enabled": false}, services.Stats()[config.OperationInterview])

	require.NoError(t, services.Close())
	assert.True(t, stub.closed)
}
