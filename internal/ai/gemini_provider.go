package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"atsmatch/internal/config"
	appErrors "atsmatch/internal/errors"
	"atsmatch/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const (
	// MaxInterviewQuestions caps the interview operation output.
	MaxInterviewQuestions = 6

	// SourceAI marks cover letters produced by a provider.
	SourceAI = "ai"

	defaultModelCheckTimeout = 10 * time.Second
	maxBackoff               = 30 * time.Second
)

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	config         *config.OperationAIConfig
	operation      string
	circuitBreaker *Breaker[*genai.GenerateContentResponse]
	modelBreaker   *Breaker[*genai.Model]
	backoffBase    time.Duration
	logger         *appErrors.Logger
}

var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini provider bound to one operation's settings.
func NewGeminiProvider(cfg *config.OperationAIConfig, operation string, logger *appErrors.Logger) (*GeminiProvider, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: *cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), clientCfg)
	if err != nil {
		return nil, appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:         client,
		config:         cfg,
		operation:      operation,
		circuitBreaker: NewAICircuitBreaker(operation, cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(operation, cfg, logger),
		backoffBase:    time.Second,
		logger:         logger,
	}, nil
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{Name: g.config.Model}

	timeout := g.config.ModelCheckTimeout
	if timeout <= 0 {
		timeout = defaultModelCheckTimeout
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	modelInfo.DisplayName = model.DisplayName
	modelInfo.Version = model.Version

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// backoff returns 2^(attempt-1) * base plus up to 10% jitter, capped at 30s.
func (g *GeminiProvider) backoff(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * g.backoffBase
	jitter := time.Duration(0)
	if jitterMax := int64(float64(baseDelay) * 0.1); jitterMax > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			jitter = time.Duration(n.Int64())
		}
	}
	return min(baseDelay+jitter, maxBackoff)
}

// executeWithRetry executes an AI operation with retry logic and exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= *g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", *g.config.MaxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(g.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", *g.config.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed: %w", operation, lastErr)
}

var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// isRetryableError reports whether err is transient: network failures and
// throttling or server-side HTTP statuses.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus[apiErr.Code]
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return retryableStatus[gErr.Code]
	}

	return false
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout())
}

// executeAIOperation runs one structured generation call with tracing, the
// circuit breaker, retries and JSON decoding of the response.
func executeAIOperation[Out any](
	ctx context.Context,
	g *GeminiProvider,
	operationName string,
	prompts Prompts,
	genaiConfig *genai.GenerateContentConfig,
	spanAttributes ...attribute.KeyValue,
) (Out, *TokenUsage, error) {
	var output Out
	tracer := otel.Tracer("atsmatch.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.String("ai.operation", g.operation),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	if *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}
	if *g.config.UseSystemPrompts && prompts.System != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(prompts.System, genai.RoleUser)
	}

	callCtx, cancel := context.WithTimeout(ctx, *g.config.Timeout)
	defer cancel()

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(callCtx, operationName, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(callCtx, g.config.Model, genai.Text(prompts.User), genaiConfig)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		if isTimeout(err) {
			return output, nil, appErrors.NewAIError(appErrors.ErrCodeAITimeout,
				fmt.Sprintf("%s timed out after %s", operationName, *g.config.Timeout), err)
		}
		if _, ok := appErrors.AsAppError(err); ok {
			return output, nil, err
		}
		return output, nil, appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed,
			"Failed to generate content for "+operationName, err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		err := errors.New("empty response")
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, appErrors.NewAIError(appErrors.ErrCodeAIResponseInvalid,
			"AI returned no content for "+operationName, err)
	}
	if err := json.Unmarshal([]byte(text), &output); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, appErrors.NewAIError(appErrors.ErrCodeAIResponseInvalid,
			"Failed to parse AI response for "+operationName, err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return output, tokenUsage, nil
}

// RewriteSummary suggests a rewritten summary and bullets for the target role.
func (g *GeminiProvider) RewriteSummary(ctx context.Context, input types.RewriteInput) (types.RewriteOutput, *TokenUsage, error) {
	prompts := resolvePrompts(config.OperationRewrite, g.config)
	prompts.User = rewritePrompt(prompts.User, input)

	output, tokenUsage, err := executeAIOperation[types.RewriteOutput](
		ctx, g, "rewrite_summary", prompts, rewriteSchema(),
		attribute.Int("input.resume_length", len(input.ResumeText)),
		attribute.Int("input.job_length", len(input.JobDescription)),
		attribute.Int("input.ats_score", input.Ats.Score),
	)
	if err != nil {
		return types.RewriteOutput{}, nil, err
	}

	output.Summary = strings.TrimSpace(output.Summary)
	output.Notes = strings.TrimSpace(output.Notes)
	output.Bullets = compactStrings(output.Bullets)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attribute.Int("output.bullets", len(output.Bullets)))
	}
	return output, tokenUsage, nil
}

// InterviewQuestions returns at most MaxInterviewQuestions questions.
func (g *GeminiProvider) InterviewQuestions(ctx context.Context, input types.InterviewInput) (types.InterviewOutput, *TokenUsage, error) {
	prompts := resolvePrompts(config.OperationInterview, g.config)
	prompts.User = interviewPrompt(prompts.User, input)

	output, tokenUsage, err := executeAIOperation[types.InterviewOutput](
		ctx, g, "interview_questions", prompts, interviewSchema(),
		attribute.Int("input.resume_length", len(input.ResumeText)),
		attribute.Int("input.job_length", len(input.JobDescription)),
	)
	if err != nil {
		return types.InterviewOutput{}, nil, err
	}

	return normalizeInterview(output), tokenUsage, nil
}

// CoverLetter drafts a cover letter. The result is marked with SourceAI.
func (g *GeminiProvider) CoverLetter(ctx context.Context, input types.CoverLetterInput) (types.CoverLetterOutput, *TokenUsage, error) {
	prompts := resolvePrompts(config.OperationCoverLetter, g.config)
	prompts.User = coverLetterPrompt(prompts.User, input)

	output, tokenUsage, err := executeAIOperation[types.CoverLetterOutput](
		ctx, g, "cover_letter", prompts, coverLetterSchema(),
		attribute.String("input.company", input.CompanyName),
		attribute.String("input.role", input.RoleTitle),
	)
	if err != nil {
		return types.CoverLetterOutput{}, nil, err
	}

	output.CoverLetterText = strings.TrimSpace(output.CoverLetterText)
	if output.CoverLetterText == "" {
		return types.CoverLetterOutput{}, nil, appErrors.NewAIError(appErrors.ErrCodeAIResponseInvalid,
			"AI returned an empty cover letter", nil)
	}
	output.Source = SourceAI
	return output, tokenUsage, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.circuitBreaker.Stats(),
		"model_operations": g.modelBreaker.Stats(),
		"overall_healthy":  g.circuitBreaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}

// Close implements AIProvider. The genai client holds no resources in
// request/response mode.
func (g *GeminiProvider) Close() error {
	return nil
}

func normalizeInterview(out types.InterviewOutput) types.InterviewOutput {
	questions := make([]types.InterviewQuestion, 0, MaxInterviewQuestions)
	for _, q := range out.Questions {
		q.Question = strings.TrimSpace(q.Question)
		q.Focus = strings.TrimSpace(q.Focus)
		if q.Question == "" {
			continue
		}
		questions = append(questions, q)
		if len(questions) == MaxInterviewQuestions {
			break
		}
	}
	return types.InterviewOutput{Questions: questions}
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func jsonConfig(schema *genai.Schema) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
}

func rewriteSchema() *genai.GenerateContentConfig {
	return jsonConfig(&genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {Type: genai.TypeString},
			"bullets": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"notes": {Type: genai.TypeString},
		},
		Required: []string{"summary", "bullets", "notes"},
	})
}

func interviewSchema() *genai.GenerateContentConfig {
	return jsonConfig(&genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"questions": {
				Type:     genai.TypeArray,
				MaxItems: genai.Ptr[int64](MaxInterviewQuestions),
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"question": {Type: genai.TypeString},
						"focus":    {Type: genai.TypeString},
					},
					Required: []string{"question", "focus"},
				},
			},
		},
		Required: []string{"questions"},
	})
}

func coverLetterSchema() *genai.GenerateContentConfig {
	return jsonConfig(&genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"coverLetterText": {Type: genai.TypeString},
		},
		Required: []string{"coverLetterText"},
	})
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
