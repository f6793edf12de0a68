package observability

import (
	"context"
	"fmt"
	"time"

	"atsmatch/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64 `json:"inputTokens"`
	OutputTokens int64 `json:"outputTokens"`
	TotalTokens  int64 `json:"totalTokens"`
}

// AIOperationResult holds the result of an AI operation including token usage
type AIOperationResult struct {
	Error      error
	TokenUsage *TokenUsage
}

// Metrics holds the application instruments. A nil *Metrics records nothing.
type Metrics struct {
	toggles config.CustomMetricsConfig

	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	AnalysesRun   metric.Int64Counter
	AtsScores     metric.Int64Histogram
	ContentSizes  metric.Int64Histogram
	Extractions   metric.Int64Counter
	SessionOps    metric.Int64Counter
	RateLimitHits metric.Int64Counter
	CacheLookups  metric.Int64Counter
}

func newMetrics(meter metric.Meter, toggles config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{toggles: toggles}
	var err error

	if m.AIProcessingTime, err = meter.Float64Histogram("atsmatch_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create AI processing time metric: %w", err)
	}
	if m.AIRequestCount, err = meter.Int64Counter("atsmatch_ai_requests_total",
		metric.WithDescription("Total number of AI requests")); err != nil {
		return nil, fmt.Errorf("failed to create AI request count metric: %w", err)
	}
	if m.AIErrorCount, err = meter.Int64Counter("atsmatch_ai_errors_total",
		metric.WithDescription("Total number of AI request errors")); err != nil {
		return nil, fmt.Errorf("failed to create AI error count metric: %w", err)
	}
	if m.AITokenUsage, err = meter.Int64Histogram("atsmatch_ai_token_usage",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("{token}")); err != nil {
		return nil, fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	if m.AnalysesRun, err = meter.Int64Counter("atsmatch_analyses_total",
		metric.WithDescription("Deterministic analyses computed, by kind")); err != nil {
		return nil, fmt.Errorf("failed to create analyses metric: %w", err)
	}
	if m.AtsScores, err = meter.Int64Histogram("atsmatch_ats_score",
		metric.WithDescription("Distribution of computed ATS scores"),
		metric.WithExplicitBucketBoundaries(12, 25, 40, 55, 70, 85, 98)); err != nil {
		return nil, fmt.Errorf("failed to create ATS score metric: %w", err)
	}
	if m.ContentSizes, err = meter.Int64Histogram("atsmatch_content_size_bytes",
		metric.WithDescription("Size of analysed resume and job description texts"),
		metric.WithUnit("By")); err != nil {
		return nil, fmt.Errorf("failed to create content size metric: %w", err)
	}
	if m.Extractions, err = meter.Int64Counter("atsmatch_extractions_total",
		metric.WithDescription("Documents run through text extraction")); err != nil {
		return nil, fmt.Errorf("failed to create extraction metric: %w", err)
	}

	if m.SessionOps, err = meter.Int64Counter("atsmatch_session_operations_total",
		metric.WithDescription("Session store operations")); err != nil {
		return nil, fmt.Errorf("failed to create session operations metric: %w", err)
	}
	if m.RateLimitHits, err = meter.Int64Counter("atsmatch_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits")); err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}
	if m.CacheLookups, err = meter.Int64Counter("atsmatch_cache_lookups_total",
		metric.WithDescription("Analysis cache lookups by result")); err != nil {
		return nil, fmt.Errorf("failed to create cache lookup metric: %w", err)
	}

	return m, nil
}

// TrackAIOperation runs fn inside an "ai.<operation>" span and records
// duration, outcome and token usage as configured.
func (m *Metrics) TrackAIOperation(ctx context.Context, operation string, fn func(context.Context) *AIOperationResult) error {
	ctx, span := otel.Tracer("atsmatch.ai").Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start).Seconds()

	var err error
	if result != nil {
		err = result.Error
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}
	span.SetAttributes(attrs...)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}
	if result != nil && result.TokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", result.TokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", result.TokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", result.TokenUsage.TotalTokens),
		)
	}

	if m == nil || !m.toggles.AIOperations.Enabled {
		return err
	}

	opts := metric.WithAttributes(attrs...)
	if m.toggles.AIOperations.TrackDuration {
		m.AIProcessingTime.Record(ctx, duration, opts)
	}
	m.AIRequestCount.Add(ctx, 1, opts)
	if err != nil {
		m.AIErrorCount.Add(ctx, 1, opts)
	}
	if result != nil && result.TokenUsage != nil && m.toggles.AIOperations.TrackTokenUsage {
		m.recordTokens(ctx, operation, result.TokenUsage)
	}
	return err
}

func (m *Metrics) recordTokens(ctx context.Context, operation string, usage *TokenUsage) {
	for _, tt := range []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	} {
		m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("token_type", tt.tokenType),
		))
	}
}

// RecordAnalysis counts one deterministic computation. score < 0 means the
// kind has no score.
func (m *Metrics) RecordAnalysis(ctx context.Context, kind string, score, resumeBytes, jdBytes int) {
	if m == nil || !m.toggles.Analysis.Enabled {
		return
	}
	kindAttr := attribute.String("kind", kind)
	m.AnalysesRun.Add(ctx, 1, metric.WithAttributes(kindAttr))

	if score >= 0 && m.toggles.Analysis.TrackScores {
		m.AtsScores.Record(ctx, int64(score), metric.WithAttributes(kindAttr))
	}
	if m.toggles.Analysis.TrackContentSizes {
		m.ContentSizes.Record(ctx, int64(resumeBytes), metric.WithAttributes(kindAttr, attribute.String("document", "resume")))
		if jdBytes > 0 {
			m.ContentSizes.Record(ctx, int64(jdBytes), metric.WithAttributes(kindAttr, attribute.String("document", "job_description")))
		}
	}
}

// RecordExtraction counts one extraction attempt.
func (m *Metrics) RecordExtraction(ctx context.Context, contentType string, size int, err error) {
	if m == nil || !m.toggles.Analysis.Enabled {
		return
	}
	m.Extractions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("content_type", contentType),
		attribute.Bool("success", err == nil),
	))
	if m.toggles.Analysis.TrackContentSizes {
		m.ContentSizes.Record(ctx, int64(size), metric.WithAttributes(attribute.String("document", "upload")))
	}
}

// RecordSessionOp counts one session store call.
func (m *Metrics) RecordSessionOp(ctx context.Context, op, backend string, err error) {
	if m == nil || !m.infrastructure(m.toggles.Infrastructure.TrackSessionOps) {
		return
	}
	m.SessionOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("backend", backend),
		attribute.Bool("success", err == nil),
	))
}

// RecordRateLimitHit counts one rejected request.
func (m *Metrics) RecordRateLimitHit(ctx context.Context, limiter string) {
	if m == nil || !m.infrastructure(m.toggles.Infrastructure.TrackRateLimits) {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("limiter", limiter)))
}

// RecordCacheLookup counts one analysis cache lookup.
func (m *Metrics) RecordCacheLookup(ctx context.Context, endpoint string, hit bool) {
	if m == nil || !m.infrastructure(m.toggles.Infrastructure.TrackCacheHits) {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("result", result),
	))
}

func (m *Metrics) infrastructure(track bool) bool {
	return m.toggles.Infrastructure.Enabled && track
}
