package ai

import (
	"errors"
	"fmt"

	"atsmatch/internal/config"
	appErrors "atsmatch/internal/errors"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"
)

// Breaker guards one kind of upstream call. A nil *Breaker passes calls
// straight through, which is what a disabled circuit breaker returns.
type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// NewAICircuitBreaker guards content generation for one operation.
func NewAICircuitBreaker(operation string, cfg *config.OperationAIConfig, logger *appErrors.Logger) *Breaker[*genai.GenerateContentResponse] {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}
	cbCfg := cfg.CircuitBreaker
	return newBreaker[*genai.GenerateContentResponse]("AI-"+operation, operation, cbCfg, func(counts gobreaker.Counts) bool {
		return counts.Requests >= cbCfg.MinRequests &&
			failureRatio(counts) >= cbCfg.FailureThreshold
	}, logger)
}

// NewModelCircuitBreaker guards model lookups. It trips later than the
// generation breaker: five requests at 80% failure.
func NewModelCircuitBreaker(operation string, cfg *config.OperationAIConfig, logger *appErrors.Logger) *Breaker[*genai.Model] {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}
	return newBreaker[*genai.Model]("AI-Model-"+operation, operation, cfg.CircuitBreaker, func(counts gobreaker.Counts) bool {
		return counts.Requests >= 5 && failureRatio(counts) >= 0.8
	}, logger)
}

func newBreaker[T any](name, operation string, cbCfg config.CircuitBreakerConfig, trip func(gobreaker.Counts) bool, logger *appErrors.Logger) *Breaker[T] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cbCfg.MaxRequests,
		Interval:    cbCfg.Interval,
		Timeout:     cbCfg.Timeout,
		ReadyToTrip: trip,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.Info("Circuit breaker state changed",
				"name", name,
				"operation_type", operation,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cbCfg.MaxRequests,
				"failure_threshold", cbCfg.FailureThreshold)
		},
	}
	return &Breaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

func failureRatio(counts gobreaker.Counts) float64 {
	if counts.Requests == 0 {
		return 0
	}
	return float64(counts.TotalFailures) / float64(counts.Requests)
}

// Execute runs fn under the breaker. An open breaker fails fast with an
// AI_SERVICE_FAILED error that wraps gobreaker's sentinel.
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	result, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return result, appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed,
			fmt.Sprintf("AI provider temporarily unavailable (%s)", b.cb.Name()), err)
	}
	return result, err
}

// Stats reports name, state and counts for the /stats endpoint.
func (b *Breaker[T]) Stats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy is true while the breaker is closed or absent.
func (b *Breaker[T]) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}
