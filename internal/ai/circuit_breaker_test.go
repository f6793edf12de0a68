package ai

import (
	stderrors "errors"
	"testing"
	"time"

	"atsmatch/internal/config"
	"atsmatch/internal/errors"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"
)

func breakerConfig(maxRequests, minRequests uint32, threshold float64) *config.OperationAIConfig {
	return &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "test-model",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      maxRequests,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			MinRequests:      minRequests,
			FailureThreshold: threshold,
		},
	}
}

func TestCircuitBreakersAreNamedPerOperation(t *testing.T) {
	logger := errors.NewNopLogger()
	rewriteCB := NewAICircuitBreaker(config.OperationRewrite, breakerConfig(3, 3, 0.6), logger)
	interviewCB := NewAICircuitBreaker(config.OperationInterview, breakerConfig(5, 2, 0.7), logger)
	modelCB := NewModelCircuitBreaker(config.OperationRewrite, breakerConfig(3, 3, 0.6), logger)

	tests := []struct {
		name  string
		stats map[string]any
		want  string
	}{
		{"rewrite", rewriteCB.Stats(), "AI-rewrite"},
		{"interview", interviewCB.Stats(), "AI-interview"},
		{"model", modelCB.Stats(), "AI-Model-rewrite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if name, _ := tt.stats["name"].(string); name != tt.want {
				t.Errorf("Expected circuit breaker name '%s', got '%s'", tt.want, name)
			}
			if state, _ := tt.stats["state"].(string); state != "closed" {
				t.Errorf("Expected initial state 'closed', got '%s'", state)
			}
			if enabled, _ := tt.stats["enabled"].(bool); !enabled {
				t.Error("Circuit breaker should be enabled")
			}
		})
	}

	if !rewriteCB.IsHealthy() || !interviewCB.IsHealthy() || !modelCB.IsHealthy() {
		t.Error("Circuit breakers should be healthy initially")
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cfg := &config.OperationAIConfig{CircuitBreaker: config.CircuitBreakerConfig{Enabled: false}}

	cb := NewAICircuitBreaker("disabled", cfg, errors.NewNopLogger())
	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}

	// A nil breaker still runs the call and reports itself healthy.
	calls := 0
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		calls++
		return &genai.GenerateContentResponse{}, nil
	})
	if err != nil || calls != 1 {
		t.Fatalf("Expected one successful call through a nil breaker, got calls=%d err=%v", calls, err)
	}
	if !cb.IsHealthy() {
		t.Error("Nil breaker should be healthy")
	}
	if enabled, _ := cb.Stats()["enabled"].(bool); enabled {
		t.Error("Nil breaker stats should report enabled=false")
	}
}

func TestCircuitBreakerTripsAndFailsFast(t *testing.T) {
	cb := NewAICircuitBreaker("trip", breakerConfig(1, 2, 0.5), errors.NewNopLogger())
	boom := stderrors.New("upstream down")

	for range 2 {
		if _, err := cb.Execute(func() (*genai.GenerateContentResponse, error) { return nil, boom }); !stderrors.Is(err, boom) {
			t.Fatalf("Expected upstream error, got %v", err)
		}
	}

	if cb.IsHealthy() {
		t.Fatal("Breaker should be open after two failures")
	}

	called := false
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		called = true
		return nil, nil
	})
	if called {
		t.Error("Open breaker must not call through")
	}
	if !stderrors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected ErrOpenState in chain, got %v", err)
	}
	if !errors.HasCode(err, errors.ErrCodeAIServiceFailed) {
		t.Errorf("Expected %s, got %v", errors.ErrCodeAIServiceFailed, err)
	}
}

func TestFailureRatioWithoutRequests(t *testing.T) {
	if got := failureRatio(gobreaker.Counts{}); got != 0 {
		t.Errorf("Expected 0, got %f", got)
	}
	if got := failureRatio(gobreaker.Counts{Requests: 4, TotalFailures: 3}); got != 0.75 {
		t.Errorf("Expected 0.75, got %f", got)
	}
}
