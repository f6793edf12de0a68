package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"atsmatch/internal/config"
	"atsmatch/internal/errors"
	"atsmatch/internal/types"
)

// Service binds a provider to one operation's configuration.
type Service struct {
	Provider  AIProvider
	operation string
	config    *config.OperationAIConfig
	logger    *errors.Logger
}

// NewService creates a new AI service instance with configuration for a specific operation
func NewService(cfg *config.OperationAIConfig, operation string, logger *errors.Logger) (*Service, error) {
	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"operation_type", operation,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries,
		"use_system_prompts", *cfg.UseSystemPrompts)

	var provider AIProvider
	var err error
	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, operation, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}

	return &Service{
		Provider:  provider,
		operation: operation,
		config:    cfg,
		logger:    logger,
	}, nil
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Provider.GetModelInfo(ctx)
}

// Services hands out one Service per operation, built on first use so that
// commands which never call the AI need no API key.
type Services struct {
	cfg    *config.Config
	logger *errors.Logger

	mu       sync.Mutex
	services map[string]*Service
}

// NewServices creates an empty registry over cfg.
func NewServices(cfg *config.Config, logger *errors.Logger) *Services {
	return &Services{
		cfg:      cfg,
		logger:   logger,
		services: make(map[string]*Service),
	}
}

// SetProvider installs a provider for operation, replacing any built one.
func (s *Services) SetProvider(operation string, provider AIProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[operation] = &Service{Provider: provider, operation: operation, logger: s.logger}
}

// Get returns the service for operation, creating it if needed. A missing
// API key is reported as a MISSING_API_KEY config error.
func (s *Services) Get(operation string) (*Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if svc, ok := s.services[operation]; ok {
		return svc, nil
	}

	if err := s.cfg.ValidateAIOperation(operation); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey, err.Error(), err)
	}
	opCfg, err := s.cfg.GetOperationConfig(operation)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, err.Error(), err)
	}

	svc, err := NewService(&opCfg, operation, s.logger)
	if err != nil {
		return nil, err
	}
	s.services[operation] = svc
	return svc, nil
}

// RewriteSummary runs the rewrite operation.
func (s *Services) RewriteSummary(ctx context.Context, in types.RewriteInput) (types.RewriteOutput, *TokenUsage, error) {
	svc, err := s.Get(config.OperationRewrite)
	if err != nil {
		return types.RewriteOutput{}, nil, err
	}
	return svc.Provider.RewriteSummary(ctx, in)
}

// InterviewQuestions runs the interview operation.
func (s *Services) InterviewQuestions(ctx context.Context, in types.InterviewInput) (types.InterviewOutput, *TokenUsage, error) {
	svc, err := s.Get(config.OperationInterview)
	if err != nil {
		return types.InterviewOutput{}, nil, err
	}
	return svc.Provider.InterviewQuestions(ctx, in)
}

// CoverLetter runs the cover letter operation.
func (s *Services) CoverLetter(ctx context.Context, in types.CoverLetterInput) (types.CoverLetterOutput, *TokenUsage, error) {
	svc, err := s.Get(config.OperationCoverLetter)
	if err != nil {
		return types.CoverLetterOutput{}, nil, err
	}
	return svc.Provider.CoverLetter(ctx, in)
}

// Stats reports circuit breaker state for every service built so far.
func (s *Services) Stats() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make(map[string]any, len(s.services))
	for op, svc := range s.services {
		if g, ok := svc.Provider.(*GeminiProvider); ok {
			stats[op] = g.GetCircuitBreakerStats()
		} else {
			stats[op] = map[string]any{"enabled": false}
		}
	}
	return stats
}

// Close closes every provider.
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, svc := range s.services {
		if err := svc.Provider.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
