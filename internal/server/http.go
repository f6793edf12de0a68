package server

import (
	"time"

	"github.com/go-playground/validator/v10"

	"atsmatch/internal/ai"
	"atsmatch/internal/config"
	atsErrors "atsmatch/internal/errors"
	"atsmatch/internal/extract"
	"atsmatch/internal/observability"
	"atsmatch/internal/session"
)

// KeywordsRequest is the body of POST /keywords. A nil Limit uses the
// configured default; zero or less yields no keywords.
type KeywordsRequest struct {
	Text    string `json:"text" validate:"max=200000"`
	Limit   *int   `json:"limit,omitempty" validate:"omitempty,lte=1000"`
	Profile string `json:"profile,omitempty" validate:"omitempty,profile"`
}

// DocumentsRequest is the body of the resume/job-description endpoints.
// With FromSession set the texts come from the saved session instead.
type DocumentsRequest struct {
	ResumeText     string `json:"resumeText" validate:"max=200000"`
	JobDescription string `json:"jobDescription" validate:"max=200000"`
	FromSession    bool   `json:"fromSession,omitempty"`
}

// CoverLetterRequest is the body of POST /cover-letter.
type CoverLetterRequest struct {
	DocumentsRequest
	CompanyName string `json:"companyName" validate:"required,max=200"`
	RoleTitle   string `json:"roleTitle" validate:"required,max=200"`
	UseAI       bool   `json:"useAI,omitempty"`
}

// SessionRequest is the body of PUT /session.
type SessionRequest struct {
	ResumeText         string `json:"resumeText" validate:"required,max=200000"`
	JobDescriptionText string `json:"jobDescriptionText,omitempty" validate:"max=200000"`
	Source             string `json:"source,omitempty" validate:"omitempty,oneof=upload demo manual"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	TLSConfig config.TLSConfig
	certs     *certReloader

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limits
	MaxRequestSize int64
	MaxUploadBytes int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	AI            *ai.Services
	Sessions      session.Store
	Extractor     *extract.Extractor
	Observability *observability.Manager

	cache    *analysisCache
	validate *validator.Validate

	// Logger
	Logger *atsErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	MaxUploadBytes int64
	CacheSize      int
	RateLimit      *config.RateLimitConfig
}

// Dependencies are the collaborators the handlers call. Observability may
// be nil.
type Dependencies struct {
	AI            *ai.Services
	Sessions      session.Store
	Observability *observability.Manager
}

// ServerConfigFromApp derives the server settings from the application config.
func ServerConfigFromApp(cfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.App.MaxFileSize,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		CacheSize:      cfg.Server.CacheSize,
		RateLimit:      &cfg.Server.RateLimit,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *atsErrors.Logger) (*Server, error) {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	cache, err := newAnalysisCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	validate, err := newValidator()
	if err != nil {
		return nil, err
	}

	if deps.AI == nil {
		deps.AI = ai.NewServices(appCfg, logger)
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NewMemoryStore()
	}
	sessions := session.WithMetrics(deps.Sessions, appCfg.Session.Backend, deps.Observability.Metrics())

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		MaxUploadBytes: cfg.MaxUploadBytes,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		AI:             deps.AI,
		Sessions:       sessions,
		Extractor:      extract.New(appCfg.Extraction, logger),
		Observability:  deps.Observability,
		cache:          cache,
		validate:       validate,
		Logger:         logger,
	}, nil
}

// metrics returns the application metrics, or nil when observability is off.
func (s *Server) metrics() *observability.Metrics {
	if s.Observability == nil {
		return nil
	}
	return s.Observability.Metrics()
}
