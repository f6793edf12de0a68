package config

import (
	"fmt"
	"time"
)

// AI operation names. They double as config keys under "ai.".
const (
	OperationRewrite     = "rewrite"
	OperationInterview   = "interview"
	OperationCoverLetter = "coverLetter"
)

// Operations lists every AI operation in a stable order.
var Operations = []string{OperationRewrite, OperationInterview, OperationCoverLetter}

// AIConfig holds the global AI settings plus per-operation overrides.
type AIConfig struct {
	Provider          string        `mapstructure:"provider"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	APIKey            string        `mapstructure:"apiKey"`
	MaxRetries        int           `mapstructure:"maxRetries"`
	Temperature       float32       `mapstructure:"temperature"`
	UseSystemPrompts  bool          `mapstructure:"useSystemPrompts"`
	ModelCheckTimeout time.Duration `mapstructure:"modelCheckTimeout"`
	BaseURL           string        `mapstructure:"baseUrl"` // empty uses the provider default endpoint

	Rewrite     OperationAIConfig `mapstructure:"rewrite"`
	Interview   OperationAIConfig `mapstructure:"interview"`
	CoverLetter OperationAIConfig `mapstructure:"coverLetter"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // allowed while half-open
	Interval         time.Duration `mapstructure:"interval"`         // count reset interval while closed
	Timeout          time.Duration `mapstructure:"timeout"`          // open -> half-open
	MinRequests      uint32        `mapstructure:"minRequests"`      // before tripping is considered
	FailureThreshold float64       `mapstructure:"failureThreshold"` // 0.0-1.0
}

// OperationAIConfig holds AI settings for one operation. Pointer fields
// distinguish "unset, inherit the global value" from an explicit zero.
type OperationAIConfig struct {
	Provider          string               `mapstructure:"provider"`
	Model             string               `mapstructure:"model"`
	Timeout           *time.Duration       `mapstructure:"timeout"`
	APIKey            string               `mapstructure:"apiKey"`
	BaseURL           string               `mapstructure:"baseUrl"`
	MaxRetries        *int                 `mapstructure:"maxRetries"`
	Temperature       *float32             `mapstructure:"temperature"`
	UseSystemPrompts  *bool                `mapstructure:"useSystemPrompts"`
	SystemPrompt      string               `mapstructure:"systemPrompt"`
	SystemPromptFile  string               `mapstructure:"systemPromptFile"`
	UserPrompt        string               `mapstructure:"userPrompt"`
	UserPromptFile    string               `mapstructure:"userPromptFile"`
	CircuitBreaker    CircuitBreakerConfig `mapstructure:"circuitBreaker"`
	ModelCheckTimeout time.Duration        `mapstructure:"-"`
}

func (c *Config) operationSlot(operation string) (*OperationAIConfig, error) {
	switch operation {
	case OperationRewrite:
		return &c.AI.Rewrite, nil
	case OperationInterview:
		return &c.AI.Interview, nil
	case OperationCoverLetter:
		return &c.AI.CoverLetter, nil
	default:
		return nil, fmt.Errorf("unknown AI operation: %s", operation)
	}
}

// GetOperationConfig returns the effective configuration for operation, with
// unset fields filled from the global AI settings.
func (c *Config) GetOperationConfig(operation string) (OperationAIConfig, error) {
	slot, err := c.operationSlot(operation)
	if err != nil {
		return OperationAIConfig{}, err
	}
	opCfg := *slot
	c.applyOperationDefaults(&opCfg)
	return opCfg, nil
}

// ValidateAIOperation reports whether operation can be run with the current
// configuration. Only AI commands call this, so the deterministic commands
// work without any key configured.
func (c *Config) ValidateAIOperation(operation string) error {
	opCfg, err := c.GetOperationConfig(operation)
	if err != nil {
		return err
	}
	if opCfg.APIKey == "" {
		return fmt.Errorf("AI API key is required for %s (set %s_AI_APIKEY or ai.%s.apiKey)", operation, envPrefix, operation)
	}
	if opCfg.Timeout == nil || *opCfg.Timeout <= 0 {
		return fmt.Errorf("AI timeout for %s must be positive", operation)
	}
	return nil
}

func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		timeout := c.AI.Timeout
		opCfg.Timeout = &timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.BaseURL == "" {
		opCfg.BaseURL = c.AI.BaseURL
	}
	if opCfg.MaxRetries == nil {
		retries := c.AI.MaxRetries
		opCfg.MaxRetries = &retries
	}
	if opCfg.Temperature == nil {
		temperature := c.AI.Temperature
		opCfg.Temperature = &temperature
	}
	if opCfg.UseSystemPrompts == nil {
		use := c.AI.UseSystemPrompts
		opCfg.UseSystemPrompts = &use
	}
	if opCfg.ModelCheckTimeout == 0 {
		opCfg.ModelCheckTimeout = c.AI.ModelCheckTimeout
	}
}
