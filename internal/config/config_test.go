package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown"},
			MaxFileSize:      1024,
		},
		Analysis:   AnalysisConfig{KeywordLimit: 18, KeywordProfile: "extraction"},
		Extraction: ExtractionConfig{AllowedTypes: []string{"text/plain"}, MaxBytes: 1024},
		Session:    SessionConfig{Backend: "memory", Key: "atsmatch-analysis-session"},
		AI:         AIConfig{Provider: "gemini", Model: "gemini-2.0-flash", Timeout: time.Minute, MaxRetries: 3, Temperature: 0.7},
		Server:     ServerConfig{Port: "8080", TLS: TLSConfig{Mode: "disabled"}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero AI timeout", mutate: func(c *Config) { c.AI.Timeout = 0 }, wantErr: "AI timeout must be positive"},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "server port is required"},
		{name: "unsupported format", mutate: func(c *Config) { c.App.DefaultFormat = "xml" }, wantErr: "invalid default format: xml"},
		{name: "zero keyword limit", mutate: func(c *Config) { c.Analysis.KeywordLimit = 0 }, wantErr: "keywordLimit must be positive"},
		{name: "unknown profile", mutate: func(c *Config) { c.Analysis.KeywordProfile = "fuzzy" }, wantErr: "invalid analysis.keywordProfile: fuzzy"},
		{name: "no allowed types", mutate: func(c *Config) { c.Extraction.AllowedTypes = nil }, wantErr: "allowedTypes"},
		{name: "unknown session backend", mutate: func(c *Config) { c.Session.Backend = "etcd" }, wantErr: "invalid session backend: etcd"},
		{name: "redis without addr", mutate: func(c *Config) { c.Session.Backend = "redis" }, wantErr: "session.redis.addr is required"},
		{
			name: "negative redis ttl",
			mutate: func(c *Config) {
				c.Session.Backend = "redis"
				c.Session.Redis = RedisSessionConfig{Addr: "localhost:6379", TTL: -time.Second}
			},
			wantErr: "must not be negative",
		},
		{name: "sqlite without path", mutate: func(c *Config) { c.Session.Backend = "sqlite" }, wantErr: "session.sqlite.path is required"},
		{name: "missing session key", mutate: func(c *Config) { c.Session.Key = "" }, wantErr: "session key is required"},
		{name: "bad tls mode", mutate: func(c *Config) { c.Server.TLS.Mode = "on" }, wantErr: "invalid TLS mode: on"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateDoesNotRequireAIKey(t *testing.T) {
	cfg := validConfig()
	cfg.AI.APIKey = ""
	assert.NoError(t, cfg.Validate())
}

func TestGetOperationConfigInheritsGlobals(t *testing.T) {
	cfg := validConfig()
	cfg.AI.APIKey = "global-key"
	cfg.AI.UseSystemPrompts = true
	cfg.AI.ModelCheckTimeout = 5 * time.Second

	timeout := 90 * time.Second
	temperature := float32(0.2)
	cfg.AI.Rewrite = OperationAIConfig{Model: "gemini-2.5-pro", Timeout: &timeout, Temperature: &temperature}

	rewrite, err := cfg.GetOperationConfig(OperationRewrite)
	require.NoError(t, err)
	assert.Equal(t, "gemini", rewrite.Provider)
	assert.Equal(t, "gemini-2.5-pro", rewrite.Model)
	assert.Equal(t, 90*time.Second, *rewrite.Timeout)
	assert.Equal(t, float32(0.2), *rewrite.Temperature)
	assert.Equal(t, 3, *rewrite.MaxRetries)
	assert.True(t, *rewrite.UseSystemPrompts)
	assert.Equal(t, "global-key", rewrite.APIKey)
	assert.Equal(t, 5*time.Second, rewrite.ModelCheckTimeout)

	// The stored slot is not modified.
	assert.Nil(t, cfg.AI.Rewrite.MaxRetries)

	interview, err := cfg.GetOperationConfig(OperationInterview)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, *interview.Timeout)
	assert.Equal(t, float32(0.7), *interview.Temperature)

	_, err = cfg.GetOperationConfig("tailor")
	assert.ErrorContains(t, err, "unknown AI operation: tailor")
}

func TestValidateAIOperation(t *testing.T) {
	cfg := validConfig()

	err := cfg.ValidateAIOperation(OperationCoverLetter)
	assert.ErrorContains(t, err, "AI API key is required for coverLetter")

	cfg.AI.CoverLetter.APIKey = "op-key"
	assert.NoError(t, cfg.ValidateAIOperation(OperationCoverLetter))
	assert.Error(t, cfg.ValidateAIOperation(OperationRewrite))

	cfg.AI.APIKey = "global"
	zero := time.Duration(0)
	cfg.AI.Rewrite.Timeout = &zero
	assert.ErrorContains(t, cfg.ValidateAIOperation(OperationRewrite), "timeout for rewrite must be positive")
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ATSMATCH_CONFIG_FILE", "")
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 18, cfg.Analysis.KeywordLimit)
	assert.Equal(t, "extraction", cfg.Analysis.KeywordProfile)
	assert.Equal(t, "sqlite", cfg.Session.Backend)
	assert.Equal(t, "atsmatch-analysis-session", cfg.Session.Key)
	assert.Contains(t, cfg.Extraction.AllowedTypes, "application/pdf")
	assert.Equal(t, "json", cfg.App.DefaultFormat)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.AI.Rewrite.CircuitBreaker.Enabled)
	require.NotNil(t, cfg.AI.Rewrite.Timeout)
	assert.Equal(t, 90*time.Second, *cfg.AI.Rewrite.Timeout)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadConfigFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	prompt := filepath.Join(dir, "interview.md")
	require.NoError(t, os.WriteFile(prompt, []byte("Ask about {{skills}}"), 0600))

	configFile := filepath.Join(dir, "atsmatch.yaml")
	yaml := `
analysis:
  keywordLimit: 25
  keywordProfile: scoring
session:
  backend: memory
ai:
  model: gemini-2.5-flash
  interview:
    userPromptFile: ` + prompt + `
server:
  port: "9000"
`
	require.NoError(t, os.WriteFile(configFile, []byte(yaml), 0600))

	t.Setenv("ATSMATCH_CONFIG_FILE", configFile)
	t.Setenv("ATSMATCH_AI_APIKEY", "env-key")
	t.Setenv("ATSMATCH_SERVER_APIKEYS", "alpha, beta")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Analysis.KeywordLimit)
	assert.Equal(t, "scoring", cfg.Analysis.KeywordProfile)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	assert.Equal(t, "env-key", cfg.AI.APIKey)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Server.APIKeys)
	assert.Equal(t, "Ask about {{skills}}", cfg.AI.Interview.UserPrompt)
	assert.NoError(t, cfg.ValidateAIOperation(OperationInterview))
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("analysis:\n  keywordProfile: fuzzy\n"), 0600))
	t.Setenv("ATSMATCH_CONFIG_FILE", configFile)

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "invalid configuration")
}
