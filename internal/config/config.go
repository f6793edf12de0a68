package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "ATSMATCH"

// Config holds all application configuration.
//
// Secret precedence, highest first:
//  1. Vault (when enabled)
//  2. Config file
//  3. Environment (ATSMATCH_AI_APIKEY, ATSMATCH_SESSION_REDIS_PASSWORD, ...)
//  4. Defaults
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Analysis      AnalysisConfig      `mapstructure:"analysis"`
	Extraction    ExtractionConfig    `mapstructure:"extraction"`
	Session       SessionConfig       `mapstructure:"session"`
	Storage       StorageConfig       `mapstructure:"storage"`
	AI            AIConfig            `mapstructure:"ai"`
	Server        ServerConfig        `mapstructure:"server"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// AnalysisConfig holds defaults for the keyword commands.
type AnalysisConfig struct {
	KeywordLimit   int    `mapstructure:"keywordLimit"`
	KeywordProfile string `mapstructure:"keywordProfile"`
}

// ExtractionConfig controls which uploads are accepted for text extraction.
type ExtractionConfig struct {
	AllowedTypes []string `mapstructure:"allowedTypes"`
	MaxBytes     int64    `mapstructure:"maxBytes"`
}

// SessionConfig selects and configures the session store backend.
type SessionConfig struct {
	Backend string             `mapstructure:"backend"` // memory, redis, sqlite
	Key     string             `mapstructure:"key"`
	Redis   RedisSessionConfig `mapstructure:"redis"`
	SQLite  SQLiteConfig       `mapstructure:"sqlite"`
}

// RedisSessionConfig holds the Redis session backend settings.
type RedisSessionConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"` // zero keeps the session until overwritten
}

// SQLiteConfig holds the SQLite session backend settings.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// StorageConfig configures remote document sources.
type StorageConfig struct {
	S3 S3Config `mapstructure:"s3"`
}

// S3Config configures s3://bucket/key inputs. Empty credentials fall back
// to the default AWS credential chain.
type S3Config struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"accessKeyId"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	UsePathStyle    bool   `mapstructure:"usePathStyle"`
}

// LoadConfig loads configuration from defaults, an optional config file and
// the environment. ATSMATCH_CONFIG_FILE points at an explicit file; otherwise
// config.yaml is searched in /etc/atsmatch, $HOME/.atsmatch and the working
// directory.
func LoadConfig() (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := viper.New()

	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Printf("[CONFIG] Configured environment variable handling with prefix '%s'", envPrefix)

	if explicit := os.Getenv(envPrefix + "_CONFIG_FILE"); explicit != "" {
		v.SetConfigFile(explicit)
		log.Printf("[CONFIG] Using explicit config file: %s", explicit)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/atsmatch/")
		v.AddConfigPath("$HOME/.atsmatch")
		v.AddConfigPath(".")
		log.Println("[CONFIG] Configured config file search paths: /etc/atsmatch/, $HOME/.atsmatch, .")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	if err := config.validatePromptFiles(); err != nil {
		return nil, err
	}
	if err := config.loadPromptsFromFiles(); err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks the configuration for values the application cannot run with.
// The AI API key is not checked here; see ValidateAIOperation.
func (c *Config) Validate() error {
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if c.App.MaxFileSize <= 0 {
		return fmt.Errorf("app.maxFileSize must be positive")
	}

	if c.Analysis.KeywordLimit <= 0 {
		return fmt.Errorf("analysis.keywordLimit must be positive")
	}

	switch c.Analysis.KeywordProfile {
	case "extraction", "scoring":
	default:
		return fmt.Errorf("invalid analysis.keywordProfile: %s (must be 'extraction' or 'scoring')", c.Analysis.KeywordProfile)
	}

	if len(c.Extraction.AllowedTypes) == 0 {
		return fmt.Errorf("extraction.allowedTypes must list at least one MIME type")
	}

	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session configuration error: %w", err)
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}

// Validate checks the selected backend has what it needs.
func (s SessionConfig) Validate() error {
	if s.Key == "" {
		return fmt.Errorf("session key is required")
	}
	switch s.Backend {
	case "memory":
	case "redis":
		if s.Redis.Addr == "" {
			return fmt.Errorf("session.redis.addr is required for the redis backend")
		}
		if s.Redis.TTL < 0 {
			return fmt.Errorf("session.redis.ttl must not be negative")
		}
	case "sqlite":
		if s.SQLite.Path == "" {
			return fmt.Errorf("session.sqlite.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("invalid session backend: %s (must be 'memory', 'redis', or 'sqlite')", s.Backend)
	}
	return nil
}
