package config

import "time"

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	TLS       TLSConfig       `mapstructure:"tls"`
	APIKeys   []string        `mapstructure:"apiKeys"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`

	// CacheSize bounds the LRU of memoised analysis responses; zero disables it.
	CacheSize int `mapstructure:"cacheSize"`
	// MaxUploadBytes bounds multipart uploads on /extract.
	MaxUploadBytes int64 `mapstructure:"maxUploadBytes"`
}

// TLSConfig holds TLS/mTLS configuration. Certificates come either from
// files or, when loaded from Vault, as PEM content.
type TLSConfig struct {
	Mode     string `mapstructure:"mode"` // disabled, server, mutual
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
	CAFile   string `mapstructure:"caFile"`

	CertContent string `mapstructure:"certContent"`
	KeyContent  string `mapstructure:"keyContent"`
	CAContent   string `mapstructure:"caContent"`

	MinVersion       string `mapstructure:"minVersion"`       // 1.2 or 1.3
	ClientAuthPolicy string `mapstructure:"clientAuthPolicy"` // require, request, verify
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	Window         time.Duration `mapstructure:"window"`
}
