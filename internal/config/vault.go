package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"atsmatch/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool         `mapstructure:"enabled"`
	Address   string       `mapstructure:"address"`
	Token     string       `mapstructure:"token"`
	TokenFile string       `mapstructure:"tokenFile"`
	Namespace string       `mapstructure:"namespace"`
	Secrets   VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets holds KVv2 paths. An empty path skips that secret.
type VaultSecrets struct {
	APIKeys   string `mapstructure:"apiKeys"`   // key "keys", comma-separated
	GeminiKey string `mapstructure:"geminiKey"` // key "api_key"
	Redis     string `mapstructure:"redis"`     // key "password"
	S3        string `mapstructure:"s3"`        // keys "access_key_id", "secret_access_key"
	TLSCerts  string `mapstructure:"tlsCerts"`  // keys "cert", "key", "ca"
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
	logger *errors.Logger
}

// VaultSecret is a secret read from a KVv2 engine.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// NewVaultClient connects to Vault and checks its health. It returns nil
// when Vault is disabled.
func NewVaultClient(cfg VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !cfg.Enabled {
		logger.Debug("Vault integration disabled")
		return nil, nil
	}

	vaultConfig := api.DefaultConfig()
	if cfg.Address != "" {
		vaultConfig.Address = cfg.Address
	}
	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		logger.LogError(err, "Failed to connect to Vault", "address", vaultConfig.Address)
		return nil, fmt.Errorf("failed to connect to vault: %w", err)
	}
	logger.Info("Connected to Vault",
		"address", vaultConfig.Address,
		"version", health.Version,
		"sealed", health.Sealed)

	return &VaultClient{client: client, logger: logger}, nil
}

func resolveVaultToken(cfg VaultConfig) (string, error) {
	token := cfg.Token
	if token == "" && cfg.TokenFile != "" {
		raw, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(raw))
	}
	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// GetSecretV2 reads a secret from a KVv2 mount.
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}
	return parseKVv2(secret.Data, path)
}

func parseKVv2(raw map[string]any, path string) (*VaultSecret, error) {
	data, ok := raw["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	metadata, ok := raw["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	versionRaw, ok := metadata["version"]
	if !ok {
		return nil, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	}
	version, err := parseVersionValue(versionRaw, path)
	if err != nil {
		return nil, err
	}
	return &VaultSecret{Data: data, Version: version}, nil
}

// The Vault client decodes with UseNumber, so versions usually arrive as json.Number.
func parseVersionValue(versionRaw any, path string) (int64, error) {
	switch v := versionRaw.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case json.Number:
		version, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, versionRaw)
	}
}

// GetStringSecret returns the string stored under key at path.
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return "", err
	}
	value, err := stringField(secret, path, key)
	if err != nil {
		return "", err
	}
	vc.logger.Debug("String secret retrieved from Vault", "path", path, "key", key, "masked_value", maskValue(value))
	return value, nil
}

func stringField(secret *VaultSecret, path, key string) (string, error) {
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}
	return str, nil
}

// maskValue keeps the first and last four characters of long values.
func maskValue(value string) string {
	switch {
	case len(value) > 8:
		return value[:4] + "****" + value[len(value)-4:]
	case value != "":
		return "****"
	default:
		return ""
	}
}

// ApplyVaultSecrets loads the configured secrets from Vault into cfg.
// Values found in Vault replace whatever the file or environment provided.
func ApplyVaultSecrets(cfg *Config, logger *errors.Logger) error {
	if !cfg.Vault.Enabled {
		logger.Debug("Vault integration disabled, skipping secret loading")
		return nil
	}

	client, err := NewVaultClient(cfg.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}
	return applySecrets(client, cfg, logger)
}

// secretReader is satisfied by *VaultClient; tests substitute a map.
type secretReader interface {
	GetSecretV2(path string) (*VaultSecret, error)
}

func applySecrets(reader secretReader, cfg *Config, logger *errors.Logger) error {
	paths := cfg.Vault.Secrets
	steps := []struct {
		name  string
		path  string
		apply func(*Config, *VaultSecret, string) error
	}{
		{"API keys", paths.APIKeys, applyAPIKeys},
		{"Gemini API key", paths.GeminiKey, applyGeminiKey},
		{"Redis password", paths.Redis, applyRedisPassword},
		{"S3 credentials", paths.S3, applyS3Credentials},
		{"TLS certificates", paths.TLSCerts, applyTLSCerts},
	}

	for _, step := range steps {
		if step.path == "" {
			continue
		}
		secret, err := reader.GetSecretV2(step.path)
		if err != nil {
			logger.LogError(err, "Failed to load secret from Vault", "secret", step.name, "path", step.path)
			return fmt.Errorf("failed to load %s from vault: %w", step.name, err)
		}
		if err := step.apply(cfg, secret, step.path); err != nil {
			return fmt.Errorf("failed to apply %s from vault: %w", step.name, err)
		}
		logger.Info("Secret loaded from Vault", "secret", step.name, "path", step.path, "version", secret.Version)
	}
	return nil
}

func applyAPIKeys(cfg *Config, secret *VaultSecret, path string) error {
	raw, err := stringField(secret, path, "keys")
	if err != nil {
		return err
	}
	if keys := normalizeList(strings.Split(raw, ",")); len(keys) > 0 {
		cfg.Server.APIKeys = keys
	}
	return nil
}

func applyGeminiKey(cfg *Config, secret *VaultSecret, path string) error {
	key, err := stringField(secret, path, "api_key")
	if err != nil {
		return err
	}
	if key != "" {
		applyGeminiKeyToConfig(cfg, key)
	}
	return nil
}

// applyGeminiKeyToConfig sets the global key and fills operations that have none.
func applyGeminiKeyToConfig(cfg *Config, key string) {
	cfg.AI.APIKey = key
	for _, op := range Operations {
		slot, _ := cfg.operationSlot(op)
		if slot.APIKey == "" {
			slot.APIKey = key
		}
	}
}

func applyRedisPassword(cfg *Config, secret *VaultSecret, path string) error {
	password, err := stringField(secret, path, "password")
	if err != nil {
		return err
	}
	cfg.Session.Redis.Password = password
	return nil
}

func applyS3Credentials(cfg *Config, secret *VaultSecret, path string) error {
	id, err := stringField(secret, path, "access_key_id")
	if err != nil {
		return err
	}
	key, err := stringField(secret, path, "secret_access_key")
	if err != nil {
		return err
	}
	cfg.Storage.S3.AccessKeyID = id
	cfg.Storage.S3.SecretAccessKey = key
	return nil
}

// applyTLSCerts copies PEM content and clears the matching file setting so
// validation does not see two sources.
func applyTLSCerts(cfg *Config, secret *VaultSecret, path string) error {
	for _, legacy := range []string{"cert_file", "key_file", "ca_file"} {
		if _, ok := secret.Data[legacy]; ok {
			return fmt.Errorf("'%s' is not supported in %s; store PEM content under '%s'",
				legacy, path, strings.TrimSuffix(legacy, "_file"))
		}
	}

	tls := &cfg.Server.TLS
	targets := []struct {
		key     string
		content *string
		file    *string
	}{
		{"cert", &tls.CertContent, &tls.CertFile},
		{"key", &tls.KeyContent, &tls.KeyFile},
		{"ca", &tls.CAContent, &tls.CAFile},
	}
	for _, target := range targets {
		if content, ok := secret.Data[target.key].(string); ok && content != "" {
			*target.content = content
			*target.file = ""
		}
	}
	return nil
}
