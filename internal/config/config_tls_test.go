package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTLSMode(t *testing.T) {
	tests := []struct {
		name     string
		tls      TLSConfig
		errorMsg string
	}{
		{name: "disabled mode", tls: TLSConfig{Mode: "disabled"}},
		{
			name: "server mode with files",
			tls:  TLSConfig{Mode: "server", CertFile: "/path/to/cert.pem", KeyFile: "/path/to/key.pem"},
		},
		{
			name: "server mode with content",
			tls:  TLSConfig{Mode: "server", CertContent: "cert", KeyContent: "key"},
		},
		{
			name: "mutual mode valid",
			tls: TLSConfig{
				Mode:     "mutual",
				CertFile: "/path/to/cert.pem",
				KeyFile:  "/path/to/key.pem",
				CAFile:   "/path/to/ca.pem",
			},
		},
		{
			name:     "server mode missing key",
			tls:      TLSConfig{Mode: "server", CertFile: "/path/to/cert.pem"},
			errorMsg: "TLS certificate and key are required for server mode",
		},
		{
			name: "duplicate certificate sources",
			tls: TLSConfig{
				Mode:        "server",
				CertFile:    "/path/to/cert.pem",
				CertContent: "cert",
				KeyFile:     "/path/to/key.pem",
			},
			errorMsg: "cannot specify both certFile and certContent - choose one",
		},
		{
			name: "duplicate key sources",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   "/path/to/cert.pem",
				KeyFile:    "/path/to/key.pem",
				KeyContent: "key",
			},
			errorMsg: "cannot specify both keyFile and keyContent - choose one",
		},
		{
			name:     "mutual mode missing CA",
			tls:      TLSConfig{Mode: "mutual", CertContent: "cert", KeyContent: "key"},
			errorMsg: "CA certificate is required for mutual TLS mode (provide either caFile or caContent)",
		},
		{
			name: "mutual mode duplicate CA",
			tls: TLSConfig{
				Mode:        "mutual",
				CertContent: "cert",
				KeyContent:  "key",
				CAFile:      "/path/to/ca.pem",
				CAContent:   "ca",
			},
			errorMsg: "cannot specify both caFile and caContent - choose one",
		},
		{
			name: "mutual mode bad client auth policy",
			tls: TLSConfig{
				Mode:             "mutual",
				CertContent:      "cert",
				KeyContent:       "key",
				CAContent:        "ca",
				ClientAuthPolicy: "optional",
			},
			errorMsg: "invalid clientAuthPolicy: optional",
		},
		{name: "invalid mode", tls: TLSConfig{Mode: "invalid"}, errorMsg: "invalid TLS mode: invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTLSMode(tt.tls)
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestValidateClientAuthPolicy(t *testing.T) {
	for _, policy := range []string{"", "require", "request", "verify"} {
		assert.NoError(t, validateClientAuthPolicy(TLSConfig{ClientAuthPolicy: policy}), policy)
	}
	assert.Error(t, validateClientAuthPolicy(TLSConfig{ClientAuthPolicy: "none"}))
}

func TestValidateTLSVersion(t *testing.T) {
	for _, version := range []string{"", "1.2", "1.3"} {
		assert.NoError(t, validateTLSVersion(TLSConfig{MinVersion: version}), version)
	}
	for _, version := range []string{"1.0", "1.1", "tls13"} {
		err := validateTLSVersion(TLSConfig{MinVersion: version})
		assert.Error(t, err, version)
		assert.Contains(t, err.Error(), "invalid TLS minVersion: "+version)
	}
}

func TestValidateTLSConfigIntegration(t *testing.T) {
	tests := []struct {
		name     string
		tls      TLSConfig
		errorMsg string
	}{
		{
			name: "complete valid mutual config",
			tls: TLSConfig{
				Mode:             "mutual",
				CertContent:      "cert-content",
				KeyContent:       "key-content",
				CAContent:        "ca-content",
				ClientAuthPolicy: "require",
				MinVersion:       "1.3",
			},
		},
		{
			name: "valid mode with invalid version",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   "/path/to/cert.pem",
				KeyFile:    "/path/to/key.pem",
				MinVersion: "1.0",
			},
			errorMsg: "invalid TLS minVersion: 1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Server: ServerConfig{TLS: tt.tls}}
			err := cfg.ValidateTLSConfig()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}
