package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"atsmatch/internal/config"
	atsErrors "atsmatch/internal/errors"
	"atsmatch/internal/watcher"
)

// configureTLS builds the listener TLS config for the configured mode. It
// returns nil when TLS is disabled.
func (s *Server) configureTLS() (*tls.Config, error) {
	switch s.TLSConfig.Mode {
	case "", "disabled":
		return nil, nil
	case "server", "mutual":
	default:
		return nil, fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", s.TLSConfig.Mode)
	}

	certs, err := newCertReloader(s.TLSConfig, s.Logger)
	if err != nil {
		return nil, err
	}

	tlsConfig, err := s.buildTLSConfig(certs)
	if err != nil {
		return nil, err
	}

	if err := certs.start(); err != nil {
		return nil, err
	}
	s.certs = certs
	return tlsConfig, nil
}

func (s *Server) buildTLSConfig(certs *certReloader) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: certs.getCertificate,
	}
	if s.TLSConfig.MinVersion == "1.3" {
		tlsConfig.MinVersion = tls.VersionTLS13
	}

	if s.TLSConfig.Mode != "mutual" {
		tlsConfig.ClientAuth = tls.NoClientCert
		return tlsConfig, nil
	}

	caCertPool, err := s.loadCACertificatePool()
	if err != nil {
		return nil, err
	}
	tlsConfig.ClientCAs = caCertPool
	tlsConfig.ClientAuth = s.getClientAuthPolicy()

	return tlsConfig, nil
}

func (s *Server) loadCACertificatePool() (*x509.CertPool, error) {
	caCert, err := s.loadCACertificate()
	if err != nil {
		return nil, err
	}

	caCertPool := x509.NewCertPool()
	if ok := caCertPool.AppendCertsFromPEM(caCert); !ok {
		return nil, fmt.Errorf("failed to append CA cert")
	}
	return caCertPool, nil
}

// loadCACertificate prefers PEM content (as delivered by Vault) over a file.
func (s *Server) loadCACertificate() ([]byte, error) {
	if s.TLSConfig.CAContent != "" {
		return []byte(s.TLSConfig.CAContent), nil
	}

	if s.TLSConfig.CAFile != "" {
		caCert, err := os.ReadFile(s.TLSConfig.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		return caCert, nil
	}

	return nil, fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
}

func (s *Server) getClientAuthPolicy() tls.ClientAuthType {
	switch s.TLSConfig.ClientAuthPolicy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}

// certReloader serves the current server certificate. File-based
// certificates are reloaded when the files change on disk.
type certReloader struct {
	cfg     config.TLSConfig
	logger  *atsErrors.Logger
	current atomic.Pointer[tls.Certificate]
	watcher *watcher.FileWatcher

	mu         sync.Mutex
	reloads    int
	failures   int
	lastReload time.Time
	lastError  string
}

func newCertReloader(cfg config.TLSConfig, logger *atsErrors.Logger) (*certReloader, error) {
	r := &certReloader{cfg: cfg, logger: logger}
	cert, err := r.load()
	if err != nil {
		return nil, err
	}
	r.current.Store(cert)
	return r, nil
}

func (r *certReloader) fromFiles() bool {
	return r.cfg.CertContent == "" || r.cfg.KeyContent == ""
}

func (r *certReloader) load() (*tls.Certificate, error) {
	if !r.fromFiles() {
		cert, err := tls.X509KeyPair([]byte(r.cfg.CertContent), []byte(r.cfg.KeyContent))
		if err != nil {
			return nil, fmt.Errorf("failed to load server cert/key from content: %w", err)
		}
		return &cert, nil
	}

	if r.cfg.CertFile == "" || r.cfg.KeyFile == "" {
		return nil, fmt.Errorf("TLS certificate and key are required (provide either files or content)")
	}
	cert, err := tls.LoadX509KeyPair(r.cfg.CertFile, r.cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load server cert/key from files: %w", err)
	}
	return &cert, nil
}

// start begins watching certificate files. Content certificates are static.
func (r *certReloader) start() error {
	if !r.fromFiles() {
		return nil
	}
	r.watcher = watcher.New([]string{r.cfg.CertFile, r.cfg.KeyFile}, 0, r.reload, r.logger)
	if err := r.watcher.Start(); err != nil {
		return fmt.Errorf("failed to watch TLS certificate files: %w", err)
	}
	return nil
}

func (r *certReloader) stop() error {
	if r == nil || r.watcher == nil {
		return nil
	}
	return r.watcher.Stop()
}

// reload swaps in the certificate from disk, keeping the old one on failure.
func (r *certReloader) reload() {
	cert, err := r.load()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastReload = time.Now()
	if err != nil {
		r.failures++
		r.lastError = err.Error()
		r.logger.LogError(err, "Failed to reload TLS certificates")
		return
	}
	r.reloads++
	r.lastError = ""
	r.current.Store(cert)
	r.logger.Info("TLS certificates reloaded", "cert_file", r.cfg.CertFile)
}

func (r *certReloader) getCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return r.current.Load(), nil
}

func (r *certReloader) status() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := map[string]any{
		"auto_reload":   r.watcher != nil && r.watcher.IsRunning(),
		"reload_count":  r.reloads,
		"failure_count": r.failures,
	}
	if !r.lastReload.IsZero() {
		status["last_reload"] = r.lastReload.UTC().Format(time.RFC3339)
	}
	if r.lastError != "" {
		status["last_error"] = r.lastError
	}
	if cert := r.current.Load(); cert != nil && cert.Leaf != nil {
		status["not_after"] = cert.Leaf.NotAfter.UTC().Format(time.RFC3339)
		status["time_to_expiry"] = time.Until(cert.Leaf.NotAfter).Round(time.Second).String()
	}
	return status
}
