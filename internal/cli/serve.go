package cli

import (
	"context"
	"fmt"
	"time"

	"atsmatch/internal/ai"
	"atsmatch/internal/config"
	"atsmatch/internal/observability"
	"atsmatch/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server exposing the analysis, AI and session operations.

Available endpoints:
- POST /keywords, /parse, /score, /dashboard, /analyze: deterministic analysis
- POST /cover-letter: template or AI cover letter
- POST /rewrite, /interview: AI suggestions
- POST /extract: text from an uploaded txt, pdf or docx file
- GET|PUT|DELETE /session, POST /session/demo: saved resume/JD pair
- GET /health, /stats

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates (reloaded on change)
- Use --ca-file for mutual TLS client certificate verification`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
}

// applyServeFlags copies explicitly set flags over the loaded configuration.
func applyServeFlags(cmd *cobra.Command, cfg *config.ServerConfig) {
	overrides := []struct {
		flag   string
		target *string
	}{
		{"port", &cfg.Port},
		{"host", &cfg.Host},
		{"tls-mode", &cfg.TLS.Mode},
		{"cert-file", &cfg.TLS.CertFile},
		{"key-file", &cfg.TLS.KeyFile},
		{"ca-file", &cfg.TLS.CAFile},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.target, _ = cmd.Flags().GetString(o.flag)
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	applyServeFlags(cmd, &cfg.Server)
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	om, err := observability.NewManager(observability.SettingsFromConfig(cfg, Version), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	store, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	services := ai.NewServices(cfg, logger)
	defer func() { _ = services.Close() }()

	srv, err := server.NewServer(cfg, server.ServerConfigFromApp(cfg, Version), server.Dependencies{
		AI:            services,
		Sessions:      store,
		Observability: om,
	}, logger)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}
