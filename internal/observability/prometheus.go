package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"atsmatch/internal/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusConfig holds Prometheus-specific configuration
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
	Port     string // empty keeps the handler off the network; see Manager.PrometheusHandler
}

type prometheusEndpoint struct {
	cfg     PrometheusConfig
	reader  sdkmetric.Reader
	handler http.Handler
	server  *http.Server
}

// newPrometheusEndpoint registers an OTel exporter on a private registry so
// repeated managers in one process do not collide.
func newPrometheusEndpoint(cfg PrometheusConfig) (*prometheusEndpoint, error) {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "/metrics"
	}
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})

	mux := http.NewServeMux()
	mux.Handle(endpoint, handler)

	return &prometheusEndpoint{cfg: cfg, reader: exporter, handler: mux}, nil
}

// start serves the scrape endpoint on its own port in the background.
func (p *prometheusEndpoint) start(logger *errors.Logger) error {
	if p.cfg.Port == "" {
		return nil
	}

	p.server = &http.Server{
		Addr:              ":" + p.cfg.Port,
		Handler:           p.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Starting Prometheus metrics server",
		"address", p.server.Addr,
		"endpoint", p.cfg.Endpoint)

	go func() {
		if err := p.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.LogError(fmt.Errorf("prometheus server: %w", err), "Prometheus server stopped")
		}
	}()
	return nil
}

func (p *prometheusEndpoint) shutdown(ctx context.Context) error {
	if p.server == nil {
		return nil
	}
	return p.server.Shutdown(ctx)
}
