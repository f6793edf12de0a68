package observability

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"atsmatch/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Manager owns the tracer and meter providers and the application metrics.
type Manager struct {
	settings       Settings
	logger         *errors.Logger
	resource       *resource.Resource
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	prometheus     *prometheusEndpoint
	shutdownFuncs  []func(context.Context) error
}

// NewManager wires OpenTelemetry according to settings. A disabled setup
// returns a manager whose tracer is a no-op and whose metrics are nil.
func NewManager(settings Settings, logger *errors.Logger) (*Manager, error) {
	m := &Manager{settings: settings, logger: logger}
	if !settings.Enabled {
		return m, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(settings.ServiceName),
			semconv.ServiceVersion(settings.ServiceVersion),
			attribute.String("service.instance.id", m.serviceInstanceID()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	m.resource = res

	if settings.TracingEnabled {
		if err := m.initTracing(); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if settings.MetricsEnabled {
		if err := m.initMetrics(); err != nil {
			_ = m.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	return m, nil
}

func (m *Manager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case m.settings.ConsoleOutput:
		opts := []stdouttrace.Option{}
		if m.settings.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case m.settings.OTLP.Enabled:
		exporter, err = m.createOTLPTraceExporter()
	default:
		exporter = noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(m.resource),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(m.settings.SampleRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	m.tracerProvider = tp
	m.shutdownFuncs = append(m.shutdownFuncs, tp.Shutdown)
	return nil
}

func (m *Manager) initMetrics() error {
	var readers []sdkmetric.Reader

	if m.settings.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(m.settings.CollectionInterval)))
	}

	if m.settings.OTLP.Enabled {
		reader, err := m.createOTLPMetricsReader()
		if err != nil {
			return fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	if m.settings.Prometheus.Enabled {
		endpoint, err := newPrometheusEndpoint(m.settings.Prometheus)
		if err != nil {
			return fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		readers = append(readers, endpoint.reader)
		m.prometheus = endpoint
		if err := endpoint.start(m.logger); err != nil {
			return err
		}
		m.shutdownFuncs = append(m.shutdownFuncs, endpoint.shutdown)
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(m.resource)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	mp := sdkmetric.NewMeterProvider(opts...)

	otel.SetMeterProvider(mp)
	m.meterProvider = mp
	m.shutdownFuncs = append(m.shutdownFuncs, mp.Shutdown)

	metrics, err := newMetrics(mp.Meter(m.settings.ServiceName), m.settings.CustomMetrics)
	if err != nil {
		return err
	}
	m.metrics = metrics
	return nil
}

// Metrics returns the application metrics. It is nil when metrics are
// disabled; every Metrics method accepts a nil receiver.
func (m *Manager) Metrics() *Metrics {
	if m == nil {
		return nil
	}
	return m.metrics
}

// PrometheusHandler serves the scrape endpoint, or nil when Prometheus is off.
func (m *Manager) PrometheusHandler() http.Handler {
	if m == nil || m.prometheus == nil {
		return nil
	}
	return m.prometheus.handler
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (m *Manager) HTTPMiddleware() func(http.Handler) http.Handler {
	if m == nil || !m.settings.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	opts := []otelhttp.Option{}
	if m.tracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(m.tracerProvider))
	}
	if m.meterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(m.meterProvider))
	}
	return otelhttp.NewMiddleware(m.settings.ServiceName, opts...)
}

// Tracer returns a tracer for the service
func (m *Manager) Tracer(name string) oteltrace.Tracer {
	if m == nil || m.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return m.tracerProvider.Tracer(name)
}

// Shutdown flushes and stops every provider, newest first.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	var errs []error
	for i := len(m.shutdownFuncs) - 1; i >= 0; i-- {
		if err := m.shutdownFuncs[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	m.shutdownFuncs = nil
	return stderrors.Join(errs...)
}

type noOpSpanExporter struct{}

func (noOpSpanExporter) ExportSpans(context.Context, []trace.ReadOnlySpan) error { return nil }

func (noOpSpanExporter) Shutdown(context.Context) error { return nil }

func (m *Manager) createOTLPTraceExporter() (trace.SpanExporter, error) {
	otlpConfig := m.settings.OTLP

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(otlpConfig.Endpoint)}
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

func (m *Manager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlpConfig := m.settings.OTLP

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint)}
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(m.settings.CollectionInterval)), nil
}

func (m *Manager) serviceInstanceID() string {
	if m.settings.ServiceInstance != "" {
		return m.settings.ServiceInstance
	}
	return m.settings.ServiceName + "-1"
}
