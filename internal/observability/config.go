package observability

import (
	"time"

	"atsmatch/internal/config"
)

const defaultCollectionInterval = 15 * time.Second

// Settings is the flattened view of config.ObservabilityConfig the manager
// works from.
type Settings struct {
	ServiceName        string
	ServiceVersion     string
	ServiceInstance    string
	Enabled            bool
	TracingEnabled     bool
	MetricsEnabled     bool
	ConsoleOutput      bool
	PrettyPrint        bool
	SampleRate         float64
	CollectionInterval time.Duration
	CustomMetrics      config.CustomMetricsConfig
	Prometheus         PrometheusConfig
	OTLP               config.OTLPConfig
}

// SettingsFromConfig derives Settings from cfg. version fills the service
// version when the config leaves it empty. A nil cfg yields a disabled setup.
func SettingsFromConfig(cfg *config.Config, version string) Settings {
	if cfg == nil {
		return Settings{
			ServiceName:    "atsmatch",
			ServiceVersion: version,
			SampleRate:     1.0,
		}
	}

	obs := cfg.Observability

	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	sampleRate := obs.SampleRate
	if obs.Tracing.SampleRate > 0 {
		sampleRate = obs.Tracing.SampleRate
	}

	interval := obs.Metrics.CollectionInterval
	if interval <= 0 {
		interval = defaultCollectionInterval
	}

	return Settings{
		ServiceName:        obs.ServiceName,
		ServiceVersion:     serviceVersion,
		ServiceInstance:    obs.ServiceInstance,
		Enabled:            obs.Enabled,
		TracingEnabled:     obs.Tracing.Enabled,
		MetricsEnabled:     obs.Metrics.Enabled,
		ConsoleOutput:      obs.ConsoleOutput,
		PrettyPrint:        obs.Console.PrettyPrint,
		SampleRate:         sampleRate,
		CollectionInterval: interval,
		CustomMetrics:      obs.CustomMetrics,
		Prometheus: PrometheusConfig{
			Enabled:  obs.Prometheus.Enabled,
			Endpoint: obs.Prometheus.Endpoint,
			Port:     obs.Prometheus.Port,
		},
		OTLP: obs.OTLP,
	}
}
