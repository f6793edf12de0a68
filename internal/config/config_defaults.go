package config

import (
	"time"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	setAppDefaults(v)
	setAIDefaults(v)
	setServerDefaults(v)
	setVaultDefaults(v)
	setObservabilityDefaults(v)
}

func setAppDefaults(v *viper.Viper) {
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 5*1024*1024)

	v.SetDefault("analysis.keywordLimit", 18)
	v.SetDefault("analysis.keywordProfile", "extraction")

	v.SetDefault("extraction.allowedTypes", []string{
		"application/pdf",
		"text/plain",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	})
	v.SetDefault("extraction.maxBytes", 10*1024*1024)

	v.SetDefault("session.backend", "sqlite")
	v.SetDefault("session.key", "atsmatch-analysis-session")
	v.SetDefault("session.redis.addr", "localhost:6379")
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("session.redis.ttl", time.Duration(0))
	v.SetDefault("session.sqlite.path", "atsmatch-session.db")

	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.accessKeyId", "")
	v.SetDefault("storage.s3.secretAccessKey", "")
	v.SetDefault("storage.s3.usePathStyle", false)
}

func setAIDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.useSystemPrompts", true)
	v.SetDefault("ai.modelCheckTimeout", 10*time.Second)

	// Rewrites stay close to the source text; cover letters get more latitude.
	opDefaults := map[string]struct {
		timeout     time.Duration
		retries     int
		temperature float64
	}{
		OperationRewrite:     {90 * time.Second, 2, 0.3},
		OperationInterview:   {60 * time.Second, 3, 0.5},
		OperationCoverLetter: {75 * time.Second, 2, 0.7},
	}
	for op, d := range opDefaults {
		prefix := "ai." + op + "."
		v.SetDefault(prefix+"timeout", d.timeout)
		v.SetDefault(prefix+"maxRetries", d.retries)
		v.SetDefault(prefix+"temperature", d.temperature)

		v.SetDefault(prefix+"circuitBreaker.enabled", true)
		v.SetDefault(prefix+"circuitBreaker.maxRequests", 3)
		v.SetDefault(prefix+"circuitBreaker.interval", 60*time.Second)
		v.SetDefault(prefix+"circuitBreaker.timeout", 60*time.Second)
		v.SetDefault(prefix+"circuitBreaker.minRequests", 3)
		v.SetDefault(prefix+"circuitBreaker.failureThreshold", 0.6)
	}
}

func setServerDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.cacheSize", 256)
	v.SetDefault("server.maxUploadBytes", 10*1024*1024)

	v.SetDefault("server.tls.mode", "disabled")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.clientAuthPolicy", "require")

	v.SetDefault("server.apiKeys", []string{})

	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)
}

func setVaultDefaults(v *viper.Viper) {
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.secrets.redis", "")
	v.SetDefault("vault.secrets.s3", "")
	v.SetDefault("vault.secrets.tlsCerts", "")
}

func setObservabilityDefaults(v *viper.Viper) {
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "atsmatch")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.analysis.enabled", true)
	v.SetDefault("observability.customMetrics.analysis.trackScores", true)
	v.SetDefault("observability.customMetrics.analysis.trackContentSizes", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackCacheHits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackSessionOps", true)

	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
