package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// Handler returns the routed API with every middleware applied.
func (s *Server) Handler() http.Handler {
	return s.Observability.HTTPMiddleware()(s.setupRoutes())
}

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// protected wraps handlers that need a key and count against the limiter.
	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return s.requestIDMiddleware(s.rateLimitMiddleware(s.authMiddleware(s.requestSizeLimitMiddleware(h))))
	}

	mux.HandleFunc("GET /health", s.requestIDMiddleware(s.healthHandler))
	mux.HandleFunc("GET /stats", s.requestIDMiddleware(s.statsHandler))
	// Without a dedicated port the scrape endpoint shares the API listener.
	if prom := s.AppConfig.Observability.Prometheus; prom.Port == "" {
		if h := s.Observability.PrometheusHandler(); h != nil {
			endpoint := prom.Endpoint
			if endpoint == "" {
				endpoint = "/metrics"
			}
			mux.Handle("GET "+endpoint, h)
		}
	}

	mux.HandleFunc("POST /keywords", protected(s.keywordsHandler()))
	mux.HandleFunc("POST /parse", protected(s.parseHandler()))
	mux.HandleFunc("POST /score", protected(s.scoreHandler()))
	mux.HandleFunc("POST /dashboard", protected(s.dashboardHandler()))
	mux.HandleFunc("POST /analyze", protected(s.analyzeHandler()))
	mux.HandleFunc("POST /cover-letter", protected(s.coverLetterHandler()))
	mux.HandleFunc("POST /rewrite", protected(s.rewriteHandler()))
	mux.HandleFunc("POST /interview", protected(s.interviewHandler()))
	mux.HandleFunc("POST /extract", s.requestIDMiddleware(s.rateLimitMiddleware(s.authMiddleware(s.extractHandler))))

	mux.HandleFunc("GET /session", protected(s.getSessionHandler))
	mux.HandleFunc("PUT /session", protected(s.putSessionHandler))
	mux.HandleFunc("DELETE /session", protected(s.deleteSessionHandler))
	mux.HandleFunc("POST /session/demo", protected(s.demoSessionHandler))

	return mux
}

// requestIDMiddleware propagates X-Correlation-ID or X-Request-ID, or
// assigns a fresh id, and echoes it on the response.
func (s *Server) requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Correlation-ID")
		if id == "" {
			id = r.Header.Get(requestIDHeader)
		}
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	}
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// authMiddleware provides API key authentication
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication if no API keys are configured
		if len(s.APIKeys) == 0 {
			next(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			s.writeError(w, r, http.StatusUnauthorized, "Missing API key",
				"X-API-Key header or Authorization Bearer token required", "UNAUTHORIZED")
			return
		}

		if !s.APIKeys[apiKey] {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"api_key_prefix", maskAPIKey(apiKey))
			s.writeError(w, r, http.StatusUnauthorized, "Invalid API key", "Unauthorized access", "UNAUTHORIZED")
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"api_key_prefix", maskAPIKey(apiKey))

		next(w, r)
	}
}

// requestSizeLimitMiddleware limits the size of JSON request bodies.
func (s *Server) requestSizeLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.MaxRequestSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
		}
		next(w, r)
	}
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
