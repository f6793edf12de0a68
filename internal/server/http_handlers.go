package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"atsmatch/internal/ai"
	"atsmatch/internal/config"
	atsErrors "atsmatch/internal/errors"
)

const defaultModelCheckTimeout = 10 * time.Second

// healthHandler reports service health including AI model availability.
// An operation without an API key is reported but does not degrade health,
// since the deterministic endpoints still work.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	aiStatus, healthy := s.checkAIModelsHealth(r.Context())

	response := map[string]any{
		"status":           "healthy",
		"service":          "atsmatch",
		"version":          s.Version,
		"ai_models":        aiStatus,
		"circuit_breakers": s.AI.Stats(),
		"session_backend":  s.AppConfig.Session.Backend,
	}
	if s.certs != nil {
		response["certificates"] = s.certs.status()
	}

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, response)
}

// checkAIModelsHealth asks every configured AI operation for its model info.
func (s *Server) checkAIModelsHealth(ctx context.Context) (map[string]any, bool) {
	timeout := s.AppConfig.AI.ModelCheckTimeout
	if timeout <= 0 {
		timeout = defaultModelCheckTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	healthy := true
	aiStatus := make(map[string]any, len(config.Operations))
	for _, op := range config.Operations {
		svc, err := s.AI.Get(op)
		if err != nil {
			aiStatus[op] = &ai.ModelInfo{Available: false, Error: err.Error()}
			if !atsErrors.HasCode(err, atsErrors.ErrCodeMissingAPIKey) {
				healthy = false
			}
			continue
		}
		info := svc.GetModelInfo(ctx)
		if info != nil && !info.Available {
			healthy = false
		}
		aiStatus[op] = info
	}
	return aiStatus, healthy
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "atsmatch",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"max_upload_bytes":       s.MaxUploadBytes,
			"api_keys_configured":    len(s.APIKeys),
		},
		"cache":            s.cache.stats(),
		"circuit_breakers": s.AI.Stats(),
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"window":           s.RateLimit.Window.String(),
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	s.writeJSON(w, http.StatusOK, response)
}

// decodeRequest parses a JSON body into v and validates it.
func (s *Server) decodeRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return atsErrors.NewValidationError(atsErrors.ErrCodeInvalidRequest, "content-type must be application/json", err)
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return atsErrors.NewValidationError(atsErrors.ErrCodeFileTooLarge,
				fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return atsErrors.NewValidationError(atsErrors.ErrCodeInvalidRequest, "failed to parse JSON: "+err.Error(), err)
	}

	return s.validateRequest(v)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.LogError(err, "Failed to encode response")
	}
}

// writeError writes a standardized error response
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, title, message, code string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:     title,
		Message:   message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

// writeAppError maps err onto an HTTP status and writes it. Internal
// details are logged, not returned.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	logger := s.Logger.With("request_id", requestIDFromContext(r.Context()), "endpoint", r.URL.Path)

	appErr, ok := atsErrors.AsAppError(err)
	if !ok || status == http.StatusInternalServerError {
		logger.LogError(err, "Request failed")
		s.writeError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), "internal error", "")
		return
	}

	if status >= http.StatusInternalServerError {
		logger.LogError(err, "Request failed")
	} else {
		logger.Debug("Request rejected", "code", appErr.Code, "error", appErr.Message)
	}
	s.writeError(w, r, status, http.StatusText(status), appErr.Message, appErr.Code)
}

func statusForError(err error) int {
	appErr, ok := atsErrors.AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch appErr.Code {
	case atsErrors.ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case atsErrors.ErrCodeUnsupportedFileType:
		return http.StatusUnsupportedMediaType
	case atsErrors.ErrCodeExtractionFailed, atsErrors.ErrCodeEmptyDocument:
		return http.StatusUnprocessableEntity
	case atsErrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case atsErrors.ErrCodeMissingAPIKey:
		return http.StatusServiceUnavailable
	case atsErrors.ErrCodeAITimeout, atsErrors.ErrCodeNetworkTimeout:
		return http.StatusGatewayTimeout
	}

	switch appErr.Type {
	case atsErrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case atsErrors.ErrorTypeAI, atsErrors.ErrorTypeNetwork:
		return http.StatusBadGateway
	case atsErrors.ErrorTypeExtraction:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
