// Package session persists the last analysed resume/job-description pair
// under a single fixed key. Writes overwrite; the last write wins.
package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"atsmatch/internal/config"
	"atsmatch/internal/errors"
	"atsmatch/internal/types"
)

// ErrNotFound is returned by Load when there is no usable session.
var ErrNotFound = stderrors.New("analysis session not found")

// Store is a single-slot session store.
type Store interface {
	// Load returns ErrNotFound when the slot is empty, the stored payload
	// does not decode, or it has no resume text.
	Load(ctx context.Context) (*types.AnalysisSession, error)
	Save(ctx context.Context, s types.AnalysisSession) error
	Clear(ctx context.Context) error
	Close() error
}

// NewStore builds the backend selected by cfg.Backend.
func NewStore(ctx context.Context, cfg config.SessionConfig, logger *errors.Logger) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Invalid session configuration", err)
	}

	switch cfg.Backend {
	case "redis":
		return NewRedisStore(ctx, cfg.Key, cfg.Redis, logger)
	case "sqlite":
		return NewSQLiteStore(ctx, cfg.Key, cfg.SQLite.Path, logger)
	default:
		return NewMemoryStore(), nil
	}
}

// encode stamps UpdatedAt when unset.
func encode(s types.AnalysisSession, now func() time.Time) ([]byte, error) {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now().UTC()
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*types.AnalysisSession, error) {
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	var s types.AnalysisSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, ErrNotFound
	}
	if s.ResumeText == "" {
		return nil, ErrNotFound
	}
	return &s, nil
}

// Demo returns the built-in demo pair as a session record.
func Demo(resumeText, jobDescription string, now time.Time) types.AnalysisSession {
	return types.AnalysisSession{
		ResumeText:         resumeText,
		JobDescriptionText: jobDescription,
		Source:             types.SessionSourceDemo,
		UpdatedAt:          now.UTC(),
	}
}

func storeError(op string, err error) error {
	return errors.NewSessionError(errors.ErrCodeSessionStoreFailed,
		fmt.Sprintf("Session %s failed", op), err)
}

// NotFoundError wraps ErrNotFound in an AppError for surfaces that report codes.
func NotFoundError() error {
	return errors.NewSessionError(errors.ErrCodeSessionNotFound,
		"No saved analysis session", ErrNotFound)
}
