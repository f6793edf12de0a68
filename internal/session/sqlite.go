package session

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Register modernc SQLite driver with database/sql.
	_ "modernc.org/sqlite"

	"atsmatch/internal/errors"
	"atsmatch/internal/types"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS sessions (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps the session in a local SQLite file so it survives
// between CLI invocations.
type SQLiteStore struct {
	db     *sql.DB
	key    string
	logger *errors.Logger
	now    func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(ctx context.Context, key, path string, logger *errors.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, storeError("open", fmt.Errorf("create directory %s: %w", dir, err))
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storeError("open", err)
	}
	// One writer at a time; sqlite serialises anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, storeError("open", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, storeError("open", fmt.Errorf("create schema: %w", err))
	}

	logger.Debug("SQLite session store ready", "path", path)
	return &SQLiteStore{db: db, key: key, logger: logger, now: time.Now}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*types.AnalysisSession, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM sessions WHERE key = ?", s.key).Scan(&payload)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeError("load", err)
	}
	session, err := decode(payload)
	if err != nil {
		s.logger.Warn("Discarding unreadable session payload", "key", s.key, "bytes", len(payload))
	}
	return session, err
}

func (s *SQLiteStore) Save(ctx context.Context, session types.AnalysisSession) error {
	payload, err := encode(session, s.now)
	if err != nil {
		return storeError("save", err)
	}
	return s.put(ctx, payload)
}

func (s *SQLiteStore) put(ctx context.Context, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		s.key, payload, s.now().UnixMilli())
	if err != nil {
		return storeError("save", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE key = ?", s.key); err != nil {
		return storeError("clear", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
