// Package sqlite provides SQLite-based storage implementation.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Storage implements the storage.Store interface using SQLite
type Storage struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// New creates a new SQLite storage instance
func New(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings for better concurrency
	db.SetMaxOpenConns(1) // SQLite works best with single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	storage := &Storage{db: db}

	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return storage, nil
}

// createSchema creates the database schema
func (s *Storage) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS credentials (
		id              TEXT PRIMARY KEY,
		owner_id        TEXT NOT NULL,
		secret_digest   TEXT NOT NULL UNIQUE,
		key_prefix      TEXT NOT NULL,
		scopes          TEXT NOT NULL,
		plan_tier       TEXT NOT NULL,
		rate_limit      INTEGER NOT NULL DEFAULT 0,
		status          TEXT NOT NULL DEFAULT 'active',
		created_at      DATETIME NOT NULL,
		expires_at      DATETIME NOT NULL,
		last_used_at    DATETIME,
		last_rotated_at DATETIME,
		revoked_at      DATETIME,
		revoked_reason  TEXT,
		usage_count     INTEGER NOT NULL DEFAULT 0,
		rotation_count  INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_credentials_owner ON credentials(owner_id);
	CREATE INDEX IF NOT EXISTS idx_credentials_status ON credentials(status);

	CREATE TABLE IF NOT EXISTS rate_windows (
		credential_id TEXT PRIMARY KEY,
		window_start  INTEGER NOT NULL,
		window_end    INTEGER NOT NULL,
		count         INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (credential_id) REFERENCES credentials(id)
	);

	CREATE TABLE IF NOT EXISTS usage_rollups (
		credential_id   TEXT NOT NULL,
		date            TEXT NOT NULL,
		hour            INTEGER NOT NULL,
		request_count   INTEGER NOT NULL DEFAULT 0,
		error_count     INTEGER NOT NULL DEFAULT 0,
		throttled_count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (credential_id, date, hour),
		FOREIGN KEY (credential_id) REFERENCES credentials(id)
	);

	CREATE INDEX IF NOT EXISTS idx_usage_date ON usage_rollups(date);

	CREATE TABLE IF NOT EXISTS request_logs (
		id            TEXT PRIMARY KEY,
		credential_id TEXT,
		endpoint      TEXT NOT NULL,
		status_code   INTEGER,
		duration_ms   INTEGER,
		created_at    DATETIME NOT NULL,
		FOREIGN KEY (credential_id) REFERENCES credentials(id)
	);

	CREATE INDEX IF NOT EXISTS idx_logs_credential ON request_logs(credential_id);
	CREATE INDEX IF NOT EXISTS idx_logs_created ON request_logs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// isDigestConflict reports whether err is a unique violation on the
// secret_digest column.
func isDigestConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "credentials.secret_digest")
}
