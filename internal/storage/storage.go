// Package storage provides the storage interface and implementations.
package storage

import (
	"time"

	"github.com/altalabs/keywarden/internal/storage/models"
	"github.com/altalabs/keywarden/internal/storage/sqlite"
)

// Re-export types from models package for convenience
type (
	Credential        = models.Credential
	CredentialSummary = models.CredentialSummary
	RateWindow        = models.RateWindow
	UsageDelta        = models.UsageDelta
	UsageStats        = models.UsageStats
	RequestLog        = models.RequestLog
	LogFilter         = models.LogFilter
)

// Re-export errors from sqlite package
var (
	ErrNotFound        = sqlite.ErrNotFound
	ErrDuplicateDigest = sqlite.ErrDuplicateDigest
	ErrInvalidInput    = sqlite.ErrInvalidInput
	ErrStorageClosed   = sqlite.ErrStorageClosed
)

// Store defines the interface for persistent credential data. It is the
// single source of truth; every per-credential mutation is serialized by the
// implementation (conditional UPDATEs under a single writer), so callers get
// linearizable rotate/revoke/quota semantics without holding locks here.
type Store interface {
	// Credential operations. Records are never deleted; revoked and expired
	// rows are retained for audit.
	CreateCredential(cred *models.Credential) error
	GetCredential(id string) (*models.Credential, error)
	GetCredentialByDigest(digest string) (*models.Credential, error)
	ListCredentialsByOwner(ownerID string) ([]*models.Credential, error)
	CountCredentials() (int64, error)

	// Per-credential conditional writes
	ReplaceSecretDigest(id, newDigest, newPrefix string, at time.Time) error
	MarkRevoked(id, reason string, at time.Time) error
	MarkExpired(id string) error
	SetRateLimit(id string, limit int) (old int, err error)
	TouchLastUsed(id string, at time.Time) error

	// Rate window operations
	ReserveQuota(credentialID string, windowStart, windowEnd time.Time, limit int) (count int, admitted bool, err error)
	GetRateWindow(credentialID string) (*models.RateWindow, error)

	// Usage accounting
	RecordUsage(delta *models.UsageDelta) error
	GetUsageStats(credentialID, date string, hour int) (*models.UsageStats, error)
	LogRequest(log *models.RequestLog) error
	GetRequestLogs(filter models.LogFilter) ([]*models.RequestLog, error)

	// Maintenance operations
	Close() error
}

// NewSQLiteStore creates a new SQLite storage instance
// This is the main factory function for creating storage
func NewSQLiteStore(dbPath string) (Store, error) {
	return sqlite.New(dbPath)
}
