package sqlite

import (
	"database/sql"
	"encoding/json"

	"github.com/altalabs/keywarden/internal/storage/models"
)

const credentialColumns = `id, owner_id, secret_digest, key_prefix, scopes, plan_tier,
	rate_limit, status, created_at, expires_at, last_used_at, last_rotated_at,
	revoked_at, revoked_reason, usage_count, rotation_count`

// GetCredential retrieves a credential by ID
func (s *Storage) GetCredential(id string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	row := s.db.QueryRow(`SELECT `+credentialColumns+` FROM credentials WHERE id = ?`, id)
	return scanCredential(row)
}

// GetCredentialByDigest retrieves the credential whose current secret digest
// matches. At most one row can match (unique index on secret_digest).
func (s *Storage) GetCredentialByDigest(digest string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	row := s.db.QueryRow(`SELECT `+credentialColumns+` FROM credentials WHERE secret_digest = ?`, digest)
	return scanCredential(row)
}

// ListCredentialsByOwner returns all credentials for a tenant, newest first
func (s *Storage) ListCredentialsByOwner(ownerID string) ([]*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	rows, err := s.db.Query(`
		SELECT `+credentialColumns+`
		FROM credentials WHERE owner_id = ? ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creds []*models.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, cred)
	}

	return creds, rows.Err()
}

// CountCredentials returns the total number of credential records.
func (s *Storage) CountCredentials() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStorageClosed
	}

	var n int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM credentials`).Scan(&n)
	return n, err
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*models.Credential, error) {
	var cred models.Credential
	var scopesJSON string
	var lastUsedAt, lastRotatedAt, revokedAt sql.NullTime
	var revokedReason sql.NullString

	err := row.Scan(
		&cred.ID, &cred.OwnerID, &cred.SecretDigest, &cred.KeyPrefix, &scopesJSON,
		&cred.PlanTier, &cred.RateLimit, &cred.Status, &cred.CreatedAt, &cred.ExpiresAt,
		&lastUsedAt, &lastRotatedAt, &revokedAt, &revokedReason,
		&cred.UsageCount, &cred.RotationCount,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(scopesJSON), &cred.Scopes); err != nil {
		return nil, err
	}

	if lastUsedAt.Valid {
		cred.LastUsedAt = &lastUsedAt.Time
	}
	if lastRotatedAt.Valid {
		cred.LastRotatedAt = &lastRotatedAt.Time
	}
	if revokedAt.Valid {
		cred.RevokedAt = &revokedAt.Time
	}
	if revokedReason.Valid {
		cred.RevokedReason = revokedReason.String
	}

	return &cred, nil
}
