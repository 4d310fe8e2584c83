package sqlite

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/altalabs/keywarden/internal/storage/models"
)

// CreateCredential persists a new credential record. A unique violation on
// the secret digest returns ErrDuplicateDigest; the caller must regenerate
// rather than overwrite.
func (s *Storage) CreateCredential(cred *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	if cred.OwnerID == "" || cred.SecretDigest == "" {
		return ErrInvalidInput
	}

	scopesJSON, err := json.Marshal(cred.Scopes)
	if err != nil {
		return err
	}

	if cred.ID == "" {
		cred.ID = uuid.New().String()
	}
	if cred.Status == "" {
		cred.Status = models.StatusActive
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now()
	}

	_, err = s.db.Exec(`
		INSERT INTO credentials (id, owner_id, secret_digest, key_prefix, scopes, plan_tier,
			rate_limit, status, created_at, expires_at, usage_count, rotation_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0)
	`, cred.ID, cred.OwnerID, cred.SecretDigest, cred.KeyPrefix, string(scopesJSON),
		cred.PlanTier, cred.RateLimit, cred.Status, cred.CreatedAt, cred.ExpiresAt)

	if isDigestConflict(err) {
		return ErrDuplicateDigest
	}
	return err
}

// ReplaceSecretDigest atomically swaps the credential's digest. The previous
// digest stops resolving the instant this statement commits.
func (s *Storage) ReplaceSecretDigest(id, newDigest, newPrefix string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	result, err := s.db.Exec(`
		UPDATE credentials
		SET secret_digest = ?, key_prefix = ?, rotation_count = rotation_count + 1, last_rotated_at = ?
		WHERE id = ?
	`, newDigest, newPrefix, at, id)
	if isDigestConflict(err) {
		return ErrDuplicateDigest
	}
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkRevoked moves a credential to the terminal revoked state. Revoking a
// credential that is already terminal is a no-op success.
func (s *Storage) MarkRevoked(id, reason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	result, err := s.db.Exec(`
		UPDATE credentials SET status = ?, revoked_at = ?, revoked_reason = ?
		WHERE id = ? AND status = ?
	`, models.StatusRevoked, at, reason, id, models.StatusActive)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	// Nothing transitioned: either the id is unknown or the credential is
	// already in a terminal state.
	var status string
	err = s.db.QueryRow(`SELECT status FROM credentials WHERE id = ?`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}

// MarkExpired stamps the terminal expired status. Only active credentials
// transition; terminal states are left untouched.
func (s *Storage) MarkExpired(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	_, err := s.db.Exec(`
		UPDATE credentials SET status = ? WHERE id = ? AND status = ?
	`, models.StatusExpired, id, models.StatusActive)
	return err
}

// SetRateLimit overrides the per-credential quota and returns the previous value.
func (s *Storage) SetRateLimit(id string, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStorageClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var old int
	err = tx.QueryRow(`SELECT rate_limit FROM credentials WHERE id = ?`, id).Scan(&old)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(`UPDATE credentials SET rate_limit = ? WHERE id = ?`, limit, id); err != nil {
		return 0, err
	}

	return old, tx.Commit()
}

// TouchLastUsed increments the usage counter and stamps last_used_at. Called
// only for admitted, permission-valid requests.
func (s *Storage) TouchLastUsed(id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	_, err := s.db.Exec(`
		UPDATE credentials SET usage_count = usage_count + 1, last_used_at = ? WHERE id = ?
	`, at, id)
	return err
}
