package sqlite

import (
	"database/sql"
	"time"

	"github.com/altalabs/keywarden/internal/storage/models"
)

// ReserveQuota performs the check-and-increment for one request against the
// credential's current rate window, atomically. The window row is created on
// first use and rolled forward when a new window has started; the count is
// only incremented while it is below the limit, so concurrent callers can
// never over-admit past the quota and rejected requests consume nothing.
//
// Returns the admitted count after this call and whether the request was
// admitted.
func (s *Storage) ReserveQuota(credentialID string, windowStart, windowEnd time.Time, limit int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, false, ErrStorageClosed
	}
	if limit <= 0 {
		return 0, false, ErrInvalidInput
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	// Open the window on first use, or reset it once the previous window has
	// elapsed. An unexpired window is left untouched.
	_, err = tx.Exec(`
		INSERT INTO rate_windows (credential_id, window_start, window_end, count)
		VALUES (?, ?, ?, 0)
		ON CONFLICT(credential_id) DO UPDATE SET
			window_start = excluded.window_start,
			window_end   = excluded.window_end,
			count        = 0
		WHERE excluded.window_start >= rate_windows.window_end
	`, credentialID, windowStart.Unix(), windowEnd.Unix())
	if err != nil {
		return 0, false, err
	}

	// Conditional increment: only counts while below the limit.
	result, err := tx.Exec(`
		UPDATE rate_windows SET count = count + 1
		WHERE credential_id = ? AND count < ?
	`, credentialID, limit)
	if err != nil {
		return 0, false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	admitted := rows == 1

	var count int
	if err := tx.QueryRow(`SELECT count FROM rate_windows WHERE credential_id = ?`, credentialID).Scan(&count); err != nil {
		return 0, false, err
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}

	return count, admitted, nil
}

// GetRateWindow returns the current window row for a credential, or
// ErrNotFound if the credential has never been checked.
func (s *Storage) GetRateWindow(credentialID string) (*models.RateWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	var w models.RateWindow
	var start, end int64
	err := s.db.QueryRow(`
		SELECT credential_id, window_start, window_end, count
		FROM rate_windows WHERE credential_id = ?
	`, credentialID).Scan(&w.CredentialID, &start, &end, &w.Count)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	w.WindowStart = time.Unix(start, 0).UTC()
	w.WindowEnd = time.Unix(end, 0).UTC()
	return &w, nil
}
