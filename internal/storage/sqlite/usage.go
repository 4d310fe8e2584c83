package sqlite

import (
	"fmt"

	"github.com/altalabs/keywarden/internal/storage/models"
)

// RecordUsage upserts one hourly rollup increment
func (s *Storage) RecordUsage(delta *models.UsageDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	if delta.CredentialID == "" || delta.Date == "" {
		return ErrInvalidInput
	}

	_, err := s.db.Exec(`
		INSERT INTO usage_rollups (credential_id, date, hour, request_count, error_count, throttled_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(credential_id, date, hour) DO UPDATE SET
			request_count   = request_count + excluded.request_count,
			error_count     = error_count + excluded.error_count,
			throttled_count = throttled_count + excluded.throttled_count
	`, delta.CredentialID, delta.Date, delta.Hour,
		delta.Requests, delta.Errors, delta.Throttled)

	return err
}

// GetUsageStats aggregates the rollups for one credential. date and hour
// identify the current bucket ("2006-01-02", 0-23); the month is derived
// from the date.
func (s *Storage) GetUsageStats(credentialID, date string, hour int) (*models.UsageStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	stats := &models.UsageStats{CredentialID: credentialID}

	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(request_count), 0),
			COALESCE(SUM(error_count), 0),
			COALESCE(SUM(throttled_count), 0)
		FROM usage_rollups WHERE credential_id = ?
	`, credentialID).Scan(&stats.TotalRequests, &stats.ErrorCount, &stats.ThrottledCount)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(`
		SELECT COALESCE(SUM(request_count), 0) FROM usage_rollups
		WHERE credential_id = ? AND date = ? AND hour = ?
	`, credentialID, date, hour).Scan(&stats.HourlyRequests)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(`
		SELECT COALESCE(SUM(request_count), 0) FROM usage_rollups
		WHERE credential_id = ? AND date = ?
	`, credentialID, date).Scan(&stats.DailyRequests)
	if err != nil {
		return nil, err
	}

	month := date
	if len(date) >= 7 {
		month = date[:7]
	}
	err = s.db.QueryRow(`
		SELECT COALESCE(SUM(request_count), 0) FROM usage_rollups
		WHERE credential_id = ? AND substr(date, 1, 7) = ?
	`, credentialID, month).Scan(&stats.MonthlyRequests)
	if err != nil {
		return nil, err
	}

	if total := stats.TotalRequests + stats.ErrorCount; total > 0 {
		stats.SuccessRate = float64(stats.TotalRequests) / float64(total)
	}

	return stats, nil
}

// LogRequest records one request-level audit entry
func (s *Storage) LogRequest(log *models.RequestLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	if log.ID == "" {
		return fmt.Errorf("%w: log id required", ErrInvalidInput)
	}

	_, err := s.db.Exec(`
		INSERT INTO request_logs (id, credential_id, endpoint, status_code, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, log.ID, nullIfEmpty(log.CredentialID), log.Endpoint, log.StatusCode, log.DurationMs, log.CreatedAt)

	return err
}

// GetRequestLogs returns audit entries, newest first
func (s *Storage) GetRequestLogs(filter models.LogFilter) ([]*models.RequestLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	query := `SELECT id, COALESCE(credential_id, ''), endpoint, status_code, duration_ms, created_at
		FROM request_logs WHERE 1=1`
	var args []interface{}

	if filter.CredentialID != "" {
		query += " AND credential_id = ?"
		args = append(args, filter.CredentialID)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.RequestLog
	for rows.Next() {
		var l models.RequestLog
		err := rows.Scan(&l.ID, &l.CredentialID, &l.Endpoint, &l.StatusCode, &l.DurationMs, &l.CreatedAt)
		if err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}

	return logs, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
