package keys

import (
	"errors"

	"github.com/altalabs/keywarden/internal/storage"
)

// GetUsage returns the aggregated usage statistics for one credential:
// request counts for the current hour, day and month, lifetime totals,
// error and throttle counters, and the derived success rate.
func (s *Service) GetUsage(id string) (*storage.UsageStats, error) {
	// Unknown ids are a NotFound, not an empty rollup.
	if _, err := s.store.GetCredential(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.storageErr("get credential", err)
	}

	now := s.now()
	stats, err := s.store.GetUsageStats(id, now.Format("2006-01-02"), now.Hour())
	if err != nil {
		return nil, s.storageErr("get usage stats", err)
	}

	return stats, nil
}

// RequestLogs returns request-level audit entries for external reporting.
func (s *Service) RequestLogs(filter storage.LogFilter) ([]*storage.RequestLog, error) {
	logs, err := s.store.GetRequestLogs(filter)
	if err != nil {
		return nil, s.storageErr("get request logs", err)
	}
	return logs, nil
}
