package keys

import "time"

// Decision is the outcome of a quota check.
type Decision struct {
	Admitted bool
	// Remaining is the quota left in the window after this request, or -1
	// for unlimited credentials.
	Remaining int
}

// HourlyLimiter enforces a fixed calendar-hour window: the window starts at
// the top of the hour and resets exactly at the next hour boundary, rather
// than sliding from first use. A caller can therefore burst up to twice the
// limit across a boundary (e.g. at :59 and again at :01); the tradeoff buys a
// single-row counter per credential instead of a request log scan. The
// check-and-increment itself is atomic in the store, so concurrent requests
// never over-admit within a window.
type HourlyLimiter struct {
	store quotaStore
	now   func() time.Time
}

// quotaStore is the slice of the Store the limiter needs.
type quotaStore interface {
	ReserveQuota(credentialID string, windowStart, windowEnd time.Time, limit int) (int, bool, error)
}

// Check admits or rejects one request for the credential. A non-positive
// limit means unlimited. Rejected requests do not consume quota.
func (l *HourlyLimiter) Check(credentialID string, limit int) (Decision, error) {
	if limit <= 0 {
		return Decision{Admitted: true, Remaining: -1}, nil
	}

	now := l.now()
	windowStart := now.Truncate(time.Hour)
	windowEnd := windowStart.Add(time.Hour)

	count, admitted, err := l.store.ReserveQuota(credentialID, windowStart, windowEnd, limit)
	if err != nil {
		return Decision{}, err
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{Admitted: admitted, Remaining: remaining}, nil
}
