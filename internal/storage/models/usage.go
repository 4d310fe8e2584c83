package models

import "time"

// UsageDelta is one increment applied to the hourly usage rollup for a
// credential. Exactly one of the counters is normally non-zero.
type UsageDelta struct {
	CredentialID string
	Date         string // "2006-01-02"
	Hour         int    // 0-23
	Requests     int64  // admitted, permission-valid requests
	Errors       int64  // validation failures other than throttling
	Throttled    int64  // rate-limited requests (expected outcome, not errors)
}

// UsageStats is the aggregated view of a credential's usage rollups.
type UsageStats struct {
	CredentialID    string  `json:"credential_id"`
	HourlyRequests  int64   `json:"hourly_requests"`
	DailyRequests   int64   `json:"daily_requests"`
	MonthlyRequests int64   `json:"monthly_requests"`
	TotalRequests   int64   `json:"total_requests"`
	ErrorCount      int64   `json:"error_count"`
	ThrottledCount  int64   `json:"throttled_count"`
	SuccessRate     float64 `json:"success_rate"`
}

// RequestLog is one request-level audit entry recorded by the HTTP layer.
type RequestLog struct {
	ID           string    `json:"id"`
	CredentialID string    `json:"credential_id,omitempty"`
	Endpoint     string    `json:"endpoint"`
	StatusCode   int       `json:"status_code"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// LogFilter narrows request log queries.
type LogFilter struct {
	CredentialID string
	Limit        int
}
