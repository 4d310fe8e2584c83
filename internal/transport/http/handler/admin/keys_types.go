package admin

// CreateKeyRequest is the request body for issuing a credential.
type CreateKeyRequest struct {
	OwnerID   string   `json:"owner_id"`
	Scopes    []string `json:"scopes"`
	PlanTier  string   `json:"plan_tier"`
	TTLDays   int      `json:"ttl_days"`   // 0 = default TTL
	RateLimit *int     `json:"rate_limit"` // optional override; nil = plan default
}

// RotateKeyResponse carries the replacement secret (shown only once).
type RotateKeyResponse struct {
	ID     string `json:"id"`
	Secret string `json:"secret"`
}

// RevokeKeyRequest is the request body for revoking a credential.
type RevokeKeyRequest struct {
	Reason string `json:"reason"`
}

// RevokeKeyResponse acknowledges the terminal transition.
type RevokeKeyResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SetRateLimitRequest is the request body for overriding a quota.
type SetRateLimitRequest struct {
	RateLimit *int `json:"rate_limit"`
}

// SetRateLimitResponse reports the previous and current quota.
type SetRateLimitResponse struct {
	ID  string `json:"id"`
	Old int    `json:"old"`
	New int    `json:"new"`
}
