package models

import "time"

// Credential statuses. Transitions are monotone: active is the only
// non-terminal state; there is no way out of revoked or expired.
const (
	StatusActive  = "active"
	StatusRevoked = "revoked"
	StatusExpired = "expired"
)

// Credential represents one issued API key record. The plaintext secret is
// never stored; only its keyed digest persists for equality lookup.
type Credential struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	SecretDigest  string     `json:"-"`          // keyed BLAKE2b digest (never exposed in JSON)
	KeyPrefix     string     `json:"key_prefix"` // First 11 chars (e.g., "kw_a1B2c3D4")
	Scopes        []string   `json:"scopes"`
	PlanTier      string     `json:"plan_tier"`
	RateLimit     int        `json:"rate_limit"` // Requests per hour (0 = unlimited)
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
	LastRotatedAt *time.Time `json:"last_rotated_at,omitempty"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
	RevokedReason string     `json:"revoked_reason,omitempty"`
	UsageCount    int64      `json:"usage_count"`
	RotationCount int        `json:"rotation_count"`
}

// CredentialSummary is a safe representation (no digest).
type CredentialSummary struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	KeyPrefix     string     `json:"key_prefix"`
	Scopes        []string   `json:"scopes"`
	PlanTier      string     `json:"plan_tier"`
	RateLimit     int        `json:"rate_limit"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
	UsageCount    int64      `json:"usage_count"`
	RotationCount int        `json:"rotation_count"`
}

// ToSummary converts Credential to its safe summary form.
func (c *Credential) ToSummary() *CredentialSummary {
	return &CredentialSummary{
		ID:            c.ID,
		OwnerID:       c.OwnerID,
		KeyPrefix:     c.KeyPrefix,
		Scopes:        c.Scopes,
		PlanTier:      c.PlanTier,
		RateLimit:     c.RateLimit,
		Status:        c.Status,
		CreatedAt:     c.CreatedAt,
		ExpiresAt:     c.ExpiresAt,
		LastUsedAt:    c.LastUsedAt,
		UsageCount:    c.UsageCount,
		RotationCount: c.RotationCount,
	}
}

// HasScope checks if the credential carries a specific scope.
func (c *Credential) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// IsExpired checks if the credential is past its expiry at the given instant.
func (c *Credential) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// RateWindow is the active counting window for one credential. Windows are
// aligned to calendar hours; Count only ever holds admitted requests.
type RateWindow struct {
	CredentialID string    `json:"credential_id"`
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`
	Count        int       `json:"count"`
}
