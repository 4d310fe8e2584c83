package keys

import (
	"errors"
	"fmt"
	"time"

	"github.com/altalabs/keywarden/internal/storage"
	"github.com/altalabs/keywarden/internal/storage/models"
)

// defaultTTLDays applies when the caller passes a non-positive TTL.
const defaultTTLDays = 365

// issueAttempts bounds digest-collision regeneration. A collision between
// 256-bit secrets indicates a broken entropy source, not bad luck.
const issueAttempts = 3

// IssueParams describes a credential to be issued.
type IssueParams struct {
	OwnerID   string
	Scopes    []string
	PlanTier  string
	TTLDays   int
	RateLimit *int // optional per-credential override; nil = plan default
}

// IssuedKey is the issuance result. Secret is the plaintext API key, returned
// exactly once; only its digest persists.
type IssuedKey struct {
	ID             string    `json:"id"`
	Secret         string    `json:"secret"`
	KeyPrefix      string    `json:"key_prefix"`
	Scopes         []string  `json:"scopes"`
	RejectedScopes []string  `json:"rejected_scopes,omitempty"`
	PlanTier       string    `json:"plan_tier"`
	RateLimit      int       `json:"rate_limit"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Issue creates a new active credential. Requested scopes are intersected
// with the fixed enumeration; unknown scopes are reported back via
// RejectedScopes rather than treated as an error.
func (s *Service) Issue(p IssueParams) (*IssuedKey, error) {
	if p.OwnerID == "" {
		return nil, fmt.Errorf("%w: owner id required", storage.ErrInvalidInput)
	}

	rateLimit, ok := DefaultRateLimit(p.PlanTier)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, p.PlanTier)
	}
	if p.RateLimit != nil {
		rateLimit = *p.RateLimit
	}

	accepted, rejected := IntersectScopes(p.Scopes)

	ttlDays := p.TTLDays
	if ttlDays <= 0 {
		ttlDays = defaultTTLDays
	}

	now := s.now()
	cred := &models.Credential{
		ID:        GenerateID(),
		OwnerID:   p.OwnerID,
		Scopes:    accepted,
		PlanTier:  p.PlanTier,
		RateLimit: rateLimit,
		Status:    models.StatusActive,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, ttlDays),
	}

	var secret string
	for attempt := 0; attempt < issueAttempts; attempt++ {
		var err error
		secret, err = s.codec.GenerateSecret()
		if err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}

		cred.SecretDigest = s.codec.Digest(secret)
		cred.KeyPrefix = ExtractKeyPrefix(secret)

		err = s.store.CreateCredential(cred)
		if err == nil {
			return &IssuedKey{
				ID:             cred.ID,
				Secret:         secret,
				KeyPrefix:      cred.KeyPrefix,
				Scopes:         accepted,
				RejectedScopes: rejected,
				PlanTier:       cred.PlanTier,
				RateLimit:      cred.RateLimit,
				CreatedAt:      cred.CreatedAt,
				ExpiresAt:      cred.ExpiresAt,
			}, nil
		}
		if errors.Is(err, storage.ErrDuplicateDigest) {
			// Never overwrite the colliding record; regenerate instead.
			s.logger.Warn("secret digest collision on issue", "owner_id", p.OwnerID, "attempt", attempt+1)
			continue
		}
		return nil, s.storageErr("create credential", err)
	}

	return nil, fmt.Errorf("%w: digest collision persisted across %d attempts", ErrStorage, issueAttempts)
}
