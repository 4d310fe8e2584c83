package keys

import (
	"errors"
	"strings"

	"github.com/altalabs/keywarden/internal/storage"
	"github.com/altalabs/keywarden/internal/storage/models"
)

// Validation is the result of a successful validate call.
type Validation struct {
	CredentialID string
	OwnerID      string
	Scopes       []string
	PlanTier     string
	// RateLimitRemaining is the quota left in the current window after this
	// request, or -1 for unlimited credentials.
	RateLimitRemaining int
}

// HasScope reports whether the validated credential carries a scope.
// admin-all satisfies every scope check.
func (v *Validation) HasScope(scope string) bool {
	for _, s := range v.Scopes {
		if s == scope || s == ScopeAdminAll {
			return true
		}
	}
	return false
}

// Validate is the request-path entry point. requiredScope may be empty.
//
// Checks run in a fixed order: lookup, status, expiry, scope, quota. No
// failure path has side effects on the credential beyond rate-window
// bookkeeping and usage error counters; only an admitted, permission-valid
// request increments usage_count.
func (s *Service) Validate(secret, requiredScope string) (*Validation, error) {
	if !strings.HasPrefix(secret, SecretPrefix) {
		return nil, ErrInvalidKey
	}

	digest := s.codec.Digest(secret)
	cred, err := s.lookupByDigest(digest)
	if err != nil {
		return nil, err
	}

	now := s.now()

	switch cred.Status {
	case models.StatusActive:
	case models.StatusRevoked:
		s.countError(cred.ID)
		return nil, ErrKeyRevoked
	default:
		s.countError(cred.ID)
		return nil, ErrKeyExpired
	}

	if cred.IsExpired(now) {
		// Lazy terminal transition; validation itself stays read-only on
		// failure if this write does not land.
		if err := s.store.MarkExpired(cred.ID); err != nil {
			s.logger.Warn("lazy expiry mark failed", "credential_id", cred.ID, "error", err)
		}
		s.invalidate(digest)
		s.countError(cred.ID)
		return nil, ErrKeyExpired
	}

	if requiredScope != "" && !cred.HasScope(requiredScope) && !cred.HasScope(ScopeAdminAll) {
		s.countError(cred.ID)
		return nil, ErrInsufficientScope
	}

	decision, err := s.limiter.Check(cred.ID, cred.RateLimit)
	if err != nil {
		// Quota state unavailable: fail closed rather than over-admit.
		return nil, s.storageErr("reserve quota", err)
	}
	if !decision.Admitted {
		s.countThrottled(cred.ID)
		return nil, ErrRateLimited
	}

	if err := s.store.TouchLastUsed(cred.ID, now); err != nil {
		s.logger.Warn("usage stamp failed", "credential_id", cred.ID, "error", err)
	}
	s.countRequest(cred.ID)

	return &Validation{
		CredentialID:       cred.ID,
		OwnerID:            cred.OwnerID,
		Scopes:             cred.Scopes,
		PlanTier:           cred.PlanTier,
		RateLimitRemaining: decision.Remaining,
	}, nil
}

// lookupByDigest resolves a digest through the cache, falling back to the
// store. Storage read failures fail closed: the key is treated as invalid,
// with the cause logged.
func (s *Service) lookupByDigest(digest string) (*storage.Credential, error) {
	if s.cache != nil {
		if cred, found := s.cache.Get(cacheKey(digest)); found {
			return cred, nil
		}
	}

	cred, err := s.store.GetCredentialByDigest(digest)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidKey
		}
		s.logger.Error("credential lookup failed", "error", err)
		return nil, ErrInvalidKey
	}

	if s.cache != nil {
		s.cache.SetWithTTL(cacheKey(digest), cred, 1, s.cacheTTL)
	}
	return cred, nil
}

// Usage counter helpers. Rollup failures are logged and swallowed; counters
// must never fail a validation that already has its outcome.

func (s *Service) countRequest(credentialID string) {
	s.recordDelta(&storage.UsageDelta{CredentialID: credentialID, Requests: 1})
}

func (s *Service) countError(credentialID string) {
	s.recordDelta(&storage.UsageDelta{CredentialID: credentialID, Errors: 1})
}

func (s *Service) countThrottled(credentialID string) {
	s.recordDelta(&storage.UsageDelta{CredentialID: credentialID, Throttled: 1})
}

func (s *Service) recordDelta(delta *storage.UsageDelta) {
	now := s.now()
	delta.Date = now.Format("2006-01-02")
	delta.Hour = now.Hour()
	if err := s.store.RecordUsage(delta); err != nil {
		s.logger.Warn("usage rollup write failed", "credential_id", delta.CredentialID, "error", err)
	}
}
