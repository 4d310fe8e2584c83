package keys

import (
	"log/slog"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/altalabs/keywarden/internal/storage"
)

const defaultCacheTTL = 5 * time.Second

// ServiceOptions configures optional service behavior.
type ServiceOptions struct {
	// Cache holds recently validated credentials keyed by digest. Entries
	// live for CacheTTL and are invalidated on rotate/revoke/limit changes,
	// bounding how stale a read replica of the credential can be.
	Cache    *ristretto.Cache[string, *storage.Credential]
	CacheTTL time.Duration

	Logger *slog.Logger

	// Now overrides the clock (used by tests to control window boundaries).
	Now func() time.Time
}

// Service is the credential subsystem entry point: issuance, validation,
// rotation, revocation and usage accounting over a single Store.
type Service struct {
	store    storage.Store
	codec    *Codec
	limiter  *HourlyLimiter
	cache    *ristretto.Cache[string, *storage.Credential]
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates the credential service. opts may be nil.
func NewService(store storage.Store, codec *Codec, opts *ServiceOptions) *Service {
	s := &Service{
		store:    store,
		codec:    codec,
		cacheTTL: defaultCacheTTL,
		logger:   slog.Default(),
		now:      time.Now,
	}

	if opts != nil {
		if opts.Cache != nil {
			s.cache = opts.Cache
		}
		if opts.CacheTTL > 0 {
			s.cacheTTL = opts.CacheTTL
		}
		if opts.Logger != nil {
			s.logger = opts.Logger
		}
		if opts.Now != nil {
			s.now = opts.Now
		}
	}

	s.limiter = &HourlyLimiter{store: store, now: s.now}
	return s
}

// ListCredentials returns safe summaries of a tenant's credentials. Summaries
// never include the secret or its digest.
func (s *Service) ListCredentials(ownerID string) ([]*storage.CredentialSummary, error) {
	creds, err := s.store.ListCredentialsByOwner(ownerID)
	if err != nil {
		return nil, s.storageErr("list credentials", err)
	}

	summaries := make([]*storage.CredentialSummary, 0, len(creds))
	for _, cred := range creds {
		summaries = append(summaries, cred.ToSummary())
	}
	return summaries, nil
}

// RecordRequestLog writes one request-level audit entry. Failures are logged
// and swallowed; audit logging never fails a request.
func (s *Service) RecordRequestLog(log *storage.RequestLog) {
	if log.ID == "" {
		log.ID = GenerateID()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = s.now()
	}
	if err := s.store.LogRequest(log); err != nil {
		s.logger.Warn("request log write failed", "error", err)
	}
}

// cacheKey namespaces digest cache entries.
func cacheKey(digest string) string {
	return "cred:" + digest
}

// invalidate drops a cached credential by digest after a write.
func (s *Service) invalidate(digest string) {
	if s.cache != nil && digest != "" {
		s.cache.Del(cacheKey(digest))
	}
}

// storageErr logs the underlying cause and returns the typed storage error.
func (s *Service) storageErr(op string, err error) error {
	s.logger.Error("storage operation failed", "op", op, "error", err)
	return ErrStorage
}
