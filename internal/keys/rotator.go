package keys

import (
	"errors"
	"fmt"

	"github.com/altalabs/keywarden/internal/storage"
)

// Rotate replaces a credential's secret while preserving its identity,
// scopes, quota and usage history. The previous secret stops validating the
// instant the replacement commits; there is no grace period.
func (s *Service) Rotate(id string) (string, error) {
	cred, err := s.store.GetCredential(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", s.storageErr("get credential", err)
	}

	for attempt := 0; attempt < issueAttempts; attempt++ {
		secret, err := s.codec.GenerateSecret()
		if err != nil {
			return "", fmt.Errorf("generate secret: %w", err)
		}

		err = s.store.ReplaceSecretDigest(id, s.codec.Digest(secret), ExtractKeyPrefix(secret), s.now())
		if err == nil {
			s.invalidate(cred.SecretDigest)
			return secret, nil
		}
		if errors.Is(err, storage.ErrDuplicateDigest) {
			s.logger.Warn("secret digest collision on rotate", "credential_id", id, "attempt", attempt+1)
			continue
		}
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", s.storageErr("replace secret digest", err)
	}

	return "", fmt.Errorf("%w: digest collision persisted across %d attempts", ErrStorage, issueAttempts)
}

// Revoke moves a credential to the terminal revoked state. Revoking an
// already-revoked credential is a no-op success. The transition is
// irreversible.
func (s *Service) Revoke(id, reason string) error {
	cred, err := s.store.GetCredential(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return s.storageErr("get credential", err)
	}

	if err := s.store.MarkRevoked(id, reason, s.now()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return s.storageErr("mark revoked", err)
	}

	s.invalidate(cred.SecretDigest)
	return nil
}

// SetRateLimit overrides a credential's hourly quota, returning the previous
// and new values.
func (s *Service) SetRateLimit(id string, limit int) (old, current int, err error) {
	if limit < 0 {
		return 0, 0, fmt.Errorf("%w: rate limit must not be negative", storage.ErrInvalidInput)
	}

	cred, err := s.store.GetCredential(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, 0, ErrNotFound
		}
		return 0, 0, s.storageErr("get credential", err)
	}

	old, err = s.store.SetRateLimit(id, limit)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, 0, ErrNotFound
		}
		return 0, 0, s.storageErr("set rate limit", err)
	}

	s.invalidate(cred.SecretDigest)
	return old, limit, nil
}
