package keys

import "errors"

// Validation and management failures, returned as typed results for the HTTP
// layer to map. ErrRateLimited is a normal control-flow outcome, not an
// error-level event.
var (
	ErrInvalidKey        = errors.New("invalid API key")
	ErrKeyExpired        = errors.New("API key expired")
	ErrKeyRevoked        = errors.New("API key revoked")
	ErrInsufficientScope = errors.New("insufficient permissions")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrNotFound          = errors.New("credential not found")
	ErrUnknownPlan       = errors.New("unknown plan tier")
	ErrStorage           = errors.New("storage failure")
)
