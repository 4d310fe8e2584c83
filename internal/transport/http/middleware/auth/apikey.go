// Package auth provides API key authentication middleware backed by the
// credential service.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/altalabs/keywarden/internal/keys"
	"github.com/altalabs/keywarden/internal/storage"
	"github.com/altalabs/keywarden/internal/transport/http/middleware"
	"github.com/altalabs/keywarden/internal/types"
)

// ValidationContextKey is the context key for the validated credential.
type ValidationContextKey struct{}

// GetValidation retrieves the validated credential info from context.
func GetValidation(ctx context.Context) *keys.Validation {
	if v, ok := ctx.Value(ValidationContextKey{}).(*keys.Validation); ok {
		return v
	}
	return nil
}

// APIKeyAuth authenticates requests with Keywarden API keys and enforces the
// route's required scope and the per-key quota in one pass. requiredScope may
// be empty for routes that only need a valid key.
//
// Every decision is written to the request audit log asynchronously.
func APIKeyAuth(svc *keys.Service, requiredScope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Extract key from Authorization header
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				types.WriteError(w, http.StatusUnauthorized, types.ErrAuthentication("API key required"))
				return
			}
			secret := strings.TrimPrefix(header, "Bearer ")

			// Reject non-keywarden secrets early (all clients use kw_* keys)
			if !strings.HasPrefix(secret, keys.SecretPrefix) {
				types.WriteError(w, http.StatusUnauthorized, types.ErrAuthentication("only Keywarden API keys (kw_*) are accepted"))
				return
			}

			v, err := svc.Validate(secret, requiredScope)
			if err != nil {
				if errors.Is(err, keys.ErrRateLimited) {
					w.Header().Set("Retry-After", strconv.Itoa(secondsToNextHour(time.Now())))
				}
				status, apiErr := mapValidationError(err)
				types.WriteError(w, status, apiErr)
				auditRequest(svc, v, r, status, start)
				return
			}

			if v.RateLimitRemaining >= 0 {
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(v.RateLimitRemaining))
			}

			ctx := context.WithValue(r.Context(), ValidationContextKey{}, v)
			wrapped := &middleware.ResponseWriter{ResponseWriter: w, Status: http.StatusOK}
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			auditRequest(svc, v, r, wrapped.Status, start)
		})
	}
}

// mapValidationError translates service errors to wire responses.
func mapValidationError(err error) (int, *types.APIError) {
	switch {
	case errors.Is(err, keys.ErrKeyExpired):
		return http.StatusUnauthorized, types.ErrAuthentication("API key expired")
	case errors.Is(err, keys.ErrKeyRevoked):
		return http.StatusUnauthorized, types.ErrAuthentication("API key revoked")
	case errors.Is(err, keys.ErrInsufficientScope):
		return http.StatusForbidden, types.ErrPermission("insufficient permissions")
	case errors.Is(err, keys.ErrRateLimited):
		return http.StatusTooManyRequests, types.ErrRateLimit("rate limit exceeded")
	case errors.Is(err, keys.ErrStorage):
		return http.StatusServiceUnavailable, types.ErrServiceUnavailable("temporarily unavailable")
	default:
		return http.StatusUnauthorized, types.ErrAuthentication("invalid API key")
	}
}

// secondsToNextHour returns the seconds left until the rate window resets.
func secondsToNextHour(now time.Time) int {
	next := now.Truncate(time.Hour).Add(time.Hour)
	return int(next.Sub(now).Seconds()) + 1
}

// auditRequest records the request-level usage log entry (async).
func auditRequest(svc *keys.Service, v *keys.Validation, r *http.Request, status int, start time.Time) {
	log := &storage.RequestLog{
		Endpoint:   r.Method + " " + r.URL.Path,
		StatusCode: status,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if v != nil {
		log.CredentialID = v.CredentialID
	}
	go svc.RecordRequestLog(log)
}
