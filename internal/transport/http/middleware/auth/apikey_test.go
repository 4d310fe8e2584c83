package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/altalabs/keywarden/internal/keys"
	"github.com/altalabs/keywarden/internal/storage"
)

func newTestService(t *testing.T) *keys.Service {
	t.Helper()

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	codec, err := keys.NewCodec("test-digest-key")
	if err != nil {
		t.Fatalf("failed to build codec: %v", err)
	}

	return keys.NewService(store, codec, &keys.ServiceOptions{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func issueKey(t *testing.T, svc *keys.Service, scopes []string, rateLimit int) string {
	t.Helper()

	issued, err := svc.Issue(keys.IssueParams{
		OwnerID:   "owner-1",
		Scopes:    scopes,
		PlanTier:  keys.PlanBasic,
		RateLimit: &rateLimit,
	})
	if err != nil {
		t.Fatalf("failed to issue key: %v", err)
	}
	return issued.Secret
}

func protected(svc *keys.Service, scope string) http.Handler {
	return APIKeyAuth(svc, scope)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetValidation(r.Context()) == nil {
			http.Error(w, "validation missing from context", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func doRequest(handler http.Handler, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/keys", nil)
	if secret != "" {
		req.Header.Set("Authorization", "Bearer "+secret)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAPIKeyAuthMissingHeader(t *testing.T) {
	svc := newTestService(t)
	handler := protected(svc, "")

	rec := doRequest(handler, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without Authorization header, got %d", rec.Code)
	}
}

func TestAPIKeyAuthForeignPrefix(t *testing.T) {
	svc := newTestService(t)
	handler := protected(svc, "")

	rec := doRequest(handler, "sk-not-one-of-ours")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a non-kw secret, got %d", rec.Code)
	}
}

func TestAPIKeyAuthUnknownKey(t *testing.T) {
	svc := newTestService(t)
	handler := protected(svc, "")

	rec := doRequest(handler, "kw_0000000000000000000000000000000000000000000")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for an unknown secret, got %d", rec.Code)
	}
}

func TestAPIKeyAuthValidKey(t *testing.T) {
	svc := newTestService(t)
	secret := issueKey(t, svc, []string{keys.ScopeReadProfile}, 10)
	handler := protected(svc, keys.ScopeReadProfile)

	rec := doRequest(handler, secret)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "9" {
		t.Errorf("expected X-RateLimit-Remaining 9, got %q", got)
	}
}

func TestAPIKeyAuthInsufficientScope(t *testing.T) {
	svc := newTestService(t)
	secret := issueKey(t, svc, []string{keys.ScopeReadProfile}, 10)
	handler := protected(svc, keys.ScopeWriteOperations)

	rec := doRequest(handler, secret)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for a missing scope, got %d", rec.Code)
	}
}

func TestAPIKeyAuthAdminWildcard(t *testing.T) {
	svc := newTestService(t)
	secret := issueKey(t, svc, []string{keys.ScopeAdminAll}, 10)
	handler := protected(svc, keys.ScopeWriteOperations)

	rec := doRequest(handler, secret)
	if rec.Code != http.StatusOK {
		t.Errorf("admin-all should satisfy any scope, got %d", rec.Code)
	}
}

func TestAPIKeyAuthRateLimited(t *testing.T) {
	svc := newTestService(t)
	secret := issueKey(t, svc, []string{keys.ScopeReadProfile}, 2)
	handler := protected(svc, keys.ScopeReadProfile)

	for i := 0; i < 2; i++ {
		if rec := doRequest(handler, secret); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := doRequest(handler, secret)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the quota is spent, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After on a throttled response")
	}
}

func TestAPIKeyAuthRevokedKey(t *testing.T) {
	svc := newTestService(t)

	issued, err := svc.Issue(keys.IssueParams{
		OwnerID:  "owner-1",
		Scopes:   []string{keys.ScopeReadProfile},
		PlanTier: keys.PlanFree,
	})
	if err != nil {
		t.Fatalf("failed to issue key: %v", err)
	}
	if err := svc.Revoke(issued.ID, "test"); err != nil {
		t.Fatalf("failed to revoke: %v", err)
	}

	handler := protected(svc, keys.ScopeReadProfile)
	rec := doRequest(handler, issued.Secret)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a revoked key, got %d", rec.Code)
	}
}
