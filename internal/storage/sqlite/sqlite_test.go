package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/altalabs/keywarden/internal/storage/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testCredential(id, digest string) *models.Credential {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	return &models.Credential{
		ID:           id,
		OwnerID:      "owner-1",
		SecretDigest: digest,
		KeyPrefix:    "kw_a1B2c3D4",
		Scopes:       []string{"read-profile"},
		PlanTier:     "basic",
		RateLimit:    1000,
		Status:       models.StatusActive,
		CreatedAt:    now,
		ExpiresAt:    now.AddDate(0, 0, 30),
	}
}

func TestCreateAndGetCredential(t *testing.T) {
	s := newTestStorage(t)

	cred := testCredential("key_1", "digest-1")
	if err := s.CreateCredential(cred); err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	got, err := s.GetCredential("key_1")
	if err != nil {
		t.Fatalf("GetCredential failed: %v", err)
	}
	if got.OwnerID != "owner-1" || got.SecretDigest != "digest-1" {
		t.Errorf("unexpected credential: %+v", got)
	}
	if len(got.Scopes) != 1 || got.Scopes[0] != "read-profile" {
		t.Errorf("scopes did not round-trip: %v", got.Scopes)
	}

	byDigest, err := s.GetCredentialByDigest("digest-1")
	if err != nil {
		t.Fatalf("GetCredentialByDigest failed: %v", err)
	}
	if byDigest.ID != "key_1" {
		t.Errorf("expected key_1, got %s", byDigest.ID)
	}

	if _, err := s.GetCredentialByDigest("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateCredentialDuplicateDigest(t *testing.T) {
	s := newTestStorage(t)

	if err := s.CreateCredential(testCredential("key_1", "digest-1")); err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	// A second credential with an identical digest must never overwrite.
	err := s.CreateCredential(testCredential("key_2", "digest-1"))
	if !errors.Is(err, ErrDuplicateDigest) {
		t.Fatalf("expected ErrDuplicateDigest, got %v", err)
	}

	if _, err := s.GetCredential("key_2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("colliding credential must not be persisted, got %v", err)
	}
}

func TestReplaceSecretDigest(t *testing.T) {
	s := newTestStorage(t)

	if err := s.CreateCredential(testCredential("key_1", "digest-1")); err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	at := time.Date(2025, 1, 16, 9, 0, 0, 0, time.UTC)
	if err := s.ReplaceSecretDigest("key_1", "digest-2", "kw_z9Y8x7W6", at); err != nil {
		t.Fatalf("ReplaceSecretDigest failed: %v", err)
	}

	// Old digest stops resolving immediately.
	if _, err := s.GetCredentialByDigest("digest-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old digest should not resolve, got %v", err)
	}

	got, err := s.GetCredentialByDigest("digest-2")
	if err != nil {
		t.Fatalf("GetCredentialByDigest failed: %v", err)
	}
	if got.RotationCount != 1 {
		t.Errorf("expected rotation_count 1, got %d", got.RotationCount)
	}
	if got.LastRotatedAt == nil {
		t.Error("expected last_rotated_at to be stamped")
	}

	if err := s.ReplaceSecretDigest("missing", "digest-3", "kw_abc", at); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Replacing with a digest already held by another credential fails.
	if err := s.CreateCredential(testCredential("key_2", "digest-9")); err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}
	if err := s.ReplaceSecretDigest("key_2", "digest-2", "kw_abc", at); !errors.Is(err, ErrDuplicateDigest) {
		t.Errorf("expected ErrDuplicateDigest, got %v", err)
	}
}

func TestMarkRevokedIdempotent(t *testing.T) {
	s := newTestStorage(t)

	if err := s.CreateCredential(testCredential("key_1", "digest-1")); err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	at := time.Date(2025, 1, 16, 9, 0, 0, 0, time.UTC)
	if err := s.MarkRevoked("key_1", "compromised", at); err != nil {
		t.Fatalf("MarkRevoked failed: %v", err)
	}
	if err := s.MarkRevoked("key_1", "later reason", at.Add(time.Hour)); err != nil {
		t.Errorf("second MarkRevoked should be a no-op success, got %v", err)
	}

	got, err := s.GetCredential("key_1")
	if err != nil {
		t.Fatalf("GetCredential failed: %v", err)
	}
	if got.Status != models.StatusRevoked {
		t.Errorf("expected revoked, got %s", got.Status)
	}
	if got.RevokedReason != "compromised" {
		t.Errorf("first reason should stick, got %q", got.RevokedReason)
	}

	if err := s.MarkRevoked("missing", "x", at); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkExpiredOnlyFromActive(t *testing.T) {
	s := newTestStorage(t)

	if err := s.CreateCredential(testCredential("key_1", "digest-1")); err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	at := time.Date(2025, 1, 16, 9, 0, 0, 0, time.UTC)
	if err := s.MarkRevoked("key_1", "gone", at); err != nil {
		t.Fatalf("MarkRevoked failed: %v", err)
	}
	if err := s.MarkExpired("key_1"); err != nil {
		t.Fatalf("MarkExpired failed: %v", err)
	}

	got, err := s.GetCredential("key_1")
	if err != nil {
		t.Fatalf("GetCredential failed: %v", err)
	}
	if got.Status != models.StatusRevoked {
		t.Errorf("terminal revoked state must not become expired, got %s", got.Status)
	}
}

func TestReserveQuota(t *testing.T) {
	s := newTestStorage(t)

	if err := s.CreateCredential(testCredential("key_1", "digest-1")); err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	start := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	for i := 1; i <= 3; i++ {
		count, admitted, err := s.ReserveQuota("key_1", start, end, 3)
		if err != nil {
			t.Fatalf("ReserveQuota %d failed: %v", i, err)
		}
		if !admitted {
			t.Fatalf("request %d should be admitted", i)
		}
		if count != i {
			t.Errorf("expected count %d, got %d", i, count)
		}
	}

	// Over the limit: rejected without advancing the count.
	count, admitted, err := s.ReserveQuota("key_1", start, end, 3)
	if err != nil {
		t.Fatalf("ReserveQuota failed: %v", err)
	}
	if admitted {
		t.Error("request over the limit must not be admitted")
	}
	if count != 3 {
		t.Errorf("rejected request must not increment count: got %d", count)
	}

	// New window: the counter resets.
	nextStart := end
	nextEnd := nextStart.Add(time.Hour)
	count, admitted, err = s.ReserveQuota("key_1", nextStart, nextEnd, 3)
	if err != nil {
		t.Fatalf("ReserveQuota in new window failed: %v", err)
	}
	if !admitted || count != 1 {
		t.Errorf("expected admitted with count 1 in new window, got admitted=%v count=%d", admitted, count)
	}

	w, err := s.GetRateWindow("key_1")
	if err != nil {
		t.Fatalf("GetRateWindow failed: %v", err)
	}
	if !w.WindowStart.Equal(nextStart) || !w.WindowEnd.Equal(nextEnd) {
		t.Errorf("window should have rolled forward: %+v", w)
	}
}

func TestRecordUsageUpsert(t *testing.T) {
	s := newTestStorage(t)

	if err := s.CreateCredential(testCredential("key_1", "digest-1")); err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	deltas := []models.UsageDelta{
		{CredentialID: "key_1", Date: "2025-01-15", Hour: 10, Requests: 1},
		{CredentialID: "key_1", Date: "2025-01-15", Hour: 10, Requests: 1},
		{CredentialID: "key_1", Date: "2025-01-15", Hour: 9, Requests: 1},
		{CredentialID: "key_1", Date: "2025-01-14", Hour: 23, Requests: 1},
		{CredentialID: "key_1", Date: "2024-12-31", Hour: 5, Requests: 1},
		{CredentialID: "key_1", Date: "2025-01-15", Hour: 10, Errors: 1},
		{CredentialID: "key_1", Date: "2025-01-15", Hour: 10, Throttled: 2},
	}
	for i, d := range deltas {
		delta := d
		if err := s.RecordUsage(&delta); err != nil {
			t.Fatalf("RecordUsage %d failed: %v", i, err)
		}
	}

	stats, err := s.GetUsageStats("key_1", "2025-01-15", 10)
	if err != nil {
		t.Fatalf("GetUsageStats failed: %v", err)
	}

	if stats.HourlyRequests != 2 {
		t.Errorf("expected 2 hourly requests, got %d", stats.HourlyRequests)
	}
	if stats.DailyRequests != 3 {
		t.Errorf("expected 3 daily requests, got %d", stats.DailyRequests)
	}
	if stats.MonthlyRequests != 4 {
		t.Errorf("expected 4 monthly requests, got %d", stats.MonthlyRequests)
	}
	if stats.TotalRequests != 5 {
		t.Errorf("expected 5 total requests, got %d", stats.TotalRequests)
	}
	if stats.ErrorCount != 1 || stats.ThrottledCount != 2 {
		t.Errorf("expected 1 error and 2 throttled, got %d and %d", stats.ErrorCount, stats.ThrottledCount)
	}
}

func TestRequestLogs(t *testing.T) {
	s := newTestStorage(t)

	if err := s.CreateCredential(testCredential("key_1", "digest-1")); err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	logs := []*models.RequestLog{
		{ID: "log_1", CredentialID: "key_1", Endpoint: "GET /api/admin/keys", StatusCode: 200, DurationMs: 5, CreatedAt: base},
		{ID: "log_2", CredentialID: "key_1", Endpoint: "POST /api/admin/keys", StatusCode: 201, DurationMs: 12, CreatedAt: base.Add(time.Minute)},
		{ID: "log_3", Endpoint: "GET /api/health", StatusCode: 200, DurationMs: 1, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, l := range logs {
		if err := s.LogRequest(l); err != nil {
			t.Fatalf("LogRequest failed: %v", err)
		}
	}

	got, err := s.GetRequestLogs(models.LogFilter{CredentialID: "key_1"})
	if err != nil {
		t.Fatalf("GetRequestLogs failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 logs for key_1, got %d", len(got))
	}
	if got[0].ID != "log_2" {
		t.Errorf("expected newest first, got %s", got[0].ID)
	}

	limited, err := s.GetRequestLogs(models.LogFilter{Limit: 1})
	if err != nil {
		t.Fatalf("GetRequestLogs failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 log with limit, got %d", len(limited))
	}
}

func TestListCredentialsByOwner(t *testing.T) {
	s := newTestStorage(t)

	a := testCredential("key_1", "digest-1")
	b := testCredential("key_2", "digest-2")
	b.CreatedAt = a.CreatedAt.Add(time.Minute)
	c := testCredential("key_3", "digest-3")
	c.OwnerID = "owner-2"

	for _, cred := range []*models.Credential{a, b, c} {
		if err := s.CreateCredential(cred); err != nil {
			t.Fatalf("CreateCredential failed: %v", err)
		}
	}

	creds, err := s.ListCredentialsByOwner("owner-1")
	if err != nil {
		t.Fatalf("ListCredentialsByOwner failed: %v", err)
	}
	if len(creds) != 2 {
		t.Fatalf("expected 2 credentials, got %d", len(creds))
	}
	if creds[0].ID != "key_2" {
		t.Errorf("expected newest first, got %s", creds[0].ID)
	}

	n, err := s.CountCredentials()
	if err != nil {
		t.Fatalf("CountCredentials failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 credentials total, got %d", n)
	}
}

func TestStorageClosed(t *testing.T) {
	s := newTestStorage(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := s.CreateCredential(testCredential("key_1", "digest-1")); !errors.Is(err, ErrStorageClosed) {
		t.Errorf("expected ErrStorageClosed, got %v", err)
	}
	if _, err := s.GetCredential("key_1"); !errors.Is(err, ErrStorageClosed) {
		t.Errorf("expected ErrStorageClosed, got %v", err)
	}
}
