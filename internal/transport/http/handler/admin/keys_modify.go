package admin

import (
	"encoding/json"
	"net/http"

	"github.com/altalabs/keywarden/internal/storage/models"
	"github.com/altalabs/keywarden/internal/types"
)

// RotateKey replaces a credential's secret (POST /api/admin/keys/{id}/rotate).
// The old secret stops validating the moment this call returns.
func (h *Handlers) RotateKey(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("id required"))
		return
	}

	secret, err := h.Service.Rotate(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	types.WriteJSON(w, http.StatusOK, RotateKeyResponse{ID: id, Secret: secret})
}

// RevokeKey terminally invalidates a credential (POST /api/admin/keys/{id}/revoke).
// Revoking an already-revoked credential succeeds idempotently.
func (h *Handlers) RevokeKey(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("id required"))
		return
	}

	var req RevokeKeyRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.Service.Revoke(id, req.Reason); err != nil {
		writeServiceError(w, err)
		return
	}

	types.WriteJSON(w, http.StatusOK, RevokeKeyResponse{ID: id, Status: models.StatusRevoked})
}

// SetRateLimit overrides a credential's hourly quota (PUT /api/admin/keys/{id}/ratelimit).
func (h *Handlers) SetRateLimit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("id required"))
		return
	}

	var req SetRateLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RateLimit == nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("rate_limit is required"))
		return
	}
	if *req.RateLimit < 0 {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("rate_limit must not be negative"))
		return
	}

	old, current, err := h.Service.SetRateLimit(id, *req.RateLimit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	types.WriteJSON(w, http.StatusOK, SetRateLimitResponse{ID: id, Old: old, New: current})
}
