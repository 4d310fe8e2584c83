package admin

import (
	"encoding/json"
	"net/http"

	"github.com/altalabs/keywarden/internal/keys"
	"github.com/altalabs/keywarden/internal/types"
)

// CreateKey issues a new credential (POST /api/admin/keys).
// The response contains the plaintext secret exactly once; it is never
// retrievable again.
func (h *Handlers) CreateKey(w http.ResponseWriter, r *http.Request) {
	var req CreateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("invalid request body"))
		return
	}

	if req.OwnerID == "" {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("owner_id is required"))
		return
	}
	if req.PlanTier == "" {
		req.PlanTier = keys.PlanFree
	}

	issued, err := h.Service.Issue(keys.IssueParams{
		OwnerID:   req.OwnerID,
		Scopes:    req.Scopes,
		PlanTier:  req.PlanTier,
		TTLDays:   req.TTLDays,
		RateLimit: req.RateLimit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	types.WriteJSON(w, http.StatusCreated, issued)
}

// ListKeys returns safe summaries for a tenant (GET /api/admin/keys?owner_id=).
func (h *Handlers) ListKeys(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("owner_id is required"))
		return
	}

	summaries, err := h.Service.ListCredentials(ownerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	types.WriteJSON(w, http.StatusOK, map[string]any{"credentials": summaries})
}
