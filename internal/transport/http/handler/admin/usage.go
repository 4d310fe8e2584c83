package admin

import (
	"net/http"
	"strconv"

	"github.com/altalabs/keywarden/internal/storage"
	"github.com/altalabs/keywarden/internal/types"
)

// GetUsage returns aggregated usage statistics for one credential
// (GET /api/admin/keys/{id}/usage).
func (h *Handlers) GetUsage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("id required"))
		return
	}

	stats, err := h.Service.GetUsage(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	types.WriteJSON(w, http.StatusOK, stats)
}

// GetRequestLogs returns recent request audit entries
// (GET /api/admin/logs?credential_id=&limit=).
func (h *Handlers) GetRequestLogs(w http.ResponseWriter, r *http.Request) {
	filter := storage.LogFilter{
		CredentialID: r.URL.Query().Get("credential_id"),
		Limit:        100,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	logs, err := h.Service.RequestLogs(filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	types.WriteJSON(w, http.StatusOK, map[string]any{"logs": logs})
}
