// Package infra exposes operational endpoints (health, build info).
package infra

import (
	"net/http"
	"time"

	"github.com/altalabs/keywarden/internal/types"
	"github.com/altalabs/keywarden/internal/version"
)

// Handlers holds dependencies for infra endpoints.
type Handlers struct {
	StartTime time.Time
}

// New creates infra handlers.
func New(startTime time.Time) *Handlers {
	return &Handlers{StartTime: startTime}
}

// HealthCheck reports service liveness (GET /api/health).
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	types.WriteJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        version.Version,
		"uptime_seconds": int64(time.Since(h.StartTime).Seconds()),
	})
}
