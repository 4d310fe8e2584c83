// Package admin implements the credential management HTTP API.
package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/altalabs/keywarden/internal/keys"
	"github.com/altalabs/keywarden/internal/storage"
	"github.com/altalabs/keywarden/internal/types"
)

// Handlers holds the dependencies for admin HTTP handlers.
type Handlers struct {
	Service   *keys.Service
	StartTime time.Time
}

// New creates a new instance of admin handlers.
func New(svc *keys.Service, startTime time.Time) *Handlers {
	return &Handlers{
		Service:   svc,
		StartTime: startTime,
	}
}

// writeServiceError maps credential service errors onto the wire envelope.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, keys.ErrNotFound):
		types.WriteError(w, http.StatusNotFound, types.ErrNotFound("credential not found"))
	case errors.Is(err, keys.ErrUnknownPlan), errors.Is(err, storage.ErrInvalidInput):
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest(err.Error()))
	case errors.Is(err, keys.ErrStorage):
		types.WriteError(w, http.StatusServiceUnavailable, types.ErrServiceUnavailable("storage temporarily unavailable"))
	default:
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("internal error"))
	}
}
