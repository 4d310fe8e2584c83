package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/altalabs/keywarden/internal/keys"
	"github.com/altalabs/keywarden/internal/transport/http/handler/admin"
	"github.com/altalabs/keywarden/internal/transport/http/handler/infra"
	"github.com/altalabs/keywarden/internal/transport/http/middleware"
	"github.com/altalabs/keywarden/internal/transport/http/middleware/auth"
)

// RouterOptions configures the HTTP router behavior.
type RouterOptions struct {
	Logger  *slog.Logger
	Service *keys.Service
}

// NewRouter creates and configures the HTTP router with all application
// routes. Management routes require a credential carrying the admin-all
// scope; quota and audit logging apply to every authenticated request.
func NewRouter(opts *RouterOptions) http.Handler {
	mux := http.NewServeMux()

	startTime := time.Now()
	infraHandlers := infra.New(startTime)
	adminHandlers := admin.New(opts.Service, startTime)

	// Public routes (no auth)
	mux.HandleFunc("GET /api/health", infraHandlers.HealthCheck)

	// Management routes (admin-all scope)
	adminAuth := auth.APIKeyAuth(opts.Service, keys.ScopeAdminAll)
	withAdmin := func(h http.HandlerFunc) http.Handler {
		return adminAuth(h)
	}

	mux.Handle("POST /api/admin/keys", withAdmin(adminHandlers.CreateKey))
	mux.Handle("GET /api/admin/keys", withAdmin(adminHandlers.ListKeys))
	mux.Handle("POST /api/admin/keys/{id}/rotate", withAdmin(adminHandlers.RotateKey))
	mux.Handle("POST /api/admin/keys/{id}/revoke", withAdmin(adminHandlers.RevokeKey))
	mux.Handle("PUT /api/admin/keys/{id}/ratelimit", withAdmin(adminHandlers.SetRateLimit))
	mux.Handle("GET /api/admin/keys/{id}/usage", withAdmin(adminHandlers.GetUsage))
	mux.Handle("GET /api/admin/logs", withAdmin(adminHandlers.GetRequestLogs))

	// Apply middleware chain (order: outer to inner)
	var h http.Handler = mux

	if opts.Logger != nil {
		h = middleware.RequestLogger(opts.Logger)(h)
	}
	h = middleware.RequestID(h)
	h = middleware.CORS(h)

	return h
}
