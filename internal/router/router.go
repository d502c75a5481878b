package router

import (
	"net/http"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/handler"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/middleware"
)

// New creates and configures the HTTP router
func New(h *handler.Handler, mw *middleware.Middleware, cfg middleware.RateLimitConfig) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoints
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)

	// Student-facing flow. Issuance is guarded by the in-memory
	// sliding-window limiter inside the handler, not by the API limiter.
	mux.HandleFunc("GET /generate_qr", h.GenerateQR)
	mux.HandleFunc("GET /scan/{token}", h.Scan)
	mux.HandleFunc("POST /checkin", h.Checkin)

	// Administrative API (redis-counter rate limited)
	apiLimit := mw.RateLimit(cfg)

	mux.Handle("GET /api/settings", apiLimit(http.HandlerFunc(h.GetSettings)))
	mux.Handle("POST /api/settings", apiLimit(http.HandlerFunc(h.UpdateSettings)))

	mux.Handle("POST /api/sessions", apiLimit(http.HandlerFunc(h.CreateSession)))
	mux.Handle("GET /api/sessions", apiLimit(http.HandlerFunc(h.ListSessions)))
	mux.Handle("GET /api/sessions/current", apiLimit(http.HandlerFunc(h.CurrentSession)))
	mux.Handle("POST /api/sessions/{id}/activate", apiLimit(http.HandlerFunc(h.ActivateSession)))
	mux.Handle("POST /api/sessions/{id}/deactivate", apiLimit(http.HandlerFunc(h.DeactivateSession)))

	mux.Handle("POST /api/students", apiLimit(http.HandlerFunc(h.CreateStudent)))
	mux.Handle("GET /api/students", apiLimit(http.HandlerFunc(h.ListStudents)))

	mux.Handle("GET /api/denied-attempts", apiLimit(http.HandlerFunc(h.ListDeniedAttempts)))
	mux.Handle("GET /api/fingerprints", apiLimit(http.HandlerFunc(h.ListFingerprints)))

	// Apply middleware stack
	var root http.Handler = mux
	// CORS for the instructor control panel
	root = mw.CORS([]string{"http://localhost:3000", "http://localhost:5173"})(root)
	root = mw.SecurityHeaders(root)
	root = mw.Logger(root)
	root = mw.RequestID(root)
	// Panic recovery (outermost)
	root = mw.Recover(root)

	return root
}
