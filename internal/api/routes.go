package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured. A nil limiter
// disables insert rate limiting.
func NewRouter(h *Handler, limiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, r, http.StatusNotFound, "No route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, r, http.StatusMethodNotAllowed, r.Method+" is not allowed here")
	})

	limitInserts := func(next http.Handler) http.Handler { return next }
	if limiter != nil {
		limitInserts = limiter.Middleware
	}

	// Public routes (no auth required)
	r.Get("/api/v1/health", h.Health)

	r.Route("/rest/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(h.apiKey))
		r.Use(LimitBody)

		r.Post("/rpc/{fn}", h.RPC)
		r.With(TableMiddleware).Get("/{table}", h.Select)
		r.With(TableMiddleware, limitInserts).Post("/{table}", h.Insert)
	})

	return r
}
