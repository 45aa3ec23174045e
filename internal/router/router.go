// Package router sets up all HTTP routes and middleware chains for the
// prerender service. The render callback authenticates with its one-time
// secret and stays outside the API-key group; event intake and the admin
// surface require the shared key.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"prerenderd/internal/handlers"
	"prerenderd/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(apiKey string, prerender *handlers.Prerender, events *handlers.Events, pages *handlers.Pages, admin *handlers.Admin) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Health check — no auth.
	r.Get("/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		// Renderer callback — secret-authenticated, not key-protected.
		r.Post("/prerender", prerender.Callback)

		// Edge read path — public by design, it only serves cached HTML.
		r.Get("/html", pages.GetHTML)

		// CMS-facing surface — shared API key.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPIKey(apiKey))

			r.Route("/events", func(r chi.Router) {
				r.Post("/post", events.PostSaved)
				r.Delete("/post/{id}", events.PostDeleted)
				r.Post("/term", events.TermSaved)
				r.Delete("/term/{id}", events.TermDeleted)
			})

			r.Post("/flush", admin.Flush)
			r.Get("/invalidations", admin.Invalidations)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
