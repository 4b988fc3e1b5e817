/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the mobile/web client

ROUTE GROUPS:
  /api/jobs/*       Job lifecycle
  /api/timer/*      Single active timer
  /api/earnings     Computed earnings
  /api/goals/*      Daily goals and progress
  /api/user         Technician profile
  /api/setup        Onboarding
  /api/settings/*   App and compensation settings
  /api/trades       Trade preset catalog
  /api/reset        Full state reset (dev only)

SECURITY NOTE:
  Single-technician engine; no authentication middleware. Everything
  listens on localhost by default.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/fieldquest/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Job routes
		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", h.ListJobs)
			r.Post("/", h.CreateJob)
			r.Get("/{id}", h.GetJob)
			r.Put("/{id}", h.UpdateJob)
			r.Delete("/{id}", h.DeleteJob)
			r.Post("/{id}/complete", h.CompleteJob)
		})

		// Timer routes
		r.Route("/timer", func(r chi.Router) {
			r.Get("/", h.GetTimer)
			r.Post("/start", h.StartTimer)
			r.Post("/pause", h.PauseTimer)
			r.Post("/stop", h.StopTimer)
		})

		// Earnings and goals
		r.Get("/earnings", h.GetEarnings)
		r.Route("/goals", func(r chi.Router) {
			r.Get("/", h.GetGoals)
			r.Put("/", h.UpdateGoals)
			r.Get("/progress", h.GetGoalProgress)
		})

		// Profile and onboarding
		r.Route("/user", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Post("/", h.CreateUser)
		})
		r.Post("/setup", h.CompleteSetup)
		r.Get("/trades", h.ListTrades)

		// Settings
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.UpdateSettings)
			r.Get("/company", h.GetCompanySettings)
			r.Put("/company", h.UpdateCompanySettings)
		})

		// Admin
		r.Post("/reset", h.Reset)
	})

	return r
}
