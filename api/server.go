/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/commissions/*    Calculation and reconciliation
  /api/adjustments/*    Adjustment ledger
  /api/audit/*          Audit log
  /api/plans, /api/teams, /api/assignments
                        Configuration management

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

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

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Calculation and reconciliation routes
		r.Route("/commissions", func(r chi.Router) {
			r.Post("/calculate", h.CalculateCommissions)
			r.Post("/calculate/export", h.ExportCommissions)
			r.Post("/variance", h.ReconcileVariance)
			r.Post("/variance/export", h.ExportVariance)
		})

		// Adjustment ledger routes
		r.Route("/adjustments", func(r chi.Router) {
			r.Get("/", h.ListAdjustments)
			r.Post("/", h.CreateAdjustment)
			r.Get("/summary", h.SummarizeAdjustments)
			r.Get("/export", h.ExportAdjustments)
			r.Get("/{id}", h.GetAdjustment)
			r.Put("/{id}", h.UpdateAdjustment)
			r.Delete("/{id}", h.RevertAdjustment)
			r.Post("/{id}/approve", h.ApproveAdjustment)
			r.Post("/{id}/reject", h.RejectAdjustment)
			r.Get("/{id}/audit", h.GetAuditTrail)
		})

		// Audit log routes
		r.Route("/audit", func(r chi.Router) {
			r.Get("/", h.ListAuditLog)
			r.Get("/export", h.ExportAuditLog)
		})

		// Configuration routes
		r.Route("/plans", func(r chi.Router) {
			r.Get("/", h.ListPlans)
			r.Post("/", h.CreatePlan)
		})
		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.ListTeams)
			r.Post("/", h.CreateTeam)
		})
		r.Route("/assignments", func(r chi.Router) {
			r.Get("/", h.ListAssignments)
			r.Post("/", h.CreateAssignment)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
