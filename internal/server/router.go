// Package server assembles the HTTP surface.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"privacyhub/internal/handlers"
	mw "privacyhub/internal/middleware"
	"privacyhub/internal/observability"
	"privacyhub/internal/services"
	"privacyhub/internal/store"
)

type Deps struct {
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string

	Auth        *services.AuthService
	Tokens      *services.TokenService
	Revocations *services.Revocations
	Scans       *services.ScanService

	Identities store.IdentityStore
	Profiles   store.ProfileStore
	Alerts     store.AlertStore
	Checklists store.ChecklistStore
}

func NewRouter(d Deps) http.Handler {
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.ZapRequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(mw.Metrics(d.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))
	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	authHandler := handlers.NewAuthHandler(d.Auth, d.Revocations, d.Logger)
	userHandler := handlers.NewUserHandler(d.Identities, d.Profiles, d.Logger)
	alertHandler := handlers.NewAlertHandler(d.Alerts, d.Logger)
	checklistHandler := handlers.NewChecklistHandler(d.Checklists, d.Logger)
	analysisHandler := handlers.NewAnalysisHandler(d.Scans, d.Logger)
	dashboardHandler := handlers.NewDashboardHandler(d.Profiles, d.Alerts, d.Checklists, d.Scans, d.Logger)
	authMW := mw.NewAuthMiddleware(d.Tokens, d.Revocations, d.Logger)

	r.Route("/api", func(api chi.Router) {
		api.NotFound(handlers.NotFound)
		api.MethodNotAllowed(handlers.MethodNotAllowed)

		api.Post("/auth/register", authHandler.Register)
		api.Post("/auth/login", authHandler.Login)

		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)

			pr.Post("/auth/logout", authHandler.Logout)

			pr.Get("/users/me", userHandler.GetMe)
			pr.Patch("/users/me", userHandler.UpdateMe)

			pr.Get("/dashboard/summary", dashboardHandler.Summary)

			pr.Get("/alerts", alertHandler.List)

			pr.Get("/checklists", checklistHandler.List)
			pr.Get("/checklists/{checklistID}", checklistHandler.Get)
			pr.Patch("/checklists/{checklistID}/items/{itemID}/status", checklistHandler.UpdateItemStatus)

			pr.Post("/data-analysis/scan", analysisHandler.StartScan)
			pr.Get("/data-analysis/scans/{scanID}", analysisHandler.GetScan)
			pr.Get("/data-analysis/reports/latest", analysisHandler.LatestReport)
		})
	})

	return r
}
