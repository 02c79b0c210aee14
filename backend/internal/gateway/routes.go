package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"schedule_web/backend/internal/backendapi"
	"schedule_web/backend/internal/gateway/handlers"
	"schedule_web/backend/internal/gateway/session"
	"schedule_web/backend/internal/gateway/util"
	"schedule_web/backend/internal/shared"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	Config *shared.WebConfig
	// Backend is nil when running offline.
	Backend     *backendapi.Client
	Sessions    *session.Store
	Templates   *handlers.Templates
	Gatherer    prometheus.Gatherer
	StorageMode string
}

// SetupRoutes configures the Chi router, middleware, and route handlers.
func SetupRoutes(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	cfg := deps.Config

	// 1. Global Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	// 2. Initialize Handlers
	adminHandler := &handlers.AdminHandler{Templates: deps.Templates}
	timetableHandler := &handlers.TimetableHandler{Templates: deps.Templates}
	if deps.Backend != nil {
		adminHandler.Options = deps.Backend
		timetableHandler.Generator = deps.Backend
	}

	// 3. Operational Routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		util.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"status":   "ok",
			"storage":  deps.StorageMode,
			"sessions": deps.Sessions.Len(),
		})
	})
	r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	// 4. Session Routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Sessions.Middleware)
		r.Use(CSRFForward(cfg.Backend.CSRFCookieName))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/timetable", http.StatusSeeOther)
		})

		// Timetable (public)
		r.Route("/timetable", func(r chi.Router) {
			r.Get("/", timetableHandler.ShowSelection)
			r.Get("/view", timetableHandler.ShowTable)
			r.Post("/back", timetableHandler.Back)
			r.Post("/toggle", timetableHandler.Toggle)
			r.Get("/export.csv", timetableHandler.ExportCSV)
			r.Get("/export.xlsx", timetableHandler.ExportXLSX)
			r.With(AdminGuard(cfg.Security.JWTSecret)).Post("/generate", timetableHandler.Generate)
		})
		r.Get("/api/timetable/grid", timetableHandler.GetGrid)

		// Admin Management
		r.Group(func(r chi.Router) {
			r.Use(AdminGuard(cfg.Security.JWTSecret))

			r.Route("/admin", func(r chi.Router) {
				r.Get("/", adminHandler.Index)
				r.Get("/{entity}", adminHandler.ShowPage)
				r.Post("/{entity}/submit", adminHandler.Submit)
				r.Post("/{entity}/form", adminHandler.UpdateForm)
				r.Post("/{entity}/edit/{index}", adminHandler.Edit)
				r.Post("/{entity}/cancel", adminHandler.Cancel)
				r.Post("/{entity}/remove/{index}", adminHandler.Remove)
				r.Post("/{entity}/refresh", adminHandler.Refresh)
			})
			r.Get("/api/admin/{entity}", adminHandler.GetView)
		})
	})

	return r
}
