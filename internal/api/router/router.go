package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/dermassist/skin-triage-platform/internal/http/middleware"
	"github.com/dermassist/skin-triage-platform/internal/triage"
	"github.com/dermassist/skin-triage-platform/internal/users"
	"github.com/dermassist/skin-triage-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	UsersHandler   *users.Handler
	TriageHandler  *triage.Handler
	AuthSecret     string
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.UsersHandler != nil {
			public.Post("/api/register", cfg.UsersHandler.Register)
			public.Post("/api/login", cfg.UsersHandler.Login)
			public.Get("/api/verify/{token}", cfg.UsersHandler.Verify)
		}
	})

	// Authenticated patient endpoints
	if cfg.TriageHandler != nil {
		r.Group(func(authed chi.Router) {
			authed.Use(httpmiddleware.Auth(cfg.AuthSecret))
			authed.Post("/api/predict", cfg.TriageHandler.Predict)
			authed.Get("/api/history", cfg.TriageHandler.History)
			authed.Get("/api/appointments", cfg.TriageHandler.Appointments)
		})

		// Clinical and administrative endpoints
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.Auth(cfg.AuthSecret))
			admin.With(httpmiddleware.RequireRole(users.RoleAdmin)).
				Post("/models", cfg.TriageHandler.UploadModel)
			admin.With(httpmiddleware.RequireRole(users.RoleDoctor, users.RoleAdmin)).
				Get("/overview", cfg.TriageHandler.Overview)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
