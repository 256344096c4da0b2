package api

import (
	"fmt"
	"net/http"
	"shopadmin_server/api/middleware"
	"shopadmin_server/config"
	"shopadmin_server/services"
	"shopadmin_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	chiware "github.com/go-chi/chi/v5/middleware"
)

// App builds the console router. imageBaseURL resolves relative image paths
// served by the backend.
func App(cfg *structs.Config, sm *services.ServiceManager, imageBaseURL string) chi.Router {
	r := chi.NewRouter()

	// create loggers
	mwLogger := config.NewLogger(false)
	standardLogger := config.NewLogger(true)

	// Initialize middleware
	mw := middleware.NewMiddleware(cfg, mwLogger)

	// Core infra
	r.Use(chiware.RequestID)
	// RealIP rewrites RemoteAddr from forwarding headers, which any client can set
	if cfg.Server.TrustProxy {
		r.Use(chiware.RealIP)
	}
	r.Use(chiware.Recoverer)

	// Limits & security
	r.Use(mw.BodyLimit(cfg.Server.MaxBodyBytes))
	r.Use(mw.SecurityHeaders())
	r.Use(mw.RateLimitMiddleware())

	// Observability
	r.Use(mw.SetupLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware)

	r.Use(mw.SetupCORS().Handler)

	// Register all routes
	NewRouterManager(standardLogger, cfg, sm, imageBaseURL).RegisterRoutes(r)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		gecho.Success(w,
			gecho.WithMessage(fmt.Sprintf("Welcome to the %s API", cfg.Server.AppName)),
			gecho.Send(),
		)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		gecho.NotFound(w,
			gecho.Send(),
		)
	})

	return r
}
