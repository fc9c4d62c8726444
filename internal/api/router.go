package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/paramstore/internal/api/middleware"
	"github.com/phrazzld/paramstore/internal/api/shared"
	"github.com/phrazzld/paramstore/internal/platform/metrics"
	"github.com/phrazzld/paramstore/internal/service"
	"github.com/phrazzld/paramstore/internal/service/auth"
)

// RouterDeps are the collaborators of NewRouter. Metrics may be nil.
type RouterDeps struct {
	Service    *service.ParameterService
	JWTService auth.JWTService
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// NewRouter builds the admin API. /health, /metrics and /api/globals are
// public; every other /api route requires a bearer token.
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewTraceMiddleware(log))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	parameters := NewParameterHandler(deps.Service, log)
	authMiddleware := middleware.NewAuthMiddleware(deps.JWTService)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/globals", parameters.Globals)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/validators", parameters.Validators)
			r.Get("/parameters", parameters.ListParameters)
			r.Post("/parameters/import", parameters.Import)
			r.Get("/parameters/{slug}", parameters.GetParameter)
			r.Put("/parameters/{slug}/value", parameters.SetValue)
			r.Get("/parameters/{slug}/history", parameters.History)
			r.Delete("/parameters/{slug}", parameters.DeleteParameter)
		})
	})

	return r
}
