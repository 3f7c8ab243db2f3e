package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/MikeSquared-Agency/TwinScore/internal/config"
	"github.com/MikeSquared-Agency/TwinScore/internal/energymix"
	"github.com/MikeSquared-Agency/TwinScore/internal/hermes"
	"github.com/MikeSquared-Agency/TwinScore/internal/metrics"
	"github.com/MikeSquared-Agency/TwinScore/internal/scoring"
	"github.com/MikeSquared-Agency/TwinScore/internal/store"
)

// NewRouter wires the evaluation API. h and mix may be nil.
func NewRouter(e *scoring.Engine, s store.Store, h hermes.Client, mix energymix.Provider, m *metrics.Metrics, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimitPerMinute))

	evaluate := NewEvaluateHandler(e, s, h, mix, cfg.EnergyMix.Zone, cfg.EnergyMixTimeout(), m, logger)
	explain := NewExplainHandler(e, s)
	presetsH := NewPresetsHandler(evaluate)
	admin := NewAdminHandler(s, e)

	// Unversioned path kept for the web form client.
	r.Post("/evaluate", evaluate.Legacy)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/evaluate", evaluate.Evaluate)

		r.Get("/evaluations", evaluate.List)
		r.Post("/evaluations/explain", explain.Explain)
		r.Get("/evaluations/{id}", evaluate.Get)
		r.Get("/evaluations/{id}/explain", explain.ExplainStored)

		r.Get("/presets", presetsH.List)
		r.Get("/presets/{application}", presetsH.Get)
		r.Post("/presets/{application}/evaluate", presetsH.Evaluate)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Get("/stats", admin.Stats)
			r.Get("/config/scoring", admin.Scoring)
		})
	})

	return corsHandler(cfg.Server.CORSOrigins).Handler(r)
}

func corsHandler(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", ClientIDHeader},
		MaxAge:         600,
	})
}

func NewMetricsRouter(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return r
}
