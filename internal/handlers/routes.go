package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AllowedOrigins []string
	Limiter        RateLimiter // optional
	RateLimit      int
	RateWindow     time.Duration
	RequestTimeout time.Duration
}

// Routes builds the HTTP router
func (h *Handler) Routes(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Ingest-Token"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Limiter != nil && cfg.RateLimit > 0 {
			r.Use(h.RateLimit(cfg.Limiter, cfg.RateLimit, cfg.RateWindow))
		}

		r.Route("/rikishi", func(r chi.Router) {
			r.Get("/", h.ListRikishi)
			r.Get("/search/{query}", h.SearchRikishi)
			r.Get("/{id}", h.GetRikishi)
			r.Get("/{id}/matches", h.GetRikishiMatches)
			r.Get("/{id}/stats", h.GetRikishiStats)
		})

		r.Route("/predictions", func(r chi.Router) {
			r.Use(h.AuthMiddleware)
			r.Get("/", h.GetPredictions)
			r.Post("/", h.CreatePrediction)
			r.Get("/stats", h.GetPredictionStats)
			r.Get("/ranking", h.GetPredictionRanking)
			r.Get("/history", h.GetPredictionHistory)
			r.Get("/{id}", h.GetPrediction)
			r.Post("/{id}/result", h.RecordResult)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.IngestAuthMiddleware)
			r.Post("/ingest/matches", h.IngestMatches)
			r.Post("/ingest/rikishi", h.IngestRikishi)
			r.Post("/system/install", h.InstallDatabase)
		})
	})

	return r
}
