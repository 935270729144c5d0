package main

import (
	"context"
	"net/http"
	"time"

	"bookgraph/internal/config"
	"bookgraph/internal/httpx"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const readyTimeout = 2 * time.Second

type routerDeps struct {
	cfg      *config.Config
	log      *zap.Logger
	graphql  http.Handler
	tokens   httpx.TokenVerifier
	ready    func(context.Context) error
	metrics  *httpx.Metrics
	gatherer prometheus.Gatherer
	limiter  *httpx.RateLimitMiddleware
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.AccessLogMiddleware(d.log))
	r.Use(httpx.RecoveryMiddleware(d.log))
	r.Use(d.metrics.Middleware)
	r.Use(httpx.SecurityHeadersMiddleware(d.cfg.EnableHSTS))
	if len(d.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONSuccess(w, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := d.ready(ctx); err != nil {
			d.log.Warn("readiness check failed", zap.Error(err))
			httpx.JSONError(w, r, http.StatusServiceUnavailable, "UPSTREAM_FAILURE", "REST API not ready")
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(d.limiter.Middleware)
		r.Use(httpx.RequestSizeLimitMiddleware(d.cfg.MaxBodyBytes))
		r.Use(httpx.SessionMiddleware(d.tokens, d.cfg.CookieName))
		r.Handle("/graphql", d.graphql)
	})

	return r
}
