package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookgraph/internal/auth"
	"bookgraph/internal/authz"
	"bookgraph/internal/config"
	"bookgraph/internal/datasource"
	"bookgraph/internal/graph"
	"bookgraph/internal/httpx"
	"bookgraph/internal/logger"
	"bookgraph/internal/platform/jsonserver"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bookgraph: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client := jsonserver.NewClient(cfg.RESTBaseURL, jsonserver.Options{
		Timeout: cfg.RESTTimeout,
		RPS:     cfg.RESTRPS,
		Logger:  log.Named("rest"),
		Metrics: jsonserver.NewMetrics(reg),
	})
	tokens := auth.NewTokens(cfg.JWTSecret)
	svc := datasource.NewService(client, tokens, log)

	graphqlHandler, err := newGraphQLHandler(cfg, svc, log)
	if err != nil {
		return err
	}

	limiter := httpx.NewRateLimitMiddleware(cfg.InboundRPS, cfg.InboundBurst)
	defer limiter.Stop()

	router := newRouter(routerDeps{
		cfg:      cfg,
		log:      log,
		graphql:  graphqlHandler,
		tokens:   tokens,
		ready:    svc.Ping,
		metrics:  httpx.NewMetrics(reg),
		gatherer: reg,
		limiter:  limiter,
	})

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("starting server",
			zap.String("addr", cfg.Addr),
			zap.String("env", cfg.Env),
			zap.String("rest_api", cfg.RESTBaseURL),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errc
}

func newGraphQLHandler(cfg *config.Config, svc *datasource.Service, log *zap.Logger) (http.Handler, error) {
	schema, err := graph.NewSchema(graph.NewResolver(svc, authz.NewGate(svc), log.Named("graph")), cfg.MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return graph.NewHandler(schema, graph.CookieConfig{Name: cfg.CookieName, Secure: cfg.CookieSecure}, log.Named("http")), nil
}
