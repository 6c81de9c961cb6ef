package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coreport/internal/audittrail"
	"coreport/internal/auditlog"
	auditloghandler "coreport/internal/auditlog/handler"
	"coreport/internal/extraction"
	"coreport/internal/platform/config"
	"coreport/internal/platform/httpserver"
	"coreport/internal/platform/logger"
	"coreport/internal/platform/metrics"
	"coreport/internal/platform/middleware"
	"coreport/internal/platform/postgres"
	platformredis "coreport/internal/platform/redis"
	"coreport/internal/query"
	queryhandler "coreport/internal/query/handler"
	querymetrics "coreport/internal/query/metrics"
	"coreport/internal/retrieval"
	"coreport/internal/template"
	templatehandler "coreport/internal/template/handler"
	"coreport/internal/validation"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	registry := template.NewRegistry()
	engine := validation.NewEngine(registry)
	builder := audittrail.NewBuilder(registry)

	// Storage: PostgreSQL when configured, in-memory otherwise so the
	// service runs without infrastructure for local development.
	var corpus retrieval.CorpusStore
	var auditStore auditlog.Store
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pgCorpus := retrieval.NewPostgresStore(db, cfg.RetrievalTopK)
		if err := pgCorpus.EnsureSchema(ctx); err != nil {
			log.Error("corpus schema setup failed", "error", err)
			os.Exit(1)
		}
		pgAudit := auditlog.NewPostgresStore(db)
		if err := pgAudit.EnsureSchema(ctx); err != nil {
			log.Error("audit schema setup failed", "error", err)
			os.Exit(1)
		}
		corpus = pgCorpus
		auditStore = pgAudit
	} else {
		log.Warn("no postgres DSN configured, using in-memory stores")
		corpus = retrieval.NewInMemoryStore(cfg.RetrievalTopK)
		auditStore = auditlog.NewInMemoryStore()
	}

	seeded, err := retrieval.Seed(ctx, corpus)
	if err != nil {
		log.Error("corpus seeding failed", "error", err)
		os.Exit(1)
	}
	if seeded > 0 {
		log.Info("seeded regulatory corpus", "documents", seeded)
	}

	var retriever query.Retriever = corpus
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		retriever = retrieval.NewCache(corpus, redisClient.Client, cfg.RetrievalTTL, log)
		log.Info("retrieval cache enabled", "ttl", cfg.RetrievalTTL)
	}

	extractor := extraction.NewClient(
		cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel,
		cfg.CollaboratorTimeout, log,
	)

	publisher := auditlog.NewPublisher(auditStore)
	svc := query.NewService(
		registry, engine, builder,
		retriever, extractor, publisher,
		query.Config{
			CollaboratorTimeout:  cfg.CollaboratorTimeout,
			MaxCollaboratorCalls: cfg.MaxCollaboratorCalls,
			DefaultCurrency:      cfg.DefaultCurrency,
		},
		log, querymetrics.New(),
	)

	httpMetrics := metrics.New()

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httpMetrics.Middleware)

	r.Route("/api", func(api chi.Router) {
		if cfg.JWTSigningKey != "" {
			api.Use(middleware.RequireAuth(cfg.JWTSigningKey, log))
		}
		queryhandler.New(svc, registry, log).Register(api)
		templatehandler.New(registry, engine, log).Register(api)
		auditloghandler.New(publisher, log).Register(api)
	})

	healthz := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
	r.Get("/", healthz)
	r.Get("/health", healthz)
	r.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, r)

	go func() {
		log.Info("starting coreport", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
