package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moveinsync/movi/internal/adapter/deepgram"
	"github.com/moveinsync/movi/internal/adapter/elevenlabs"
	movihttp "github.com/moveinsync/movi/internal/adapter/http"
	"github.com/moveinsync/movi/internal/adapter/openai"
	"github.com/moveinsync/movi/internal/adapter/otel"
	"github.com/moveinsync/movi/internal/adapter/ristretto"
	"github.com/moveinsync/movi/internal/adapter/sqlite"
	"github.com/moveinsync/movi/internal/adapter/ws"
	"github.com/moveinsync/movi/internal/config"
	"github.com/moveinsync/movi/internal/logger"
	"github.com/moveinsync/movi/internal/resilience"
	"github.com/moveinsync/movi/internal/service"
)

func main() {
	seed := flag.Bool("seed", false, "reset the database to the demo fleet dataset and exit")
	flag.Parse()

	if err := run(*seed); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(seed bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	defer logCloser.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"sqlite_path", cfg.SQLite.Path,
	)

	ctx := context.Background()

	// --- Telemetry ---
	otelShutdown, err := otel.Setup(ctx, cfg.Logging.Service, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	// --- Storage ---
	db, err := sqlite.Open(ctx, cfg.SQLite)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := sqlite.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	if seed {
		if err := sqlite.Seed(ctx, db); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		slog.Info("database seeded with demo fleet dataset")
		return nil
	}

	store := sqlite.NewStore(db)

	toolCache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer toolCache.Close()

	// --- Outbound clients ---
	model := openai.NewClient(cfg.OpenAI)
	model.SetBreaker(resilience.NewBreaker("openai", cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	transcriber := deepgram.NewClient(cfg.Deepgram)
	transcriber.SetBreaker(resilience.NewBreaker("deepgram", cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	synthesizer := elevenlabs.NewClient(cfg.ElevenLabs)
	synthesizer.SetBreaker(resilience.NewBreaker("elevenlabs", cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	// --- Services ---
	hub := ws.NewHub(log)

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	sessions := service.NewSessionManager(cfg.Session, log)
	sessions.StartCleanup(ctx)

	registry := service.NewRegistry(store, hub)
	executor := service.NewCachedExecutor(registry, toolCache, cfg.Cache.TTL, log)
	evaluator := service.NewConsequenceEvaluator(store)
	agent := service.NewAgent(sessions, executor, evaluator, model, model, registry, hub, metrics, cfg.Session, log)
	fleet := service.NewTransportService(store, log)

	// --- HTTP ---
	handlers := movihttp.NewHandlers(agent, fleet, transcriber, synthesizer, log)

	router := movihttp.NewRouter(cfg.Server, handlers, hub,
		otel.HTTPMiddleware(cfg.Logging.Service))

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
