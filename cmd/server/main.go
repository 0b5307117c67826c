// curation-service
//
// Maintains the external gallery directory and keeps open-call listings
// honest:
//   - merges raw portal records into canonical galleries
//   - enriches galleries from their own websites (cron)
//   - validates external listings and prunes invalid or expired ones (cron)
//
// Serves the directory and validation state over HTTP and gRPC, and
// publishes job summaries to Redis.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"

	"artfair/curation-service/internal/api"
	"artfair/curation-service/internal/config"
	"artfair/curation-service/internal/crawl"
	"artfair/curation-service/internal/curation"
	"artfair/curation-service/internal/db"
	"artfair/curation-service/internal/directory"
	"artfair/curation-service/internal/enrichment"
	"artfair/curation-service/internal/fetch"
	"artfair/curation-service/internal/grpcserver"
	"artfair/curation-service/internal/jobs"
	"artfair/curation-service/internal/metrics"
	"artfair/curation-service/internal/scheduler"
	"artfair/curation-service/internal/validation"
)

func main() {
	if err := run(); err != nil {
		slog.Error("curation-service exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))
	log := slog.Default().With("component", "main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Info("connecting to PostgreSQL")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, int32(cfg.CrawlConcurrency)+4)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()

	dirStore := directory.NewPostgresStore(pool)
	valStore := validation.NewPostgresStore(pool)
	if err := dirStore.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := valStore.EnsureSchema(ctx); err != nil {
		return err
	}
	log.Info("PostgreSQL connected")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Info("connecting to Redis")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()
	log.Info("Redis connected")

	// ── Metrics ──────────────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// ── Jobs ─────────────────────────────────────────────────────────────────
	crawlPool := crawl.NewPool(cfg.CrawlConcurrency, cfg.CrawlHostRPS)

	crawler := enrichment.NewCrawler(dirStore,
		fetch.NewClient(cfg.CrawlUserAgent, enrichment.FetchTimeout), crawlPool, m)
	crawler.BatchSize = cfg.EnrichBatchSize

	validator := validation.NewValidator(valStore,
		fetch.NewClient(cfg.CrawlUserAgent, validation.FetchTimeout), crawlPool, m)

	runner := jobs.NewRunner(crawler, validator, jobs.NewRedisPublisher(rdb), m)

	sched := scheduler.New(runner, cfg.EnrichInterval, cfg.ValidateInterval, cfg.RunOnStart)
	if err := sched.Start(ctx); err != nil {
		return err
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	svc := curation.NewService(dirStore, valStore, m)
	h := api.New(svc, runner, reg, cfg.JobSecret, slog.Default())

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     h.Router(),
		ReadTimeout: 10 * time.Second,
		// Job routes answer after a full run.
		WriteTimeout: 10 * time.Minute,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("HTTP listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	// ── gRPC server ──────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("gRPC listen: %w", err)
	}
	gs := grpc.NewServer()
	health := grpcserver.Register(gs, grpcserver.NewServer(svc))
	go func() {
		log.Info("gRPC listening", "port", cfg.GRPCPort)
		if err := gs.Serve(lis); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	case runErr = <-errCh:
		log.Error("server failed, shutting down", "err", runErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	health.Shutdown()
	cancel()
	sched.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown error", "err", err)
	}
	gs.GracefulStop()
	log.Info("stopped")
	return runErr
}
