package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-ranker/internal/application/services"
	"github.com/bimakw/wallet-ranker/internal/config"
	"github.com/bimakw/wallet-ranker/internal/domain/scoring"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/cache"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/database"
	"github.com/bimakw/wallet-ranker/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	defer log.Sync()

	weights := cfg.Scoring.Weights()
	log.Info("Starting wallet-ranker recalculator",
		zap.Duration("interval", cfg.Worker.RecalculationInterval),
		zap.String("weights_version", weights.Version),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to open wallet store", zap.Error(err))
	}
	defer store.Close()

	// Redis is only used here to invalidate API caches after a run
	redisCache, err := cache.NewRedisCache(cfg.Redis, cfg.API.CacheTTL, log)
	if err != nil {
		log.Warn("Failed to connect to Redis, cached pages will expire on their own", zap.Error(err))
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	rankingService := services.NewRankingService(
		store.Wallets(),
		scoring.NewScorer(weights),
		redisCache,
		cfg.Worker.ScoreConcurrency,
		cfg.Worker.WriteConcurrency,
		log,
	)

	scheduler := services.NewRecalculationScheduler(
		rankingService,
		cfg.Worker.RecalculationInterval,
		cfg.Worker.RunOnStart,
		log,
	)
	scheduler.Start(ctx)

	go startMetricsServer(cfg.Worker.MetricsPort, scheduler, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Received shutdown signal, stopping recalculator...")

	cancel()
	scheduler.Stop()

	log.Info("Recalculator stopped")
}

func startMetricsServer(port int, scheduler *services.RecalculationScheduler, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		status := scheduler.Status()
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK runs=%d failures=%d last_run=%s",
			status.Runs, status.Failures, status.LastRunAt.Format(time.RFC3339))
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info("Starting metrics server", zap.String("addr", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("Metrics server error", zap.Error(err))
	}
}
