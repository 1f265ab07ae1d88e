package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-ranker/internal/application/services"
	"github.com/bimakw/wallet-ranker/internal/config"
	"github.com/bimakw/wallet-ranker/internal/domain/scoring"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/cache"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/database"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/ethereum"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/explorer"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/marketplace"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/metrics"
	"github.com/bimakw/wallet-ranker/internal/logger"
	"github.com/bimakw/wallet-ranker/internal/presentation/handlers"
	"github.com/bimakw/wallet-ranker/internal/presentation/middleware"
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
	log.Info("Starting wallet-ranker API",
		zap.Int("port", cfg.API.Port),
		zap.String("weights_version", weights.Version),
		zap.Time("epoch", cfg.Scoring.Epoch),
	)

	store, err := database.Open(context.Background(), cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to open wallet store", zap.Error(err))
	}
	defer store.Close()

	// Redis is optional
	redisCache, err := cache.NewRedisCache(cfg.Redis, cfg.API.CacheTTL, log)
	if err != nil {
		log.Warn("Failed to connect to Redis, running without cache", zap.Error(err))
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// The RPC node is optional; without it the explorer scans to the default end block
	var (
		chainHead   explorer.ChainHead
		nodeChecker handlers.HealthChecker
	)
	if cfg.Ethereum.RPCURL != "" {
		ethClient, err := ethereum.NewClient(cfg.Ethereum, log)
		if err != nil {
			log.Warn("Failed to connect to RPC node, chain head pinning disabled", zap.Error(err))
		} else {
			defer ethClient.Close()
			chainHead = ethClient
			nodeChecker = ethClient
		}
	}

	walletRepo := store.Wallets()
	if stored, err := walletRepo.Count(context.Background()); err != nil {
		log.Warn("Failed to count stored wallets", zap.Error(err))
	} else {
		metrics.PopulationSize.Set(float64(stored))
		log.Info("Wallet population loaded", zap.Int64("wallets", stored))
	}
	txSource := explorer.NewClient(cfg.Explorer, chainHead, log)
	nftSource := marketplace.NewClient(cfg.Marketplace, log)

	sanitizer := scoring.NewSanitizer(cfg.Scoring.Thresholds(), log)
	extractor := scoring.NewExtractor(cfg.Scoring.Epoch, sanitizer)
	scorer := scoring.NewScorer(weights)

	walletService := services.NewWalletService(
		walletRepo, txSource, nftSource, extractor, scorer, redisCache, cfg.Scoring.PopulationTTL, log,
	)
	leaderboardService := services.NewLeaderboardService(
		walletRepo, redisCache, cfg.API.DefaultPageSize, cfg.API.MaxPageSize, log,
	)
	rankingService := services.NewRankingService(
		walletRepo, scorer, redisCache, cfg.Worker.ScoreConcurrency, cfg.Worker.WriteConcurrency, log,
	)

	walletHandler := handlers.NewWalletHandler(walletService, log)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService, log)
	rankingHandler := handlers.NewRankingHandler(rankingService, log)

	var cacheChecker handlers.HealthChecker
	if redisCache != nil {
		cacheChecker = redisCache
	}
	healthHandler := handlers.NewHealthHandler(store, cacheChecker, nodeChecker)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)

	// Health endpoints (no rate limiting)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))

		walletHandler.RegisterRoutes(r)
		leaderboardHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.API.AdminToken))
			rankingHandler.RegisterRoutes(r)
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	go func() {
		log.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Received shutdown signal, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped")
}
