package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/wallet-ranker/internal/domain/entities"
	"github.com/bimakw/wallet-ranker/internal/domain/repositories"
	"github.com/bimakw/wallet-ranker/internal/domain/scoring"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/cache"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/metrics"
)

// Recalculator recomputes every stored wallet's scores
type Recalculator interface {
	RecalculateAll(ctx context.Context) (*RecalculationResult, error)
}

// Ensure RankingService implements Recalculator
var _ Recalculator = (*RankingService)(nil)

// RankingService re-derives all scores and stable ranks from a population snapshot
type RankingService struct {
	walletRepo       repositories.WalletRepository
	scorer           *scoring.Scorer
	cache            *cache.RedisCache
	scoreConcurrency int
	writeConcurrency int
	logger           *zap.Logger
}

// NewRankingService creates a new ranking service
func NewRankingService(
	walletRepo repositories.WalletRepository,
	scorer *scoring.Scorer,
	cache *cache.RedisCache,
	scoreConcurrency int,
	writeConcurrency int,
	logger *zap.Logger,
) *RankingService {
	if scoreConcurrency < 1 {
		scoreConcurrency = 1
	}
	if writeConcurrency < 1 {
		writeConcurrency = 1
	}
	return &RankingService{
		walletRepo:       walletRepo,
		scorer:           scorer,
		cache:            cache,
		scoreConcurrency: scoreConcurrency,
		writeConcurrency: writeConcurrency,
		logger:           logger,
	}
}

// RecalculateAll scores every wallet against the same snapshot and writes each
// result independently. A failed write is counted and logged; it does not stop
// the batch. Running it twice over an unchanged snapshot yields identical results.
func (s *RankingService) RecalculateAll(ctx context.Context) (*RecalculationResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))

	wallets, err := s.walletRepo.ListAll(ctx)
	if err != nil {
		metrics.RecalculationRuns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load wallets: %w", err)
	}
	metrics.PopulationSize.Set(float64(len(wallets)))

	logger.Info("Recalculating rankings", zap.Int("wallets", len(wallets)))

	updates := s.score(wallets)

	var updated, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.writeConcurrency)

	for _, u := range updates {
		u := u
		g.Go(func() error {
			if ctx.Err() != nil {
				failed.Add(1)
				return nil
			}
			if err := s.walletRepo.UpdateScores(ctx, u); err != nil {
				failed.Add(1)
				logger.Error("Failed to update wallet scores",
					zap.String("address", u.Address),
					zap.Error(err),
				)
				return nil
			}
			updated.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	s.invalidate(ctx)

	result := &RecalculationResult{
		RunID:          runID,
		WalletsUpdated: int(updated.Load()),
		WalletsFailed:  int(failed.Load()),
		DurationMs:     time.Since(start).Milliseconds(),
	}

	metrics.RecalculationDuration.Observe(time.Since(start).Seconds())
	metrics.RecalculationWallets.WithLabelValues("updated").Set(float64(result.WalletsUpdated))
	metrics.RecalculationWallets.WithLabelValues("failed").Set(float64(result.WalletsFailed))

	if err := ctx.Err(); err != nil {
		metrics.RecalculationRuns.WithLabelValues("cancelled").Inc()
		logger.Warn("Recalculation cancelled", zap.Int("updated", result.WalletsUpdated), zap.Error(err))
		return result, err
	}

	outcome := "ok"
	if result.WalletsFailed > 0 {
		outcome = "partial"
	}
	metrics.RecalculationRuns.WithLabelValues(outcome).Inc()

	logger.Info("Rankings recalculated",
		zap.Int("updated", result.WalletsUpdated),
		zap.Int("failed", result.WalletsFailed),
		zap.Int64("duration_ms", result.DurationMs),
	)

	return result, nil
}

// score computes component scores, totals and stable ranks for wallets in storage order
func (s *RankingService) score(wallets []entities.WalletRecord) []entities.ScoreUpdate {
	raw := make([]entities.RawMetrics, len(wallets))
	for i := range wallets {
		raw[i] = wallets[i].RawMetrics
	}
	population := scoring.NewPopulation(raw)

	scored := make([]scoring.Scored, len(wallets))
	p := pool.New().WithMaxGoroutines(s.scoreConcurrency)
	for i := range raw {
		i := i
		p.Go(func() {
			scored[i] = s.scorer.Score(raw[i], population)
		})
	}
	p.Wait()

	totals := make([]float64, len(scored))
	for i := range scored {
		totals[i] = scored[i].TotalScore
	}
	ranks := scoring.AssignRanks(totals)

	updates := make([]entities.ScoreUpdate, len(wallets))
	for i := range wallets {
		updates[i] = entities.ScoreUpdate{
			Address:    wallets[i].Address,
			Scores:     scored[i].Scores,
			TotalScore: scored[i].TotalScore,
			Rank:       ranks[i],
		}
	}
	return updates
}

func (s *RankingService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, pattern := range []string{leaderboardCachePattern, "wallets:*"} {
		if err := s.cache.DeletePattern(context.WithoutCancel(ctx), pattern); err != nil {
			s.logger.Warn("Failed to invalidate cache", zap.String("pattern", pattern), zap.Error(err))
		}
	}
}
