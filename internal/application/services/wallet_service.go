package services

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/wallet-ranker/internal/domain/entities"
	"github.com/bimakw/wallet-ranker/internal/domain/repositories"
	"github.com/bimakw/wallet-ranker/internal/domain/scoring"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/cache"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/ethereum"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/metrics"
)

const populationKey = "population"

// WalletService fetches, scores and stores wallet stats
type WalletService struct {
	walletRepo repositories.WalletRepository
	txSource   repositories.TransactionSource
	nftSource  repositories.NFTSource
	extractor  *scoring.Extractor
	scorer     *scoring.Scorer
	cache      *cache.RedisCache
	population *gocache.Cache
	logger     *zap.Logger
}

// NewWalletService creates a new wallet service. The population snapshot used to
// score a single refresh is reused for populationTTL.
func NewWalletService(
	walletRepo repositories.WalletRepository,
	txSource repositories.TransactionSource,
	nftSource repositories.NFTSource,
	extractor *scoring.Extractor,
	scorer *scoring.Scorer,
	cache *cache.RedisCache,
	populationTTL time.Duration,
	logger *zap.Logger,
) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		txSource:   txSource,
		nftSource:  nftSource,
		extractor:  extractor,
		scorer:     scorer,
		cache:      cache,
		population: gocache.New(populationTTL, time.Minute),
		logger:     logger,
	}
}

// GetByAddress retrieves a stored wallet; nil if it was never fetched
func (s *WalletService) GetByAddress(ctx context.Context, address string) (*WalletResponse, error) {
	if !ethereum.IsValidAddress(address) {
		return nil, ErrInvalidAddress
	}
	address = ethereum.NormalizeAddress(address)

	cacheKey := walletCacheKey(address)

	var cached WalletResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	wallet, err := s.walletRepo.GetByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, nil
	}

	response := &WalletResponse{
		Data: walletToDTO(wallet),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}

// RefreshStats fetches a wallet's transactions and NFT holdings, scores it against
// the current population and stores the result. Fetch failures discard everything;
// a storage failure still returns the computed stats with Persisted false.
func (s *WalletService) RefreshStats(ctx context.Context, address string) (*WalletStatsResponse, error) {
	if !ethereum.IsValidAddress(address) {
		metrics.WalletRefreshes.WithLabelValues("invalid_address").Inc()
		return nil, ErrInvalidAddress
	}
	address = ethereum.NormalizeAddress(address)

	var (
		txs         []entities.Transaction
		collections []entities.NFTCollection
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.txSource.FetchTransactions(gctx, address)
		return err
	})
	g.Go(func() error {
		var err error
		collections, err = s.nftSource.FetchCollections(gctx, address)
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.WalletRefreshes.WithLabelValues("fetch_error").Inc()
		return nil, fmt.Errorf("failed to fetch wallet data: %w", err)
	}

	if len(txs) == 0 {
		metrics.WalletRefreshes.WithLabelValues("no_activity").Inc()
		return nil, ErrNoActivity
	}

	extraction := s.extractor.Extract(address, txs, collections)
	recordValuation(extraction.Valuation)

	population, err := s.populationWith(ctx, address, extraction.Metrics)
	if err != nil {
		metrics.WalletRefreshes.WithLabelValues("error").Inc()
		return nil, err
	}
	scored := s.scorer.ScoreOne(extraction.Metrics, population)

	wallet := &entities.WalletRecord{
		Address:         address,
		RawMetrics:      extraction.Metrics,
		ComponentScores: scored.Scores,
		TotalScore:      scored.TotalScore,
		History:         extraction.History,
	}

	if err := ctx.Err(); err != nil {
		metrics.WalletRefreshes.WithLabelValues("cancelled").Inc()
		return nil, err
	}

	persisted := true
	if err := s.walletRepo.Upsert(ctx, wallet); err != nil {
		persisted = false
		s.logger.Error("Failed to persist wallet stats",
			zap.String("address", address),
			zap.Error(err),
		)
	} else {
		s.population.Delete(populationKey)
		s.invalidate(ctx, walletCacheKey(address), leaderboardCachePattern)
	}

	s.logger.Info("Wallet stats refreshed",
		zap.String("address", address),
		zap.Int("transactions", len(txs)),
		zap.Int64("tx_count", extraction.Metrics.TxCount),
		zap.Float64("total_score", scored.TotalScore),
		zap.Int("population", len(population)),
		zap.Bool("persisted", persisted),
	)
	metrics.WalletRefreshes.WithLabelValues("ok").Inc()

	response := &WalletStatsResponse{
		Data:                walletToDTO(wallet),
		Persisted:           persisted,
		TransactionsFetched: len(txs),
		PopulationSize:      len(population),
		NFTValueCapped:      extraction.Valuation.Capped,
	}
	for _, r := range extraction.Valuation.Rejections() {
		response.RejectedCollections = append(response.RejectedCollections, RejectedCollectionDTO{
			Name:   r.Name,
			Reason: string(r.Reason),
		})
	}

	return response, nil
}

// populationWith returns the stored population's raw metrics with this wallet's
// fresh metrics in place of (or in addition to) its stored ones
func (s *WalletService) populationWith(ctx context.Context, address string, fresh entities.RawMetrics) ([]entities.RawMetrics, error) {
	snapshot, err := s.loadPopulation(ctx)
	if err != nil {
		return nil, err
	}

	population := make([]entities.RawMetrics, 0, len(snapshot)+1)
	found := false
	for _, w := range snapshot {
		if w.Address == address {
			population = append(population, fresh)
			found = true
			continue
		}
		population = append(population, w.RawMetrics)
	}
	if !found {
		population = append(population, fresh)
	}
	return population, nil
}

func (s *WalletService) loadPopulation(ctx context.Context) ([]entities.WalletRecord, error) {
	if cached, ok := s.population.Get(populationKey); ok {
		return cached.([]entities.WalletRecord), nil
	}

	wallets, err := s.walletRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet population: %w", err)
	}
	metrics.PopulationSize.Set(float64(len(wallets)))

	s.population.Set(populationKey, wallets, gocache.DefaultExpiration)
	return wallets, nil
}

func (s *WalletService) invalidate(ctx context.Context, key, pattern string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to invalidate cache key", zap.String("key", key), zap.Error(err))
	}
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		s.logger.Warn("Failed to invalidate cache", zap.String("pattern", pattern), zap.Error(err))
	}
}

func recordValuation(v scoring.Valuation) {
	for _, r := range v.Rejections() {
		metrics.SanitizerRejections.WithLabelValues(string(r.Reason)).Inc()
	}
	if v.Capped {
		metrics.SanitizerCapped.Inc()
	}
}

func walletCacheKey(address string) string {
	return "wallets:" + address
}
