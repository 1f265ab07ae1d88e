package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-ranker/internal/domain/entities"
	"github.com/bimakw/wallet-ranker/internal/domain/repositories"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/cache"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/metrics"
)

const leaderboardCachePattern = "leaderboard:*"

// LeaderboardParams are the raw leaderboard request parameters
type LeaderboardParams struct {
	Page      int
	PageSize  int
	Search    string
	SortBy    string
	SortOrder string
}

// LeaderboardService serves filtered, sorted, paginated views of stored scores
type LeaderboardService struct {
	walletRepo      repositories.WalletRepository
	cache           *cache.RedisCache
	defaultPageSize int
	maxPageSize     int
	logger          *zap.Logger
	now             func() time.Time
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(
	walletRepo repositories.WalletRepository,
	cache *cache.RedisCache,
	defaultPageSize int,
	maxPageSize int,
	logger *zap.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		walletRepo:      walletRepo,
		cache:           cache,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		logger:          logger,
		now:             time.Now,
	}
}

// ParseQuery validates sort parameters and fills defaults
func (s *LeaderboardService) ParseQuery(params LeaderboardParams) (entities.LeaderboardQuery, error) {
	sortBy, err := entities.ParseSortField(params.SortBy)
	if err != nil {
		return entities.LeaderboardQuery{}, err
	}
	sortOrder, err := entities.ParseSortDirection(params.SortOrder)
	if err != nil {
		return entities.LeaderboardQuery{}, err
	}

	return entities.LeaderboardQuery{
		Page:      params.Page,
		PageSize:  params.PageSize,
		Search:    params.Search,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	}.Normalize(s.defaultPageSize, s.maxPageSize), nil
}

// GetLeaderboard returns one page of the leaderboard. Positions are 1-based offsets
// within the filtered, sorted result.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, params LeaderboardParams) (*LeaderboardResponse, error) {
	query, err := s.ParseQuery(params)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("leaderboard:%d:%d:%s:%s:%s",
		query.Page, query.PageSize, query.SortBy, query.SortOrder, query.Search)

	var cached LeaderboardResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			metrics.LeaderboardQueries.WithLabelValues("hit").Inc()
			return &cached, nil
		}
	}
	metrics.LeaderboardQueries.WithLabelValues("miss").Inc()

	wallets, total, err := s.walletRepo.QueryLeaderboard(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}

	page := entities.BuildLeaderboardPage(query, wallets, total)
	response := pageToResponse(page, query, s.now())

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}
