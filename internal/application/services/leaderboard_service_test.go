package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-ranker/internal/domain/entities"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/cache"
	"github.com/bimakw/wallet-ranker/internal/testutil"
)

func setupLeaderboardServiceTest(c *cache.RedisCache) (*LeaderboardService, *testutil.MockWalletRepository) {
	repo := testutil.NewMockWalletRepository()
	service := NewLeaderboardService(repo, c, 50, 100, zap.NewNop())
	return service, repo
}

func TestLeaderboardService_Defaults(t *testing.T) {
	service, repo := setupLeaderboardServiceTest(nil)
	repo.AddWallets(
		testutil.CreateTestWallet(testutil.WalletWithAddress(testutil.AliceAddress), testutil.WalletWithTotalScore(10)),
		testutil.CreateTestWallet(testutil.WalletWithAddress(testutil.BobAddress), testutil.WalletWithTotalScore(90)),
		testutil.CreateTestWallet(testutil.WalletWithAddress(testutil.CharlieAddr), testutil.WalletWithTotalScore(50)),
	)

	resp, err := service.GetLeaderboard(context.Background(), LeaderboardParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Sort.SortBy != "totalScore" || resp.Sort.SortOrder != "desc" {
		t.Errorf("expected totalScore desc, got %+v", resp.Sort)
	}
	if resp.Pagination.PageSize != 50 || resp.Pagination.CurrentPage != 1 {
		t.Errorf("unexpected pagination: %+v", resp.Pagination)
	}
	want := []string{testutil.BobAddress, testutil.CharlieAddr, testutil.AliceAddress}
	if len(resp.Data) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(resp.Data))
	}
	for i, addr := range want {
		if resp.Data[i].WalletAddress != addr {
			t.Errorf("position %d: expected %s, got %s", i+1, addr, resp.Data[i].WalletAddress)
		}
		if resp.Data[i].PositionNumber != i+1 {
			t.Errorf("expected position %d, got %d", i+1, resp.Data[i].PositionNumber)
		}
	}
	if resp.GeneratedAt == "" {
		t.Error("expected generatedAt to be set")
	}
}

func TestLeaderboardService_InvalidSort(t *testing.T) {
	service, repo := setupLeaderboardServiceTest(nil)

	_, err := service.GetLeaderboard(context.Background(), LeaderboardParams{SortBy: "balance"})
	if !errors.Is(err, entities.ErrInvalidSortField) {
		t.Errorf("expected ErrInvalidSortField, got %v", err)
	}

	_, err = service.GetLeaderboard(context.Background(), LeaderboardParams{SortOrder: "sideways"})
	if !errors.Is(err, entities.ErrInvalidSortDirection) {
		t.Errorf("expected ErrInvalidSortDirection, got %v", err)
	}

	if repo.CallCount("QueryLeaderboard") != 0 {
		t.Error("expected no repository query for invalid sort")
	}
}

func TestLeaderboardService_PaginationAndSearch(t *testing.T) {
	service, repo := setupLeaderboardServiceTest(nil)
	repo.AddWallets(testutil.CreateMultipleWallets(25)...)

	resp, err := service.GetLeaderboard(context.Background(), LeaderboardParams{
		Page:      3,
		PageSize:  10,
		SortBy:    "txCount",
		SortOrder: "ASC",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Data) != 5 {
		t.Fatalf("expected 5 entries on the last page, got %d", len(resp.Data))
	}
	if resp.Data[0].PositionNumber != 21 {
		t.Errorf("expected first position 21, got %d", resp.Data[0].PositionNumber)
	}
	if resp.Data[0].Metrics.TxCount != 21 {
		t.Errorf("expected tx count 21, got %d", resp.Data[0].Metrics.TxCount)
	}
	p := resp.Pagination
	if p.TotalMatching != 25 || p.TotalPages != 3 || p.HasNext || !p.HasPrevious {
		t.Errorf("unexpected pagination: %+v", p)
	}

	// Addresses end in hex 01..19; "1" matches 0x01 and 0x10-0x19
	resp, err = service.GetLeaderboard(context.Background(), LeaderboardParams{Search: "  1 "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Search != "1" {
		t.Errorf("expected trimmed search echo, got %q", resp.Search)
	}
	if resp.Pagination.TotalMatching != 11 {
		t.Errorf("expected 11 matches, got %d", resp.Pagination.TotalMatching)
	}

	resp, err = service.GetLeaderboard(context.Background(), LeaderboardParams{Search: "F"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Pagination.TotalMatching != 1 || resp.Data[0].WalletAddress != testutil.AddressFor(14) {
		t.Errorf("expected only %s, got %+v", testutil.AddressFor(14), resp.Data)
	}
}

func TestLeaderboardService_PageSizeClamped(t *testing.T) {
	service, repo := setupLeaderboardServiceTest(nil)
	repo.AddWallets(testutil.CreateMultipleWallets(3)...)

	resp, err := service.GetLeaderboard(context.Background(), LeaderboardParams{PageSize: 1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Pagination.PageSize != 100 {
		t.Errorf("expected page size clamped to 100, got %d", resp.Pagination.PageSize)
	}
}

func TestLeaderboardService_RepositoryError(t *testing.T) {
	service, repo := setupLeaderboardServiceTest(nil)
	repo.QueryLeaderboardFunc = func(ctx context.Context, q entities.LeaderboardQuery) ([]entities.WalletRecord, int64, error) {
		return nil, 0, errors.New("connection refused")
	}

	if _, err := service.GetLeaderboard(context.Background(), LeaderboardParams{}); err == nil {
		t.Error("expected error")
	}
}

func TestLeaderboardService_Cache(t *testing.T) {
	service, repo := setupLeaderboardServiceTest(setupTestRedis(t))
	repo.AddWallets(testutil.CreateMultipleWallets(5)...)
	ctx := context.Background()

	first, err := service.GetLeaderboard(ctx, LeaderboardParams{PageSize: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := service.GetLeaderboard(ctx, LeaderboardParams{PageSize: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.CallCount("QueryLeaderboard") != 1 {
		t.Errorf("expected 1 repository query, got %d", repo.CallCount("QueryLeaderboard"))
	}
	if second.Data[0].WalletAddress != first.Data[0].WalletAddress {
		t.Errorf("expected cached page to match, got %s and %s", first.Data[0].WalletAddress, second.Data[0].WalletAddress)
	}

	if _, err := service.GetLeaderboard(ctx, LeaderboardParams{PageSize: 2, Page: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.CallCount("QueryLeaderboard") != 2 {
		t.Errorf("expected a different page to miss the cache, got %d queries", repo.CallCount("QueryLeaderboard"))
	}
}
