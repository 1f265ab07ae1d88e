package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/bimakw/wallet-ranker/internal/domain/entities"
)

func TestMockWalletRepository_UpsertKeepsRank(t *testing.T) {
	repo := NewMockWalletRepository()
	ctx := context.Background()

	repo.AddWallets(CreateTestWallet(WalletWithRank(4)))

	w := CreateTestWallet(WalletWithTotalScore(88))
	if err := repo.Upsert(ctx, &w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetByAddress(ctx, AliceAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalScore != 88 {
		t.Errorf("expected total score 88, got %v", got.TotalScore)
	}
	if got.Rank != 4 {
		t.Errorf("expected rank 4 to be kept, got %d", got.Rank)
	}

	count, _ := repo.Count(ctx)
	if count != 1 {
		t.Errorf("expected 1 wallet, got %d", count)
	}
}

func TestMockWalletRepository_GetByAddressNotFound(t *testing.T) {
	repo := NewMockWalletRepository()

	got, err := repo.GetByAddress(context.Background(), BobAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil wallet, got %+v", got)
	}
}

func TestMockWalletRepository_QueryLeaderboard(t *testing.T) {
	repo := NewMockWalletRepository()
	repo.AddWallets(CreateMultipleWallets(12)...)

	q := entities.LeaderboardQuery{
		Page:      2,
		PageSize:  5,
		SortBy:    entities.SortByTxCount,
		SortOrder: entities.SortDesc,
	}

	wallets, total, err := repo.QueryLeaderboard(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 12 {
		t.Errorf("expected total 12, got %d", total)
	}
	if len(wallets) != 5 {
		t.Fatalf("expected 5 wallets, got %d", len(wallets))
	}
	if wallets[0].TxCount != 7 {
		t.Errorf("expected first tx count 7, got %d", wallets[0].TxCount)
	}
}

func TestMockWalletRepository_UpdateScoresUnknown(t *testing.T) {
	repo := NewMockWalletRepository()

	err := repo.UpdateScores(context.Background(), entities.ScoreUpdate{Address: BobAddress})
	if err == nil {
		t.Error("expected error for unknown wallet")
	}
	if repo.CallCount("UpdateScores") != 1 {
		t.Errorf("expected 1 call, got %d", repo.CallCount("UpdateScores"))
	}
}

func TestMockWalletRepository_Hooks(t *testing.T) {
	repo := NewMockWalletRepository()
	boom := errors.New("boom")
	repo.ListAllFunc = func(ctx context.Context) ([]entities.WalletRecord, error) {
		return nil, boom
	}

	if _, err := repo.ListAll(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected hook error, got %v", err)
	}
}

func TestMockSources(t *testing.T) {
	txs := NewMockTransactionSource()
	txs.SetTransactions(AliceAddress, CreateDailyTransactions(Epoch, 3)...)

	got, err := txs.FetchTransactions(context.Background(), AliceAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 transactions, got %d", len(got))
	}

	nfts := NewMockNFTSource()
	nfts.SetCollections(AliceAddress, CreateTestCollection())

	cols, err := nfts.FetchCollections(context.Background(), AliceAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cols) != 1 {
		t.Errorf("expected 1 collection, got %d", len(cols))
	}
}
