package repositories

import (
	"context"

	"github.com/bimakw/wallet-ranker/internal/domain/entities"
)

// WalletRepository defines the interface for wallet record operations
type WalletRepository interface {
	// GetByAddress retrieves a wallet by its lower-case address; nil if never stored
	GetByAddress(ctx context.Context, address string) (*entities.WalletRecord, error)

	// Upsert creates or overwrites a wallet's metrics, scores and history.
	// The stored rank is left untouched on update.
	Upsert(ctx context.Context, wallet *entities.WalletRecord) error

	// ListAll retrieves every wallet in storage order, without history
	ListAll(ctx context.Context) ([]entities.WalletRecord, error)

	// UpdateScores overwrites the scores and stable rank of one wallet
	UpdateScores(ctx context.Context, update entities.ScoreUpdate) error

	// QueryLeaderboard returns one page of the filtered, sorted wallet set
	// and the size of the filtered set
	QueryLeaderboard(ctx context.Context, query entities.LeaderboardQuery) ([]entities.WalletRecord, int64, error)

	// Count returns the total number of wallets
	Count(ctx context.Context) (int64, error)
}
