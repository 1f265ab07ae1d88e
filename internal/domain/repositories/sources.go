package repositories

import (
	"context"

	"github.com/bimakw/wallet-ranker/internal/domain/entities"
)

// TransactionSource fetches a wallet's complete transaction history
type TransactionSource interface {
	FetchTransactions(ctx context.Context, address string) ([]entities.Transaction, error)
}

// NFTSource fetches a wallet's NFT holdings snapshot
type NFTSource interface {
	FetchCollections(ctx context.Context, address string) ([]entities.NFTCollection, error)
}
