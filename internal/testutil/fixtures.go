package testutil

import (
	"fmt"
	"time"

	"github.com/bimakw/wallet-ranker/internal/domain/entities"
)

// Common test addresses
const (
	AliceAddress = "0x1111111111111111111111111111111111111111"
	BobAddress   = "0x2222222222222222222222222222222222222222"
	CharlieAddr  = "0x3333333333333333333333333333333333333333"
	MixedCase    = "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01"
)

// Epoch is the scoring epoch used across tests
var Epoch = time.Date(2025, 2, 19, 0, 0, 0, 0, time.UTC)

// OneMON is 1 MON in base units
const OneMON = "1000000000000000000"

// CreateTestWallet creates a stored wallet with default values
func CreateTestWallet(opts ...WalletOption) entities.WalletRecord {
	w := entities.WalletRecord{
		Address: AliceAddress,
		RawMetrics: entities.RawMetrics{
			TxCount:       10,
			GasSpentMON:   0.21,
			TotalVolume:   5,
			NFTBagValue:   0,
			LongestStreak: 2,
			DaysActive:    3,
		},
		TotalScore: 50,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	for _, opt := range opts {
		opt(&w)
	}

	return w
}

type WalletOption func(*entities.WalletRecord)

func WalletWithID(id int64) WalletOption {
	return func(w *entities.WalletRecord) {
		w.ID = id
	}
}

func WalletWithAddress(addr string) WalletOption {
	return func(w *entities.WalletRecord) {
		w.Address = addr
	}
}

func WalletWithTotalScore(score float64) WalletOption {
	return func(w *entities.WalletRecord) {
		w.TotalScore = score
	}
}

func WalletWithTxCount(count int64) WalletOption {
	return func(w *entities.WalletRecord) {
		w.TxCount = count
	}
}

func WalletWithVolume(volume float64) WalletOption {
	return func(w *entities.WalletRecord) {
		w.TotalVolume = volume
	}
}

func WalletWithMetrics(m entities.RawMetrics) WalletOption {
	return func(w *entities.WalletRecord) {
		w.RawMetrics = m
	}
}

func WalletWithRank(rank int) WalletOption {
	return func(w *entities.WalletRecord) {
		w.Rank = rank
	}
}

// CreateMultipleWallets creates count wallets with distinct addresses and
// increasing activity
func CreateMultipleWallets(count int, opts ...WalletOption) []entities.WalletRecord {
	wallets := make([]entities.WalletRecord, count)
	for i := 0; i < count; i++ {
		w := CreateTestWallet(opts...)
		w.ID = int64(i + 1)
		w.Address = AddressFor(i)
		w.TxCount = int64(i + 1)
		w.TotalVolume = float64(i)
		w.DaysActive = i%5 + 1
		w.TotalScore = float64(i % 7)
		wallets[i] = w
	}
	return wallets
}

// AddressFor returns a deterministic lower-case address for an index
func AddressFor(index int) string {
	return fmt.Sprintf("0x%040x", index+1)
}

// CreateTestTransaction creates a transaction at ts moving value base units
func CreateTestTransaction(ts time.Time, value string) entities.Transaction {
	return entities.Transaction{
		Hash:        fmt.Sprintf("0x%064x", ts.UnixNano()),
		From:        AliceAddress,
		To:          BobAddress,
		Value:       value,
		Gas:         "30000",
		GasUsed:     "21000",
		GasPrice:    "1000000000",
		Timestamp:   ts.Unix(),
		BlockNumber: uint64(ts.Unix()),
	}
}

// CreateDailyTransactions creates one transaction per day starting at from
func CreateDailyTransactions(from time.Time, days int) []entities.Transaction {
	txs := make([]entities.Transaction, days)
	for i := 0; i < days; i++ {
		txs[i] = CreateTestTransaction(from.AddDate(0, 0, i).Add(time.Hour), OneMON)
	}
	return txs
}

// CreateTestCollection creates an NFT collection that passes the default sanitizer
func CreateTestCollection(opts ...CollectionOption) entities.NFTCollection {
	volume := 500.0
	c := entities.NFTCollection{
		Name:           "Test Collection",
		TokenStandard:  entities.TokenStandardERC721,
		CollectionSize: 10000,
		FloorPrice7d:   2,
		Volume7d:       &volume,
		HoldingCount:   3,
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

type CollectionOption func(*entities.NFTCollection)

func CollectionWithName(name string) CollectionOption {
	return func(c *entities.NFTCollection) {
		c.Name = name
	}
}

func CollectionWithFloor(floor float64) CollectionOption {
	return func(c *entities.NFTCollection) {
		c.FloorPrice7d = floor
	}
}

func CollectionWithHolding(count int64) CollectionOption {
	return func(c *entities.NFTCollection) {
		c.HoldingCount = count
	}
}

// PointerTo returns a pointer to the given value
func PointerTo[T any](v T) *T {
	return &v
}
