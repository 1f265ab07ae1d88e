package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bimakw/wallet-ranker/internal/domain/entities"
	"github.com/bimakw/wallet-ranker/internal/domain/repositories"
	"github.com/bimakw/wallet-ranker/internal/domain/scoring"
)

// Ensure mocks implement the repository interfaces
var (
	_ repositories.WalletRepository  = (*MockWalletRepository)(nil)
	_ repositories.TransactionSource = (*MockTransactionSource)(nil)
	_ repositories.NFTSource         = (*MockNFTSource)(nil)
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockWalletRepository is an in-memory WalletRepository keeping insertion order
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets []entities.WalletRecord
	nextID  int64

	// Function hooks for custom behavior
	GetByAddressFunc     func(ctx context.Context, address string) (*entities.WalletRecord, error)
	UpsertFunc           func(ctx context.Context, wallet *entities.WalletRecord) error
	ListAllFunc          func(ctx context.Context) ([]entities.WalletRecord, error)
	UpdateScoresFunc     func(ctx context.Context, update entities.ScoreUpdate) error
	QueryLeaderboardFunc func(ctx context.Context, query entities.LeaderboardQuery) ([]entities.WalletRecord, int64, error)
	CountFunc            func(ctx context.Context) (int64, error)

	// Call tracking
	Calls []MockCall
}

func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make([]entities.WalletRecord, 0),
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockWalletRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

func (m *MockWalletRepository) GetByAddress(ctx context.Context, address string) (*entities.WalletRecord, error) {
	m.record("GetByAddress", address)

	if m.GetByAddressFunc != nil {
		return m.GetByAddressFunc(ctx, address)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.wallets {
		if m.wallets[i].Address == address {
			w := m.wallets[i]
			return &w, nil
		}
	}
	return nil, nil
}

func (m *MockWalletRepository) Upsert(ctx context.Context, wallet *entities.WalletRecord) error {
	m.record("Upsert", wallet)

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, wallet)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	for i := range m.wallets {
		if m.wallets[i].Address == wallet.Address {
			existing := &m.wallets[i]
			existing.RawMetrics = wallet.RawMetrics
			existing.ComponentScores = wallet.ComponentScores
			existing.TotalScore = wallet.TotalScore
			existing.History = wallet.History
			existing.UpdatedAt = now

			wallet.ID = existing.ID
			wallet.Rank = existing.Rank
			wallet.CreatedAt = existing.CreatedAt
			wallet.UpdatedAt = now
			return nil
		}
	}

	m.nextID++
	wallet.ID = m.nextID
	wallet.CreatedAt = now
	wallet.UpdatedAt = now
	m.wallets = append(m.wallets, *wallet)
	return nil
}

func (m *MockWalletRepository) ListAll(ctx context.Context) ([]entities.WalletRecord, error) {
	m.record("ListAll")

	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.WalletRecord, len(m.wallets))
	for i, w := range m.wallets {
		w.History = nil
		result[i] = w
	}
	return result, nil
}

func (m *MockWalletRepository) UpdateScores(ctx context.Context, update entities.ScoreUpdate) error {
	m.record("UpdateScores", update)

	if m.UpdateScoresFunc != nil {
		return m.UpdateScoresFunc(ctx, update)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.wallets {
		if m.wallets[i].Address == update.Address {
			m.wallets[i].ComponentScores = update.Scores
			m.wallets[i].TotalScore = update.TotalScore
			m.wallets[i].Rank = update.Rank
			return nil
		}
	}
	return errors.New("wallet not found")
}

func (m *MockWalletRepository) QueryLeaderboard(ctx context.Context, query entities.LeaderboardQuery) ([]entities.WalletRecord, int64, error) {
	m.record("QueryLeaderboard", query)

	if m.QueryLeaderboardFunc != nil {
		return m.QueryLeaderboardFunc(ctx, query)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	page := scoring.Rank(m.wallets, query)
	records := make([]entities.WalletRecord, len(page.Entries))
	for i, e := range page.Entries {
		records[i] = e.Wallet
	}
	return records, page.Pagination.TotalMatching, nil
}

func (m *MockWalletRepository) Count(ctx context.Context) (int64, error) {
	m.record("Count")

	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.wallets)), nil
}

// AddWallets adds wallets to the mock store in the given order
func (m *MockWalletRepository) AddWallets(wallets ...entities.WalletRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range wallets {
		m.nextID++
		if w.ID == 0 {
			w.ID = m.nextID
		}
		m.wallets = append(m.wallets, w)
	}
}

// CallCount returns how many times a method was called
func (m *MockWalletRepository) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset clears all stored data and calls
func (m *MockWalletRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets = make([]entities.WalletRecord, 0)
	m.nextID = 0
	m.Calls = make([]MockCall, 0)
}

// MockTransactionSource is a mock implementation of TransactionSource
type MockTransactionSource struct {
	mu           sync.Mutex
	transactions map[string][]entities.Transaction

	FetchTransactionsFunc func(ctx context.Context, address string) ([]entities.Transaction, error)

	Calls []MockCall
}

func NewMockTransactionSource() *MockTransactionSource {
	return &MockTransactionSource{
		transactions: make(map[string][]entities.Transaction),
		Calls:        make([]MockCall, 0),
	}
}

func (m *MockTransactionSource) FetchTransactions(ctx context.Context, address string) ([]entities.Transaction, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "FetchTransactions", Args: []interface{}{address}})
	m.mu.Unlock()

	if m.FetchTransactionsFunc != nil {
		return m.FetchTransactionsFunc(ctx, address)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transactions[address], nil
}

// SetTransactions sets the history returned for an address
func (m *MockTransactionSource) SetTransactions(address string, txs ...entities.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[address] = txs
}

// MockNFTSource is a mock implementation of NFTSource
type MockNFTSource struct {
	mu          sync.Mutex
	collections map[string][]entities.NFTCollection

	FetchCollectionsFunc func(ctx context.Context, address string) ([]entities.NFTCollection, error)

	Calls []MockCall
}

func NewMockNFTSource() *MockNFTSource {
	return &MockNFTSource{
		collections: make(map[string][]entities.NFTCollection),
		Calls:       make([]MockCall, 0),
	}
}

func (m *MockNFTSource) FetchCollections(ctx context.Context, address string) ([]entities.NFTCollection, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "FetchCollections", Args: []interface{}{address}})
	m.mu.Unlock()

	if m.FetchCollectionsFunc != nil {
		return m.FetchCollectionsFunc(ctx, address)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collections[address], nil
}

// SetCollections sets the holdings returned for an address
func (m *MockNFTSource) SetCollections(address string, collections ...entities.NFTCollection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[address] = collections
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu sync.Mutex

	Err   error
	Calls int
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	m := &MockHealthChecker{}
	if !healthy {
		m.Err = errors.New("health check failed")
	}
	return m
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	return m.Err
}
