package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-ranker/internal/application/services"
	"github.com/bimakw/wallet-ranker/internal/domain/entities"
	"github.com/bimakw/wallet-ranker/internal/domain/scoring"
	"github.com/bimakw/wallet-ranker/internal/testutil"
)

type walletHandlerFixture struct {
	router    chi.Router
	repo      *testutil.MockWalletRepository
	txSource  *testutil.MockTransactionSource
	nftSource *testutil.MockNFTSource
}

func setupWalletHandlerTest() walletHandlerFixture {
	repo := testutil.NewMockWalletRepository()
	txSource := testutil.NewMockTransactionSource()
	nftSource := testutil.NewMockNFTSource()
	logger := zap.NewNop()

	extractor := scoring.NewExtractor(testutil.Epoch, scoring.NewSanitizer(scoring.DefaultSanitizerThresholds(), logger))
	service := services.NewWalletService(repo, txSource, nftSource, extractor,
		scoring.NewScorer(scoring.DefaultWeights()), nil, time.Minute, logger)

	r := chi.NewRouter()
	NewWalletHandler(service, logger).RegisterRoutes(r)

	return walletHandlerFixture{router: r, repo: repo, txSource: txSource, nftSource: nftSource}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Error
}

func TestWalletHandler_RefreshStats_Success(t *testing.T) {
	f := setupWalletHandlerTest()
	f.txSource.SetTransactions(testutil.AliceAddress, testutil.CreateDailyTransactions(testutil.Epoch, 2)...)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/wallets/" + testutil.AliceAddress + "/refresh"},
		{http.MethodGet, "/wallets/" + testutil.AliceAddress + "/stats"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()

		f.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s %s: expected status 200, got %d", tc.method, tc.path, rec.Code)
		}

		var response services.WalletStatsResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.Data.WalletAddress != testutil.AliceAddress {
			t.Errorf("expected address %s, got %s", testutil.AliceAddress, response.Data.WalletAddress)
		}
		if response.Data.Metrics.TxCount != 2 {
			t.Errorf("expected tx count 2, got %d", response.Data.Metrics.TxCount)
		}
		if !response.Persisted {
			t.Error("expected persisted true")
		}
	}
}

func TestWalletHandler_RefreshStats_Errors(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		setup    func(f walletHandlerFixture)
		wantCode int
		wantMsg  string
	}{
		{
			name:     "invalid address",
			address:  "0x123",
			wantCode: http.StatusBadRequest,
			wantMsg:  "Invalid wallet address",
		},
		{
			name:     "no activity",
			address:  testutil.BobAddress,
			wantCode: http.StatusNotFound,
			wantMsg:  "No transactions found for this wallet",
		},
		{
			name:    "upstream failure",
			address: testutil.AliceAddress,
			setup: func(f walletHandlerFixture) {
				f.txSource.FetchTransactionsFunc = func(ctx context.Context, address string) ([]entities.Transaction, error) {
					return nil, errors.New("explorer returned 502")
				}
			},
			wantCode: http.StatusInternalServerError,
			wantMsg:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupWalletHandlerTest()
			if tt.setup != nil {
				tt.setup(f)
			}

			req := httptest.NewRequest(http.MethodPost, "/wallets/"+tt.address+"/refresh", nil)
			rec := httptest.NewRecorder()

			f.router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if msg := decodeError(t, rec); msg != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, msg)
			}
		})
	}
}

func TestWalletHandler_GetByAddress(t *testing.T) {
	f := setupWalletHandlerTest()
	f.repo.AddWallets(testutil.CreateTestWallet(testutil.WalletWithTotalScore(61.25), testutil.WalletWithRank(2)))

	req := httptest.NewRequest(http.MethodGet, "/wallets/"+testutil.AliceAddress, nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response services.WalletResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Data.TotalScore != 61.25 || response.Data.Rank != 2 {
		t.Errorf("unexpected wallet: %+v", response.Data)
	}
}

func TestWalletHandler_GetByAddress_NotFound(t *testing.T) {
	f := setupWalletHandlerTest()

	req := httptest.NewRequest(http.MethodGet, "/wallets/"+testutil.BobAddress, nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestWalletHandler_GetByAddress_InvalidAddress(t *testing.T) {
	f := setupWalletHandlerTest()

	req := httptest.NewRequest(http.MethodGet, "/wallets/bob", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}
