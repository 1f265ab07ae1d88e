package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-ranker/internal/application/services"
	"github.com/bimakw/wallet-ranker/internal/domain/scoring"
	"github.com/bimakw/wallet-ranker/internal/testutil"
)

type failingRecalculator struct{}

func (failingRecalculator) RecalculateAll(ctx context.Context) (*services.RecalculationResult, error) {
	return nil, errors.New("connection reset")
}

func TestRankingHandler_Recalculate(t *testing.T) {
	repo := testutil.NewMockWalletRepository()
	repo.AddWallets(testutil.CreateMultipleWallets(4)...)

	service := services.NewRankingService(repo, scoring.NewScorer(scoring.DefaultWeights()), nil, 2, 2, zap.NewNop())
	handler := NewRankingHandler(service, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Recalculate(rec, httptest.NewRequest(http.MethodPost, "/rankings/recalculate", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var result services.RecalculationResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.WalletsUpdated != 4 {
		t.Errorf("expected 4 wallets updated, got %d", result.WalletsUpdated)
	}
	if result.RunID == "" {
		t.Error("expected run ID")
	}
}

func TestRankingHandler_Recalculate_Error(t *testing.T) {
	handler := NewRankingHandler(failingRecalculator{}, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Recalculate(rec, httptest.NewRequest(http.MethodPost, "/rankings/recalculate", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
}
