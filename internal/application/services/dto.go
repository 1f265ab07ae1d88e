package services

import (
	"time"

	"github.com/bimakw/wallet-ranker/internal/domain/entities"
)

const timestampLayout = "2006-01-02T15:04:05Z"

// MetricsDTO is the API representation of a wallet's raw metrics
type MetricsDTO struct {
	TxCount       int64   `json:"txCount"`
	GasSpentMON   float64 `json:"gasSpentMON"`
	TotalVolume   float64 `json:"totalVolume"`
	NFTBagValue   float64 `json:"nftBagValue"`
	IsDay1User    bool    `json:"isDay1User"`
	LongestStreak int     `json:"longestStreak"`
	DaysActive    int     `json:"daysActive"`
}

// ScoresDTO is the API representation of a wallet's component scores
type ScoresDTO struct {
	VolumeScore      float64 `json:"volumeScore"`
	GasScore         float64 `json:"gasScore"`
	TransactionScore float64 `json:"transactionScore"`
	NFTScore         float64 `json:"nftScore"`
	DaysActiveScore  float64 `json:"daysActiveScore"`
	StreakScore      float64 `json:"streakScore"`
	Day1BonusScore   float64 `json:"day1BonusScore"`
}

// WalletDTO is the API representation of a stored wallet
type WalletDTO struct {
	WalletAddress string                   `json:"walletAddress"`
	TotalScore    float64                  `json:"totalScore"`
	Rank          int                      `json:"rank"`
	Metrics       MetricsDTO               `json:"metrics"`
	Scores        ScoresDTO                `json:"scores"`
	History       []entities.DailyActivity `json:"history"`
	UpdatedAt     string                   `json:"updatedAt,omitempty"`
}

// WalletResponse is the API response for a stored wallet
type WalletResponse struct {
	Data WalletDTO `json:"data"`
}

// RejectedCollectionDTO describes an NFT collection ignored by the sanitizer
type RejectedCollectionDTO struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// WalletStatsResponse is the API response for a stats refresh. Persisted is false
// when the fresh stats could not be stored.
type WalletStatsResponse struct {
	Data                WalletDTO               `json:"data"`
	Persisted           bool                    `json:"persisted"`
	TransactionsFetched int                     `json:"transactionsFetched"`
	PopulationSize      int                     `json:"populationSize"`
	RejectedCollections []RejectedCollectionDTO `json:"rejectedCollections,omitempty"`
	NFTValueCapped      bool                    `json:"nftValueCapped"`
}

// LeaderboardEntryDTO is one row of a leaderboard page
type LeaderboardEntryDTO struct {
	PositionNumber int        `json:"positionNumber"`
	Rank           int        `json:"rank"`
	WalletAddress  string     `json:"walletAddress"`
	TotalScore     float64    `json:"totalScore"`
	Metrics        MetricsDTO `json:"metrics"`
	Scores         ScoresDTO  `json:"scores"`
}

// PaginationDTO contains page metadata over the filtered set
type PaginationDTO struct {
	CurrentPage   int   `json:"currentPage"`
	PageSize      int   `json:"pageSize"`
	TotalMatching int64 `json:"totalMatching"`
	TotalPages    int   `json:"totalPages"`
	HasNext       bool  `json:"hasNext"`
	HasPrevious   bool  `json:"hasPrevious"`
}

// SortDTO echoes the applied ordering
type SortDTO struct {
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

// LeaderboardResponse is the API response for leaderboard queries
type LeaderboardResponse struct {
	Data        []LeaderboardEntryDTO `json:"data"`
	Pagination  PaginationDTO         `json:"pagination"`
	Sort        SortDTO               `json:"sort"`
	Search      string                `json:"search,omitempty"`
	GeneratedAt string                `json:"generatedAt"`
}

// RecalculationResult summarizes one full recalculation run
type RecalculationResult struct {
	RunID          string `json:"runId"`
	WalletsUpdated int    `json:"walletsUpdated"`
	WalletsFailed  int    `json:"walletsFailed"`
	DurationMs     int64  `json:"durationMs"`
}

func metricsToDTO(m entities.RawMetrics) MetricsDTO {
	return MetricsDTO{
		TxCount:       m.TxCount,
		GasSpentMON:   m.GasSpentMON,
		TotalVolume:   m.TotalVolume,
		NFTBagValue:   m.NFTBagValue,
		IsDay1User:    m.IsDay1User,
		LongestStreak: m.LongestStreak,
		DaysActive:    m.DaysActive,
	}
}

func scoresToDTO(s entities.ComponentScores) ScoresDTO {
	return ScoresDTO{
		VolumeScore:      s.VolumeScore,
		GasScore:         s.GasScore,
		TransactionScore: s.TransactionScore,
		NFTScore:         s.NFTScore,
		DaysActiveScore:  s.DaysActiveScore,
		StreakScore:      s.StreakScore,
		Day1BonusScore:   s.Day1BonusScore,
	}
}

func walletToDTO(w *entities.WalletRecord) WalletDTO {
	history := []entities.DailyActivity(w.History)
	if history == nil {
		history = []entities.DailyActivity{}
	}
	dto := WalletDTO{
		WalletAddress: w.Address,
		TotalScore:    w.TotalScore,
		Rank:          w.Rank,
		Metrics:       metricsToDTO(w.RawMetrics),
		Scores:        scoresToDTO(w.ComponentScores),
		History:       history,
	}
	if !w.UpdatedAt.IsZero() {
		dto.UpdatedAt = w.UpdatedAt.UTC().Format(timestampLayout)
	}
	return dto
}

func pageToResponse(page *entities.LeaderboardPage, q entities.LeaderboardQuery, generatedAt time.Time) *LeaderboardResponse {
	entries := make([]LeaderboardEntryDTO, len(page.Entries))
	for i, e := range page.Entries {
		entries[i] = LeaderboardEntryDTO{
			PositionNumber: e.PositionNumber,
			Rank:           e.Wallet.Rank,
			WalletAddress:  e.Wallet.Address,
			TotalScore:     e.Wallet.TotalScore,
			Metrics:        metricsToDTO(e.Wallet.RawMetrics),
			Scores:         scoresToDTO(e.Wallet.ComponentScores),
		}
	}

	p := page.Pagination
	return &LeaderboardResponse{
		Data: entries,
		Pagination: PaginationDTO{
			CurrentPage:   p.CurrentPage,
			PageSize:      p.PageSize,
			TotalMatching: p.TotalMatching,
			TotalPages:    p.TotalPages,
			HasNext:       p.HasNext,
			HasPrevious:   p.HasPrevious,
		},
		Sort: SortDTO{
			SortBy:    string(q.SortBy),
			SortOrder: string(q.SortOrder),
		},
		Search:      q.Search,
		GeneratedAt: generatedAt.UTC().Format(timestampLayout),
	}
}
