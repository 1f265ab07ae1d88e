package scoring

import (
	"sort"
	"strings"

	"github.com/bimakw/wallet-ranker/internal/domain/entities"
)

// SortValue returns the value a wallet is ordered by for a sort field
func SortValue(w *entities.WalletRecord, field entities.SortField) float64 {
	switch field {
	case entities.SortByTxCount:
		return float64(w.TxCount)
	case entities.SortByGasSpent:
		return w.GasSpentMON
	case entities.SortByTotalVolume:
		return w.TotalVolume
	case entities.SortByNFTBagValue:
		return w.NFTBagValue
	case entities.SortByDay1User:
		if w.IsDay1User {
			return 1
		}
		return 0
	case entities.SortByLongestStreak:
		return float64(w.LongestStreak)
	case entities.SortByDaysActive:
		return float64(w.DaysActive)
	default:
		return w.TotalScore
	}
}

// Rank filters records by address substring, orders them by the requested field and
// returns the requested page. Records must be in storage order; ties keep that order
// in both directions. The query must already be normalized.
func Rank(records []entities.WalletRecord, q entities.LeaderboardQuery) *entities.LeaderboardPage {
	search := strings.ToLower(q.Search)

	matched := make([]entities.WalletRecord, 0, len(records))
	for _, r := range records {
		if search == "" || strings.Contains(strings.ToLower(r.Address), search) {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := SortValue(&matched[i], q.SortBy), SortValue(&matched[j], q.SortBy)
		if q.SortOrder == entities.SortAsc {
			return a < b
		}
		return a > b
	})

	total := int64(len(matched))
	start := q.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if end-start > q.PageSize {
		end = start + q.PageSize
	}

	return entities.BuildLeaderboardPage(q, matched[start:end], total)
}

// AssignRanks returns the stable global rank (1-based, by total score descending)
// for totals given in storage order
func AssignRanks(totals []float64) []int {
	order := make([]int, len(totals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]] > totals[order[j]]
	})

	ranks := make([]int, len(totals))
	for pos, idx := range order {
		ranks[idx] = pos + 1
	}
	return ranks
}
