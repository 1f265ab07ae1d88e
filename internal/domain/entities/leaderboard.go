package entities

import (
	"errors"
	"math"
	"strings"
)

var (
	// ErrInvalidSortField is returned for a sort field outside the supported set
	ErrInvalidSortField = errors.New("invalid sort field")
	// ErrInvalidSortDirection is returned for a direction other than asc or desc
	ErrInvalidSortDirection = errors.New("invalid sort direction")
)

// SortField is a leaderboard ordering key
type SortField string

const (
	SortByTotalScore    SortField = "totalScore"
	SortByTxCount       SortField = "txCount"
	SortByGasSpent      SortField = "gasSpentMON"
	SortByTotalVolume   SortField = "totalVolume"
	SortByNFTBagValue   SortField = "nftBagValue"
	SortByDay1User      SortField = "isDay1User"
	SortByLongestStreak SortField = "longestStreak"
	SortByDaysActive    SortField = "daysActive"
)

// SortFields lists every accepted sort field
var SortFields = []SortField{
	SortByTotalScore,
	SortByTxCount,
	SortByGasSpent,
	SortByTotalVolume,
	SortByNFTBagValue,
	SortByDay1User,
	SortByLongestStreak,
	SortByDaysActive,
}

// ParseSortField parses a sort field; empty input selects totalScore
func ParseSortField(s string) (SortField, error) {
	if s == "" {
		return SortByTotalScore, nil
	}
	for _, f := range SortFields {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", ErrInvalidSortField
}

// SortDirection is asc or desc
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection parses a direction; empty input selects desc
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(s) {
	case "":
		return SortDesc, nil
	case string(SortAsc):
		return SortAsc, nil
	case string(SortDesc):
		return SortDesc, nil
	default:
		return "", ErrInvalidSortDirection
	}
}

// LeaderboardQuery selects one page of the filtered, sorted wallet set
type LeaderboardQuery struct {
	Page      int
	PageSize  int
	Search    string
	SortBy    SortField
	SortOrder SortDirection
}

// Normalize fills defaults and clamps the page window
func (q LeaderboardQuery) Normalize(defaultPageSize, maxPageSize int) LeaderboardQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if maxPageSize > 0 && q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	// keeps Offset()+PageSize representable
	if q.PageSize > 0 && q.Page > math.MaxInt/q.PageSize {
		q.Page = math.MaxInt / q.PageSize
	}
	if q.SortBy == "" {
		q.SortBy = SortByTotalScore
	}
	if q.SortOrder == "" {
		q.SortOrder = SortDesc
	}
	q.Search = strings.ToLower(strings.TrimSpace(q.Search))
	return q
}

// Offset returns the zero-based index of the first entry on the page. It saturates
// at math.MaxInt instead of overflowing.
func (q LeaderboardQuery) Offset() int {
	if q.Page <= 1 || q.PageSize <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.PageSize {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PageSize
}

// LeaderboardEntry is one wallet in a leaderboard view. PositionNumber is the
// 1-based offset within the sorted, filtered result, not a stored identity.
type LeaderboardEntry struct {
	PositionNumber int
	Wallet         WalletRecord
}

// Pagination describes the page window over the filtered set
type Pagination struct {
	CurrentPage   int
	PageSize      int
	TotalMatching int64
	TotalPages    int
	HasNext       bool
	HasPrevious   bool
}

// NewPagination computes page metadata for a filtered total
func NewPagination(page, pageSize int, total int64) Pagination {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Pagination{
		CurrentPage:   page,
		PageSize:      pageSize,
		TotalMatching: total,
		TotalPages:    totalPages,
		HasNext:       page < totalPages,
		HasPrevious:   page > 1,
	}
}

// BuildLeaderboardPage numbers a page of records already in result order
func BuildLeaderboardPage(q LeaderboardQuery, records []WalletRecord, total int64) *LeaderboardPage {
	entries := make([]LeaderboardEntry, len(records))
	offset := q.Offset()
	for i := range records {
		entries[i] = LeaderboardEntry{
			PositionNumber: offset + i + 1,
			Wallet:         records[i],
		}
	}
	return &LeaderboardPage{
		Entries:    entries,
		Pagination: NewPagination(q.Page, q.PageSize, total),
	}
}

// LeaderboardPage is a numbered page plus its metadata
type LeaderboardPage struct {
	Entries    []LeaderboardEntry
	Pagination Pagination
}
