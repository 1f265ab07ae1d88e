package entities

import (
	"math"
	"testing"
)

func TestLeaderboardQuery_Normalize(t *testing.T) {
	q := LeaderboardQuery{Page: -3, PageSize: 500, Search: "  0xAbC "}.Normalize(50, 100)

	if q.Page != 1 || q.PageSize != 100 {
		t.Errorf("expected page 1 size 100, got page %d size %d", q.Page, q.PageSize)
	}
	if q.Search != "0xabc" {
		t.Errorf("expected trimmed lower-case search, got %q", q.Search)
	}
	if q.SortBy != SortByTotalScore || q.SortOrder != SortDesc {
		t.Errorf("expected default ordering, got %s %s", q.SortBy, q.SortOrder)
	}
}

func TestLeaderboardQuery_OffsetNeverOverflows(t *testing.T) {
	tests := []struct {
		page, size int
	}{
		{math.MaxInt, 1},
		{math.MaxInt, 50},
		{math.MaxInt, 100},
		{math.MaxInt / 50, 100},
	}

	for _, tt := range tests {
		q := LeaderboardQuery{Page: tt.page, PageSize: tt.size}.Normalize(50, 100)
		offset := q.Offset()
		if offset < 0 {
			t.Errorf("page %d size %d: negative offset %d", tt.page, tt.size, offset)
		}
		if offset > math.MaxInt-q.PageSize {
			t.Errorf("page %d size %d: offset %d leaves no room for the page", tt.page, tt.size, offset)
		}
	}
}

func TestLeaderboardQuery_OffsetSaturates(t *testing.T) {
	q := LeaderboardQuery{Page: math.MaxInt, PageSize: 100}

	if got := q.Offset(); got != math.MaxInt {
		t.Errorf("expected saturated offset, got %d", got)
	}
	if got := (LeaderboardQuery{Page: 3, PageSize: 20}).Offset(); got != 40 {
		t.Errorf("expected offset 40, got %d", got)
	}
	if got := (LeaderboardQuery{}).Offset(); got != 0 {
		t.Errorf("expected offset 0, got %d", got)
	}
}
