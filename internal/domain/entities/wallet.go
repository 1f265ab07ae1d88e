package entities

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// DateLayout is the layout of daily activity dates
const DateLayout = "2006-01-02"

// RawMetrics are the seven per-wallet activity metrics scoring is derived from
type RawMetrics struct {
	TxCount       int64   `db:"tx_count"`
	GasSpentMON   float64 `db:"gas_spent_mon"`
	TotalVolume   float64 `db:"total_volume"`
	NFTBagValue   float64 `db:"nft_bag_value"`
	IsDay1User    bool    `db:"is_day1_user"`
	LongestStreak int     `db:"longest_streak"`
	DaysActive    int     `db:"days_active"`
}

// ComponentScores are the normalized per-metric scores, each in [0,100]
type ComponentScores struct {
	VolumeScore      float64 `db:"volume_score"`
	GasScore         float64 `db:"gas_score"`
	TransactionScore float64 `db:"transaction_score"`
	NFTScore         float64 `db:"nft_score"`
	DaysActiveScore  float64 `db:"days_active_score"`
	StreakScore      float64 `db:"streak_score"`
	Day1BonusScore   float64 `db:"day1_bonus_score"`
}

// DailyActivity is one day of the gap-filled activity series
type DailyActivity struct {
	Date         string  `json:"date"`
	Transactions int64   `json:"transactions"`
	Volume       float64 `json:"volume"`
	GasSpent     float64 `json:"gasSpent"`
}

// DailyActivitySeries is stored as a JSONB column
type DailyActivitySeries []DailyActivity

// Value implements driver.Valuer
func (s DailyActivitySeries) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	data, err := sonic.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal activity series: %w", err)
	}
	return data, nil
}

// Scan implements sql.Scanner
func (s *DailyActivitySeries) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return sonic.Unmarshal(v, s)
	case string:
		return sonic.UnmarshalString(v, s)
	default:
		return errors.New("unsupported type for activity series")
	}
}

// WalletRecord is the stored state of one wallet. Scores are a derived cache of the
// wallet's raw metrics and the raw metrics of the whole population.
type WalletRecord struct {
	ID      int64  `db:"id"`
	Address string `db:"address"`

	RawMetrics
	ComponentScores

	TotalScore float64             `db:"total_score"`
	Rank       int                 `db:"rank"`
	History    DailyActivitySeries `db:"history"`
	CreatedAt  time.Time           `db:"created_at"`
	UpdatedAt  time.Time           `db:"updated_at"`
}

// ScoreUpdate carries the output of a recalculation for one wallet
type ScoreUpdate struct {
	Address    string
	Scores     ComponentScores
	TotalScore float64
	Rank       int
}
