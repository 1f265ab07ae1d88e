package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/bimakw/wallet-ranker/internal/domain/entities"
)

const weightTolerance = 1e-9

var (
	// ErrWeightsSum is returned when a weight table does not sum to 1.0
	ErrWeightsSum = errors.New("weights must sum to 1.0")
	// ErrNegativeWeight is returned when a weight table has a negative entry
	ErrNegativeWeight = errors.New("weights must be non-negative")
)

// Weights is a versioned weight table for the seven component scores
type Weights struct {
	Version      string
	Volume       float64
	Gas          float64
	Transactions float64
	NFT          float64
	DaysActive   float64
	Streak       float64
	Day1Bonus    float64
}

// DefaultWeights returns the current weight table
func DefaultWeights() Weights {
	return Weights{
		Version:      "v2",
		Volume:       0.25,
		Gas:          0.20,
		Transactions: 0.15,
		NFT:          0.15,
		DaysActive:   0.10,
		Streak:       0.10,
		Day1Bonus:    0.05,
	}
}

// WeightsV1 returns the earlier table that favoured NFT holdings over streaks
func WeightsV1() Weights {
	return Weights{
		Version:      "v1",
		Volume:       0.25,
		Gas:          0.20,
		Transactions: 0.15,
		NFT:          0.20,
		DaysActive:   0.10,
		Streak:       0.05,
		Day1Bonus:    0.05,
	}
}

// WeightsByVersion returns a built-in table by its version label
func WeightsByVersion(version string) (Weights, bool) {
	switch version {
	case "v1":
		return WeightsV1(), true
	case "v2":
		return DefaultWeights(), true
	default:
		return Weights{}, false
	}
}

func (w Weights) values() []float64 {
	return []float64{w.Volume, w.Gas, w.Transactions, w.NFT, w.DaysActive, w.Streak, w.Day1Bonus}
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	var sum float64
	for _, v := range w.values() {
		sum += v
	}
	return sum
}

// Validate checks that the table is non-negative and sums to 1.0
func (w Weights) Validate() error {
	for _, v := range w.values() {
		if v < 0 {
			return fmt.Errorf("%w: version %q", ErrNegativeWeight, w.Version)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: version %q sums to %v", ErrWeightsSum, w.Version, sum)
	}
	return nil
}

// Compose returns the weighted total of the component scores, rounded to two
// decimals and clamped to [0,100]
func Compose(s entities.ComponentScores, w Weights) float64 {
	total := s.VolumeScore*w.Volume +
		s.GasScore*w.Gas +
		s.TransactionScore*w.Transactions +
		s.NFTScore*w.NFT +
		s.DaysActiveScore*w.DaysActive +
		s.StreakScore*w.Streak +
		s.Day1BonusScore*w.Day1Bonus

	return math.Min(100, math.Max(0, round2(total)))
}
