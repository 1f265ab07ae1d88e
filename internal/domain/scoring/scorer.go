package scoring

import (
	"github.com/bimakw/wallet-ranker/internal/domain/entities"
)

// Metric identifies one normalized raw metric
type Metric string

const (
	MetricTotalVolume   Metric = "totalVolume"
	MetricGasSpent      Metric = "gasSpentMON"
	MetricTxCount       Metric = "txCount"
	MetricNFTBagValue   Metric = "nftBagValue"
	MetricDaysActive    Metric = "daysActive"
	MetricLongestStreak Metric = "longestStreak"
)

// Scale returns the transform used when normalizing the metric
func (m Metric) Scale() Scale {
	switch m {
	case MetricTotalVolume, MetricGasSpent, MetricNFTBagValue:
		return Logarithmic
	default:
		return Linear
	}
}

// Value extracts the metric from a wallet's raw metrics
func (m Metric) Value(r entities.RawMetrics) float64 {
	switch m {
	case MetricTotalVolume:
		return r.TotalVolume
	case MetricGasSpent:
		return r.GasSpentMON
	case MetricTxCount:
		return float64(r.TxCount)
	case MetricNFTBagValue:
		return r.NFTBagValue
	case MetricDaysActive:
		return float64(r.DaysActive)
	case MetricLongestStreak:
		return float64(r.LongestStreak)
	default:
		return 0
	}
}

var normalizedMetrics = []Metric{
	MetricTotalVolume,
	MetricGasSpent,
	MetricTxCount,
	MetricNFTBagValue,
	MetricDaysActive,
	MetricLongestStreak,
}

// Population holds one distribution per normalized metric
type Population struct {
	size          int
	distributions map[Metric]*Distribution
}

// NewPopulation builds the per-metric distributions of a population snapshot
func NewPopulation(metrics []entities.RawMetrics) *Population {
	p := &Population{
		size:          len(metrics),
		distributions: make(map[Metric]*Distribution, len(normalizedMetrics)),
	}
	values := make([]float64, len(metrics))
	for _, m := range normalizedMetrics {
		for i, r := range metrics {
			values[i] = m.Value(r)
		}
		p.distributions[m] = NewDistribution(values, m.Scale())
	}
	return p
}

// Size returns the number of wallets in the population
func (p *Population) Size() int {
	return p.size
}

// Scored is the component and total score of one wallet
type Scored struct {
	Scores     entities.ComponentScores
	TotalScore float64
}

// Scorer normalizes raw metrics against a population and composes a total
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with a validated weight table
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Weights returns the active weight table
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score scores one wallet against a prepared population
func (s *Scorer) Score(r entities.RawMetrics, p *Population) Scored {
	pct := func(m Metric) float64 {
		return p.distributions[m].Percentile(m.Value(r))
	}

	scores := entities.ComponentScores{
		VolumeScore:      pct(MetricTotalVolume),
		GasScore:         pct(MetricGasSpent),
		TransactionScore: pct(MetricTxCount),
		NFTScore:         pct(MetricNFTBagValue),
		DaysActiveScore:  pct(MetricDaysActive),
		StreakScore:      pct(MetricLongestStreak),
	}
	if r.IsDay1User {
		scores.Day1BonusScore = 100
	}

	return Scored{
		Scores:     scores,
		TotalScore: Compose(scores, s.weights),
	}
}

// ScoreOne scores one wallet against a population that must already contain it
func (s *Scorer) ScoreOne(r entities.RawMetrics, population []entities.RawMetrics) Scored {
	return s.Score(r, NewPopulation(population))
}

// ScoreAll scores every wallet of a population snapshot. Output order matches input.
func (s *Scorer) ScoreAll(population []entities.RawMetrics) []Scored {
	p := NewPopulation(population)
	out := make([]Scored, len(population))
	for i, r := range population {
		out[i] = s.Score(r, p)
	}
	return out
}
