package scoring

import (
	"math"
	"sort"
)

// Scale selects the transform applied before ranking
type Scale int

const (
	// Linear ranks raw values
	Linear Scale = iota
	// Logarithmic ranks ln(1+x) to compress whale outliers
	Logarithmic
)

func (s Scale) transform(x float64) float64 {
	if s == Logarithmic {
		if x < 0 {
			x = 0
		}
		return math.Log1p(x)
	}
	return x
}

// Distribution is one metric's population, transformed and sorted once
type Distribution struct {
	sorted []float64
	scale  Scale
}

// NewDistribution builds a distribution from a population of raw values
func NewDistribution(values []float64, scale Scale) *Distribution {
	sorted := make([]float64, len(values))
	for i, v := range values {
		sorted[i] = scale.transform(v)
	}
	sort.Float64s(sorted)
	return &Distribution{sorted: sorted, scale: scale}
}

// Size returns the population size
func (d *Distribution) Size() int {
	return len(d.sorted)
}

// Percentile returns the share of the population strictly below value, in [0,100],
// rounded to two decimals. A population of one (or none) scores 100.
func (d *Distribution) Percentile(value float64) float64 {
	n := len(d.sorted)
	if n <= 1 {
		return 100
	}
	idx := sort.SearchFloat64s(d.sorted, d.scale.transform(value))
	return round2(float64(idx) / float64(n) * 100)
}

// Percentile normalizes one value against a population that includes it
func Percentile(value float64, population []float64, scale Scale) float64 {
	return NewDistribution(population, scale).Percentile(value)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
