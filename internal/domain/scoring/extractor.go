package scoring

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bimakw/wallet-ranker/internal/domain/entities"
)

const day = 24 * time.Hour

// monDecimals is the number of base-unit decimals in one MON
const monDecimals = 18

// Extraction is the output of metric extraction for one wallet
type Extraction struct {
	Metrics   entities.RawMetrics
	History   entities.DailyActivitySeries
	Valuation Valuation
}

// Extractor derives raw metrics from a wallet's transactions and NFT holdings
type Extractor struct {
	epoch     time.Time
	launch    time.Time
	sanitizer *Sanitizer
}

// NewExtractor creates an extractor for the given launch epoch. Transactions earlier
// than epoch are out of scope for every metric.
func NewExtractor(epoch time.Time, sanitizer *Sanitizer) *Extractor {
	epoch = epoch.UTC()
	return &Extractor{
		epoch:     epoch,
		launch:    truncateDay(epoch),
		sanitizer: sanitizer,
	}
}

// InScope reports whether a transaction counts towards scoring
func (e *Extractor) InScope(tx entities.Transaction) bool {
	return !tx.Time().Before(e.epoch)
}

type dayBucket struct {
	transactions int64
	volume       decimal.Decimal
	gas          decimal.Decimal
}

// Extract computes the seven raw metrics and the gap-filled daily series
func (e *Extractor) Extract(address string, txs []entities.Transaction, collections []entities.NFTCollection) Extraction {
	var (
		metrics entities.RawMetrics
		volume  = decimal.Zero
		gas     = decimal.Zero
		buckets = make(map[time.Time]*dayBucket)
	)

	for _, tx := range txs {
		if !e.InScope(tx) {
			continue
		}
		date := truncateDay(tx.Time())
		if date.Equal(e.launch) {
			metrics.IsDay1User = true
		}

		value := parseAmount(tx.Value)
		fee := transactionFee(tx)

		metrics.TxCount++
		volume = volume.Add(value)
		gas = gas.Add(fee)

		b, ok := buckets[date]
		if !ok {
			b = &dayBucket{volume: decimal.Zero, gas: decimal.Zero}
			buckets[date] = b
		}
		b.transactions++
		b.volume = b.volume.Add(value)
		b.gas = b.gas.Add(fee)
	}

	metrics.TotalVolume = toMON(volume)
	metrics.GasSpentMON = toMON(gas)

	dates := make([]time.Time, 0, len(buckets))
	for d := range buckets {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	history := buildSeries(dates, buckets)
	for _, d := range history {
		if d.Transactions > 0 {
			metrics.DaysActive++
		}
	}
	metrics.LongestStreak = LongestStreak(dates)

	var valuation Valuation
	if e.sanitizer != nil {
		valuation = e.sanitizer.Value(address, collections)
		metrics.NFTBagValue = valuation.Total
	}

	return Extraction{
		Metrics:   metrics,
		History:   history,
		Valuation: valuation,
	}
}

// LongestStreak returns the longest run of consecutive calendar days in a sorted
// list of distinct UTC dates
func LongestStreak(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	longest, current := 1, 1
	for i := 1; i < len(dates); i++ {
		if dates[i].Sub(dates[i-1]) == day {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

// buildSeries fills every date between the first and last active date
func buildSeries(dates []time.Time, buckets map[time.Time]*dayBucket) entities.DailyActivitySeries {
	if len(dates) == 0 {
		return entities.DailyActivitySeries{}
	}

	first, last := dates[0], dates[len(dates)-1]
	series := make(entities.DailyActivitySeries, 0, int(last.Sub(first)/day)+1)
	for d := first; !d.After(last); d = d.Add(day) {
		entry := entities.DailyActivity{Date: d.Format(entities.DateLayout)}
		if b, ok := buckets[d]; ok {
			entry.Transactions = b.transactions
			entry.Volume = toMON(b.volume)
			entry.GasSpent = toMON(b.gas)
		}
		series = append(series, entry)
	}
	return series
}

// transactionFee returns gasUsed x gasPrice in base units. The gas limit is used
// when the source omits gasUsed.
func transactionFee(tx entities.Transaction) decimal.Decimal {
	used := tx.GasUsed
	if used == "" {
		used = tx.Gas
	}
	return parseAmount(used).Mul(parseAmount(tx.GasPrice))
}

// parseAmount parses a base-unit integer string, returning zero when malformed
func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func toMON(amount decimal.Decimal) float64 {
	return amount.Shift(-monDecimals).InexactFloat64()
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
