package scoring

import (
	"go.uber.org/zap"

	"github.com/bimakw/wallet-ranker/internal/domain/entities"
)

// SanitizerThresholds are the tunable heuristics applied to NFT valuations
type SanitizerThresholds struct {
	MinFloorPrice           float64
	MaxHoldingNonFungible   int64
	MaxHoldingFungible      int64
	MinVolume7d             float64
	MaxHoldingToSupplyRatio float64
	MinCollectionSize       int64
	MaxCollectionValue      float64
	MaxWalletValue          float64
}

// DefaultSanitizerThresholds returns the production thresholds
func DefaultSanitizerThresholds() SanitizerThresholds {
	return SanitizerThresholds{
		MinFloorPrice:           0.01,
		MaxHoldingNonFungible:   100,
		MaxHoldingFungible:      1000,
		MinVolume7d:             1.0,
		MaxHoldingToSupplyRatio: 0.5,
		MinCollectionSize:       100,
		MaxCollectionValue:      10000,
		MaxWalletValue:          50000,
	}
}

// RejectReason explains why a collection contributed nothing
type RejectReason string

const (
	ReasonLowFloorPrice      RejectReason = "low_floor_price"
	ReasonExcessiveHolding   RejectReason = "excessive_holding"
	ReasonLowVolume          RejectReason = "low_volume"
	ReasonSmallCollection    RejectReason = "small_collection"
	ReasonHoldingToSupply    RejectReason = "holding_to_supply_ratio"
	ReasonCollectionValueCap RejectReason = "collection_value_cap"
)

// CollectionValuation is the verdict for one collection
type CollectionValuation struct {
	Name   string
	Value  float64
	Reason RejectReason
}

// Rejected reports whether the collection was zeroed
func (c CollectionValuation) Rejected() bool {
	return c.Reason != ""
}

// Valuation is the sanitized NFT bag value of one wallet
type Valuation struct {
	Total       float64
	Collections []CollectionValuation
	// Capped is set when the wallet ceiling was applied
	Capped bool
}

// Rejections returns the collections that were zeroed
func (v Valuation) Rejections() []CollectionValuation {
	var out []CollectionValuation
	for _, c := range v.Collections {
		if c.Rejected() {
			out = append(out, c)
		}
	}
	return out
}

// Sanitizer values NFT holdings while discarding collections that look manipulated
type Sanitizer struct {
	thresholds SanitizerThresholds
	logger     *zap.Logger
}

// NewSanitizer creates a sanitizer with the given thresholds
func NewSanitizer(thresholds SanitizerThresholds, logger *zap.Logger) *Sanitizer {
	return &Sanitizer{
		thresholds: thresholds,
		logger:     logger,
	}
}

// Thresholds returns the active thresholds
func (s *Sanitizer) Thresholds() SanitizerThresholds {
	return s.thresholds
}

// Evaluate returns the contribution of one collection, or zero and a reason
func (s *Sanitizer) Evaluate(c entities.NFTCollection) (float64, RejectReason) {
	t := s.thresholds

	if c.FloorPrice7d < t.MinFloorPrice {
		return 0, ReasonLowFloorPrice
	}

	fungible := c.TokenStandard.IsFungible()
	maxHolding := t.MaxHoldingNonFungible
	if fungible {
		maxHolding = t.MaxHoldingFungible
	}
	if c.HoldingCount > maxHolding {
		return 0, ReasonExcessiveHolding
	}

	if c.Volume7d != nil && *c.Volume7d < t.MinVolume7d {
		return 0, ReasonLowVolume
	}

	if !fungible {
		if c.CollectionSize < t.MinCollectionSize || c.CollectionSize <= 0 {
			return 0, ReasonSmallCollection
		}
		if float64(c.HoldingCount)/float64(c.CollectionSize) > t.MaxHoldingToSupplyRatio {
			return 0, ReasonHoldingToSupply
		}
	}

	value := c.FloorPrice7d * float64(c.HoldingCount)
	if value > t.MaxCollectionValue {
		return 0, ReasonCollectionValueCap
	}

	return value, ""
}

// Value sums accepted collections and applies the wallet ceiling
func (s *Sanitizer) Value(address string, collections []entities.NFTCollection) Valuation {
	valuation := Valuation{
		Collections: make([]CollectionValuation, 0, len(collections)),
	}

	for _, c := range collections {
		value, reason := s.Evaluate(c)
		if reason != "" {
			s.logger.Warn("Suspicious NFT collection ignored",
				zap.String("address", address),
				zap.String("collection", c.Name),
				zap.String("reason", string(reason)),
				zap.Float64("floor_price", c.FloorPrice7d),
				zap.Int64("holding_count", c.HoldingCount),
			)
		}
		valuation.Collections = append(valuation.Collections, CollectionValuation{
			Name:   c.Name,
			Value:  value,
			Reason: reason,
		})
		valuation.Total += value
	}

	if valuation.Total > s.thresholds.MaxWalletValue {
		s.logger.Warn("NFT bag value capped",
			zap.String("address", address),
			zap.Float64("value", valuation.Total),
			zap.Float64("ceiling", s.thresholds.MaxWalletValue),
		)
		valuation.Total = s.thresholds.MaxWalletValue
		valuation.Capped = true
	}

	return valuation
}
