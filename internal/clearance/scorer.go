package clearance

import (
	"github.com/andresuchdata/merchplan/internal/domain"
	"github.com/andresuchdata/merchplan/pkg/numeric"
)

// UrgencyScore blends four [0,1] factors into a clearance urgency score:
// weeks on hand, unsold share, season-end proximity and stock value.
func (r Rules) UrgencyScore(sku domain.SKUSnapshot) float64 {
	ageFactor := numeric.Clamp01(numeric.SafeDiv(sku.WeeksOnHand, r.WeeksOnHandHorizon, 0))
	unsoldFactor := numeric.Clamp01(1 - sku.SellThroughRate/100)
	seasonFactor := numeric.Clamp01(1 - numeric.SafeDiv(sku.WeeksToSeasonEnd, r.SeasonHorizon, 0))
	valueFactor := numeric.Clamp01(numeric.SafeDiv(sku.StockValue, r.StockValueCap, 0))

	score := ageFactor*r.WeeksOnHandWeight +
		unsoldFactor*r.SellThroughWeight +
		seasonFactor*r.SeasonWeight +
		valueFactor*r.StockValueWeight

	return numeric.Round(numeric.Clamp01(score), 2)
}

// UrgencyLevel maps a score onto its tier.
func (r Rules) UrgencyLevel(score float64) domain.UrgencyLevel {
	switch {
	case score >= r.CriticalThreshold:
		return domain.UrgencyCritical
	case score >= r.HighThreshold:
		return domain.UrgencyHigh
	case score >= r.MediumThreshold:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

// EstimateElasticity estimates how strongly demand reacts to a price cut. Slow sellers and
// aged stock are assumed more price sensitive; fast sellers less so.
func (r Rules) EstimateElasticity(sku domain.SKUSnapshot) float64 {
	elasticity := r.BaseElasticity
	if sku.SellThroughRate < r.SlowSellerThreshold {
		elasticity *= r.SlowSellerMultiplier
	} else if sku.SellThroughRate > r.FastSellerThreshold {
		elasticity *= r.FastSellerMultiplier
	}
	if sku.WeeksOnHand > r.AgedWeeksOnHand {
		elasticity *= r.AgedStockMultiplier
	}
	return numeric.Round(elasticity, 2)
}

var defaultRules = DefaultRules()

// UrgencyScore scores sku with DefaultRules.
func UrgencyScore(sku domain.SKUSnapshot) float64 {
	return defaultRules.UrgencyScore(sku)
}

// UrgencyLevelFor tiers score with DefaultRules.
func UrgencyLevelFor(score float64) domain.UrgencyLevel {
	return defaultRules.UrgencyLevel(score)
}

// EstimateElasticity estimates sku elasticity with DefaultRules.
func EstimateElasticity(sku domain.SKUSnapshot) float64 {
	return defaultRules.EstimateElasticity(sku)
}
