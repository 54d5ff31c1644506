// Package clearance scores SKUs for clearance urgency and recommends markdowns, actions and
// projected outcomes.
package clearance

// Rules holds the thresholds and weights of the scoring model. The zero value is not useful;
// start from DefaultRules and override fields as needed.
type Rules struct {
	// urgency factor weights, summing to 1
	WeeksOnHandWeight float64
	SellThroughWeight float64
	SeasonWeight      float64
	StockValueWeight  float64

	// normalisation horizons for the urgency factors
	WeeksOnHandHorizon float64
	SeasonHorizon      float64
	StockValueCap      float64

	CriticalThreshold float64
	HighThreshold     float64
	MediumThreshold   float64

	BaseElasticity         float64
	SlowSellerThreshold    float64
	SlowSellerMultiplier   float64
	FastSellerThreshold    float64
	FastSellerMultiplier   float64
	AgedWeeksOnHand        float64
	AgedStockMultiplier    float64
	MarkdownPerUrgency     float64
	RecoveryMultiplier     float64
	SellThroughMultiplier  float64
	VerySlowSellThrough    float64
	VerySlowBoost          float64
	HealthySellThrough     float64
	HealthyReduction       float64
	SeasonEndingWeeks      float64
	SeasonEndingBoost      float64
	SeasonApproachingWeeks float64
	SeasonApproachingBoost float64

	// decision table cutoffs, evaluated in this order
	HoldMaxStock              float64
	DiscontinueMaxSellThrough float64
	DiscontinueMinMarkdown    float64
	PromoteMinSellThrough     float64
	PromoteMaxSellThrough     float64
	PromoteMaxMarkdown        float64
	BundleMaxStock            float64
	BundleMinValue            float64
	BundleMaxSellThrough      float64

	// projection limits
	MaxDaysToSell     float64
	UnsoldDaysToSell  float64
	DefaultSalesWeeks float64
}

// DefaultRules returns the standard clearance model.
func DefaultRules() Rules {
	return Rules{
		WeeksOnHandWeight: 0.35,
		SellThroughWeight: 0.25,
		SeasonWeight:      0.25,
		StockValueWeight:  0.15,

		WeeksOnHandHorizon: 12,
		SeasonHorizon:      12,
		StockValueCap:      50000,

		CriticalThreshold: 0.8,
		HighThreshold:     0.6,
		MediumThreshold:   0.4,

		BaseElasticity:         1.5,
		SlowSellerThreshold:    20,
		SlowSellerMultiplier:   1.3,
		FastSellerThreshold:    60,
		FastSellerMultiplier:   0.8,
		AgedWeeksOnHand:        10,
		AgedStockMultiplier:    1.2,
		MarkdownPerUrgency:     50,
		RecoveryMultiplier:     0.7,
		SellThroughMultiplier:  1.3,
		VerySlowSellThrough:    10,
		VerySlowBoost:          15,
		HealthySellThrough:     50,
		HealthyReduction:       10,
		SeasonEndingWeeks:      4,
		SeasonEndingBoost:      20,
		SeasonApproachingWeeks: 8,
		SeasonApproachingBoost: 10,

		HoldMaxStock:              10,
		DiscontinueMaxSellThrough: 5,
		DiscontinueMinMarkdown:    60,
		PromoteMinSellThrough:     30,
		PromoteMaxSellThrough:     50,
		PromoteMaxMarkdown:        30,
		BundleMaxStock:            50,
		BundleMinValue:            1000,
		BundleMaxSellThrough:      25,

		MaxDaysToSell:     365,
		UnsoldDaysToSell:  999,
		DefaultSalesWeeks: 12,
	}
}
