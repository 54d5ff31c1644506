package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// SKUSnapshot holds the inventory and sales facts for one product variant at a point in time.
type SKUSnapshot struct {
	SKUCode          string  `json:"sku_code" db:"sku_code"`
	ProductName      string  `json:"product_name" db:"product_name"`
	Category         string  `json:"category" db:"category"`
	Store            string  `json:"store" db:"store"`
	CurrentStock     float64 `json:"current_stock" db:"current_stock"`
	CurrentPrice     float64 `json:"current_price" db:"current_price"`
	OriginalPrice    float64 `json:"original_price" db:"original_price"`
	UnitCost         float64 `json:"unit_cost" db:"unit_cost"`
	WeeksOnHand      float64 `json:"weeks_on_hand" db:"weeks_on_hand"`
	SellThroughRate  float64 `json:"sell_through_rate" db:"sell_through_rate"`
	WeeksToSeasonEnd float64 `json:"weeks_to_season_end" db:"weeks_to_season_end"`
	AvgWeeklySales   float64 `json:"avg_weekly_sales" db:"avg_weekly_sales"`
	// StockValue is the retail value of the stock on hand, used as given. Readers fill it
	// from CurrentStock*CurrentPrice only when the source leaves it out.
	StockValue float64 `json:"stock_value" db:"stock_value"`
}

// UnmarshalJSON derives stock_value from stock and price when the key is absent or null.
// An explicit 0 is kept.
func (s *SKUSnapshot) UnmarshalJSON(data []byte) error {
	type plain SKUSnapshot
	aux := struct {
		*plain
		StockValue *float64 `json:"stock_value"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.StockValue != nil {
		s.StockValue = *aux.StockValue
	} else {
		s.StockValue = s.CurrentStock * s.CurrentPrice
	}
	return nil
}

// Strategy steers how aggressive markdowns are.
type Strategy string

const (
	StrategyMaximizeRecovery    Strategy = "MAXIMIZE_RECOVERY"
	StrategyMaximizeSellThrough Strategy = "MAXIMIZE_SELL_THROUGH"
	StrategyBalanced            Strategy = "BALANCED"
)

// ParseStrategy accepts the enum value case-insensitively. Empty input maps to BALANCED.
func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(strings.ToUpper(strings.TrimSpace(s))) {
	case "", StrategyBalanced:
		return StrategyBalanced, true
	case StrategyMaximizeRecovery:
		return StrategyMaximizeRecovery, true
	case StrategyMaximizeSellThrough:
		return StrategyMaximizeSellThrough, true
	}
	return "", false
}

// OptimizationConfig controls a clearance optimization run.
type OptimizationConfig struct {
	Strategy          Strategy `json:"strategy"`
	MaxMarkdownPct    float64  `json:"max_markdown_pct"`
	MinMarginPct      float64  `json:"min_margin_pct"`
	AnalyzeElasticity bool     `json:"analyze_elasticity"`
}

// DefaultOptimizationConfig returns a balanced config with a 70% markdown cap and no margin floor.
func DefaultOptimizationConfig() OptimizationConfig {
	return OptimizationConfig{
		Strategy:          StrategyBalanced,
		MaxMarkdownPct:    70,
		MinMarginPct:      -100,
		AnalyzeElasticity: true,
	}
}

// Validate checks the configuration and returns a *ConfigurationError on the first problem.
func (c OptimizationConfig) Validate() error {
	if _, ok := ParseStrategy(string(c.Strategy)); !ok {
		return configErr("strategy", "unknown strategy %q", c.Strategy)
	}
	if c.MaxMarkdownPct < 0 || c.MaxMarkdownPct > 100 {
		return configErr("max_markdown_pct", "must be within [0,100], got %v", c.MaxMarkdownPct)
	}
	if c.MinMarginPct < -100 || c.MinMarginPct > 100 {
		return configErr("min_margin_pct", "must be within [-100,100], got %v", c.MinMarginPct)
	}
	return nil
}

// UrgencyLevel is the tier derived from an urgency score.
type UrgencyLevel string

const (
	UrgencyCritical UrgencyLevel = "CRITICAL"
	UrgencyHigh     UrgencyLevel = "HIGH"
	UrgencyMedium   UrgencyLevel = "MEDIUM"
	UrgencyLow      UrgencyLevel = "LOW"
)

// ClearanceAction is the recommended treatment for a SKU.
type ClearanceAction string

const (
	ActionHold        ClearanceAction = "HOLD"
	ActionDiscontinue ClearanceAction = "DISCONTINUE"
	ActionPromote     ClearanceAction = "PROMOTE"
	ActionBundle      ClearanceAction = "BUNDLE"
	ActionMarkdown    ClearanceAction = "MARKDOWN"
)

// SalesProjection is the expected outcome of selling a SKU at a marked-down price.
type SalesProjection struct {
	NewPrice             float64 `json:"new_price" db:"new_price"`
	ProjectedWeeklySales float64 `json:"projected_weekly_sales" db:"projected_weekly_sales"`
	ProjectedUnits       float64 `json:"projected_units" db:"projected_units"`
	ProjectedRevenue     float64 `json:"projected_revenue" db:"projected_revenue"`
	ProjectedMarginLoss  float64 `json:"projected_margin_loss" db:"projected_margin_loss"`
	ProjectedSellThrough float64 `json:"projected_sell_through" db:"projected_sell_through"`
	DaysToSell           float64 `json:"days_to_sell" db:"days_to_sell"`
}

// SKURecommendation is the optimizer's output for one SKU.
type SKURecommendation struct {
	SKUCode      string          `json:"sku_code" db:"sku_code"`
	ProductName  string          `json:"product_name" db:"product_name"`
	CurrentStock float64         `json:"current_stock" db:"current_stock"`
	CurrentPrice float64         `json:"current_price" db:"current_price"`
	UrgencyScore float64         `json:"urgency_score" db:"urgency_score"`
	UrgencyLevel UrgencyLevel    `json:"urgency_level" db:"urgency_level"`
	Elasticity   float64         `json:"elasticity" db:"elasticity"`
	Action       ClearanceAction `json:"action" db:"action"`
	MarkdownPct  float64         `json:"markdown_pct" db:"markdown_pct"`
	SalesProjection
	Reasoning string `json:"reasoning" db:"reasoning"`
}

// PortfolioSummary is derived from a list of recommendations and never stored on its own.
type PortfolioSummary struct {
	TotalSKUs             int                     `json:"total_skus"`
	TotalStock            float64                 `json:"total_stock"`
	ByUrgency             map[UrgencyLevel]int    `json:"by_urgency"`
	ByAction              map[ClearanceAction]int `json:"by_action"`
	TotalProjectedUnits   float64                 `json:"total_projected_units"`
	TotalProjectedRevenue float64                 `json:"total_projected_revenue"`
	TotalMarginLoss       float64                 `json:"total_margin_loss"`
	AvgSellThrough        float64                 `json:"avg_sell_through"`
	AvgDaysToSell         float64                 `json:"avg_days_to_sell"`
}

// ClearanceRun groups the recommendations produced by one optimization call.
type ClearanceRun struct {
	ID              string              `json:"id" db:"id"`
	Config          OptimizationConfig  `json:"config" db:"-"`
	Recommendations []SKURecommendation `json:"recommendations" db:"-"`
	Summary         PortfolioSummary    `json:"summary" db:"-"`
	ReportKey       string              `json:"report_key,omitempty" db:"report_key"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
}

// SnapshotFilter narrows the SKU snapshots loaded from storage.
type SnapshotFilter struct {
	SKUCodes   []string `json:"sku_codes"`
	Categories []string `json:"categories"`
	Stores     []string `json:"stores"`
	Limit      int      `json:"limit"`
}
