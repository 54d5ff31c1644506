package service

import (
	"github.com/andresuchdata/merchplan/internal/domain"
)

// ForecastOverrides replaces individual fields of the configured forecast defaults.
type ForecastOverrides struct {
	Weights         *domain.ForecastWeights `json:"weights"`
	Alpha           *float64                `json:"alpha"`
	Beta            *float64                `json:"beta"`
	LookbackWeeks   *int                    `json:"lookback_weeks"`
	ForecastWeeks   *int                    `json:"forecast_weeks"`
	ConfidenceLevel *float64                `json:"confidence_level"`
}

// Apply returns base with every non-nil override applied.
func (o *ForecastOverrides) Apply(base domain.ForecastConfig) domain.ForecastConfig {
	if o == nil {
		return base
	}
	if o.Weights != nil {
		base.Weights = *o.Weights
	}
	if o.Alpha != nil {
		base.Alpha = *o.Alpha
	}
	if o.Beta != nil {
		base.Beta = *o.Beta
	}
	if o.LookbackWeeks != nil {
		base.LookbackWeeks = *o.LookbackWeeks
	}
	if o.ForecastWeeks != nil {
		base.ForecastWeeks = *o.ForecastWeeks
	}
	if o.ConfidenceLevel != nil {
		base.ConfidenceLevel = *o.ConfidenceLevel
	}
	return base
}

// ForecastRequest asks for a forecast of an inline series, or of a SKU's stored weekly sales
// when History is empty.
type ForecastRequest struct {
	SKUCode string                   `json:"sku_code"`
	Store   string                   `json:"store"`
	Method  string                   `json:"method"`
	History []domain.HistoricalPoint `json:"history"`
	Config  *ForecastOverrides       `json:"config"`
}

type OptimizationOverrides struct {
	Strategy          *string  `json:"strategy"`
	MaxMarkdownPct    *float64 `json:"max_markdown_pct"`
	MinMarginPct      *float64 `json:"min_margin_pct"`
	AnalyzeElasticity *bool    `json:"analyze_elasticity"`
}

// Apply returns base with every non-nil override applied. Strategy names are case-insensitive.
func (o *OptimizationOverrides) Apply(base domain.OptimizationConfig) domain.OptimizationConfig {
	if o == nil {
		return base
	}
	if o.Strategy != nil {
		if s, ok := domain.ParseStrategy(*o.Strategy); ok {
			base.Strategy = s
		} else {
			base.Strategy = domain.Strategy(*o.Strategy)
		}
	}
	if o.MaxMarkdownPct != nil {
		base.MaxMarkdownPct = *o.MaxMarkdownPct
	}
	if o.MinMarginPct != nil {
		base.MinMarginPct = *o.MinMarginPct
	}
	if o.AnalyzeElasticity != nil {
		base.AnalyzeElasticity = *o.AnalyzeElasticity
	}
	return base
}

// OptimizeRequest scores inline snapshots, or the stored snapshots matching Filter.
type OptimizeRequest struct {
	SKUs         []domain.SKUSnapshot   `json:"skus"`
	Filter       *domain.SnapshotFilter `json:"filter"`
	Config       *OptimizationOverrides `json:"config"`
	ExportReport bool                   `json:"export_report"`
}

// AlertsRequest evaluates inline items, or the stored positions of Store.
type AlertsRequest struct {
	Store          string                     `json:"store"`
	Items          []domain.ReplenishmentItem `json:"items"`
	MOC            *domain.MOCConfig          `json:"moc"`
	Statuses       []domain.StockStatus       `json:"statuses"`
	IncludeHealthy bool                       `json:"include_healthy"`
}
