package domain

import (
	"math"
	"strings"
	"time"
)

// HistoricalPoint is one weekly bucket of a sales (or stock/intake) series.
type HistoricalPoint struct {
	PeriodIndex int     `json:"period_index" db:"period_index"`
	Value       float64 `json:"value" db:"value"`
}

// ForecastMethod selects the estimator used for a forecast run.
type ForecastMethod string

const (
	MethodMovingAverage        ForecastMethod = "MOVING_AVERAGE"
	MethodExponentialSmoothing ForecastMethod = "EXPONENTIAL_SMOOTHING"
	MethodTrend                ForecastMethod = "TREND"
	MethodEnsemble             ForecastMethod = "ENSEMBLE"
)

// AllForecastMethods lists every method in comparison order.
var AllForecastMethods = []ForecastMethod{
	MethodMovingAverage,
	MethodExponentialSmoothing,
	MethodTrend,
	MethodEnsemble,
}

// ParseForecastMethod accepts the enum value case-insensitively. Empty input maps to ENSEMBLE.
func ParseForecastMethod(s string) (ForecastMethod, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return MethodEnsemble, true
	}
	for _, m := range AllForecastMethods {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// ForecastWeights are the ensemble blend weights.
type ForecastWeights struct {
	MovingAvgWeight float64 `json:"moving_avg_weight"`
	ExpSmoothWeight float64 `json:"exp_smooth_weight"`
	TrendWeight     float64 `json:"trend_weight"`
}

// Sum returns the total of the three weights.
func (w ForecastWeights) Sum() float64 {
	return w.MovingAvgWeight + w.ExpSmoothWeight + w.TrendWeight
}

// ForecastConfig is read-only for the duration of a run.
type ForecastConfig struct {
	Weights         ForecastWeights `json:"weights"`
	Alpha           float64         `json:"alpha"`
	Beta            float64         `json:"beta"`
	LookbackWeeks   int             `json:"lookback_weeks"`
	ForecastWeeks   int             `json:"forecast_weeks"`
	ConfidenceLevel float64         `json:"confidence_level"`
}

const (
	weightSumTolerance = 0.01
	maxForecastWeeks   = 52
)

// DefaultForecastConfig returns the planning defaults used when nothing is configured.
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		Weights: ForecastWeights{
			MovingAvgWeight: 0.25,
			ExpSmoothWeight: 0.35,
			TrendWeight:     0.40,
		},
		Alpha:           0.3,
		Beta:            0.1,
		LookbackWeeks:   12,
		ForecastWeeks:   4,
		ConfidenceLevel: 0.95,
	}
}

// Validate checks the configuration and returns a *ConfigurationError on the first problem.
func (c ForecastConfig) Validate() error {
	w := c.Weights
	if w.MovingAvgWeight < 0 || w.ExpSmoothWeight < 0 || w.TrendWeight < 0 {
		return configErr("weights", "weights must not be negative")
	}
	if math.Abs(w.Sum()-1) > weightSumTolerance {
		return configErr("weights", "weights must sum to 1, got %.4f", w.Sum())
	}
	if c.Alpha < 0 || c.Alpha > 1 {
		return configErr("alpha", "must be within [0,1], got %v", c.Alpha)
	}
	if c.Beta < 0 || c.Beta > 1 {
		return configErr("beta", "must be within [0,1], got %v", c.Beta)
	}
	if c.LookbackWeeks < 1 {
		return configErr("lookback_weeks", "must be at least 1, got %d", c.LookbackWeeks)
	}
	if c.ForecastWeeks < 1 || c.ForecastWeeks > maxForecastWeeks {
		return configErr("forecast_weeks", "must be within [1,%d], got %d", maxForecastWeeks, c.ForecastWeeks)
	}
	if c.ConfidenceLevel < 0 || c.ConfidenceLevel >= 1 {
		return configErr("confidence_level", "must be within [0,1), got %v", c.ConfidenceLevel)
	}
	return nil
}

// ComponentBreakdown exposes the unrounded estimator outputs behind an ensemble forecast.
type ComponentBreakdown struct {
	MovingAverage        float64 `json:"moving_average"`
	ExponentialSmoothing float64 `json:"exponential_smoothing"`
	Trend                float64 `json:"trend"`
}

// ForecastPoint is one projected period.
type ForecastPoint struct {
	PeriodIndex        int                 `json:"period_index" db:"period_index"`
	PointForecast      float64             `json:"point_forecast" db:"point_forecast"`
	ConfidenceLower    float64             `json:"confidence_lower" db:"confidence_lower"`
	ConfidenceUpper    float64             `json:"confidence_upper" db:"confidence_upper"`
	ComponentBreakdown *ComponentBreakdown `json:"component_breakdown,omitempty" db:"-"`
}

// RunStatus tracks a forecast run through its stages.
type RunStatus string

const (
	RunStatusInitialized    RunStatus = "INITIALIZED"
	RunStatusForecasting    RunStatus = "FORECASTING"
	RunStatusAccuracyScored RunStatus = "ACCURACY_SCORED"
	RunStatusComplete       RunStatus = "COMPLETE"
)

// AccuracyReport is the held-out MAPE evaluation of a method.
type AccuracyReport struct {
	Method         ForecastMethod `json:"method"`
	MAPE           float64        `json:"mape"`
	Interpretation string         `json:"interpretation"`
	HeldOut        int            `json:"held_out"`
	ZeroActuals    int            `json:"zero_actuals"`
}

// ForecastRun is the output of one orchestrated run.
type ForecastRun struct {
	ID          string          `json:"id" db:"id"`
	SKUCode     string          `json:"sku_code,omitempty" db:"sku_code"`
	Method      ForecastMethod  `json:"method" db:"method"`
	Config      ForecastConfig  `json:"config" db:"-"`
	Status      RunStatus       `json:"status" db:"status"`
	History     int             `json:"history_points" db:"history_points"`
	Points      []ForecastPoint `json:"points" db:"-"`
	Accuracy    AccuracyReport  `json:"accuracy" db:"-"`
	Transitions []RunStatus     `json:"transitions" db:"-"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// MethodScore is one row of a method comparison.
type MethodScore struct {
	Rank           int            `json:"rank"`
	Method         ForecastMethod `json:"method"`
	MAPE           float64        `json:"mape"`
	Interpretation string         `json:"interpretation"`
	NextForecast   float64        `json:"next_forecast"`
}

// MethodComparison ranks all methods by MAPE ascending.
type MethodComparison struct {
	Scores        []MethodScore  `json:"scores"`
	Recommended   ForecastMethod `json:"recommended"`
	Justification string         `json:"justification"`
}
