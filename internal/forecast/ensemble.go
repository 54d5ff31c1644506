package forecast

import (
	"math"

	"github.com/andresuchdata/merchplan/internal/domain"
	"github.com/andresuchdata/merchplan/pkg/numeric"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultMovingAverageWindow is the moving-average window used by the ensemble.
	DefaultMovingAverageWindow = 4

	fallbackBandPct = 0.20
	defaultZScore   = 1.96
)

// EnsembleResult is a blended point forecast and the estimator outputs behind it.
type EnsembleResult struct {
	Forecast   float64                   `json:"forecast"`
	Components domain.ComponentBreakdown `json:"components"`
}

// EnsembleForecast blends moving average, Holt smoothing and the linear trend with the
// configured weights. The blend is floored at zero and rounded to 2 decimals; components are
// reported unrounded and clamped at zero.
func EnsembleForecast(series []float64, cfg domain.ForecastConfig, periodsAhead int) EnsembleResult {
	if periodsAhead < 1 {
		periodsAhead = 1
	}

	ma := MovingAverage(series, DefaultMovingAverageWindow)
	es := ExponentialSmoothing(series, cfg.Alpha, cfg.Beta, periodsAhead)
	tr := TrendAdjusted(series).ProjectAhead(periodsAhead)

	w := cfg.Weights
	blended := ma*w.MovingAvgWeight + es*w.ExpSmoothWeight + tr*w.TrendWeight

	return EnsembleResult{
		Forecast: numeric.Round(math.Max(0, blended), 2),
		Components: domain.ComponentBreakdown{
			MovingAverage:        math.Max(0, ma),
			ExponentialSmoothing: math.Max(0, es),
			Trend:                math.Max(0, tr),
		},
	}
}

// Interval is a confidence band around a point forecast.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// ConfidenceInterval bands forecast by z standard deviations of the history. With fewer than
// two points the band falls back to +/-20% of the forecast. The lower bound never drops below 0.
func ConfidenceInterval(forecast float64, history []float64, confidenceLevel float64) Interval {
	if len(history) < 2 {
		return band(forecast, math.Abs(forecast)*fallbackBandPct)
	}
	return band(forecast, zScore(confidenceLevel)*stat.StdDev(history, nil))
}

func band(forecast, margin float64) Interval {
	lower := numeric.Round(math.Max(0, forecast-margin), 2)
	upper := numeric.Round(forecast+margin, 2)

	// rounding must not push the bounds across the point forecast
	return Interval{
		Lower: math.Min(lower, math.Max(0, forecast)),
		Upper: math.Max(upper, forecast),
	}
}

func zScore(confidenceLevel float64) float64 {
	switch confidenceLevel {
	case 0.80:
		return 1.282
	case 0.90:
		return 1.645
	case 0.95:
		return 1.96
	case 0.99:
		return 2.576
	}
	return defaultZScore
}
