// Package forecast projects weekly planning series forward with moving-average,
// Holt exponential smoothing, linear-trend and blended ensemble estimators.
package forecast

import (
	"gonum.org/v1/gonum/stat"
)

// MovingAverage returns the mean of the last periods values. A window longer than the
// series (or a non-positive one) averages the whole series. An empty series yields 0.
func MovingAverage(series []float64, periods int) float64 {
	if len(series) == 0 {
		return 0
	}
	if periods <= 0 || periods > len(series) {
		periods = len(series)
	}
	return stat.Mean(series[len(series)-periods:], nil)
}

// ExponentialSmoothing runs Holt's two-parameter smoothing over the series and projects
// periodsAhead steps past the last observation.
func ExponentialSmoothing(series []float64, alpha, beta float64, periodsAhead int) float64 {
	switch len(series) {
	case 0:
		return 0
	case 1:
		return series[0]
	}

	level := series[0]
	trend := series[1] - series[0]
	for _, x := range series[1:] {
		prevLevel := level
		level = alpha*x + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
	}

	return level + float64(periodsAhead)*trend
}

// TrendResult is an ordinary least-squares fit of value against period index.
type TrendResult struct {
	Forecast  float64 `json:"forecast"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`

	n int
}

// ProjectAhead evaluates the fitted line steps periods past the last observation.
func (r TrendResult) ProjectAhead(steps int) float64 {
	if r.n == 0 {
		return r.Forecast
	}
	return r.Intercept + r.Slope*float64(r.n-1+steps)
}

// TrendAdjusted fits y = intercept + slope*x with x = 0..n-1 and returns the value at x = n.
// An empty series fits to zero; a single point is a flat line through that point.
func TrendAdjusted(series []float64) TrendResult {
	n := len(series)
	switch n {
	case 0:
		return TrendResult{}
	case 1:
		return TrendResult{Forecast: series[0], Intercept: series[0], n: 1}
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(xs, series, nil, false)

	return TrendResult{
		Forecast:  intercept + slope*float64(n),
		Slope:     slope,
		Intercept: intercept,
		n:         n,
	}
}
