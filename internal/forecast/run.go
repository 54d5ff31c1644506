package forecast

import (
	"fmt"
	"math"
	"sort"

	"github.com/andresuchdata/merchplan/internal/domain"
	"github.com/andresuchdata/merchplan/pkg/numeric"
)

// Engine orchestrates multi-period forecast runs. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	movingAvgWindow int
}

// NewEngine creates an engine with the default moving-average window.
func NewEngine() *Engine {
	return &Engine{movingAvgWindow: DefaultMovingAverageWindow}
}

// WithMovingAverageWindow returns a copy of the engine using the given window for the
// standalone moving-average method.
func (e *Engine) WithMovingAverageWindow(window int) *Engine {
	if window < 1 {
		window = DefaultMovingAverageWindow
	}
	return &Engine{movingAvgWindow: window}
}

// runState records the stage transitions of a single run.
type runState struct {
	run *domain.ForecastRun
}

func (s runState) advance(status domain.RunStatus) {
	s.run.Status = status
	s.run.Transitions = append(s.run.Transitions, status)
}

// Run forecasts cfg.ForecastWeeks periods past the end of history with the given method and
// scores the method's accuracy on held-out history.
//
// Each projected value is appended to a working copy of the series before the next period is
// forecast, so later periods build on earlier projections and their error compounds.
// Confidence bands are always computed against the observed history.
func (e *Engine) Run(history []domain.HistoricalPoint, method domain.ForecastMethod, cfg domain.ForecastConfig) (*domain.ForecastRun, error) {
	if !isKnownMethod(method) {
		return nil, fmt.Errorf("unknown forecast method %q", method)
	}

	run := &domain.ForecastRun{
		Method: method,
		Config: cfg,
	}
	state := runState{run: run}
	state.advance(domain.RunStatusInitialized)

	ordered := lookback(history, cfg.LookbackWeeks)
	observed := values(ordered)
	run.History = len(observed)

	lastPeriod := 0
	if len(ordered) > 0 {
		lastPeriod = ordered[len(ordered)-1].PeriodIndex
	}

	periods := cfg.ForecastWeeks
	if periods < 1 {
		periods = 1
	}

	state.advance(domain.RunStatusForecasting)
	working := make([]float64, len(observed), len(observed)+periods)
	copy(working, observed)

	run.Points = make([]domain.ForecastPoint, 0, periods)
	for i := 1; i <= periods; i++ {
		value, breakdown := e.forecastNext(working, method, cfg)
		interval := ConfidenceInterval(value, observed, cfg.ConfidenceLevel)

		run.Points = append(run.Points, domain.ForecastPoint{
			PeriodIndex:        lastPeriod + i,
			PointForecast:      value,
			ConfidenceLower:    interval.Lower,
			ConfidenceUpper:    interval.Upper,
			ComponentBreakdown: breakdown,
		})
		working = append(working, value)
	}

	run.Accuracy = e.accuracy(observed, method, cfg)
	state.advance(domain.RunStatusAccuracyScored)
	state.advance(domain.RunStatusComplete)

	return run, nil
}

// forecastNext projects one period past the end of series.
func (e *Engine) forecastNext(series []float64, method domain.ForecastMethod, cfg domain.ForecastConfig) (float64, *domain.ComponentBreakdown) {
	var raw float64
	switch method {
	case domain.MethodMovingAverage:
		raw = MovingAverage(series, e.movingAvgWindow)
	case domain.MethodExponentialSmoothing:
		raw = ExponentialSmoothing(series, cfg.Alpha, cfg.Beta, 1)
	case domain.MethodTrend:
		raw = TrendAdjusted(series).Forecast
	default:
		res := EnsembleForecast(series, cfg, 1)
		components := res.Components
		return res.Forecast, &components
	}
	return numeric.Round(math.Max(0, raw), 2), nil
}

// lookback orders history chronologically and keeps the last weeks points. The caller's
// slice is never modified.
func lookback(history []domain.HistoricalPoint, weeks int) []domain.HistoricalPoint {
	ordered := make([]domain.HistoricalPoint, len(history))
	copy(ordered, history)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PeriodIndex < ordered[j].PeriodIndex
	})

	if weeks > 0 && len(ordered) > weeks {
		ordered = ordered[len(ordered)-weeks:]
	}
	return ordered
}

func values(points []domain.HistoricalPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

func isKnownMethod(method domain.ForecastMethod) bool {
	for _, m := range domain.AllForecastMethods {
		if m == method {
			return true
		}
	}
	return false
}
