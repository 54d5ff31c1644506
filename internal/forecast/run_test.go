package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/merchplan/internal/domain"
)

func weeklyHistory(values ...float64) []domain.HistoricalPoint {
	points := make([]domain.HistoricalPoint, len(values))
	for i, v := range values {
		points[i] = domain.HistoricalPoint{PeriodIndex: i + 1, Value: v}
	}
	return points
}

func TestEngineRun_EnsembleGolden(t *testing.T) {
	cfg := domain.DefaultForecastConfig()
	cfg.LookbackWeeks = 8
	cfg.ForecastWeeks = 1

	run, err := NewEngine().Run(weeklyHistory(weeklySales...), domain.MethodEnsemble, cfg)
	require.NoError(t, err)

	require.Len(t, run.Points, 1)
	point := run.Points[0]
	assert.Equal(t, 9, point.PeriodIndex)
	assert.Equal(t, 58185.70, point.PointForecast)
	require.NotNil(t, point.ComponentBreakdown)
	assert.InDelta(t, 55625, point.ComponentBreakdown.MovingAverage, 1e-6)

	assert.Equal(t, domain.RunStatusComplete, run.Status)
	assert.Equal(t, []domain.RunStatus{
		domain.RunStatusInitialized,
		domain.RunStatusForecasting,
		domain.RunStatusAccuracyScored,
		domain.RunStatusComplete,
	}, run.Transitions)
	assert.Equal(t, 8, run.History)
}

func TestEngineRun_RollsForecastsForward(t *testing.T) {
	cfg := domain.DefaultForecastConfig()
	cfg.ForecastWeeks = 3

	run, err := NewEngine().Run(weeklyHistory(weeklySales...), domain.MethodEnsemble, cfg)
	require.NoError(t, err)
	require.Len(t, run.Points, 3)

	assert.Equal(t, 58185.70, run.Points[0].PointForecast)
	assert.Equal(t, 59158.16, run.Points[1].PointForecast)
	assert.Equal(t, 60133.30, run.Points[2].PointForecast)

	for i, p := range run.Points {
		assert.Equal(t, 9+i, p.PeriodIndex)
	}
}

func TestEngineRun_DoesNotMutateInput(t *testing.T) {
	history := []domain.HistoricalPoint{
		{PeriodIndex: 3, Value: 30},
		{PeriodIndex: 1, Value: 10},
		{PeriodIndex: 2, Value: 20},
	}
	snapshot := append([]domain.HistoricalPoint(nil), history...)

	cfg := domain.DefaultForecastConfig()
	run, err := NewEngine().Run(history, domain.MethodTrend, cfg)
	require.NoError(t, err)

	assert.Equal(t, snapshot, history)
	// sorted by period: 10, 20, 30 -> trend projects 40, 50, 60, 70
	assert.Equal(t, 40.0, run.Points[0].PointForecast)
	assert.Equal(t, 70.0, run.Points[3].PointForecast)
	assert.Nil(t, run.Points[0].ComponentBreakdown)
}

func TestEngineRun_LookbackTrimsHistory(t *testing.T) {
	cfg := domain.DefaultForecastConfig()
	cfg.LookbackWeeks = 2
	cfg.ForecastWeeks = 1

	run, err := NewEngine().Run(weeklyHistory(1000, 1000, 10, 20), domain.MethodMovingAverage, cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, run.History)
	assert.Equal(t, 15.0, run.Points[0].PointForecast)
	assert.Equal(t, 5, run.Points[0].PeriodIndex)
}

func TestEngineRun_UnknownMethod(t *testing.T) {
	_, err := NewEngine().Run(weeklyHistory(1, 2, 3), domain.ForecastMethod("ARIMA"), domain.DefaultForecastConfig())
	assert.Error(t, err)
}

func TestEngineRun_EmptyHistory(t *testing.T) {
	run, err := NewEngine().Run(nil, domain.MethodEnsemble, domain.DefaultForecastConfig())
	require.NoError(t, err)

	require.Len(t, run.Points, 4)
	for _, p := range run.Points {
		assert.Zero(t, p.PointForecast)
		assert.Zero(t, p.ConfidenceLower)
	}
	assert.Equal(t, "Insufficient data", run.Accuracy.Interpretation)
}

func TestEngineRun_Idempotent(t *testing.T) {
	cfg := domain.DefaultForecastConfig()
	engine := NewEngine()

	first, err := engine.Run(weeklyHistory(weeklySales...), domain.MethodEnsemble, cfg)
	require.NoError(t, err)
	second, err := engine.Run(weeklyHistory(weeklySales...), domain.MethodEnsemble, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Points, second.Points)
	assert.Equal(t, first.Accuracy, second.Accuracy)
}
