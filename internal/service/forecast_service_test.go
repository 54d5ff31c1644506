package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/merchplan/internal/domain"
)

func linearHistory() []domain.HistoricalPoint {
	return []domain.HistoricalPoint{
		{PeriodIndex: 1, Value: 10},
		{PeriodIndex: 2, Value: 20},
		{PeriodIndex: 3, Value: 30},
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestForecastService_RunInline(t *testing.T) {
	runs := newFakeForecastRuns()
	svc := NewForecastService(domain.DefaultForecastConfig(), nil, runs, newMemoryForecastCache(), nil)

	run, err := svc.Run(context.Background(), ForecastRequest{
		SKUCode: "JKT-001",
		Method:  "trend",
		History: linearHistory(),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "JKT-001", run.SKUCode)
	assert.Equal(t, domain.MethodTrend, run.Method)
	assert.Equal(t, domain.RunStatusComplete, run.Status)
	require.Len(t, run.Points, 4)
	assert.Equal(t, 40.0, run.Points[0].PointForecast)
	assert.Equal(t, 4, run.Points[0].PeriodIndex)
	assert.False(t, run.CreatedAt.IsZero())
	assert.Equal(t, 1, runs.saves)

	stored, err := svc.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Same(t, run, stored)
}

func TestForecastService_RunServedFromCache(t *testing.T) {
	runs := newFakeForecastRuns()
	svc := NewForecastService(domain.DefaultForecastConfig(), nil, runs, newMemoryForecastCache(), nil)
	req := ForecastRequest{Method: "ENSEMBLE", History: linearHistory()}

	first, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, runs.saves)

	req.Config = &ForecastOverrides{Alpha: floatPtr(0.5)}
	third, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
	assert.Equal(t, 0.5, third.Config.Alpha)
}

func TestForecastService_Validation(t *testing.T) {
	svc := NewForecastService(domain.DefaultForecastConfig(), nil, nil, nil, nil)

	tests := []struct {
		name string
		req  ForecastRequest
	}{
		{"unknown method", ForecastRequest{Method: "ARIMA", History: linearHistory()}},
		{"alpha out of range", ForecastRequest{History: linearHistory(), Config: &ForecastOverrides{Alpha: floatPtr(2)}}},
		{"weights off", ForecastRequest{History: linearHistory(), Config: &ForecastOverrides{Weights: &domain.ForecastWeights{MovingAvgWeight: 1, TrendWeight: 1}}}},
		{"no series", ForecastRequest{}},
		{"no history source", ForecastRequest{SKUCode: "JKT-001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Run(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, domain.IsConfigurationError(err), err.Error())
		})
	}
}

func TestForecastService_RepositoryHistory(t *testing.T) {
	history := &fakeHistoryRepo{points: linearHistory()}
	svc := NewForecastService(domain.DefaultForecastConfig(), history, nil, nil, nil)

	run, err := svc.Run(context.Background(), ForecastRequest{SKUCode: "JKT-001", Store: "Padang", Method: "TREND"})
	require.NoError(t, err)
	assert.Equal(t, 40.0, run.Points[0].PointForecast)
	assert.Equal(t, "JKT-001", history.lastSKU)
	assert.Equal(t, "Padang", history.lastStore)
	assert.Equal(t, 12, history.lastWeeks)

	history.points = nil
	_, err = svc.Run(context.Background(), ForecastRequest{SKUCode: "GONE"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	history.err = errors.New("db down")
	_, err = svc.Run(context.Background(), ForecastRequest{SKUCode: "JKT-001"})
	assert.ErrorContains(t, err, "db down")
}

func TestForecastService_SaveFailure(t *testing.T) {
	runs := newFakeForecastRuns()
	runs.err = errors.New("tx aborted")
	svc := NewForecastService(domain.DefaultForecastConfig(), nil, runs, nil, nil)

	_, err := svc.Run(context.Background(), ForecastRequest{History: linearHistory()})
	assert.ErrorContains(t, err, "save forecast run")
}

func TestForecastService_Compare(t *testing.T) {
	cacheImpl := newMemoryForecastCache()
	svc := NewForecastService(domain.DefaultForecastConfig(), nil, nil, cacheImpl, nil)

	history := make([]domain.HistoricalPoint, 0, 10)
	for i, v := range []float64{100, 120, 90, 130, 110, 140, 125, 150, 135, 160} {
		history = append(history, domain.HistoricalPoint{PeriodIndex: i + 1, Value: v})
	}

	cmp, err := svc.Compare(context.Background(), ForecastRequest{History: history})
	require.NoError(t, err)
	require.Len(t, cmp.Scores, 4)
	for i, score := range cmp.Scores {
		assert.Equal(t, i+1, score.Rank)
		if i > 0 {
			assert.LessOrEqual(t, cmp.Scores[i-1].MAPE, score.MAPE)
		}
	}
	assert.Equal(t, cmp.Scores[0].Method, cmp.Recommended)
	assert.Len(t, cacheImpl.comparisons, 1)
}

func TestForecastService_GetRunWithoutRepository(t *testing.T) {
	svc := NewForecastService(domain.DefaultForecastConfig(), nil, nil, nil, nil)
	_, err := svc.GetRun(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
