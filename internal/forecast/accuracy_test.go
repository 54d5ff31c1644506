package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/merchplan/internal/domain"
)

func TestInterpretMAPE(t *testing.T) {
	tests := []struct {
		mape float64
		want string
	}{
		{0, "Excellent"},
		{9.99, "Excellent"},
		{10, "Good"},
		{19.99, "Good"},
		{20, "Reasonable"},
		{29.99, "Reasonable"},
		{30, "Poor"},
		{250, "Poor"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InterpretMAPE(tt.mape), "mape %v", tt.mape)
	}
}

func TestAccuracy_PerfectTrend(t *testing.T) {
	report := NewEngine().Accuracy(weeklyHistory(10, 20, 30, 40, 50, 60), domain.MethodTrend, domain.DefaultForecastConfig())

	assert.Equal(t, 4, report.HeldOut)
	assert.Zero(t, report.MAPE)
	assert.Equal(t, "Excellent", report.Interpretation)
}

func TestAccuracy_MovingAverage(t *testing.T) {
	// held out: 20 (pred 10), 30 (pred 15), 40 (pred 20), 50 (pred 25)
	report := NewEngine().Accuracy(weeklyHistory(10, 20, 30, 40, 50), domain.MethodMovingAverage, domain.DefaultForecastConfig())

	assert.Equal(t, 4, report.HeldOut)
	assert.Equal(t, 50.0, report.MAPE)
	assert.Equal(t, "Poor", report.Interpretation)
}

func TestAccuracy_ZeroActualsCountedAsNoError(t *testing.T) {
	report := NewEngine().Accuracy(weeklyHistory(10, 10, 0, 10, 10), domain.MethodMovingAverage, domain.DefaultForecastConfig())

	assert.Equal(t, 1, report.ZeroActuals)
	assert.Equal(t, 4, report.HeldOut)
	assert.Greater(t, report.MAPE, 0.0)
}

func TestAccuracy_ShortHistory(t *testing.T) {
	engine := NewEngine()

	single := engine.Accuracy(weeklyHistory(5), domain.MethodEnsemble, domain.DefaultForecastConfig())
	assert.Zero(t, single.HeldOut)
	assert.Equal(t, "Insufficient data", single.Interpretation)

	pair := engine.Accuracy(weeklyHistory(5, 10), domain.MethodMovingAverage, domain.DefaultForecastConfig())
	assert.Equal(t, 1, pair.HeldOut)
	assert.Equal(t, 50.0, pair.MAPE)
}

func TestCompare(t *testing.T) {
	cmp := NewEngine().Compare(weeklyHistory(weeklySales...), domain.DefaultForecastConfig())

	assert.Len(t, cmp.Scores, len(domain.AllForecastMethods))
	for i, s := range cmp.Scores {
		assert.Equal(t, i+1, s.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, s.MAPE, cmp.Scores[i-1].MAPE)
		}
	}
	assert.Equal(t, domain.MethodTrend, cmp.Recommended)
	assert.Equal(t, cmp.Scores[0].Method, cmp.Recommended)
	assert.Contains(t, cmp.Justification, string(domain.MethodTrend))
}

func TestCompare_NoHistoryRecommendsEnsemble(t *testing.T) {
	cmp := NewEngine().Compare(weeklyHistory(100), domain.DefaultForecastConfig())
	assert.Equal(t, domain.MethodEnsemble, cmp.Recommended)
}

func TestCompare_TieRecommendsEnsemble(t *testing.T) {
	cmp := NewEngine().Compare(weeklyHistory(100, 100, 100, 100, 100, 100, 100, 100), domain.DefaultForecastConfig())

	for _, s := range cmp.Scores {
		assert.Equal(t, 0.0, s.MAPE, string(s.Method))
	}
	assert.Equal(t, domain.MethodEnsemble, cmp.Recommended)
	assert.Equal(t, domain.MethodEnsemble, cmp.Scores[0].Method)
	assert.Equal(t, 1, cmp.Scores[0].Rank)
	assert.Contains(t, cmp.Justification, "Every method ties")
}
