package forecast

import (
	"fmt"
	"math"
	"sort"

	"github.com/andresuchdata/merchplan/internal/domain"
	"github.com/andresuchdata/merchplan/pkg/numeric"
)

// HoldoutWeeks is the number of trailing observations scored by Accuracy.
const HoldoutWeeks = 4

// InterpretMAPE maps a MAPE percentage to its quality band.
func InterpretMAPE(mape float64) string {
	switch {
	case mape < 10:
		return "Excellent"
	case mape < 20:
		return "Good"
	case mape < 30:
		return "Reasonable"
	default:
		return "Poor"
	}
}

// Accuracy back-tests method on the trailing HoldoutWeeks points of history: each point is
// forecast one step ahead from the series truncated just before it.
func (e *Engine) Accuracy(history []domain.HistoricalPoint, method domain.ForecastMethod, cfg domain.ForecastConfig) domain.AccuracyReport {
	return e.accuracy(values(lookback(history, cfg.LookbackWeeks)), method, cfg)
}

// accuracy computes MAPE over the held-out points. A zero actual is counted as zero error
// (and reported in ZeroActuals) instead of dividing by zero.
func (e *Engine) accuracy(series []float64, method domain.ForecastMethod, cfg domain.ForecastConfig) domain.AccuracyReport {
	report := domain.AccuracyReport{Method: method}

	heldOut := HoldoutWeeks
	if len(series)-1 < heldOut {
		heldOut = len(series) - 1
	}
	if heldOut <= 0 {
		report.Interpretation = "Insufficient data"
		return report
	}

	var totalError float64
	for i := len(series) - heldOut; i < len(series); i++ {
		actual := series[i]
		if actual == 0 {
			report.ZeroActuals++
			continue
		}
		predicted, _ := e.forecastNext(series[:i], method, cfg)
		totalError += math.Abs(actual-predicted) / math.Abs(actual)
	}

	report.HeldOut = heldOut
	report.MAPE = numeric.Round(totalError/float64(heldOut)*100, 2)
	report.Interpretation = InterpretMAPE(report.MAPE)
	return report
}

// Compare back-tests every method on the same history and recommends the lowest MAPE.
func (e *Engine) Compare(history []domain.HistoricalPoint, cfg domain.ForecastConfig) domain.MethodComparison {
	series := values(lookback(history, cfg.LookbackWeeks))

	scores := make([]domain.MethodScore, 0, len(domain.AllForecastMethods))
	heldOut := 0
	for _, method := range domain.AllForecastMethods {
		report := e.accuracy(series, method, cfg)
		next, _ := e.forecastNext(series, method, cfg)
		heldOut = report.HeldOut
		scores = append(scores, domain.MethodScore{
			Method:         method,
			MAPE:           report.MAPE,
			Interpretation: report.Interpretation,
			NextForecast:   next,
		})
	}

	// equal errors rank the ensemble first
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].MAPE != scores[j].MAPE {
			return scores[i].MAPE < scores[j].MAPE
		}
		return scores[i].Method == domain.MethodEnsemble && scores[j].Method != domain.MethodEnsemble
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}

	comparison := domain.MethodComparison{Scores: scores}
	if heldOut == 0 {
		comparison.Recommended = domain.MethodEnsemble
		comparison.Justification = "Not enough history to back-test; the ensemble blend is the safest default."
		return comparison
	}

	best := scores[0]
	comparison.Recommended = best.Method
	if best.MAPE == scores[len(scores)-1].MAPE {
		comparison.Justification = fmt.Sprintf(
			"Every method ties over the last %d weeks (MAPE %.2f%%, %s); the ensemble blend is the safest default.",
			heldOut, best.MAPE, best.Interpretation,
		)
		return comparison
	}
	comparison.Justification = fmt.Sprintf(
		"%s has the lowest error over the last %d weeks (MAPE %.2f%%, %s).",
		best.Method, heldOut, best.MAPE, best.Interpretation,
	)
	if len(scores) > 1 {
		comparison.Justification += fmt.Sprintf(
			" Next best is %s at %.2f%%.", scores[1].Method, scores[1].MAPE,
		)
	}
	return comparison
}
