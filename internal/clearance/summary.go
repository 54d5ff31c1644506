package clearance

import (
	"github.com/andresuchdata/merchplan/internal/domain"
	"github.com/andresuchdata/merchplan/pkg/numeric"
)

// Summarize rolls recommendations up into portfolio totals. It has no side effects and an
// empty input yields a zero summary with empty tallies.
func Summarize(recs []domain.SKURecommendation) domain.PortfolioSummary {
	summary := domain.PortfolioSummary{
		TotalSKUs: len(recs),
		ByUrgency: make(map[domain.UrgencyLevel]int),
		ByAction:  make(map[domain.ClearanceAction]int),
	}

	var revenue, marginLoss, daysToSell float64
	for _, rec := range recs {
		summary.ByUrgency[rec.UrgencyLevel]++
		summary.ByAction[rec.Action]++

		summary.TotalStock += rec.CurrentStock
		summary.TotalProjectedUnits += rec.ProjectedUnits
		revenue += rec.ProjectedRevenue
		marginLoss += rec.ProjectedMarginLoss
		daysToSell += rec.DaysToSell
	}

	summary.TotalProjectedRevenue = numeric.Round(revenue, 2)
	summary.TotalMarginLoss = numeric.Round(marginLoss, 2)
	summary.AvgSellThrough = numeric.Round(numeric.SafeDiv(summary.TotalProjectedUnits*100, summary.TotalStock, 0), 1)
	if len(recs) > 0 {
		summary.AvgDaysToSell = numeric.Round(daysToSell/float64(len(recs)), 1)
	}

	return summary
}
