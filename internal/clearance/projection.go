package clearance

import (
	"fmt"
	"math"
	"strings"

	"github.com/andresuchdata/merchplan/internal/domain"
	"github.com/andresuchdata/merchplan/internal/kpi"
	"github.com/andresuchdata/merchplan/pkg/numeric"
)

// ProjectSales estimates sell-off of sku over weeksAhead weeks at the marked-down price.
func (r Rules) ProjectSales(sku domain.SKUSnapshot, markdown, elasticity, weeksAhead float64) domain.SalesProjection {
	newPrice := numeric.Round(sku.CurrentPrice*(1-markdown/100), 2)
	demandMultiplier := 1 + (markdown/100)*elasticity

	baseWeekly := sku.AvgWeeklySales
	if baseWeekly <= 0 {
		baseWeekly = numeric.SafeDiv(sku.CurrentStock, r.DefaultSalesWeeks, 0)
	}
	weeklySales := math.Round(baseWeekly * demandMultiplier)

	units := math.Max(0, math.Min(sku.CurrentStock, weeklySales*weeksAhead))

	daysToSell := r.UnsoldDaysToSell
	if weeklySales > 0 {
		daysToSell = numeric.Round(math.Min(r.MaxDaysToSell, sku.CurrentStock/weeklySales*7), 1)
	}

	return domain.SalesProjection{
		NewPrice:             newPrice,
		ProjectedWeeklySales: weeklySales,
		ProjectedUnits:       units,
		ProjectedRevenue:     numeric.Round(units*newPrice, 2),
		ProjectedMarginLoss:  numeric.Round(units*(sku.CurrentPrice-newPrice), 2),
		ProjectedSellThrough: numeric.Round(numeric.SafeDiv(units*100, sku.CurrentStock, 0), 1),
		DaysToSell:           daysToSell,
	}
}

// ProjectSales projects sku with DefaultRules.
func ProjectSales(sku domain.SKUSnapshot, markdown, elasticity, weeksAhead float64) domain.SalesProjection {
	return defaultRules.ProjectSales(sku, markdown, elasticity, weeksAhead)
}

// OptimalMarkdown computes the markdown for sku with DefaultRules.
func OptimalMarkdown(sku domain.SKUSnapshot, urgencyScore, elasticity float64, cfg domain.OptimizationConfig) float64 {
	return defaultRules.OptimalMarkdown(sku, urgencyScore, elasticity, cfg)
}

// DetermineAction picks the action for sku with DefaultRules.
func DetermineAction(sku domain.SKUSnapshot, urgencyScore, markdown float64) domain.ClearanceAction {
	return defaultRules.DetermineAction(sku, urgencyScore, markdown)
}

func buildReasoning(sku domain.SKUSnapshot, level domain.UrgencyLevel, action domain.ClearanceAction, markdown float64) string {
	var parts []string

	switch level {
	case domain.UrgencyCritical:
		parts = append(parts, "Critical clearance priority.")
	case domain.UrgencyHigh:
		parts = append(parts, "High clearance priority.")
	case domain.UrgencyMedium:
		parts = append(parts, "Moderate clearance priority.")
	default:
		parts = append(parts, "Low clearance priority.")
	}

	if sku.WeeksOnHand > 12 {
		parts = append(parts, fmt.Sprintf("Stock has been on hand for %.0f weeks.", sku.WeeksOnHand))
	}
	if sku.SellThroughRate < 20 {
		parts = append(parts, fmt.Sprintf("Sell-through is low at %.1f%%.", sku.SellThroughRate))
	}
	if sku.WeeksToSeasonEnd < 4 {
		parts = append(parts, "Season ends within 4 weeks.")
	} else if sku.WeeksToSeasonEnd < 8 {
		parts = append(parts, fmt.Sprintf("Season ends in %.0f weeks.", sku.WeeksToSeasonEnd))
	}
	if margin := kpi.MarginPct(sku.CurrentPrice, sku.UnitCost); margin > 0 && markdown >= margin {
		parts = append(parts, "Markdown reaches the item's current margin.")
	}

	switch action {
	case domain.ActionHold:
		parts = append(parts, "Remaining stock is too small to act on; hold.")
	case domain.ActionDiscontinue:
		parts = append(parts, "Demand is negligible even at a deep discount; discontinue.")
	case domain.ActionPromote:
		parts = append(parts, "Sales are steady; a promotion should clear the remainder.")
	case domain.ActionBundle:
		parts = append(parts, "Bundle the remaining high-value units with faster sellers.")
	default:
		parts = append(parts, fmt.Sprintf("Apply a %.1f%% markdown.", markdown))
	}

	return strings.Join(parts, " ")
}
