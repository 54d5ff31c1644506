// Package replenishment evaluates store stock positions against months-of-cover targets and
// suggests reorder quantities.
package replenishment

import (
	"fmt"
	"math"
	"sort"

	"github.com/andresuchdata/merchplan/internal/domain"
	"github.com/andresuchdata/merchplan/internal/kpi"
	"github.com/andresuchdata/merchplan/pkg/numeric"
)

const daysPerMonth = 30

var statusPriority = map[domain.StockStatus]int{
	domain.StockStatusStockout:  1,
	domain.StockStatusCritical:  2,
	domain.StockStatusReorder:   3,
	domain.StockStatusOverstock: 4,
	domain.StockStatusHealthy:   5,
}

// Calculator computes replenishment alerts for a months-of-cover policy.
type Calculator struct {
	moc domain.MOCConfig
}

// NewCalculator validates the policy and creates a calculator.
func NewCalculator(moc domain.MOCConfig) (*Calculator, error) {
	if err := moc.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{moc: moc}, nil
}

// Evaluate computes the alert for a single item.
func (c *Calculator) Evaluate(item domain.ReplenishmentItem) domain.ReplenishmentAlert {
	alert := domain.ReplenishmentAlert{
		SKUCode: item.SKUCode,
		Store:   item.Store,
	}

	// 1. Safety stock = (max daily sales x max lead time) - (avg daily sales x lead time)
	safetyStock := item.MaxDailySales*item.MaxLeadTimeDays - item.AvgDailySales*item.LeadTimeDays
	alert.SafetyStock = int(math.Ceil(math.Max(0, safetyStock)))

	// 2. Reorder point = lead time demand + safety stock
	reorderPoint := item.AvgDailySales*item.LeadTimeDays + float64(alert.SafetyStock)
	alert.ReorderPoint = int(math.Ceil(math.Max(0, reorderPoint)))

	// 3. Cover
	moc := kpi.MonthsOfCover(item.CurrentStock, item.AvgDailySales)
	alert.MonthsOfCover = numeric.Round(moc, 2)
	if item.AvgDailySales > 0 {
		alert.DaysOfCover = numeric.Round(item.CurrentStock/item.AvgDailySales, 1)
	} else {
		alert.DaysOfCover = kpi.NoCover
	}

	// 4. Status
	alert.Status = c.classify(item, alert, moc)
	alert.Priority = statusPriority[alert.Status]

	// 5. Regular order quantity to reach the target cover, net of stock and open orders
	if alert.Status == domain.StockStatusStockout ||
		alert.Status == domain.StockStatusCritical ||
		alert.Status == domain.StockStatusReorder {
		target := item.AvgDailySales * daysPerMonth * c.moc.TargetMOC
		qty := int(math.Max(0, math.Ceil(target-item.CurrentStock-item.OnOrder)))
		if qty > 0 && float64(qty) < item.MinOrderQty {
			qty = int(math.Ceil(item.MinOrderQty))
		}
		alert.SuggestedOrderQty = qty
	}

	// 6. Emergency quantity covers the gap until the slowest delivery arrives
	if item.OnOrder <= 0 && item.AvgDailySales > 0 {
		daysCover := item.CurrentStock / item.AvgDailySales
		emergency := (item.MaxLeadTimeDays - daysCover) * item.AvgDailySales
		alert.EmergencyOrderQty = int(math.Max(0, math.Ceil(emergency)))
	}

	// 7. Cost at unit cost
	alert.OrderCost = numeric.Round(float64(alert.SuggestedOrderQty)*item.UnitCost, 2)
	alert.Message = message(alert, c.moc)

	return alert
}

func (c *Calculator) classify(item domain.ReplenishmentItem, alert domain.ReplenishmentAlert, moc float64) domain.StockStatus {
	switch {
	case item.CurrentStock <= 0:
		return domain.StockStatusStockout
	case item.AvgDailySales > 0 && item.CurrentStock <= float64(alert.SafetyStock):
		return domain.StockStatusCritical
	case item.AvgDailySales > 0 && (item.CurrentStock <= float64(alert.ReorderPoint) || moc < c.moc.MinMOC):
		return domain.StockStatusReorder
	case moc > c.moc.MaxMOC:
		return domain.StockStatusOverstock
	default:
		return domain.StockStatusHealthy
	}
}

// EvaluateAll evaluates every item and orders the alerts by priority, then months of cover
// ascending, then SKU code and store.
func (c *Calculator) EvaluateAll(items []domain.ReplenishmentItem) []domain.ReplenishmentAlert {
	alerts := make([]domain.ReplenishmentAlert, 0, len(items))
	for _, item := range items {
		alerts = append(alerts, c.Evaluate(item))
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.MonthsOfCover != b.MonthsOfCover {
			return a.MonthsOfCover < b.MonthsOfCover
		}
		if a.SKUCode != b.SKUCode {
			return a.SKUCode < b.SKUCode
		}
		return a.Store < b.Store
	})
	return alerts
}

// Filter keeps alerts with the given statuses. No statuses keeps everything except HEALTHY.
func Filter(alerts []domain.ReplenishmentAlert, statuses ...domain.StockStatus) []domain.ReplenishmentAlert {
	keep := make(map[domain.StockStatus]bool, len(statuses))
	for _, s := range statuses {
		keep[s] = true
	}

	out := make([]domain.ReplenishmentAlert, 0, len(alerts))
	for _, a := range alerts {
		if len(keep) == 0 && a.Status != domain.StockStatusHealthy || keep[a.Status] {
			out = append(out, a)
		}
	}
	return out
}

func message(a domain.ReplenishmentAlert, moc domain.MOCConfig) string {
	switch a.Status {
	case domain.StockStatusStockout:
		return fmt.Sprintf("Out of stock; order %d units now.", a.SuggestedOrderQty)
	case domain.StockStatusCritical:
		return fmt.Sprintf("Stock at or below safety stock (%d); order %d units.", a.SafetyStock, a.SuggestedOrderQty)
	case domain.StockStatusReorder:
		return fmt.Sprintf("Reorder point reached (%d); order %d units for %.1f months of cover.", a.ReorderPoint, a.SuggestedOrderQty, moc.TargetMOC)
	case domain.StockStatusOverstock:
		return fmt.Sprintf("%.1f months of cover exceeds the %.1f month maximum.", a.MonthsOfCover, moc.MaxMOC)
	default:
		return "Stock within target cover."
	}
}
