// Package kpi holds the retail planning ratios shared by the clearance and replenishment
// calculators. Every function is zero-guarded and returns 0 for an undefined ratio unless
// noted otherwise.
package kpi

import (
	"github.com/andresuchdata/merchplan/pkg/numeric"
)

const (
	daysPerMonth = 30
	daysPerWeek  = 7

	// NoCover is reported as the cover of an item that does not sell.
	NoCover = 999
)

// SellThroughRate is units sold as a percentage of units available (sold + on hand).
func SellThroughRate(unitsSold, unitsOnHand float64) float64 {
	return numeric.SafeDiv(unitsSold*100, unitsSold+unitsOnHand, 0)
}

// MarginPct is (price - cost) / price as a percentage.
func MarginPct(price, cost float64) float64 {
	if price <= 0 {
		return 0
	}
	return (price - cost) / price * 100
}

// GMROI is gross margin divided by the average inventory held at cost.
func GMROI(grossMargin, avgInventoryCost float64) float64 {
	if avgInventoryCost <= 0 {
		return 0
	}
	return grossMargin / avgInventoryCost
}

// WeeksOfCover is stock divided by average weekly sales. Items without sales report NoCover.
func WeeksOfCover(stock, avgWeeklySales float64) float64 {
	if avgWeeklySales <= 0 {
		return NoCover
	}
	return stock / avgWeeklySales
}

// MonthsOfCover is stock divided by a 30-day month of sales. Items without sales report NoCover.
func MonthsOfCover(stock, avgDailySales float64) float64 {
	if avgDailySales <= 0 {
		return NoCover
	}
	return stock / (avgDailySales * daysPerMonth)
}

// DaysOfCover converts weeks of cover to days.
func DaysOfCover(stock, avgWeeklySales float64) float64 {
	woc := WeeksOfCover(stock, avgWeeklySales)
	if woc == NoCover {
		return NoCover
	}
	return woc * daysPerWeek
}
