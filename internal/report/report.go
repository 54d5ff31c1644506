// Package report renders forecast, clearance and replenishment results as CSV.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/andresuchdata/merchplan/internal/domain"
)

var forecastHeaders = []string{
	"period_index",
	"point_forecast",
	"confidence_lower",
	"confidence_upper",
	"moving_average",
	"exponential_smoothing",
	"trend",
}

var recommendationHeaders = []string{
	"sku_code",
	"product_name",
	"current_stock",
	"current_price",
	"urgency_score",
	"urgency_level",
	"elasticity",
	"action",
	"markdown_pct",
	"new_price",
	"projected_weekly_sales",
	"projected_units",
	"projected_revenue",
	"projected_margin_loss",
	"projected_sell_through",
	"days_to_sell",
	"reasoning",
}

var alertHeaders = []string{
	"sku_code",
	"store",
	"status",
	"priority",
	"safety_stock",
	"reorder_point",
	"months_of_cover",
	"days_of_cover",
	"suggested_order_qty",
	"emergency_order_qty",
	"order_cost",
	"message",
}

// WriteForecast writes one row per projected period. Component columns are empty for single-method runs.
func WriteForecast(w io.Writer, run *domain.ForecastRun) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(forecastHeaders); err != nil {
		return err
	}

	for _, p := range run.Points {
		rec := []string{
			strconv.Itoa(p.PeriodIndex),
			formatFloat(p.PointForecast),
			formatFloat(p.ConfidenceLower),
			formatFloat(p.ConfidenceUpper),
			"", "", "",
		}
		if c := p.ComponentBreakdown; c != nil {
			rec[4] = formatFloat(c.MovingAverage)
			rec[5] = formatFloat(c.ExponentialSmoothing)
			rec[6] = formatFloat(c.Trend)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write forecast row %d: %w", p.PeriodIndex, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteRecommendations writes recommendations in the order given.
func WriteRecommendations(w io.Writer, recs []domain.SKURecommendation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recommendationHeaders); err != nil {
		return err
	}

	for _, r := range recs {
		rec := []string{
			r.SKUCode,
			r.ProductName,
			formatFloat(r.CurrentStock),
			formatFloat(r.CurrentPrice),
			formatFloat(r.UrgencyScore),
			string(r.UrgencyLevel),
			formatFloat(r.Elasticity),
			string(r.Action),
			formatFloat(r.MarkdownPct),
			formatFloat(r.NewPrice),
			formatFloat(r.ProjectedWeeklySales),
			formatFloat(r.ProjectedUnits),
			formatFloat(r.ProjectedRevenue),
			formatFloat(r.ProjectedMarginLoss),
			formatFloat(r.ProjectedSellThrough),
			formatFloat(r.DaysToSell),
			r.Reasoning,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write recommendation %s: %w", r.SKUCode, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func WriteAlerts(w io.Writer, alerts []domain.ReplenishmentAlert) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(alertHeaders); err != nil {
		return err
	}

	for _, a := range alerts {
		rec := []string{
			a.SKUCode,
			a.Store,
			string(a.Status),
			strconv.Itoa(a.Priority),
			strconv.Itoa(a.SafetyStock),
			strconv.Itoa(a.ReorderPoint),
			formatFloat(a.MonthsOfCover),
			formatFloat(a.DaysOfCover),
			strconv.Itoa(a.SuggestedOrderQty),
			strconv.Itoa(a.EmergencyOrderQty),
			formatFloat(a.OrderCost),
			a.Message,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write alert %s/%s: %w", a.SKUCode, a.Store, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// RecommendationsCSV renders recommendations into memory, ready for upload.
func RecommendationsCSV(recs []domain.SKURecommendation) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteRecommendations(&buf, recs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ForecastCSV renders a forecast run into memory.
func ForecastCSV(run *domain.ForecastRun) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteForecast(&buf, run); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
