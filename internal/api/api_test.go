package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/merchplan/internal/domain"
	"github.com/andresuchdata/merchplan/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter() *gin.Engine {
	return NewRouter(&Services{
		Forecast:      service.NewForecastService(domain.DefaultForecastConfig(), nil, nil, nil, nil),
		Clearance:     service.NewClearanceService(nil, domain.DefaultOptimizationConfig(), service.ClearanceDeps{}),
		Replenishment: service.NewReplenishmentService(nil, domain.DefaultMOCConfig(), nil),
	}, []string{"http://localhost:3000"})
}

func doJSON(t *testing.T, router http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := doJSON(t, newTestRouter(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestForecastRun(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/forecast/run", map[string]interface{}{
		"sku_code": "JKT-001",
		"method":   "TREND",
		"history": []map[string]interface{}{
			{"period_index": 1, "value": 10},
			{"period_index": 2, "value": 20},
			{"period_index": 3, "value": 30},
		},
		"config": map[string]interface{}{"forecast_weeks": 2},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var run domain.ForecastRun
	decode(t, rec, &run)
	assert.Equal(t, domain.MethodTrend, run.Method)
	require.Len(t, run.Points, 2)
	assert.Equal(t, 40.0, run.Points[0].PointForecast)
	assert.Equal(t, 50.0, run.Points[1].PointForecast)
}

func TestForecastRun_Errors(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/forecast/run", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/forecast/run", map[string]interface{}{
		"history": []map[string]interface{}{{"period_index": 1, "value": 10}},
		"config":  map[string]interface{}{"alpha": 2},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "alpha", body["field"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/forecast/runs/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/forecast/skus/JKT-001", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForecastCompare(t *testing.T) {
	history := make([]domain.HistoricalPoint, 0, 8)
	for i, v := range []float64{100, 120, 90, 130, 110, 140, 125, 150} {
		history = append(history, domain.HistoricalPoint{PeriodIndex: i + 1, Value: v})
	}

	rec := doJSON(t, newTestRouter(), http.MethodPost, "/api/v1/forecast/compare", map[string]interface{}{"history": history})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cmp domain.MethodComparison
	decode(t, rec, &cmp)
	assert.Len(t, cmp.Scores, 4)
	assert.NotEmpty(t, cmp.Justification)
}

func TestClearanceOptimize(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/clearance/optimize", map[string]interface{}{
		"skus": []domain.SKUSnapshot{{
			SKUCode:          "JKT-001",
			ProductName:      "Wool Overcoat",
			CurrentStock:     300,
			CurrentPrice:     299.99,
			UnitCost:         149.99,
			WeeksOnHand:      20,
			SellThroughRate:  10,
			WeeksToSeasonEnd: 6,
			StockValue:       89997,
		}},
		"config": map[string]interface{}{"strategy": "balanced"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var run domain.ClearanceRun
	decode(t, rec, &run)
	require.Len(t, run.Recommendations, 1)
	assert.Equal(t, domain.ActionMarkdown, run.Recommendations[0].Action)
	assert.Equal(t, 1, run.Summary.ByUrgency[domain.UrgencyCritical])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/clearance/runs/"+run.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/clearance/optimize", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReplenishmentAlerts(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/replenishment/alerts", map[string]interface{}{
		"items": []domain.ReplenishmentItem{
			{SKUCode: "OUT-9", Store: "Padang", CurrentStock: 0, AvgDailySales: 1},
			{SKUCode: "OK-1", Store: "Padang", CurrentStock: 60, AvgDailySales: 1, MaxDailySales: 1, LeadTimeDays: 5, MaxLeadTimeDays: 5},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Alerts []domain.ReplenishmentAlert `json:"alerts"`
		Count  int                         `json:"count"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, domain.StockStatusStockout, body.Alerts[0].Status)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/replenishment/alerts?store=Padang&status=reorder,stockout", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/forecast/run", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	router := newTestRouter()
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := doJSON(t, router, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " "})
	assert.False(t, all)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, origins)

	_, all = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, all)
}
