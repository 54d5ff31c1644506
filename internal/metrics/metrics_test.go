package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer(t *testing.T) {
	r := NewRegistry()

	timer := r.StartTimer("forecast")
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ActiveRuns))
	timer.Stop("ok")

	assert.Equal(t, 0.0, testutil.ToFloat64(r.ActiveRuns))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Runs.WithLabelValues("forecast", "ok")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.RunDuration))
}

func TestRecorders(t *testing.T) {
	r := NewRegistry()

	r.RecordCache("forecast", true)
	r.RecordCache("forecast", false)
	r.RecordCache("forecast", false)
	r.RecordRecommendation("MARKDOWN")
	r.RecordAlert("REORDER")
	r.RecordUpload("clearance", nil)
	r.RecordUpload("clearance", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.CacheHits.WithLabelValues("forecast")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.CacheMisses.WithLabelValues("forecast")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Recommendations.WithLabelValues("MARKDOWN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Alerts.WithLabelValues("REORDER")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ReportUploads.WithLabelValues("clearance", "error")))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	a.RecordAlert("STOCKOUT")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Alerts.WithLabelValues("STOCKOUT")))
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordMAPE("TREND", 0.52)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `merchplan_forecast_mape_percent_count{method="TREND"} 1`))
}
