package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	cmstorage "github.com/chartmuseum/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/merchplan/internal/metrics"
	"github.com/andresuchdata/merchplan/internal/storage"
)

func newTestRouter(t *testing.T, store storage.ObjectStorage) http.Handler {
	t.Helper()
	return NewRouter(NewHandler(metrics.NewRegistry(), store, "reports"))
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "merchplan_active_runs")
}

func TestReports_StorageDisabled(t *testing.T) {
	router := newTestRouter(t, nil)
	for _, target := range []string{"/api/reports", "/api/reports/download?key=x.csv"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
}

func TestReports_ListAndDownload(t *testing.T) {
	store := storage.NewBackendClientWith(cmstorage.NewLocalFilesystemBackend(t.TempDir()))
	key := "reports/clearance/2026/03/01/run-1.csv"
	content := "sku_code,action\nJKT-001,MARKDOWN\n"
	require.NoError(t, store.UploadObject(context.Background(), key, []byte(content)))

	h := NewHandler(metrics.NewRegistry(), store, "reports")
	h.now = func() time.Time { return time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC) }
	router := NewRouter(h)

	for _, target := range []string{"/api/reports", "/api/reports?kind=clearance"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, rec.Code, target)

		var objects []storage.ObjectInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &objects))
		require.Len(t, objects, 1, target)
		assert.Equal(t, key, objects[0].Key, target)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports?kind=clearance&date=2026-03-02", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports?kind=..", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports?kind=clearance&date=2026-03-01", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var objects []storage.ObjectInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &objects))
	require.Len(t, objects, 1)
	assert.Equal(t, key, objects[0].Key)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports?kind=clearance&date=03-01-2026", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/download?key="+key, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasSuffix(rec.Header().Get("Content-Disposition"), `"run-1.csv"`))
	assert.Equal(t, content, rec.Body.String())
}

func TestDownload_Errors(t *testing.T) {
	store := storage.NewBackendClientWith(cmstorage.NewLocalFilesystemBackend(t.TempDir()))
	router := newTestRouter(t, store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/download", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/download?key=reports/missing.csv", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownload_KeyOutsideReports(t *testing.T) {
	store := storage.NewBackendClientWith(cmstorage.NewLocalFilesystemBackend(t.TempDir()))
	require.NoError(t, store.UploadObject(context.Background(), "inbox/items/padang.csv", []byte("sku,stok\nA,4\n")))
	router := newTestRouter(t, store)

	for _, key := range []string{
		"inbox/items/padang.csv",
		"reports/../inbox/items/padang.csv",
		"/reports/clearance/run.csv",
		"reportsx/run.csv",
		"reports",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/download?key="+url.QueryEscape(key), nil))
		assert.Equal(t, http.StatusForbidden, rec.Code, key)
	}
}
