// Package admin serves the operational side-port: health, Prometheus metrics and
// access to reports exported to object storage.
package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/merchplan/internal/metrics"
	"github.com/andresuchdata/merchplan/internal/storage"
)

// defaultReportKind is listed when the request names no kind.
const defaultReportKind = "clearance"

type Handler struct {
	metrics *metrics.Registry
	storage storage.ObjectStorage
	prefix  string
	now     func() time.Time
}

// NewHandler builds the admin handler. store may be nil when report export is disabled.
func NewHandler(reg *metrics.Registry, store storage.ObjectStorage, prefix string) *Handler {
	return &Handler{
		metrics: reg,
		storage: store,
		prefix:  strings.Trim(prefix, "/"),
		now:     time.Now,
	}
}

// NewRouter returns a router with every admin route registered.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods("GET")
	if h.metrics != nil {
		router.Handle("/metrics", h.metrics.Handler()).Methods("GET")
	}
	router.HandleFunc("/api/reports", h.ListReports).Methods("GET")
	router.HandleFunc("/api/reports/download", h.DownloadReport).Methods("GET")
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// ListReports lists the reports exported on one day: kind defaults to clearance and
// date (YYYY-MM-DD) to today in UTC. Each request covers a single day folder.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		http.Error(w, "report storage is not enabled", http.StatusServiceUnavailable)
		return
	}

	kind := strings.Trim(r.URL.Query().Get("kind"), "/")
	if kind == "" {
		kind = defaultReportKind
	}
	if strings.Contains(kind, "/") || kind == "." || kind == ".." {
		http.Error(w, "invalid report kind", http.StatusBadRequest)
		return
	}

	day := h.now().UTC()
	if date := r.URL.Query().Get("date"); date != "" {
		var err error
		day, err = time.Parse("2006-01-02", date)
		if err != nil {
			http.Error(w, "date must be formatted as YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}
	prefix := path.Join(h.prefix, kind, day.Format("2006/01/02"))

	objects, err := h.storage.ListObjects(r.Context(), prefix)
	if err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("Failed to list reports")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(objects)
}

func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		http.Error(w, "report storage is not enabled", http.StatusServiceUnavailable)
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "key parameter is required", http.StatusBadRequest)
		return
	}
	if !h.ownsKey(key) {
		http.Error(w, "key is outside the report folder", http.StatusForbidden)
		return
	}

	dir, err := os.MkdirTemp("", "merchplan-report-*")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(dir)

	dest := filepath.Join(dir, path.Base(key))
	if err := h.storage.DownloadObject(r.Context(), key, dest); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to download report")
		http.Error(w, fmt.Sprintf("download failed: %v", err), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	http.ServeFile(w, r, dest)
}

// ownsKey reports whether key names an object below the report prefix.
func (h *Handler) ownsKey(key string) bool {
	if strings.HasPrefix(key, "/") || path.Clean(key) != key {
		return false
	}
	if h.prefix == "" {
		return !strings.HasPrefix(key, "../") && key != ".."
	}
	return strings.HasPrefix(key, h.prefix+"/")
}
