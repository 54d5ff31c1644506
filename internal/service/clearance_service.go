package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/merchplan/internal/cache"
	"github.com/andresuchdata/merchplan/internal/clearance"
	"github.com/andresuchdata/merchplan/internal/domain"
	"github.com/andresuchdata/merchplan/internal/metrics"
	"github.com/andresuchdata/merchplan/internal/report"
	"github.com/andresuchdata/merchplan/internal/repository"
	"github.com/andresuchdata/merchplan/internal/storage"
)

const (
	clearanceCacheName  = "clearance"
	clearanceReportKind = "clearance"
)

type ClearanceService struct {
	optimizer *clearance.Optimizer
	defaults  domain.OptimizationConfig
	snapshots repository.SnapshotRepository
	runs      repository.ClearanceRunRepository
	cache     cache.ClearanceCache
	storage   storage.ObjectStorage
	prefix    string
	metrics   *metrics.Registry
	now       func() time.Time
}

// ClearanceDeps groups the optional collaborators of ClearanceService. Nil members disable
// the corresponding feature.
type ClearanceDeps struct {
	Snapshots     repository.SnapshotRepository
	Runs          repository.ClearanceRunRepository
	Cache         cache.ClearanceCache
	Storage       storage.ObjectStorage
	StoragePrefix string
	Metrics       *metrics.Registry
}

func NewClearanceService(optimizer *clearance.Optimizer, defaults domain.OptimizationConfig, deps ClearanceDeps) *ClearanceService {
	if optimizer == nil {
		optimizer = clearance.NewOptimizer()
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewNoopClearanceCache()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRegistry()
	}
	return &ClearanceService{
		optimizer: optimizer,
		defaults:  defaults,
		snapshots: deps.Snapshots,
		runs:      deps.Runs,
		cache:     deps.Cache,
		storage:   deps.Storage,
		prefix:    deps.StoragePrefix,
		metrics:   deps.Metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Optimize produces a recommendation for every SKU plus the portfolio summary.
func (s *ClearanceService) Optimize(ctx context.Context, req OptimizeRequest) (*domain.ClearanceRun, error) {
	cfg := req.Config.Apply(s.defaults)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	skus, err := s.resolveSnapshots(ctx, req)
	if err != nil {
		return nil, err
	}

	timer := s.metrics.StartTimer("clearance_optimize")
	recs, err := s.optimizer.OptimizeBatch(ctx, skus, cfg)
	if err != nil {
		timer.Stop("error")
		return nil, fmt.Errorf("optimize clearance batch: %w", err)
	}

	run := &domain.ClearanceRun{
		ID:              uuid.NewString(),
		Config:          cfg,
		Recommendations: recs,
		Summary:         clearance.Summarize(recs),
		CreatedAt:       s.now(),
	}

	if req.ExportReport && s.storage != nil {
		run.ReportKey = s.exportReport(ctx, run)
	}

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, run); err != nil {
			timer.Stop("error")
			return nil, fmt.Errorf("save clearance run: %w", err)
		}
	}
	timer.Stop("ok")

	for _, rec := range recs {
		s.metrics.RecordRecommendation(string(rec.Action))
	}

	if err := s.cache.SetRun(ctx, run); err != nil {
		log.Warn().Err(err).Msg("clearance: cache set run failed")
	}

	log.Info().
		Str("run_id", run.ID).
		Int("sku_count", len(recs)).
		Str("strategy", string(cfg.Strategy)).
		Float64("projected_revenue", run.Summary.TotalProjectedRevenue).
		Msg("Clearance optimization completed")

	return run, nil
}

// GetRun loads a run from cache, falling back to the repository. The summary is recomputed
// from the stored recommendations.
func (s *ClearanceService) GetRun(ctx context.Context, id string) (*domain.ClearanceRun, error) {
	if run, ok, err := s.cache.GetRun(ctx, id); err == nil && ok {
		s.metrics.RecordCache(clearanceCacheName, true)
		return run, nil
	} else if err != nil {
		log.Warn().Err(err).Str("run_id", id).Msg("clearance: cache get run failed")
	}
	s.metrics.RecordCache(clearanceCacheName, false)

	if s.runs == nil {
		return nil, fmt.Errorf("clearance run %s: %w", id, domain.ErrNotFound)
	}

	run, err := s.runs.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Summary = clearance.Summarize(run.Recommendations)

	if err := s.cache.SetRun(ctx, run); err != nil {
		log.Warn().Err(err).Str("run_id", id).Msg("clearance: cache set run failed")
	}
	return run, nil
}

func (s *ClearanceService) resolveSnapshots(ctx context.Context, req OptimizeRequest) ([]domain.SKUSnapshot, error) {
	if len(req.SKUs) > 0 {
		return req.SKUs, nil
	}
	if req.Filter == nil {
		return nil, domain.NewConfigurationError("skus", "either skus or filter must be provided")
	}
	if s.snapshots == nil {
		return nil, domain.NewConfigurationError("filter", "no snapshot source configured, provide skus inline")
	}

	skus, err := s.snapshots.ListSnapshots(ctx, *req.Filter)
	if err != nil {
		return nil, fmt.Errorf("load sku snapshots: %w", err)
	}
	if len(skus) == 0 {
		return nil, fmt.Errorf("sku snapshots matching filter: %w", domain.ErrNotFound)
	}
	return skus, nil
}

// exportReport uploads the recommendations as CSV. A failed upload is logged and leaves the
// run without a report key.
func (s *ClearanceService) exportReport(ctx context.Context, run *domain.ClearanceRun) string {
	data, err := report.RecommendationsCSV(run.Recommendations)
	if err != nil {
		log.Warn().Err(err).Str("run_id", run.ID).Msg("clearance: render report failed")
		return ""
	}

	key := storage.ReportKey(s.prefix, clearanceReportKind, run.ID, run.CreatedAt)
	err = s.storage.UploadObject(ctx, key, data)
	s.metrics.RecordUpload(clearanceReportKind, err)
	if err != nil {
		log.Warn().Err(err).Str("run_id", run.ID).Str("key", key).Msg("clearance: report upload failed")
		return ""
	}
	return key
}
