package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/merchplan/internal/cache"
	"github.com/andresuchdata/merchplan/internal/domain"
	"github.com/andresuchdata/merchplan/internal/forecast"
	"github.com/andresuchdata/merchplan/internal/metrics"
	"github.com/andresuchdata/merchplan/internal/repository"
)

const forecastCacheName = "forecast"

type ForecastService struct {
	engine   *forecast.Engine
	defaults domain.ForecastConfig
	history  repository.SalesHistoryRepository
	runs     repository.ForecastRunRepository
	cache    cache.ForecastCache
	metrics  *metrics.Registry
}

// NewForecastService wires the forecast engine to its collaborators. history and runs may be
// nil, in which case only inline series are accepted and runs are not persisted.
func NewForecastService(
	defaults domain.ForecastConfig,
	history repository.SalesHistoryRepository,
	runs repository.ForecastRunRepository,
	cacheImpl cache.ForecastCache,
	reg *metrics.Registry,
) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &ForecastService{
		engine:   forecast.NewEngine(),
		defaults: defaults,
		history:  history,
		runs:     runs,
		cache:    cacheImpl,
		metrics:  reg,
	}
}

// Run forecasts the requested series and persists the resulting run.
func (s *ForecastService) Run(ctx context.Context, req ForecastRequest) (*domain.ForecastRun, error) {
	method, ok := domain.ParseForecastMethod(req.Method)
	if !ok {
		return nil, domain.NewConfigurationError("method", "unknown forecast method %q", req.Method)
	}

	cfg := req.Config.Apply(s.defaults)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	history, err := s.resolveHistory(ctx, req, cfg)
	if err != nil {
		return nil, err
	}

	key := cache.ForecastKey{SKUCode: req.SKUCode, Store: req.Store, Method: method, Config: cfg, History: history}
	if run, ok, err := s.cache.GetRun(ctx, key); err == nil && ok {
		s.metrics.RecordCache(forecastCacheName, true)
		return run, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get run failed")
	}
	s.metrics.RecordCache(forecastCacheName, false)

	timer := s.metrics.StartTimer("forecast_run")
	run, err := s.engine.Run(history, method, cfg)
	if err != nil {
		timer.Stop("error")
		return nil, err
	}

	run.ID = uuid.NewString()
	run.SKUCode = req.SKUCode
	run.CreatedAt = time.Now().UTC()

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, run); err != nil {
			timer.Stop("error")
			return nil, fmt.Errorf("save forecast run: %w", err)
		}
	}
	timer.Stop("ok")

	if run.Accuracy.HeldOut > 0 {
		s.metrics.RecordMAPE(string(method), run.Accuracy.MAPE)
	}

	if err := s.cache.SetRun(ctx, key, run); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set run failed")
	}

	log.Info().
		Str("run_id", run.ID).
		Str("sku_code", run.SKUCode).
		Str("method", string(method)).
		Int("history_points", run.History).
		Float64("mape", run.Accuracy.MAPE).
		Msg("Forecast run completed")

	return run, nil
}

// Compare scores every method on the requested series and recommends the most accurate one.
func (s *ForecastService) Compare(ctx context.Context, req ForecastRequest) (*domain.MethodComparison, error) {
	cfg := req.Config.Apply(s.defaults)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	history, err := s.resolveHistory(ctx, req, cfg)
	if err != nil {
		return nil, err
	}

	key := cache.ForecastKey{SKUCode: req.SKUCode, Store: req.Store, Config: cfg, History: history}
	if cmp, ok, err := s.cache.GetComparison(ctx, key); err == nil && ok {
		s.metrics.RecordCache(forecastCacheName, true)
		return cmp, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get comparison failed")
	}
	s.metrics.RecordCache(forecastCacheName, false)

	timer := s.metrics.StartTimer("forecast_compare")
	cmp := s.engine.Compare(history, cfg)
	timer.Stop("ok")

	if err := s.cache.SetComparison(ctx, key, &cmp); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set comparison failed")
	}

	return &cmp, nil
}

// GetRun loads a persisted run.
func (s *ForecastService) GetRun(ctx context.Context, id string) (*domain.ForecastRun, error) {
	if s.runs == nil {
		return nil, fmt.Errorf("forecast run %s: %w", id, domain.ErrNotFound)
	}
	return s.runs.GetRun(ctx, id)
}

func (s *ForecastService) resolveHistory(ctx context.Context, req ForecastRequest, cfg domain.ForecastConfig) ([]domain.HistoricalPoint, error) {
	if len(req.History) > 0 {
		return req.History, nil
	}
	if req.SKUCode == "" {
		return nil, domain.NewConfigurationError("history", "either history or sku_code must be provided")
	}
	if s.history == nil {
		return nil, domain.NewConfigurationError("history", "no sales history source configured, provide history inline")
	}

	history, err := s.history.GetWeeklySales(ctx, req.SKUCode, req.Store, cfg.LookbackWeeks)
	if err != nil {
		return nil, fmt.Errorf("load sales history for %s: %w", req.SKUCode, err)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("sales history for %s: %w", req.SKUCode, domain.ErrNotFound)
	}
	return history, nil
}
