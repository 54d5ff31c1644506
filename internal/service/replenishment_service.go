package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/merchplan/internal/domain"
	"github.com/andresuchdata/merchplan/internal/metrics"
	"github.com/andresuchdata/merchplan/internal/replenishment"
	"github.com/andresuchdata/merchplan/internal/repository"
)

type ReplenishmentService struct {
	repo     repository.ReplenishmentRepository
	defaults domain.MOCConfig
	metrics  *metrics.Registry
}

func NewReplenishmentService(repo repository.ReplenishmentRepository, defaults domain.MOCConfig, reg *metrics.Registry) *ReplenishmentService {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &ReplenishmentService{repo: repo, defaults: defaults, metrics: reg}
}

// Alerts evaluates stock positions, most urgent first. Without explicit statuses, healthy
// positions are dropped unless IncludeHealthy is set.
func (s *ReplenishmentService) Alerts(ctx context.Context, req AlertsRequest) ([]domain.ReplenishmentAlert, error) {
	moc := s.defaults
	if req.MOC != nil {
		moc = *req.MOC
	}

	calc, err := replenishment.NewCalculator(moc)
	if err != nil {
		return nil, err
	}

	items := req.Items
	if len(items) == 0 {
		if s.repo == nil {
			return nil, domain.NewConfigurationError("items", "no stock position source configured, provide items inline")
		}
		items, err = s.repo.ListItems(ctx, req.Store)
		if err != nil {
			return nil, fmt.Errorf("load replenishment items: %w", err)
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("replenishment items for store %q: %w", req.Store, domain.ErrNotFound)
		}
	}

	timer := s.metrics.StartTimer("replenishment_alerts")
	alerts := calc.EvaluateAll(items)
	timer.Stop("ok")

	if len(req.Statuses) > 0 || !req.IncludeHealthy {
		alerts = replenishment.Filter(alerts, req.Statuses...)
	}

	for _, a := range alerts {
		s.metrics.RecordAlert(string(a.Status))
	}

	log.Info().
		Str("store", req.Store).
		Int("item_count", len(items)).
		Int("alert_count", len(alerts)).
		Msg("Replenishment alerts evaluated")

	return alerts, nil
}
