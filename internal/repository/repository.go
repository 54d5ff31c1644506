// merchplan/internal/repository/repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/merchplan/internal/domain"
)

// SalesHistoryRepository reads weekly sales series.
type SalesHistoryRepository interface {
	// GetWeeklySales returns up to weeks of the most recent buckets for a SKU, oldest first.
	// An empty store aggregates every store.
	GetWeeklySales(ctx context.Context, skuCode, store string, weeks int) ([]domain.HistoricalPoint, error)
}

// SnapshotRepository reads SKU inventory snapshots.
type SnapshotRepository interface {
	ListSnapshots(ctx context.Context, filter domain.SnapshotFilter) ([]domain.SKUSnapshot, error)
}

// ReplenishmentRepository reads store stock positions.
type ReplenishmentRepository interface {
	ListItems(ctx context.Context, store string) ([]domain.ReplenishmentItem, error)
}

// ForecastRunRepository persists forecast runs with their points.
type ForecastRunRepository interface {
	SaveRun(ctx context.Context, run *domain.ForecastRun) error
	GetRun(ctx context.Context, id string) (*domain.ForecastRun, error)
}

// ClearanceRunRepository persists clearance runs with their recommendations.
type ClearanceRunRepository interface {
	SaveRun(ctx context.Context, run *domain.ClearanceRun) error
	GetRun(ctx context.Context, id string) (*domain.ClearanceRun, error)
}
