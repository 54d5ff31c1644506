package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/merchplan/internal/domain"
)

type replenishmentRepository struct {
	db *DB
}

func NewReplenishmentRepository(db *DB) *replenishmentRepository {
	return &replenishmentRepository{db: db}
}

func (r *replenishmentRepository) ListItems(ctx context.Context, store string) ([]domain.ReplenishmentItem, error) {
	query := `
		SELECT
			sku_code, store, current_stock, on_order, avg_daily_sales, max_daily_sales,
			lead_time_days, max_lead_time_days, min_order_qty, unit_cost
		FROM replenishment_items
		WHERE ($1::text = '' OR store = $1)
		ORDER BY store, sku_code
	`

	var items []domain.ReplenishmentItem
	if err := r.db.SelectContext(ctx, &items, query, store); err != nil {
		return nil, fmt.Errorf("error listing replenishment items: %w", err)
	}

	return items, nil
}
