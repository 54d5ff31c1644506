package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/merchplan/internal/domain"
)

// IngestRepository loads file extracts into the tables the read repositories query.
type IngestRepository struct {
	db *DB
}

func NewIngestRepository(db *DB) *IngestRepository {
	return &IngestRepository{db: db}
}

// UpsertWeeklySales stores one SKU's weekly series for a store, replacing existing periods.
func (r *IngestRepository) UpsertWeeklySales(ctx context.Context, skuCode, store string, points []domain.HistoricalPoint) (int, error) {
	query := `
		INSERT INTO weekly_sales (sku_code, store, period_index, units_sold)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sku_code, store, period_index)
		DO UPDATE SET units_sold = EXCLUDED.units_sold
	`

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, p := range points {
			if _, err := tx.ExecContext(ctx, query, skuCode, store, p.PeriodIndex, p.Value); err != nil {
				return fmt.Errorf("failed to upsert weekly sales for %s period %d: %w", skuCode, p.PeriodIndex, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(points), nil
}

// UpsertSnapshots stores the snapshots under the given snapshot date.
func (r *IngestRepository) UpsertSnapshots(ctx context.Context, date time.Time, snapshots []domain.SKUSnapshot) (int, error) {
	query := `
		INSERT INTO sku_snapshots (
			snapshot_date, sku_code, product_name, category, store, current_stock, current_price,
			original_price, unit_cost, weeks_on_hand, sell_through_rate, weeks_to_season_end,
			avg_weekly_sales, stock_value
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (snapshot_date, sku_code, store)
		DO UPDATE SET
			product_name = EXCLUDED.product_name,
			category = EXCLUDED.category,
			current_stock = EXCLUDED.current_stock,
			current_price = EXCLUDED.current_price,
			original_price = EXCLUDED.original_price,
			unit_cost = EXCLUDED.unit_cost,
			weeks_on_hand = EXCLUDED.weeks_on_hand,
			sell_through_rate = EXCLUDED.sell_through_rate,
			weeks_to_season_end = EXCLUDED.weeks_to_season_end,
			avg_weekly_sales = EXCLUDED.avg_weekly_sales,
			stock_value = EXCLUDED.stock_value
	`

	day := date.UTC().Format("2006-01-02")
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, s := range snapshots {
			_, err := tx.ExecContext(ctx, query,
				day, s.SKUCode, s.ProductName, s.Category, s.Store, s.CurrentStock, s.CurrentPrice,
				s.OriginalPrice, s.UnitCost, s.WeeksOnHand, s.SellThroughRate, s.WeeksToSeasonEnd,
				s.AvgWeeklySales, s.StockValue,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert snapshot %s: %w", s.SKUCode, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(snapshots), nil
}

func (r *IngestRepository) UpsertReplenishmentItems(ctx context.Context, items []domain.ReplenishmentItem) (int, error) {
	query := `
		INSERT INTO replenishment_items (
			sku_code, store, current_stock, on_order, avg_daily_sales, max_daily_sales,
			lead_time_days, max_lead_time_days, min_order_qty, unit_cost, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (sku_code, store)
		DO UPDATE SET
			current_stock = EXCLUDED.current_stock,
			on_order = EXCLUDED.on_order,
			avg_daily_sales = EXCLUDED.avg_daily_sales,
			max_daily_sales = EXCLUDED.max_daily_sales,
			lead_time_days = EXCLUDED.lead_time_days,
			max_lead_time_days = EXCLUDED.max_lead_time_days,
			min_order_qty = EXCLUDED.min_order_qty,
			unit_cost = EXCLUDED.unit_cost,
			updated_at = NOW()
	`

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, item := range items {
			_, err := tx.ExecContext(ctx, query,
				item.SKUCode, item.Store, item.CurrentStock, item.OnOrder, item.AvgDailySales, item.MaxDailySales,
				item.LeadTimeDays, item.MaxLeadTimeDays, item.MinOrderQty, item.UnitCost,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert replenishment item %s/%s: %w", item.Store, item.SKUCode, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
