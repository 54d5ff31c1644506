package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/andresuchdata/merchplan/internal/domain"
)

type snapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) *snapshotRepository {
	return &snapshotRepository{db: db}
}

// buildSnapshotFilterClause constructs the WHERE conditions for snapshot queries
func buildSnapshotFilterClause(filter domain.SnapshotFilter, startIndex int) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex

	if len(filter.SKUCodes) > 0 {
		clauses = append(clauses, fmt.Sprintf("sku_code = ANY($%d::text[])", idx))
		args = append(args, pq.Array(filter.SKUCodes))
		idx++
	}

	if len(filter.Categories) > 0 {
		clauses = append(clauses, fmt.Sprintf("category = ANY($%d::text[])", idx))
		args = append(args, pq.Array(filter.Categories))
		idx++
	}

	if len(filter.Stores) > 0 {
		clauses = append(clauses, fmt.Sprintf("store = ANY($%d::text[])", idx))
		args = append(args, pq.Array(filter.Stores))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

func (r *snapshotRepository) ListSnapshots(ctx context.Context, filter domain.SnapshotFilter) ([]domain.SKUSnapshot, error) {
	query := `
		SELECT
			sku_code, product_name, category, store, current_stock, current_price,
			original_price, unit_cost, weeks_on_hand, sell_through_rate,
			weeks_to_season_end, avg_weekly_sales, stock_value
		FROM sku_snapshots
		WHERE snapshot_date = (SELECT MAX(snapshot_date) FROM sku_snapshots)
	`

	clause, args := buildSnapshotFilterClause(filter, 1)
	query += clause
	query += " ORDER BY sku_code, store"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, filter.Limit)
	}

	var snapshots []domain.SKUSnapshot
	if err := r.db.SelectContext(ctx, &snapshots, query, args...); err != nil {
		return nil, fmt.Errorf("error listing sku snapshots: %w", err)
	}

	return snapshots, nil
}
