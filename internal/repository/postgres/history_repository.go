package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/merchplan/internal/domain"
)

type historyRepository struct {
	db *DB
}

func NewHistoryRepository(db *DB) *historyRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) GetWeeklySales(ctx context.Context, skuCode, store string, weeks int) ([]domain.HistoricalPoint, error) {
	if weeks <= 0 {
		weeks = 52
	}

	query := `
		SELECT period_index, SUM(units_sold) AS value
		FROM weekly_sales
		WHERE sku_code = $1
		  AND ($2::text = '' OR store = $2)
		GROUP BY period_index
		ORDER BY period_index DESC
		LIMIT $3
	`

	var points []domain.HistoricalPoint
	if err := r.db.SelectContext(ctx, &points, query, skuCode, store, weeks); err != nil {
		return nil, fmt.Errorf("error getting weekly sales for %s: %w", skuCode, err)
	}

	// newest first from the query; callers expect chronological order
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}

	return points, nil
}
