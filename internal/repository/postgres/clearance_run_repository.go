package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/merchplan/internal/domain"
)

type clearanceRunRepository struct {
	db *DB
}

func NewClearanceRunRepository(db *DB) *clearanceRunRepository {
	return &clearanceRunRepository{db: db}
}

type clearanceRecommendationRow struct {
	RunID string `db:"run_id"`
	domain.SKURecommendation
}

const insertRecommendationQuery = `
	INSERT INTO clearance_recommendations (
		run_id, sku_code, product_name, current_stock, current_price,
		urgency_score, urgency_level, elasticity, action, markdown_pct,
		new_price, projected_weekly_sales, projected_units, projected_revenue,
		projected_margin_loss, projected_sell_through, days_to_sell, reasoning
	) VALUES (
		:run_id, :sku_code, :product_name, :current_stock, :current_price,
		:urgency_score, :urgency_level, :elasticity, :action, :markdown_pct,
		:new_price, :projected_weekly_sales, :projected_units, :projected_revenue,
		:projected_margin_loss, :projected_sell_through, :days_to_sell, :reasoning
	)
`

func (r *clearanceRunRepository) SaveRun(ctx context.Context, run *domain.ClearanceRun) error {
	cfg, err := json.Marshal(run.Config)
	if err != nil {
		return fmt.Errorf("failed to encode optimization config: %w", err)
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO clearance_runs (id, config, report_key, created_at)
			VALUES ($1, $2, $3, $4)
		`, run.ID, cfg, run.ReportKey, run.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert clearance run: %w", err)
		}

		for _, rec := range run.Recommendations {
			row := clearanceRecommendationRow{RunID: run.ID, SKURecommendation: rec}
			if _, err := tx.NamedExecContext(ctx, insertRecommendationQuery, row); err != nil {
				return fmt.Errorf("failed to insert recommendation %s: %w", rec.SKUCode, err)
			}
		}

		return nil
	})
}

// GetRun loads the run and its recommendations in urgency order. The portfolio summary is
// derived data and left for the caller to recompute.
func (r *clearanceRunRepository) GetRun(ctx context.Context, id string) (*domain.ClearanceRun, error) {
	var header struct {
		ID        string    `db:"id"`
		Config    []byte    `db:"config"`
		ReportKey string    `db:"report_key"`
		CreatedAt time.Time `db:"created_at"`
	}
	err := r.db.GetContext(ctx, &header, `
		SELECT id, config, report_key, created_at
		FROM clearance_runs
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting clearance run %s: %w", id, err)
	}

	run := &domain.ClearanceRun{
		ID:        header.ID,
		ReportKey: header.ReportKey,
		CreatedAt: header.CreatedAt,
	}
	if len(header.Config) > 0 {
		if err := json.Unmarshal(header.Config, &run.Config); err != nil {
			return nil, fmt.Errorf("error decoding optimization config: %w", err)
		}
	}

	if err := r.db.SelectContext(ctx, &run.Recommendations, `
		SELECT
			sku_code, product_name, current_stock, current_price, urgency_score,
			urgency_level, elasticity, action, markdown_pct, new_price,
			projected_weekly_sales, projected_units, projected_revenue,
			projected_margin_loss, projected_sell_through, days_to_sell, reasoning
		FROM clearance_recommendations
		WHERE run_id = $1
		ORDER BY urgency_score DESC, sku_code
	`, id); err != nil {
		return nil, fmt.Errorf("error getting clearance recommendations: %w", err)
	}

	return run, nil
}
