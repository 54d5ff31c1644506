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

type forecastRunRepository struct {
	db *DB
}

func NewForecastRunRepository(db *DB) *forecastRunRepository {
	return &forecastRunRepository{db: db}
}

type forecastRunRow struct {
	ID             string    `db:"id"`
	SKUCode        string    `db:"sku_code"`
	Method         string    `db:"method"`
	Status         string    `db:"status"`
	HistoryPoints  int       `db:"history_points"`
	Config         []byte    `db:"config"`
	MAPE           float64   `db:"mape"`
	Interpretation string    `db:"interpretation"`
	HeldOut        int       `db:"held_out"`
	ZeroActuals    int       `db:"zero_actuals"`
	CreatedAt      time.Time `db:"created_at"`
}

type forecastPointRow struct {
	PeriodIndex          int             `db:"period_index"`
	PointForecast        float64         `db:"point_forecast"`
	ConfidenceLower      float64         `db:"confidence_lower"`
	ConfidenceUpper      float64         `db:"confidence_upper"`
	MovingAverage        sql.NullFloat64 `db:"moving_average"`
	ExponentialSmoothing sql.NullFloat64 `db:"exponential_smoothing"`
	Trend                sql.NullFloat64 `db:"trend"`
}

func (r *forecastRunRepository) SaveRun(ctx context.Context, run *domain.ForecastRun) error {
	cfg, err := json.Marshal(run.Config)
	if err != nil {
		return fmt.Errorf("failed to encode forecast config: %w", err)
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// 1. Run header
		_, err := tx.ExecContext(ctx, `
			INSERT INTO forecast_runs (
				id, sku_code, method, status, history_points, config,
				mape, interpretation, held_out, zero_actuals, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			run.ID, run.SKUCode, run.Method, run.Status, run.History, cfg,
			run.Accuracy.MAPE, run.Accuracy.Interpretation, run.Accuracy.HeldOut,
			run.Accuracy.ZeroActuals, run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert forecast run: %w", err)
		}

		// 2. Points
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO forecast_points (
				run_id, period_index, point_forecast, confidence_lower, confidence_upper,
				moving_average, exponential_smoothing, trend
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, p := range run.Points {
			var ma, es, tr sql.NullFloat64
			if b := p.ComponentBreakdown; b != nil {
				ma = sql.NullFloat64{Float64: b.MovingAverage, Valid: true}
				es = sql.NullFloat64{Float64: b.ExponentialSmoothing, Valid: true}
				tr = sql.NullFloat64{Float64: b.Trend, Valid: true}
			}

			if _, err := stmt.ExecContext(ctx,
				run.ID, p.PeriodIndex, p.PointForecast, p.ConfidenceLower, p.ConfidenceUpper, ma, es, tr,
			); err != nil {
				return fmt.Errorf("failed to insert forecast point: %w", err)
			}
		}

		return nil
	})
}

func (r *forecastRunRepository) GetRun(ctx context.Context, id string) (*domain.ForecastRun, error) {
	var row forecastRunRow
	err := r.db.GetContext(ctx, &row, `
		SELECT
			id, sku_code, method, status, history_points, config,
			mape, interpretation, held_out, zero_actuals, created_at
		FROM forecast_runs
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting forecast run %s: %w", id, err)
	}

	run := &domain.ForecastRun{
		ID:        row.ID,
		SKUCode:   row.SKUCode,
		Method:    domain.ForecastMethod(row.Method),
		Status:    domain.RunStatus(row.Status),
		History:   row.HistoryPoints,
		CreatedAt: row.CreatedAt,
		Accuracy: domain.AccuracyReport{
			Method:         domain.ForecastMethod(row.Method),
			MAPE:           row.MAPE,
			Interpretation: row.Interpretation,
			HeldOut:        row.HeldOut,
			ZeroActuals:    row.ZeroActuals,
		},
	}
	if len(row.Config) > 0 {
		if err := json.Unmarshal(row.Config, &run.Config); err != nil {
			return nil, fmt.Errorf("error decoding forecast config: %w", err)
		}
	}

	var points []forecastPointRow
	if err := r.db.SelectContext(ctx, &points, `
		SELECT
			period_index, point_forecast, confidence_lower, confidence_upper,
			moving_average, exponential_smoothing, trend
		FROM forecast_points
		WHERE run_id = $1
		ORDER BY period_index
	`, id); err != nil {
		return nil, fmt.Errorf("error getting forecast points: %w", err)
	}

	run.Points = make([]domain.ForecastPoint, 0, len(points))
	for _, p := range points {
		point := domain.ForecastPoint{
			PeriodIndex:     p.PeriodIndex,
			PointForecast:   p.PointForecast,
			ConfidenceLower: p.ConfidenceLower,
			ConfidenceUpper: p.ConfidenceUpper,
		}
		if p.MovingAverage.Valid {
			point.ComponentBreakdown = &domain.ComponentBreakdown{
				MovingAverage:        p.MovingAverage.Float64,
				ExponentialSmoothing: p.ExponentialSmoothing.Float64,
				Trend:                p.Trend.Float64,
			}
		}
		run.Points = append(run.Points, point)
	}

	return run, nil
}
