package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/merchplan/internal/domain"
)

func TestIngestRepository_UpsertWeeklySales(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIngestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO weekly_sales").
		WithArgs("JKT-001", "Padang", 1, 10.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO weekly_sales").
		WithArgs("JKT-001", "Padang", 2, 12.5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := repo.UpsertWeeklySales(context.Background(), "JKT-001", "Padang", []domain.HistoricalPoint{
		{PeriodIndex: 1, Value: 10},
		{PeriodIndex: 2, Value: 12.5},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestRepository_UpsertSnapshots(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIngestRepository(db)

	date := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sku_snapshots").
		WithArgs("2026-03-01", "JKT-001", "Wool Overcoat", "Outerwear", "Padang",
			300.0, 299.99, 399.99, 149.99, 20.0, 10.0, 6.0, 5.0, 89997.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := repo.UpsertSnapshots(context.Background(), date, []domain.SKUSnapshot{{
		SKUCode:          "JKT-001",
		ProductName:      "Wool Overcoat",
		Category:         "Outerwear",
		Store:            "Padang",
		CurrentStock:     300,
		CurrentPrice:     299.99,
		OriginalPrice:    399.99,
		UnitCost:         149.99,
		WeeksOnHand:      20,
		SellThroughRate:  10,
		WeeksToSeasonEnd: 6,
		AvgWeeklySales:   5,
		StockValue:       89997,
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestRepository_UpsertReplenishmentItemsRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIngestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO replenishment_items").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO replenishment_items").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	n, err := repo.UpsertReplenishmentItems(context.Background(), []domain.ReplenishmentItem{
		{SKUCode: "A", Store: "Padang"},
		{SKUCode: "B", Store: "Padang"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Padang/B")
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
