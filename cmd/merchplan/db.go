package main

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/merchplan/internal/repository/postgres"
)

const dbKeyName = "db"

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	maxConcurrency := int64(0)
	if cfg := appConfig(c); cfg != nil {
		maxConcurrency = cfg.Database.MaxConcurrency
	}
	c.App.Metadata[dbKeyName] = postgres.Wrap(sqlx.NewDb(db, "pgx"), maxConcurrency)
	return nil
}

func closeDB(c *cli.Context) error {
	if db := dbFrom(c); db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) *postgres.DB {
	db, _ := c.App.Metadata[dbKeyName].(*postgres.DB)
	return db
}
