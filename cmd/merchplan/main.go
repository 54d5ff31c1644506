// merchplan/cmd/merchplan/main.go
package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/merchplan/internal/config"
	"github.com/andresuchdata/merchplan/pkg/logger"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newFileFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    usage,
		Required: true,
	}
}

func newOutputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write the result as CSV to this path",
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "merchplan",
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Usage:     "Forecast demand, plan clearance markdowns and check replenishment from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: loadConfig,
		Commands: []*cli.Command{
			{
				Name:  "forecast",
				Usage: "Forecast a weekly sales series read from a CSV or XLSX file",
				Flags: []cli.Flag{
					newFileFlag("Sales history file (csv, xlsx)"),
					&cli.StringFlag{Name: "sku", Usage: "Only use rows for this SKU"},
					&cli.StringFlag{Name: "method", Usage: "MOVING_AVERAGE, EXPONENTIAL_SMOOTHING, TREND or ENSEMBLE", Value: "ENSEMBLE"},
					&cli.IntFlag{Name: "weeks", Usage: "Number of weeks to forecast (0 keeps the configured value)"},
					newOutputFlag(),
				},
				Action: runForecast,
			},
			{
				Name:  "compare",
				Usage: "Rank every forecasting method by held-out accuracy",
				Flags: []cli.Flag{
					newFileFlag("Sales history file (csv, xlsx)"),
					&cli.StringFlag{Name: "sku", Usage: "Only use rows for this SKU"},
				},
				Action: runCompare,
			},
			{
				Name:  "clearance",
				Usage: "Recommend markdowns for a file of SKU snapshots",
				Flags: []cli.Flag{
					newFileFlag("SKU snapshot file (csv, xlsx)"),
					&cli.StringFlag{Name: "strategy", Usage: "MAXIMIZE_RECOVERY, MAXIMIZE_SELL_THROUGH or BALANCED (case-insensitive)"},
					&cli.Float64Flag{Name: "max-markdown", Usage: "Maximum markdown percentage"},
					&cli.Float64Flag{Name: "min-margin", Usage: "Minimum margin percentage after markdown"},
					&cli.BoolFlag{Name: "upload", Usage: "Upload the recommendation report to the configured object storage"},
					newOutputFlag(),
				},
				Action: runClearance,
			},
			{
				Name:  "replenish",
				Usage: "Evaluate replenishment alerts for a stock position file",
				Flags: []cli.Flag{
					newFileFlag("Stock position file (csv, xlsx)"),
					&cli.BoolFlag{Name: "include-healthy", Usage: "Also list items that need no action"},
					newOutputFlag(),
				},
				Action: runReplenish,
			},
			{
				Name:  "seed",
				Usage: "Load sales history, SKU snapshots or stock positions into the database",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "history", Usage: "Sales history file for one SKU (requires --sku)"},
					&cli.StringFlag{Name: "sku", Usage: "SKU code of the history file"},
					&cli.StringFlag{Name: "store", Usage: "Store of the history file"},
					&cli.StringFlag{Name: "snapshots", Usage: "SKU snapshot file"},
					&cli.TimestampFlag{Name: "snapshot-date", Usage: "Snapshot date (YYYY-MM-DD), defaults to today", Layout: "2006-01-02"},
					&cli.StringFlag{Name: "items", Usage: "Stock position file"},
					&cli.StringFlag{Name: "inbox", Usage: "Object storage prefix holding history/, snapshots/ and items/ extracts"},
				},
				Before: initDB,
				After:  closeDB,
				Action: runSeed,
			},
			{
				Name:   "migrate",
				Usage:  "Apply the database schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
		},
	}
}

func loadConfig(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	logger.ConfigureWriter(c.App.ErrWriter, level, cfg.Log.Format)

	c.App.Metadata = map[string]interface{}{}
	c.App.Metadata[cfgKeyName] = cfg
	return nil
}

const cfgKeyName = "config"

func appConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[cfgKeyName].(*config.Config); ok {
		return cfg
	}
	return nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("merchplan failed")
	}
}
