package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/merchplan/internal/domain"
	"github.com/andresuchdata/merchplan/internal/ingest"
	"github.com/andresuchdata/merchplan/internal/report"
	"github.com/andresuchdata/merchplan/internal/repository/postgres"
	"github.com/andresuchdata/merchplan/internal/service"
	"github.com/andresuchdata/merchplan/internal/storage"
	"github.com/andresuchdata/merchplan/pkg/logger"
)

func runForecast(c *cli.Context) error {
	cfg := appConfig(c)

	history, err := ingest.ReadHistory(c.String("file"), c.String("sku"))
	if err != nil {
		return err
	}

	req := service.ForecastRequest{
		SKUCode: c.String("sku"),
		Method:  c.String("method"),
		History: history,
	}
	if weeks := c.Int("weeks"); weeks > 0 {
		req.Config = &service.ForecastOverrides{ForecastWeeks: &weeks}
	}

	svc := service.NewForecastService(cfg.Forecast, nil, nil, nil, nil)
	run, err := svc.Run(c.Context, req)
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Method: %s (%d history points)\n", run.Method, run.History)
	if run.Accuracy.HeldOut > 0 {
		fmt.Fprintf(out, "Accuracy: MAPE %.2f%% (%s) over %d held-out weeks\n",
			run.Accuracy.MAPE, run.Accuracy.Interpretation, run.Accuracy.HeldOut)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PERIOD\tFORECAST\tLOWER\tUPPER")
	for _, p := range run.Points {
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.2f\n", p.PeriodIndex, p.PointForecast, p.ConfidenceLower, p.ConfidenceUpper)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	return writeOutput(c, func(w io.Writer) error { return report.WriteForecast(w, run) })
}

func runCompare(c *cli.Context) error {
	cfg := appConfig(c)

	history, err := ingest.ReadHistory(c.String("file"), c.String("sku"))
	if err != nil {
		return err
	}

	svc := service.NewForecastService(cfg.Forecast, nil, nil, nil, nil)
	cmp, err := svc.Compare(c.Context, service.ForecastRequest{SKUCode: c.String("sku"), History: history})
	if err != nil {
		return err
	}

	out := c.App.Writer
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tMETHOD\tMAPE\tRATING\tNEXT")
	for _, s := range cmp.Scores {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\t%.2f\n", s.Rank, s.Method, s.MAPE, s.Interpretation, s.NextForecast)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Recommended: %s. %s\n", cmp.Recommended, cmp.Justification)
	return nil
}

func runClearance(c *cli.Context) error {
	cfg := appConfig(c)

	skus, err := ingest.ReadSnapshots(c.String("file"))
	if err != nil {
		return err
	}

	overrides := &service.OptimizationOverrides{}
	if c.IsSet("strategy") {
		strategy := c.String("strategy")
		overrides.Strategy = &strategy
	}
	if c.IsSet("max-markdown") {
		v := c.Float64("max-markdown")
		overrides.MaxMarkdownPct = &v
	}
	if c.IsSet("min-margin") {
		v := c.Float64("min-margin")
		overrides.MinMarginPct = &v
	}

	deps := service.ClearanceDeps{StoragePrefix: cfg.Storage.Prefix}
	if c.Bool("upload") {
		store, err := storage.New(cfg.Storage)
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("report upload requested but STORAGE_ENABLED is false")
		}
		deps.Storage = store
	}

	svc := service.NewClearanceService(nil, cfg.Optimizer.Defaults, deps)
	run, err := svc.Optimize(c.Context, service.OptimizeRequest{
		SKUs:         skus,
		Config:       overrides,
		ExportReport: c.Bool("upload"),
	})
	if err != nil {
		return err
	}

	out := c.App.Writer
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SKU\tURGENCY\tSCORE\tACTION\tMARKDOWN\tNEW PRICE\tSELL-THROUGH")
	for _, r := range run.Recommendations {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%.0f%%\t%.2f\t%.1f%%\n",
			r.SKUCode, r.UrgencyLevel, r.UrgencyScore, r.Action, r.MarkdownPct, r.NewPrice, r.ProjectedSellThrough)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := run.Summary
	fmt.Fprintf(out, "\n%d SKUs, %.0f units on hand\n", s.TotalSKUs, s.TotalStock)
	fmt.Fprintf(out, "Urgency: critical %d, high %d, medium %d, low %d\n",
		s.ByUrgency[domain.UrgencyCritical], s.ByUrgency[domain.UrgencyHigh],
		s.ByUrgency[domain.UrgencyMedium], s.ByUrgency[domain.UrgencyLow])
	fmt.Fprintf(out, "Projected: %.0f units, revenue %.2f, margin given up %.2f, avg sell-through %.1f%%\n",
		s.TotalProjectedUnits, s.TotalProjectedRevenue, s.TotalMarginLoss, s.AvgSellThrough)
	if run.ReportKey != "" {
		fmt.Fprintf(out, "Report uploaded to %s\n", run.ReportKey)
	}

	return writeOutput(c, func(w io.Writer) error { return report.WriteRecommendations(w, run.Recommendations) })
}

func runReplenish(c *cli.Context) error {
	cfg := appConfig(c)

	items, err := ingest.ReadReplenishmentItems(c.String("file"))
	if err != nil {
		return err
	}

	svc := service.NewReplenishmentService(nil, cfg.MOC, nil)
	alerts, err := svc.Alerts(c.Context, service.AlertsRequest{
		Items:          items,
		IncludeHealthy: c.Bool("include-healthy"),
	})
	if err != nil {
		return err
	}

	out := c.App.Writer
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SKU\tSTORE\tSTATUS\tDAYS COVER\tORDER QTY\tEMERGENCY QTY\tORDER COST")
	for _, a := range alerts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%d\t%d\t%.2f\n",
			a.SKUCode, a.Store, a.Status, a.DaysOfCover, a.SuggestedOrderQty, a.EmergencyOrderQty, a.OrderCost)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d alerts from %d items\n", len(alerts), len(items))

	return writeOutput(c, func(w io.Writer) error { return report.WriteAlerts(w, alerts) })
}

func runMigrate(c *cli.Context) error {
	db := dbFrom(c)
	if err := postgres.Migrate(c.Context, db.DB.DB); err != nil {
		return err
	}
	logger.Log.Info().Msg("Database schema is up to date")
	return nil
}

func runSeed(c *cli.Context) error {
	seeder := &seeder{
		repo:         postgres.NewIngestRepository(dbFrom(c)),
		store:        c.String("store"),
		snapshotDate: time.Now(),
	}
	if ts := c.Timestamp("snapshot-date"); ts != nil {
		seeder.snapshotDate = *ts
	}

	var files []ingest.InboxFile
	if path := c.String("history"); path != "" {
		sku := c.String("sku")
		if sku == "" {
			return errors.New("--sku is required with --history")
		}
		seeder.sku = sku
		files = append(files, ingest.InboxFile{Path: path, Kind: ingest.KindHistory})
	}
	if path := c.String("snapshots"); path != "" {
		files = append(files, ingest.InboxFile{Path: path, Kind: ingest.KindSnapshots})
	}
	if path := c.String("items"); path != "" {
		files = append(files, ingest.InboxFile{Path: path, Kind: ingest.KindItems})
	}

	if prefix := c.String("inbox"); prefix != "" {
		store, err := storage.New(appConfig(c).Storage)
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("--inbox requires STORAGE_ENABLED=true")
		}

		dir, err := os.MkdirTemp("", "merchplan-inbox-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)

		downloaded, err := ingest.DownloadInbox(c.Context, store, prefix, dir)
		if err != nil {
			return err
		}
		files = append(files, downloaded...)
	}

	if len(files) == 0 {
		return errors.New("nothing to seed: pass --history, --snapshots, --items or --inbox")
	}

	for _, f := range files {
		if err := seeder.seed(c.Context, f); err != nil {
			return err
		}
	}
	return nil
}

type seeder struct {
	repo         *postgres.IngestRepository
	sku          string
	store        string
	snapshotDate time.Time
}

func (s *seeder) seed(ctx context.Context, f ingest.InboxFile) error {
	switch f.Kind {
	case ingest.KindHistory:
		// inbox extracts are named after their SKU
		sku := f.SKUCode()
		if f.Key == "" {
			sku = s.sku
		}
		points, err := ingest.ReadHistory(f.Path, sku)
		if err != nil {
			return err
		}
		n, err := s.repo.UpsertWeeklySales(ctx, sku, s.store, points)
		if err != nil {
			return err
		}
		logger.Log.Info().Str("file", f.Path).Str("sku_code", sku).Int("rows", n).Msg("Seeded weekly sales")

	case ingest.KindSnapshots:
		snapshots, err := ingest.ReadSnapshots(f.Path)
		if err != nil {
			return err
		}
		n, err := s.repo.UpsertSnapshots(ctx, s.snapshotDate, snapshots)
		if err != nil {
			return err
		}
		logger.Log.Info().Str("file", f.Path).Int("rows", n).Msg("Seeded SKU snapshots")

	case ingest.KindItems:
		items, err := ingest.ReadReplenishmentItems(f.Path)
		if err != nil {
			return err
		}
		n, err := s.repo.UpsertReplenishmentItems(ctx, items)
		if err != nil {
			return err
		}
		logger.Log.Info().Str("file", f.Path).Int("rows", n).Msg("Seeded replenishment items")

	default:
		return fmt.Errorf("unknown extract kind %q", f.Kind)
	}
	return nil
}

// writeOutput writes a CSV report to --output when the flag is set.
func writeOutput(c *cli.Context, write func(io.Writer) error) error {
	path := c.String("output")
	if path == "" {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Log.Info().Str("path", path).Msg("Report written")
	return nil
}
