// merchplan/cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/merchplan/internal/admin"
	"github.com/andresuchdata/merchplan/internal/api"
	"github.com/andresuchdata/merchplan/internal/cache"
	"github.com/andresuchdata/merchplan/internal/clearance"
	"github.com/andresuchdata/merchplan/internal/config"
	"github.com/andresuchdata/merchplan/internal/metrics"
	"github.com/andresuchdata/merchplan/internal/repository/postgres"
	"github.com/andresuchdata/merchplan/internal/service"
	"github.com/andresuchdata/merchplan/internal/storage"
	"github.com/andresuchdata/merchplan/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger.Configure(cfg.Log.Level, cfg.Log.Format)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Forecast cache unavailable, continuing without cache")
		forecastCache = cache.NewNoopForecastCache()
	}
	clearanceCache, err := cache.NewClearanceCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Clearance cache unavailable, continuing without cache")
		clearanceCache = cache.NewNoopClearanceCache()
	}

	reportStorage, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize report storage")
	}

	reg := metrics.NewRegistry()

	services := &api.Services{
		Forecast: service.NewForecastService(
			cfg.Forecast,
			postgres.NewHistoryRepository(db),
			postgres.NewForecastRunRepository(db),
			forecastCache,
			reg,
		),
		Clearance: service.NewClearanceService(
			clearance.NewOptimizer(clearance.WithWorkers(cfg.Optimizer.Workers)),
			cfg.Optimizer.Defaults,
			service.ClearanceDeps{
				Snapshots:     postgres.NewSnapshotRepository(db),
				Runs:          postgres.NewClearanceRunRepository(db),
				Cache:         clearanceCache,
				Storage:       reportStorage,
				StoragePrefix: cfg.Storage.Prefix,
				Metrics:       reg,
			},
		),
		Replenishment: service.NewReplenishmentService(
			postgres.NewReplenishmentRepository(db),
			cfg.MOC,
			reg,
		),
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewRouter(services, cfg.Server.AllowedOrigins),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	var adminSrv *http.Server
	if cfg.Metrics.Enabled {
		adminSrv = &http.Server{
			Addr:    ":" + cfg.Metrics.Port,
			Handler: admin.NewRouter(admin.NewHandler(reg, reportStorage, cfg.Storage.Prefix)),
		}
		go func() {
			logger.Log.Info().Str("port", cfg.Metrics.Port).Msg("Starting admin server")
			if err := adminSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Error().Err(err).Msg("Admin server stopped")
			}
		}()
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the servers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if adminSrv != nil {
		if err := adminSrv.Shutdown(ctx); err != nil {
			logger.Log.Error().Err(err).Msg("Admin server forced to shutdown")
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
