// merchplan/internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/merchplan/internal/api/handlers"
	"github.com/andresuchdata/merchplan/internal/api/middleware"
	"github.com/andresuchdata/merchplan/internal/service"
)

type Services struct {
	Forecast      *service.ForecastService
	Clearance     *service.ClearanceService
	Replenishment *service.ReplenishmentService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Forecast != nil {
			forecastHandler := handlers.NewForecastHandler(services.Forecast)
			forecastGroup := apiGroup.Group("/forecast")
			{
				forecastGroup.POST("/run", forecastHandler.Run)
				forecastGroup.POST("/compare", forecastHandler.Compare)
				forecastGroup.GET("/skus/:sku", forecastHandler.ForecastSKU)
				forecastGroup.GET("/runs/:id", forecastHandler.GetRun)
			}
		}

		if services.Clearance != nil {
			clearanceHandler := handlers.NewClearanceHandler(services.Clearance)
			clearanceGroup := apiGroup.Group("/clearance")
			{
				clearanceGroup.POST("/optimize", clearanceHandler.Optimize)
				clearanceGroup.GET("/runs/:id", clearanceHandler.GetRun)
				clearanceGroup.GET("/runs/:id/summary", clearanceHandler.GetSummary)
			}
		}

		if services.Replenishment != nil {
			replenishmentHandler := handlers.NewReplenishmentHandler(services.Replenishment)
			replenishmentGroup := apiGroup.Group("/replenishment")
			{
				replenishmentGroup.GET("/alerts", replenishmentHandler.GetAlerts)
				replenishmentGroup.POST("/alerts", replenishmentHandler.EvaluateAlerts)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
