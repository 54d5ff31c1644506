package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/merchplan/internal/domain"
	"github.com/andresuchdata/merchplan/internal/service"
)

type ReplenishmentHandler struct {
	service *service.ReplenishmentService
}

func NewReplenishmentHandler(service *service.ReplenishmentService) *ReplenishmentHandler {
	return &ReplenishmentHandler{service: service}
}

// GetAlerts handles GET /replenishment/alerts?store=&status=&include_healthy=, reading stored positions.
func (h *ReplenishmentHandler) GetAlerts(c *gin.Context) {
	req := service.AlertsRequest{Store: strings.TrimSpace(c.Query("store"))}
	for _, s := range parseList(c, "status") {
		req.Statuses = append(req.Statuses, domain.StockStatus(strings.ToUpper(s)))
	}
	if v, err := strconv.ParseBool(c.DefaultQuery("include_healthy", "false")); err == nil {
		req.IncludeHealthy = v
	}

	h.respond(c, req)
}

// EvaluateAlerts handles POST /replenishment/alerts with inline items.
func (h *ReplenishmentHandler) EvaluateAlerts(c *gin.Context) {
	var req service.AlertsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.respond(c, req)
}

func (h *ReplenishmentHandler) respond(c *gin.Context, req service.AlertsRequest) {
	alerts, err := h.service.Alerts(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}
