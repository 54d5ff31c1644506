package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/merchplan/internal/service"
)

type ClearanceHandler struct {
	service *service.ClearanceService
}

func NewClearanceHandler(service *service.ClearanceService) *ClearanceHandler {
	return &ClearanceHandler{service: service}
}

// Optimize handles POST /clearance/optimize.
func (h *ClearanceHandler) Optimize(c *gin.Context) {
	var req service.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	run, err := h.service.Optimize(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *ClearanceHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// GetSummary returns only the portfolio summary of a run.
func (h *ClearanceHandler) GetSummary(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run.Summary)
}
