package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/merchplan/internal/service"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

// Run handles POST /forecast/run.
func (h *ForecastHandler) Run(c *gin.Context) {
	var req service.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	run, err := h.service.Run(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// Compare handles POST /forecast/compare.
func (h *ForecastHandler) Compare(c *gin.Context) {
	var req service.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cmp, err := h.service.Compare(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

// ForecastSKU handles GET /forecast/skus/:sku, forecasting from stored weekly sales.
func (h *ForecastHandler) ForecastSKU(c *gin.Context) {
	req := service.ForecastRequest{
		SKUCode: c.Param("sku"),
		Store:   c.Query("store"),
		Method:  c.Query("method"),
	}

	run, err := h.service.Run(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *ForecastHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
