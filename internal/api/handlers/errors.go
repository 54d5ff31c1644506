package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/merchplan/internal/domain"
)

// respondError maps service errors onto HTTP statuses: configuration problems are the
// caller's fault, missing records are 404, everything else is logged and returned as 500.
func respondError(c *gin.Context, err error) {
	var cfgErr *domain.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid configuration",
			"field":   cfgErr.Field,
			"details": cfgErr.Reason,
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "details": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "details": err.Error()})
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
}

// parseList accepts both repeated params and comma-separated values:
//
//	?status=REORDER&status=STOCKOUT
//	?status=REORDER,STOCKOUT
func parseList(c *gin.Context, param string) []string {
	raw := c.QueryArray(param)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
