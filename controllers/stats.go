package controllers

import (
	"net/http"

	"elsahm-admin/models"

	"github.com/gin-gonic/gin"
)

// GetStats serves the dashboard numbers; ?refresh=1 bypasses the cache.
func (h *Handler) GetStats(c *gin.Context) {
	var (
		stats *models.DashboardStats
		err   error
	)
	if c.Query("refresh") == "1" {
		stats, err = h.opts.Stats.ForceRefresh(c.Request.Context())
	} else {
		stats, err = h.opts.Stats.Get(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
