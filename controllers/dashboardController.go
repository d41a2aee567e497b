package controllers

import (
	"net/http"

	"civicecho-be/services"

	"github.com/gin-gonic/gin"
)

// DashboardController serves the /api/dashboard read models.
type DashboardController struct {
	dashboard *services.Dashboard
}

func NewDashboardController(dashboard *services.Dashboard) *DashboardController {
	return &DashboardController{dashboard: dashboard}
}

func (ctl *DashboardController) Stats(c *gin.Context) {
	stats, err := ctl.dashboard.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to compute dashboard stats")
		return
	}
	respond(c, http.StatusOK, stats, "")
}

func (ctl *DashboardController) Priority(c *gin.Context) {
	list, err := ctl.dashboard.Priority(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to rank complaints")
		return
	}
	respondList(c, list)
}

func (ctl *DashboardController) Heatmap(c *gin.Context) {
	points, err := ctl.dashboard.Heatmap(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to build heatmap")
		return
	}
	respondList(c, points)
}

func (ctl *DashboardController) Cluster(c *gin.Context) {
	cluster, err := ctl.dashboard.Cluster(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch cluster")
		return
	}
	respond(c, http.StatusOK, cluster, "")
}
