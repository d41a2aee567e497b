package routes

import (
	"civicecho-be/controllers"
	"civicecho-be/middlewares"

	"github.com/gin-gonic/gin"
)

// DashboardRoutes sets up the dashboard routes
func DashboardRoutes(api *gin.RouterGroup, d Deps, ctl *controllers.DashboardController, complaints *controllers.ComplaintController) {
	auth := middlewares.AuthMiddleware(d.JWTSecret)

	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("/stats", auth, ctl.Stats)
		dashboard.GET("/priority", auth, ctl.Priority)
		dashboard.GET("/my-complaints", auth, complaints.Mine)
		dashboard.GET("/heatmap", ctl.Heatmap)
	}
}
