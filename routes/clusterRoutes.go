package routes

import (
	"civicecho-be/controllers"

	"github.com/gin-gonic/gin"
)

// ClusterRoutes sets up the public cluster read
func ClusterRoutes(api *gin.RouterGroup, ctl *controllers.DashboardController) {
	api.GET("/clusters/:id", ctl.Cluster)
}
