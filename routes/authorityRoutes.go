package routes

import (
	"civicecho-be/controllers"
	"civicecho-be/middlewares"
	"civicecho-be/models"

	"github.com/gin-gonic/gin"
)

// AuthorityRoutes sets up the authority work-queue routes
func AuthorityRoutes(api *gin.RouterGroup, d Deps, ctl *controllers.AuthorityController, complaints *controllers.ComplaintController) {
	authority := api.Group("/authority",
		middlewares.AuthMiddleware(d.JWTSecret),
		middlewares.RequireRole(d.Users, models.RoleAuthority, models.RoleAdmin),
	)
	{
		authority.GET("/issues", ctl.Issues)
		authority.PATCH("/issues/:id/status", complaints.UpdateStatus)
		authority.POST("/issues/:id/assign", complaints.Assign)
	}
}
