package routes

import (
	"civicecho-be/controllers"
	"civicecho-be/middlewares"
	"civicecho-be/models"

	"github.com/gin-gonic/gin"
)

// ComplaintRoutes sets up the complaint routes
func ComplaintRoutes(api *gin.RouterGroup, d Deps, ctl *controllers.ComplaintController) {
	optional := middlewares.OptionalAuthMiddleware(d.JWTSecret)
	auth := middlewares.AuthMiddleware(d.JWTSecret)
	staff := middlewares.RequireRole(d.Users, models.RoleAuthority, models.RoleAdmin)

	complaint := api.Group("/complaints")
	{
		complaint.POST("", optional, middlewares.ComplaintRateLimiter(d.Redis, d.RateLimitPrefix, d.RateLimit), ctl.Create)
		complaint.GET("", optional, ctl.List)
		complaint.GET("/:id", ctl.Get)
		complaint.PATCH("/:id/status", auth, staff, ctl.UpdateStatus)
		complaint.PUT("/:id/status", auth, staff, ctl.UpdateStatus)
		complaint.POST("/:id/assign", auth, staff, ctl.Assign)
		complaint.PATCH("/:id", auth, ctl.Update)
		complaint.DELETE("/:id", auth, ctl.Delete)
		complaint.POST("/:id/upvote", auth, ctl.Upvote)
	}
}
