package routes

import (
	"civicecho-be/controllers"
	"civicecho-be/middlewares"

	"github.com/gin-gonic/gin"
)

// UserRoutes sets up the profile and leaderboard routes
func UserRoutes(api *gin.RouterGroup, d Deps, ctl *controllers.UserController) {
	user := api.Group("/users")
	{
		user.POST("/profile", middlewares.AuthMiddleware(d.JWTSecret), ctl.UpsertProfile)
		user.GET("/profile/:uid", ctl.GetProfile)
		user.GET("/leaderboard", ctl.Leaderboard)
	}
}
