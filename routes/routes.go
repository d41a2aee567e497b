package routes

import (
	"net/http"

	"civicecho-be/controllers"
	"civicecho-be/metrics"
	"civicecho-be/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// DefaultRateLimitPrefix namespaces the per-user complaint counters in Redis.
const DefaultRateLimitPrefix = "complaint_limit"

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Complaints *services.ComplaintService
	Dashboard  *services.Dashboard
	Users      *services.UserService

	JWTSecret string

	// Redis backs the complaint rate limiter; nil disables it.
	Redis           *redis.Client
	RateLimit       int
	RateLimitPrefix string
}

// Register mounts /health, /metrics and the /api routes on r.
func Register(r *gin.Engine, d Deps) {
	if d.RateLimitPrefix == "" {
		d.RateLimitPrefix = DefaultRateLimitPrefix
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	complaints := controllers.NewComplaintController(d.Complaints)

	ComplaintRoutes(api, d, complaints)
	dashboard := controllers.NewDashboardController(d.Dashboard)
	DashboardRoutes(api, d, dashboard, complaints)
	ClusterRoutes(api, dashboard)
	UserRoutes(api, d, controllers.NewUserController(d.Users))
	AuthorityRoutes(api, d, controllers.NewAuthorityController(d.Complaints, d.Users), complaints)
}
